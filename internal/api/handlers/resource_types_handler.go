package handlers

import (
	"net/http"

	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/services"
)

type ResourceTypesHandler struct {
	catalog services.CatalogService
}

func NewResourceTypesHandler(catalog services.CatalogService) *ResourceTypesHandler {
	return &ResourceTypesHandler{catalog: catalog}
}

// List returns all resource types. available_for=stacks|blueprints narrows
// the result to enabled types attachable to that entity.
func (h *ResourceTypesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListResourceTypes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	switch r.URL.Query().Get("available_for") {
	case "":
	case "stacks":
		items = filterResourceTypes(items, (*models.ResourceType).UsableInStacks)
	case "blueprints":
		items = filterResourceTypes(items, (*models.ResourceType).UsableInBlueprints)
	default:
		writeInvalid(w, "invalid available_for")
		return
	}
	writeData(w, http.StatusOK, items)
}

func filterResourceTypes(items []models.ResourceType, usable func(*models.ResourceType) bool) []models.ResourceType {
	out := make([]models.ResourceType, 0, len(items))
	for i := range items {
		if items[i].Enabled && usable(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

func (h *ResourceTypesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rt, err := h.catalog.GetResourceType(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rt)
}

func (h *ResourceTypesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ResourceTypeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rt, err := h.catalog.CreateResourceType(r.Context(), actorEmail(r), &services.ResourceTypeInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    models.ResourceCategory(req.Category),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, rt)
}

func (h *ResourceTypesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.ResourceTypeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rt, err := h.catalog.UpdateResourceType(r.Context(), actorEmail(r), id, &services.ResourceTypeInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    models.ResourceCategory(req.Category),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rt)
}

func (h *ResourceTypesHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.ToggleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rt, err := h.catalog.SetResourceTypeEnabled(r.Context(), actorEmail(r), id, req.Enabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rt)
}

func (h *ResourceTypesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteResourceType(r.Context(), actorEmail(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
