package handlers

import (
	"net/http"

	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/services"
)

type ProvidersHandler struct {
	catalog services.CatalogService
}

func NewProvidersHandler(catalog services.CatalogService) *ProvidersHandler {
	return &ProvidersHandler{catalog: catalog}
}

func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListProviders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("enabled") == "true" {
		filtered := make([]models.CloudProvider, 0, len(items))
		for _, p := range items {
			if p.Enabled {
				filtered = append(filtered, p)
			}
		}
		items = filtered
	}
	writeData(w, http.StatusOK, items)
}

func (h *ProvidersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProvider(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProvidersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ProviderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.catalog.CreateProvider(r.Context(), actorEmail(r), &services.ProviderInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *ProvidersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.ProviderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.catalog.UpdateProvider(r.Context(), actorEmail(r), id, &services.ProviderInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProvidersHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.ToggleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.catalog.SetProviderEnabled(r.Context(), actorEmail(r), id, req.Enabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProvidersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProvider(r.Context(), actorEmail(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
