package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/services"
)

type BlueprintsHandler struct {
	blueprints services.BlueprintService
}

func NewBlueprintsHandler(blueprints services.BlueprintService) *BlueprintsHandler {
	return &BlueprintsHandler{blueprints: blueprints}
}

func (h *BlueprintsHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter services.BlueprintFilter
	if s := r.URL.Query().Get("cloud_provider_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeInvalid(w, "invalid cloud_provider_id")
			return
		}
		filter.CloudProviderID = &id
	}
	if s := r.URL.Query().Get("stack_type"); s != "" {
		st := models.StackType(s)
		if !st.Valid() {
			writeInvalid(w, "invalid stack_type")
			return
		}
		filter.StackType = &st
	}
	items, err := h.blueprints.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *BlueprintsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	bp, err := h.blueprints.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, bp)
}

func (h *BlueprintsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.BlueprintCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	providerID, _ := uuid.Parse(req.ProviderID)
	in := &services.BlueprintInput{
		Name:            req.Name,
		Description:     req.Description,
		StackType:       models.StackType(req.StackType),
		CloudProviderID: providerID,
	}
	for i := range req.Resources {
		res, ok := blueprintResourceInput(w, &req.Resources[i])
		if !ok {
			return
		}
		in.Resources = append(in.Resources, *res)
	}
	bp, err := h.blueprints.Create(r.Context(), actorEmail(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, bp)
}

func (h *BlueprintsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.BlueprintUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	bp, err := h.blueprints.Update(r.Context(), actorEmail(r), id, &services.BlueprintUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, bp)
}

func (h *BlueprintsHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.ToggleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	bp, err := h.blueprints.SetEnabled(r.Context(), actorEmail(r), id, req.Enabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, bp)
}

func (h *BlueprintsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.blueprints.Delete(r.Context(), actorEmail(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlueprintsHandler) AddResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.BlueprintResourceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in, ok := blueprintResourceInput(w, &req)
	if !ok {
		return
	}
	br, err := h.blueprints.AddResource(r.Context(), actorEmail(r), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, br)
}

func (h *BlueprintsHandler) RemoveResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	resourceID, ok := pathID(w, r, "resourceID")
	if !ok {
		return
	}
	if err := h.blueprints.RemoveResource(r.Context(), actorEmail(r), id, resourceID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func blueprintResourceInput(w http.ResponseWriter, req *types.BlueprintResourceRequest) (*services.BlueprintResourceInput, bool) {
	mappingID, err := uuid.Parse(req.MappingID)
	if err != nil {
		writeInvalid(w, "invalid mapping_id")
		return nil, false
	}
	return &services.BlueprintResourceInput{
		MappingID:     mappingID,
		Name:          req.Name,
		Configuration: req.Configuration,
	}, true
}
