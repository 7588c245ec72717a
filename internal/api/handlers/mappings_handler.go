package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/services"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// MappingsHandler covers resource type cloud mappings and their property
// schemas.
type MappingsHandler struct {
	catalog services.CatalogService
}

func NewMappingsHandler(catalog services.CatalogService) *MappingsHandler {
	return &MappingsHandler{catalog: catalog}
}

func (h *MappingsHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter services.MappingFilter
	if s := r.URL.Query().Get("cloud_provider_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeInvalid(w, "invalid cloud_provider_id")
			return
		}
		filter.CloudProviderID = &id
	}
	if s := r.URL.Query().Get("resource_type_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeInvalid(w, "invalid resource_type_id")
			return
		}
		filter.ResourceTypeID = &id
	}
	items, err := h.catalog.ListMappings(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	// ?complete=false surfaces mappings that cannot be enabled yet.
	if s := r.URL.Query().Get("complete"); s != "" {
		if s != "true" && s != "false" {
			writeInvalid(w, "invalid complete")
			return
		}
		want := s == "true"
		filtered := make([]services.MappingDetail, 0, len(items))
		for _, m := range items {
			if m.IsComplete == want {
				filtered = append(filtered, m)
			}
		}
		items = filtered
	}
	writeData(w, http.StatusOK, items)
}

// GetSchema resolves the property schemas for a (resource type, cloud
// provider) pair, the lookup stack builders use before filling in
// configuration values.
func (h *MappingsHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	rtID, ok := pathID(w, r, "resourceTypeID")
	if !ok {
		return
	}
	cpID, ok := pathID(w, r, "cloudProviderID")
	if !ok {
		return
	}
	items, err := h.catalog.ListMappings(r.Context(), services.MappingFilter{
		ResourceTypeID:  &rtID,
		CloudProviderID: &cpID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if len(items) == 0 {
		writeError(w, appErr.New(appErr.CodeNotFound, "no mapping for resource type and cloud provider"))
		return
	}
	writeData(w, http.StatusOK, items[0].Properties)
}

func (h *MappingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.catalog.GetMapping(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, m)
}

func (h *MappingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.MappingCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rtID, _ := uuid.Parse(req.ResourceTypeID)
	cpID, _ := uuid.Parse(req.CloudProviderID)
	m, err := h.catalog.CreateMapping(r.Context(), actorEmail(r), &services.MappingInput{
		ResourceTypeID:  rtID,
		CloudProviderID: cpID,
		ModuleLocation:  req.ModuleLocation,
		LocationType:    models.ModuleLocationType(req.LocationType),
		ModuleVersion:   req.ModuleVersion,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, m)
}

func (h *MappingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.MappingUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	m, err := h.catalog.UpdateMapping(r.Context(), actorEmail(r), id, &services.MappingUpdate{
		ModuleLocation: req.ModuleLocation,
		LocationType:   models.ModuleLocationType(req.LocationType),
		ModuleVersion:  req.ModuleVersion,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, m)
}

func (h *MappingsHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.ToggleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	m, err := h.catalog.SetMappingEnabled(r.Context(), actorEmail(r), id, req.Enabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, m)
}

func (h *MappingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteMapping(r.Context(), actorEmail(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MappingsHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items, err := h.catalog.ListProperties(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *MappingsHandler) AddProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.PropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.catalog.AddProperty(r.Context(), actorEmail(r), id, propertyInput(&req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *MappingsHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "propertyID")
	if !ok {
		return
	}
	var req types.PropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.catalog.UpdateProperty(r.Context(), actorEmail(r), id, propertyInput(&req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *MappingsHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "propertyID")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProperty(r.Context(), actorEmail(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func propertyInput(req *types.PropertyRequest) *services.PropertyInput {
	return &services.PropertyInput{
		Name:         req.Name,
		DataType:     models.PropertyDataType(req.DataType),
		Required:     req.Required,
		DefaultValue: req.DefaultValue,
		Description:  req.Description,
		Rules:        req.Rules,
	}
}
