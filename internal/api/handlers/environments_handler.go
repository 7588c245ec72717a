package handlers

import (
	"net/http"

	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/services"
)

type EnvironmentsHandler struct {
	environments services.EnvironmentService
}

func NewEnvironmentsHandler(environments services.EnvironmentService) *EnvironmentsHandler {
	return &EnvironmentsHandler{environments: environments}
}

func (h *EnvironmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.environments.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *EnvironmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	env, err := h.environments.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, env)
}

func (h *EnvironmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.EnvironmentCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	env, err := h.environments.Create(r.Context(), actorEmail(r), &services.EnvironmentInput{
		Name:        models.EnvironmentName(req.Name),
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, env)
}

func (h *EnvironmentsHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.ToggleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	env, err := h.environments.SetEnabled(r.Context(), actorEmail(r), id, req.Enabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, env)
}

func (h *EnvironmentsHandler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items, err := h.environments.ListConfigs(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *EnvironmentsHandler) SetConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.EnvironmentConfigRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in := &services.EnvironmentConfigInput{Key: req.Key, Value: req.Value}
	if in.CloudProviderID, ok = optionalID(w, req.CloudProviderID, "cloud_provider_id"); !ok {
		return
	}
	cfg, err := h.environments.SetConfig(r.Context(), actorEmail(r), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, cfg)
}

func (h *EnvironmentsHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	configID, ok := pathID(w, r, "configID")
	if !ok {
		return
	}
	if err := h.environments.DeleteConfig(r.Context(), actorEmail(r), id, configID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
