package handlers

import (
	"net/http"

	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/services"
)

type APIKeysHandler struct {
	keys services.APIKeyService
}

func NewAPIKeysHandler(keys services.APIKeyService) *APIKeysHandler {
	return &APIKeysHandler{keys: keys}
}

// List returns the caller's keys; admins may pass all=true for every key.
func (h *APIKeysHandler) List(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	if r.URL.Query().Get("all") == "true" && a.Admin {
		items, err := h.keys.ListAll(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, items)
		return
	}
	items, err := h.keys.ListMine(r.Context(), a)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *APIKeysHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	key, err := h.keys.Get(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, key)
}

// Create issues a key. The plaintext appears in this response only.
func (h *APIKeysHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.APIKeyCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	gen, err := h.keys.Generate(r.Context(), actor(r), &services.APIKeyInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        models.APIKeyType(req.Type),
		OwnerEmail:  req.OwnerEmail,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, gen)
}

func (h *APIKeysHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.APIKeyRenameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	key, err := h.keys.Rename(r.Context(), actor(r), id, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, key)
}

func (h *APIKeysHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	gen, err := h.keys.Rotate(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, gen)
}

func (h *APIKeysHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.keys.Revoke(r.Context(), actor(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
