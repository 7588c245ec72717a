package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/services"
)

type StacksHandler struct {
	stacks services.StackService
}

func NewStacksHandler(stacks services.StackService) *StacksHandler {
	return &StacksHandler{stacks: stacks}
}

func (h *StacksHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter services.StackFilter
	q := r.URL.Query()
	if q.Get("mine") == "true" {
		filter.Owner = actorEmail(r)
	} else if s := q.Get("owner"); s != "" {
		filter.Owner = s
	}
	if s := q.Get("stack_type"); s != "" {
		t := models.StackType(s)
		if !t.Valid() {
			writeInvalid(w, "invalid stack_type")
			return
		}
		filter.StackType = t
	}
	if s := q.Get("team_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeInvalid(w, "invalid team_id")
			return
		}
		filter.TeamID = &id
	}
	if s := q.Get("domain_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeInvalid(w, "invalid domain_id")
			return
		}
		filter.DomainID = &id
	}
	if s := q.Get("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeInvalid(w, "invalid category_id")
			return
		}
		filter.CategoryID = &id
	}
	if s := q.Get("collection_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeInvalid(w, "invalid collection_id")
			return
		}
		filter.CollectionID = &id
	}
	items, err := h.stacks.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *StacksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	st, err := h.stacks.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, st)
}

func (h *StacksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.StackCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	blueprintID, _ := uuid.Parse(req.BlueprintID)
	in := &services.StackInput{
		Name:        req.Name,
		CloudName:   req.CloudName,
		Description: req.Description,
		StackType:   models.StackType(req.StackType),
		Language:    models.ProgrammingLanguage(req.Language),
		BlueprintID: blueprintID,
		Public:      req.Public,
		RoutePath:   req.RoutePath,
	}
	var ok bool
	if in.TeamID, ok = optionalID(w, req.TeamID, "team_id"); !ok {
		return
	}
	if in.DomainID, ok = optionalID(w, req.DomainID, "domain_id"); !ok {
		return
	}
	if in.CategoryID, ok = optionalID(w, req.CategoryID, "category_id"); !ok {
		return
	}
	if in.CollectionID, ok = optionalID(w, req.CollectionID, "collection_id"); !ok {
		return
	}
	for i := range req.Resources {
		res, ok := stackResourceInput(w, &req.Resources[i])
		if !ok {
			return
		}
		in.Resources = append(in.Resources, *res)
	}

	st, err := h.stacks.Create(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, st)
}

func (h *StacksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.StackUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in := &services.StackUpdate{
		Name:        req.Name,
		Description: req.Description,
		Language:    models.ProgrammingLanguage(req.Language),
		Public:      req.Public,
		RoutePath:   req.RoutePath,
	}
	if in.TeamID, ok = optionalID(w, req.TeamID, "team_id"); !ok {
		return
	}
	if in.DomainID, ok = optionalID(w, req.DomainID, "domain_id"); !ok {
		return
	}
	if in.CategoryID, ok = optionalID(w, req.CategoryID, "category_id"); !ok {
		return
	}
	if in.CollectionID, ok = optionalID(w, req.CollectionID, "collection_id"); !ok {
		return
	}

	st, err := h.stacks.Update(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, st)
}

func (h *StacksHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.ToggleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	st, err := h.stacks.SetEnabled(r.Context(), actor(r), id, req.Enabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, st)
}

func (h *StacksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.stacks.Delete(r.Context(), actor(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StacksHandler) AddResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.StackResourceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in, ok := stackResourceInput(w, &req)
	if !ok {
		return
	}
	sr, err := h.stacks.AddResource(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, sr)
}

func (h *StacksHandler) RemoveResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	resourceID, ok := pathID(w, r, "resourceID")
	if !ok {
		return
	}
	if err := h.stacks.RemoveResource(r.Context(), actor(r), id, resourceID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestProvisioning enqueues asynchronous metadata generation.
func (h *StacksHandler) RequestProvisioning(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.stacks.RequestProvisioning(r.Context(), actor(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *StacksHandler) GetProvisioning(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.stacks.GetProvisioning(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

func stackResourceInput(w http.ResponseWriter, req *types.StackResourceRequest) (*services.StackResourceInput, bool) {
	mappingID, err := uuid.Parse(req.MappingID)
	if err != nil {
		writeInvalid(w, "invalid mapping_id")
		return nil, false
	}
	return &services.StackResourceInput{
		MappingID:     mappingID,
		Name:          req.Name,
		Configuration: req.Configuration,
	}, true
}
