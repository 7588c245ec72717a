package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/services"
)

// TaxonomyHandler serves teams, domains, categories, and stack collections.
// The four entities share the same request shape, so the handlers are thin
// wrappers over a common helper.
type TaxonomyHandler struct {
	taxonomy services.TaxonomyService
}

func NewTaxonomyHandler(taxonomy services.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy}
}

type namedOps[T any] struct {
	create func(*services.NamedInput) (*T, error)
	get    func(uuid.UUID) (*T, error)
	list   func() ([]T, error)
	update func(uuid.UUID, *services.NamedInput) (*T, error)
	delete func(uuid.UUID) error
}

func listNamed[T any](w http.ResponseWriter, ops namedOps[T]) {
	items, err := ops.list()
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func getNamed[T any](w http.ResponseWriter, r *http.Request, ops namedOps[T]) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	item, err := ops.get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func createNamed[T any](w http.ResponseWriter, r *http.Request, ops namedOps[T]) {
	var req types.NamedRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := ops.create(&services.NamedInput{Name: req.Name, Description: req.Description, OwnerEmail: req.OwnerEmail})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, item)
}

func updateNamed[T any](w http.ResponseWriter, r *http.Request, ops namedOps[T]) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.NamedRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := ops.update(id, &services.NamedInput{Name: req.Name, Description: req.Description, OwnerEmail: req.OwnerEmail})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func deleteNamed[T any](w http.ResponseWriter, r *http.Request, ops namedOps[T]) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := ops.delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaxonomyHandler) teamOps(r *http.Request) namedOps[models.Team] {
	ctx, who := r.Context(), actorEmail(r)
	return namedOps[models.Team]{
		create: func(in *services.NamedInput) (*models.Team, error) { return h.taxonomy.CreateTeam(ctx, who, in) },
		get:    func(id uuid.UUID) (*models.Team, error) { return h.taxonomy.GetTeam(ctx, id) },
		list:   func() ([]models.Team, error) { return h.taxonomy.ListTeams(ctx) },
		update: func(id uuid.UUID, in *services.NamedInput) (*models.Team, error) {
			return h.taxonomy.UpdateTeam(ctx, who, id, in)
		},
		delete: func(id uuid.UUID) error { return h.taxonomy.DeleteTeam(ctx, who, id) },
	}
}

func (h *TaxonomyHandler) domainOps(r *http.Request) namedOps[models.Domain] {
	ctx, who := r.Context(), actorEmail(r)
	return namedOps[models.Domain]{
		create: func(in *services.NamedInput) (*models.Domain, error) { return h.taxonomy.CreateDomain(ctx, who, in) },
		get:    func(id uuid.UUID) (*models.Domain, error) { return h.taxonomy.GetDomain(ctx, id) },
		list:   func() ([]models.Domain, error) { return h.taxonomy.ListDomains(ctx) },
		update: func(id uuid.UUID, in *services.NamedInput) (*models.Domain, error) {
			return h.taxonomy.UpdateDomain(ctx, who, id, in)
		},
		delete: func(id uuid.UUID) error { return h.taxonomy.DeleteDomain(ctx, who, id) },
	}
}

func (h *TaxonomyHandler) categoryOps(r *http.Request) namedOps[models.Category] {
	ctx, who := r.Context(), actorEmail(r)
	return namedOps[models.Category]{
		create: func(in *services.NamedInput) (*models.Category, error) {
			return h.taxonomy.CreateCategory(ctx, who, in)
		},
		get:  func(id uuid.UUID) (*models.Category, error) { return h.taxonomy.GetCategory(ctx, id) },
		list: func() ([]models.Category, error) { return h.taxonomy.ListCategories(ctx) },
		update: func(id uuid.UUID, in *services.NamedInput) (*models.Category, error) {
			return h.taxonomy.UpdateCategory(ctx, who, id, in)
		},
		delete: func(id uuid.UUID) error { return h.taxonomy.DeleteCategory(ctx, who, id) },
	}
}

func (h *TaxonomyHandler) collectionOps(r *http.Request) namedOps[models.StackCollection] {
	ctx, who := r.Context(), actorEmail(r)
	return namedOps[models.StackCollection]{
		create: func(in *services.NamedInput) (*models.StackCollection, error) {
			return h.taxonomy.CreateCollection(ctx, who, in)
		},
		get:  func(id uuid.UUID) (*models.StackCollection, error) { return h.taxonomy.GetCollection(ctx, id) },
		list: func() ([]models.StackCollection, error) { return h.taxonomy.ListCollections(ctx) },
		update: func(id uuid.UUID, in *services.NamedInput) (*models.StackCollection, error) {
			return h.taxonomy.UpdateCollection(ctx, who, id, in)
		},
		delete: func(id uuid.UUID) error { return h.taxonomy.DeleteCollection(ctx, who, id) },
	}
}

func (h *TaxonomyHandler) ListTeams(w http.ResponseWriter, r *http.Request) { listNamed(w, h.teamOps(r)) }
func (h *TaxonomyHandler) GetTeam(w http.ResponseWriter, r *http.Request)  { getNamed(w, r, h.teamOps(r)) }
func (h *TaxonomyHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	createNamed(w, r, h.teamOps(r))
}
func (h *TaxonomyHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	updateNamed(w, r, h.teamOps(r))
}
func (h *TaxonomyHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	deleteNamed(w, r, h.teamOps(r))
}

func (h *TaxonomyHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	listNamed(w, h.domainOps(r))
}
func (h *TaxonomyHandler) GetDomain(w http.ResponseWriter, r *http.Request) {
	getNamed(w, r, h.domainOps(r))
}
func (h *TaxonomyHandler) CreateDomain(w http.ResponseWriter, r *http.Request) {
	createNamed(w, r, h.domainOps(r))
}
func (h *TaxonomyHandler) UpdateDomain(w http.ResponseWriter, r *http.Request) {
	updateNamed(w, r, h.domainOps(r))
}
func (h *TaxonomyHandler) DeleteDomain(w http.ResponseWriter, r *http.Request) {
	deleteNamed(w, r, h.domainOps(r))
}

func (h *TaxonomyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	listNamed(w, h.categoryOps(r))
}
func (h *TaxonomyHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	getNamed(w, r, h.categoryOps(r))
}
func (h *TaxonomyHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	createNamed(w, r, h.categoryOps(r))
}
func (h *TaxonomyHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	updateNamed(w, r, h.categoryOps(r))
}
func (h *TaxonomyHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	deleteNamed(w, r, h.categoryOps(r))
}

func (h *TaxonomyHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	listNamed(w, h.collectionOps(r))
}
func (h *TaxonomyHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	getNamed(w, r, h.collectionOps(r))
}
func (h *TaxonomyHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	createNamed(w, r, h.collectionOps(r))
}
func (h *TaxonomyHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	updateNamed(w, r, h.collectionOps(r))
}
func (h *TaxonomyHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	deleteNamed(w, r, h.collectionOps(r))
}
