package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// NamedInput covers the taxonomy entities, which share a name/description shape.
type NamedInput struct {
	Name        string
	Description string
	// OwnerEmail only applies to teams.
	OwnerEmail string
}

// TaxonomyService manages the grouping entities stacks are filed under:
// teams, domains, categories, and stack collections.
type TaxonomyService interface {
	CreateTeam(ctx context.Context, actor string, in *NamedInput) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	UpdateTeam(ctx context.Context, actor string, id uuid.UUID, in *NamedInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, actor string, id uuid.UUID) error

	CreateDomain(ctx context.Context, actor string, in *NamedInput) (*models.Domain, error)
	GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error)
	ListDomains(ctx context.Context) ([]models.Domain, error)
	UpdateDomain(ctx context.Context, actor string, id uuid.UUID, in *NamedInput) (*models.Domain, error)
	DeleteDomain(ctx context.Context, actor string, id uuid.UUID) error

	CreateCategory(ctx context.Context, actor string, in *NamedInput) (*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, actor string, id uuid.UUID, in *NamedInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, actor string, id uuid.UUID) error

	CreateCollection(ctx context.Context, actor string, in *NamedInput) (*models.StackCollection, error)
	GetCollection(ctx context.Context, id uuid.UUID) (*models.StackCollection, error)
	ListCollections(ctx context.Context) ([]models.StackCollection, error)
	UpdateCollection(ctx context.Context, actor string, id uuid.UUID, in *NamedInput) (*models.StackCollection, error)
	DeleteCollection(ctx context.Context, actor string, id uuid.UUID) error
}

type taxonomyService struct {
	repos   *repository.Registry
	auditor *Auditor
}

func NewTaxonomyService(repos *repository.Registry, auditor *Auditor) TaxonomyService {
	return &taxonomyService{repos: repos, auditor: auditor}
}

var _ TaxonomyService = (*taxonomyService)(nil)

func requireName(in *NamedInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", appErr.New(appErr.CodeInvalid, "name is required")
	}
	return name, nil
}

// checkNameFree fails with already_exists if another entity holds the name.
func checkNameFree[T any](ctx context.Context, getByName func(context.Context, string) (*T, error), name string) error {
	if _, err := getByName(ctx, name); err == nil {
		return appErr.Newf(appErr.CodeAlreadyExists, "%q is already taken", name)
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return err
	}
	return nil
}

func (s *taxonomyService) CreateTeam(ctx context.Context, actor string, in *NamedInput) (*models.Team, error) {
	name, err := requireName(in)
	if err != nil {
		return nil, err
	}
	if err := checkNameFree(ctx, s.repos.Teams.GetByName, name); err != nil {
		return nil, err
	}
	t := &models.Team{Name: name, Description: in.Description, OwnerEmail: in.OwnerEmail, CreatedBy: actor}
	if err := s.repos.Teams.Create(ctx, t); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "Team", t.ID.String(), map[string]any{"name": t.Name})
	return t, nil
}

func (s *taxonomyService) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	return s.repos.Teams.GetByID(ctx, id)
}

func (s *taxonomyService) ListTeams(ctx context.Context) ([]models.Team, error) {
	return s.repos.Teams.List(ctx)
}

func (s *taxonomyService) UpdateTeam(ctx context.Context, actor string, id uuid.UUID, in *NamedInput) (*models.Team, error) {
	t, err := s.repos.Teams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != t.Name {
		if err := checkNameFree(ctx, s.repos.Teams.GetByName, name); err != nil {
			return nil, err
		}
		t.Name = name
	}
	t.Description = in.Description
	if in.OwnerEmail != "" {
		t.OwnerEmail = in.OwnerEmail
	}
	if err := s.repos.Teams.Update(ctx, t); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "update", "Team", t.ID.String(), map[string]any{"name": t.Name})
	return t, nil
}

func (s *taxonomyService) DeleteTeam(ctx context.Context, actor string, id uuid.UUID) error {
	stacks, err := s.repos.Stacks.ListByTeam(ctx, id)
	if err != nil {
		return err
	}
	if len(stacks) > 0 {
		return appErr.New(appErr.CodeConflict, "team still owns stacks")
	}
	if err := s.repos.Teams.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor, "delete", "Team", id.String(), nil)
	return nil
}

func (s *taxonomyService) CreateDomain(ctx context.Context, actor string, in *NamedInput) (*models.Domain, error) {
	name, err := requireName(in)
	if err != nil {
		return nil, err
	}
	if err := checkNameFree(ctx, s.repos.Domains.GetByName, name); err != nil {
		return nil, err
	}
	d := &models.Domain{Name: name, Description: in.Description, CreatedBy: actor}
	if err := s.repos.Domains.Create(ctx, d); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "Domain", d.ID.String(), map[string]any{"name": d.Name})
	return d, nil
}

func (s *taxonomyService) GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	return s.repos.Domains.GetByID(ctx, id)
}

func (s *taxonomyService) ListDomains(ctx context.Context) ([]models.Domain, error) {
	return s.repos.Domains.List(ctx)
}

func (s *taxonomyService) UpdateDomain(ctx context.Context, actor string, id uuid.UUID, in *NamedInput) (*models.Domain, error) {
	d, err := s.repos.Domains.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != d.Name {
		if err := checkNameFree(ctx, s.repos.Domains.GetByName, name); err != nil {
			return nil, err
		}
		d.Name = name
	}
	d.Description = in.Description
	if err := s.repos.Domains.Update(ctx, d); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "update", "Domain", d.ID.String(), map[string]any{"name": d.Name})
	return d, nil
}

func (s *taxonomyService) DeleteDomain(ctx context.Context, actor string, id uuid.UUID) error {
	if err := s.repos.Domains.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor, "delete", "Domain", id.String(), nil)
	return nil
}

func (s *taxonomyService) CreateCategory(ctx context.Context, actor string, in *NamedInput) (*models.Category, error) {
	name, err := requireName(in)
	if err != nil {
		return nil, err
	}
	if err := checkNameFree(ctx, s.repos.Categories.GetByName, name); err != nil {
		return nil, err
	}
	c := &models.Category{Name: name, Description: in.Description, CreatedBy: actor}
	if err := s.repos.Categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "Category", c.ID.String(), map[string]any{"name": c.Name})
	return c, nil
}

func (s *taxonomyService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.repos.Categories.GetByID(ctx, id)
}

func (s *taxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repos.Categories.List(ctx)
}

func (s *taxonomyService) UpdateCategory(ctx context.Context, actor string, id uuid.UUID, in *NamedInput) (*models.Category, error) {
	c, err := s.repos.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != c.Name {
		if err := checkNameFree(ctx, s.repos.Categories.GetByName, name); err != nil {
			return nil, err
		}
		c.Name = name
	}
	c.Description = in.Description
	if err := s.repos.Categories.Update(ctx, c); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "update", "Category", c.ID.String(), map[string]any{"name": c.Name})
	return c, nil
}

func (s *taxonomyService) DeleteCategory(ctx context.Context, actor string, id uuid.UUID) error {
	if err := s.repos.Categories.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor, "delete", "Category", id.String(), nil)
	return nil
}

func (s *taxonomyService) CreateCollection(ctx context.Context, actor string, in *NamedInput) (*models.StackCollection, error) {
	name, err := requireName(in)
	if err != nil {
		return nil, err
	}
	if err := checkNameFree(ctx, s.repos.Collections.GetByName, name); err != nil {
		return nil, err
	}
	c := &models.StackCollection{Name: name, Description: in.Description, CreatedBy: actor}
	if err := s.repos.Collections.Create(ctx, c); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "StackCollection", c.ID.String(), map[string]any{"name": c.Name})
	return c, nil
}

func (s *taxonomyService) GetCollection(ctx context.Context, id uuid.UUID) (*models.StackCollection, error) {
	return s.repos.Collections.GetByID(ctx, id)
}

func (s *taxonomyService) ListCollections(ctx context.Context) ([]models.StackCollection, error) {
	return s.repos.Collections.List(ctx)
}

func (s *taxonomyService) UpdateCollection(ctx context.Context, actor string, id uuid.UUID, in *NamedInput) (*models.StackCollection, error) {
	c, err := s.repos.Collections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != c.Name {
		if err := checkNameFree(ctx, s.repos.Collections.GetByName, name); err != nil {
			return nil, err
		}
		c.Name = name
	}
	c.Description = in.Description
	if err := s.repos.Collections.Update(ctx, c); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "update", "StackCollection", c.ID.String(), map[string]any{"name": c.Name})
	return c, nil
}

func (s *taxonomyService) DeleteCollection(ctx context.Context, actor string, id uuid.UUID) error {
	stacks, err := s.repos.Stacks.ListByCollection(ctx, id)
	if err != nil {
		return err
	}
	if len(stacks) > 0 {
		return appErr.New(appErr.CodeConflict, "collection still contains stacks")
	}
	if err := s.repos.Collections.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor, "delete", "StackCollection", id.String(), nil)
	return nil
}
