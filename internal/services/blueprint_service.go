package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// Resource type names some stack types cannot ship without.
const (
	resourceContainerOrchestrator = "Managed Container Orchestrator"
	resourceStorage               = "Storage"
)

// BlueprintService manages blueprints and their attached shared resources.
type BlueprintService interface {
	Create(ctx context.Context, actor string, in *BlueprintInput) (*BlueprintDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*BlueprintDetail, error)
	List(ctx context.Context, filter BlueprintFilter) ([]models.Blueprint, error)
	Update(ctx context.Context, actor string, id uuid.UUID, in *BlueprintUpdate) (*BlueprintDetail, error)
	SetEnabled(ctx context.Context, actor string, id uuid.UUID, enabled bool) (*models.Blueprint, error)
	Delete(ctx context.Context, actor string, id uuid.UUID) error

	AddResource(ctx context.Context, actor string, blueprintID uuid.UUID, in *BlueprintResourceInput) (*models.BlueprintResource, error)
	RemoveResource(ctx context.Context, actor string, blueprintID, resourceID uuid.UUID) error
}

type BlueprintInput struct {
	Name            string
	Description     string
	StackType       models.StackType
	CloudProviderID uuid.UUID
	Resources       []BlueprintResourceInput
}

type BlueprintUpdate struct {
	Name        string
	Description string
}

type BlueprintFilter struct {
	CloudProviderID *uuid.UUID
	StackType       *models.StackType
}

type BlueprintResourceInput struct {
	MappingID     uuid.UUID
	Name          string
	Configuration map[string]any
}

type BlueprintDetail struct {
	models.Blueprint
	Resources []models.BlueprintResource `json:"resources"`
}

type blueprintService struct {
	repos   *repository.Registry
	auditor *Auditor
}

func NewBlueprintService(repos *repository.Registry, auditor *Auditor) BlueprintService {
	return &blueprintService{repos: repos, auditor: auditor}
}

var _ BlueprintService = (*blueprintService)(nil)

func (s *blueprintService) Create(ctx context.Context, actor string, in *BlueprintInput) (*BlueprintDetail, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, appErr.New(appErr.CodeInvalid, "blueprint name is required")
	}
	if !in.StackType.Valid() {
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown stack type %q", in.StackType)
	}
	provider, err := s.repos.CloudProviders.GetByID(ctx, in.CloudProviderID)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "cloud provider does not exist")
	}
	if !provider.Enabled {
		return nil, appErr.Newf(appErr.CodeInvalid, "cloud provider %q is disabled", provider.Name)
	}
	if _, err := s.repos.Blueprints.GetByName(ctx, name); err == nil {
		return nil, appErr.Newf(appErr.CodeAlreadyExists, "blueprint %q already exists", name)
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	bp := &models.Blueprint{
		Name:            name,
		Description:     in.Description,
		StackType:       in.StackType,
		CloudProviderID: in.CloudProviderID,
		Enabled:         true,
		CreatedBy:       actor,
	}

	resources := make([]*models.BlueprintResource, 0, len(in.Resources))
	seenTypes := map[string]bool{}
	for i := range in.Resources {
		br, typeName, err := s.buildResource(ctx, bp, &in.Resources[i])
		if err != nil {
			return nil, err
		}
		resources = append(resources, br)
		seenTypes[typeName] = true
	}

	if err := requiredResourcesPresent(in.StackType, seenTypes); err != nil {
		return nil, err
	}

	if err := s.repos.Blueprints.Create(ctx, bp); err != nil {
		return nil, err
	}
	saved := make([]models.BlueprintResource, 0, len(resources))
	for _, br := range resources {
		br.BlueprintID = bp.ID
		if err := s.repos.BlueprintResources.Create(ctx, br); err != nil {
			return nil, err
		}
		saved = append(saved, *br)
	}

	s.auditor.Record(ctx, actor, "create", "Blueprint", bp.ID.String(), map[string]any{"name": bp.Name})
	return &BlueprintDetail{Blueprint: *bp, Resources: saved}, nil
}

func (s *blueprintService) Get(ctx context.Context, id uuid.UUID) (*BlueprintDetail, error) {
	bp, err := s.repos.Blueprints.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resources, err := s.repos.BlueprintResources.ListByBlueprint(ctx, id)
	if err != nil {
		return nil, err
	}
	if resources == nil {
		resources = []models.BlueprintResource{}
	}
	return &BlueprintDetail{Blueprint: *bp, Resources: resources}, nil
}

func (s *blueprintService) List(ctx context.Context, filter BlueprintFilter) ([]models.Blueprint, error) {
	switch {
	case filter.CloudProviderID != nil:
		return s.repos.Blueprints.ListByProvider(ctx, *filter.CloudProviderID)
	case filter.StackType != nil:
		return s.repos.Blueprints.ListByStackType(ctx, *filter.StackType)
	default:
		return s.repos.Blueprints.List(ctx)
	}
}

func (s *blueprintService) Update(ctx context.Context, actor string, id uuid.UUID, in *BlueprintUpdate) (*BlueprintDetail, error) {
	bp, err := s.repos.Blueprints.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != bp.Name {
		if _, err := s.repos.Blueprints.GetByName(ctx, name); err == nil {
			return nil, appErr.Newf(appErr.CodeAlreadyExists, "blueprint %q already exists", name)
		} else if !appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, err
		}
		bp.Name = name
	}
	bp.Description = in.Description
	if err := s.repos.Blueprints.Update(ctx, bp); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "update", "Blueprint", bp.ID.String(), map[string]any{"name": bp.Name})
	return s.Get(ctx, id)
}

func (s *blueprintService) SetEnabled(ctx context.Context, actor string, id uuid.UUID, enabled bool) (*models.Blueprint, error) {
	bp, err := s.repos.Blueprints.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bp.Enabled = enabled
	if err := s.repos.Blueprints.Update(ctx, bp); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, toggleAction(enabled), "Blueprint", bp.ID.String(), nil)
	return bp, nil
}

func (s *blueprintService) Delete(ctx context.Context, actor string, id uuid.UUID) error {
	if _, err := s.repos.Blueprints.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.repos.Stacks.CountByBlueprint(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return appErr.New(appErr.CodeConflict, "blueprint is still used by stacks")
	}
	if err := s.repos.BlueprintResources.DeleteByBlueprint(ctx, id); err != nil {
		return err
	}
	if err := s.repos.Blueprints.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor, "delete", "Blueprint", id.String(), nil)
	return nil
}

func (s *blueprintService) AddResource(ctx context.Context, actor string, blueprintID uuid.UUID, in *BlueprintResourceInput) (*models.BlueprintResource, error) {
	bp, err := s.repos.Blueprints.GetByID(ctx, blueprintID)
	if err != nil {
		return nil, err
	}
	br, _, err := s.buildResource(ctx, bp, in)
	if err != nil {
		return nil, err
	}
	br.BlueprintID = bp.ID
	if err := s.repos.BlueprintResources.Create(ctx, br); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "BlueprintResource", br.ID.String(), nil)
	return br, nil
}

func (s *blueprintService) RemoveResource(ctx context.Context, actor string, blueprintID, resourceID uuid.UUID) error {
	br, err := s.repos.BlueprintResources.GetByID(ctx, resourceID)
	if err != nil {
		return err
	}
	if br.BlueprintID != blueprintID {
		return appErr.New(appErr.CodeNotFound, "blueprint resource not found")
	}

	bp, err := s.repos.Blueprints.GetByID(ctx, blueprintID)
	if err != nil {
		return err
	}
	remaining, err := s.repos.BlueprintResources.ListByBlueprint(ctx, blueprintID)
	if err != nil {
		return err
	}
	seenTypes := map[string]bool{}
	for _, other := range remaining {
		if other.ID == resourceID {
			continue
		}
		m, err := s.repos.Mappings.GetByID(ctx, other.MappingID)
		if err != nil {
			return err
		}
		rt, err := s.repos.ResourceTypes.GetByID(ctx, m.ResourceTypeID)
		if err != nil {
			return err
		}
		seenTypes[rt.Name] = true
	}
	if err := requiredResourcesPresent(bp.StackType, seenTypes); err != nil {
		return appErr.Wrap(err, appErr.CodeConflict, "removing this resource would leave the blueprint incomplete")
	}

	if err := s.repos.BlueprintResources.Delete(ctx, resourceID); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor, "delete", "BlueprintResource", resourceID.String(), nil)
	return nil
}

// buildResource validates one attachment: the mapping must belong to the
// blueprint's provider, be enabled (hence complete), and its resource type
// must allow blueprint usage. The configuration is validated against the
// mapping's property schemas.
func (s *blueprintService) buildResource(ctx context.Context, bp *models.Blueprint, in *BlueprintResourceInput) (*models.BlueprintResource, string, error) {
	m, err := s.repos.Mappings.GetByID(ctx, in.MappingID)
	if err != nil {
		return nil, "", appErr.Wrap(err, appErr.CodeInvalid, "resource mapping does not exist")
	}
	if m.CloudProviderID != bp.CloudProviderID {
		return nil, "", appErr.New(appErr.CodeInvalid, "resource mapping belongs to a different cloud provider")
	}
	if !m.Enabled {
		return nil, "", appErr.New(appErr.CodeInvalid, "resource mapping is disabled")
	}

	rt, err := s.repos.ResourceTypes.GetByID(ctx, m.ResourceTypeID)
	if err != nil {
		return nil, "", err
	}
	if !rt.Enabled {
		return nil, "", appErr.Newf(appErr.CodeInvalid, "resource type %q is disabled", rt.Name)
	}
	if !rt.UsableInBlueprints() {
		return nil, "", appErr.Newf(appErr.CodeInvalid, "resource type %q cannot be used in blueprints", rt.Name)
	}

	schemas, err := s.repos.Properties.ListByMapping(ctx, m.ID)
	if err != nil {
		return nil, "", err
	}
	config := in.Configuration
	if config == nil {
		config = map[string]any{}
	}
	if err := ValidateProperties(schemas, config); err != nil {
		return nil, "", err
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return nil, "", appErr.Wrap(err, appErr.CodeInvalid, "invalid resource configuration")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = rt.Name
	}
	return &models.BlueprintResource{
		MappingID:     m.ID,
		Name:          name,
		Configuration: datatypes.JSON(raw),
	}, rt.Name, nil
}

// requiredResourcesPresent enforces the per-stack-type mandatory resources:
// API stack types need a container orchestrator, web applications need
// storage for their static assets.
func requiredResourcesPresent(t models.StackType, typeNames map[string]bool) error {
	switch t {
	case models.StackTypeRestfulAPI, models.StackTypeEventDrivenAPI:
		if !typeNames[resourceContainerOrchestrator] {
			return appErr.Newf(appErr.CodeInvalid, "stack type %s requires a %q resource", t, resourceContainerOrchestrator)
		}
	case models.StackTypeJavascriptWebApp:
		if !typeNames[resourceStorage] {
			return appErr.Newf(appErr.CodeInvalid, "stack type %s requires a %q resource", t, resourceStorage)
		}
	}
	return nil
}
