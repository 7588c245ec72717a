package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
	"github.com/angryss/idp-engine/pkg/logger"
)

// CatalogService manages the provisioning catalog: cloud providers, resource
// types, their per-provider mappings, and the mappings' property schemas.
type CatalogService interface {
	CreateProvider(ctx context.Context, actor string, in *ProviderInput) (*models.CloudProvider, error)
	GetProvider(ctx context.Context, id uuid.UUID) (*models.CloudProvider, error)
	ListProviders(ctx context.Context) ([]models.CloudProvider, error)
	UpdateProvider(ctx context.Context, actor string, id uuid.UUID, in *ProviderInput) (*models.CloudProvider, error)
	SetProviderEnabled(ctx context.Context, actor string, id uuid.UUID, enabled bool) (*models.CloudProvider, error)
	DeleteProvider(ctx context.Context, actor string, id uuid.UUID) error

	CreateResourceType(ctx context.Context, actor string, in *ResourceTypeInput) (*models.ResourceType, error)
	GetResourceType(ctx context.Context, id uuid.UUID) (*models.ResourceType, error)
	ListResourceTypes(ctx context.Context) ([]models.ResourceType, error)
	UpdateResourceType(ctx context.Context, actor string, id uuid.UUID, in *ResourceTypeInput) (*models.ResourceType, error)
	SetResourceTypeEnabled(ctx context.Context, actor string, id uuid.UUID, enabled bool) (*models.ResourceType, error)
	DeleteResourceType(ctx context.Context, actor string, id uuid.UUID) error

	CreateMapping(ctx context.Context, actor string, in *MappingInput) (*MappingDetail, error)
	GetMapping(ctx context.Context, id uuid.UUID) (*MappingDetail, error)
	ListMappings(ctx context.Context, filter MappingFilter) ([]MappingDetail, error)
	UpdateMapping(ctx context.Context, actor string, id uuid.UUID, in *MappingUpdate) (*MappingDetail, error)
	SetMappingEnabled(ctx context.Context, actor string, id uuid.UUID, enabled bool) (*MappingDetail, error)
	DeleteMapping(ctx context.Context, actor string, id uuid.UUID) error

	AddProperty(ctx context.Context, actor string, mappingID uuid.UUID, in *PropertyInput) (*models.PropertySchema, error)
	ListProperties(ctx context.Context, mappingID uuid.UUID) ([]models.PropertySchema, error)
	UpdateProperty(ctx context.Context, actor string, id uuid.UUID, in *PropertyInput) (*models.PropertySchema, error)
	DeleteProperty(ctx context.Context, actor string, id uuid.UUID) error
}

type ProviderInput struct {
	Name        string
	Description string
}

type ResourceTypeInput struct {
	Name        string
	Description string
	Category    models.ResourceCategory
}

type MappingInput struct {
	ResourceTypeID  uuid.UUID
	CloudProviderID uuid.UUID
	ModuleLocation  string
	LocationType    models.ModuleLocationType
	ModuleVersion   string
}

type MappingUpdate struct {
	ModuleLocation string
	LocationType   models.ModuleLocationType
	ModuleVersion  string
}

type MappingFilter struct {
	CloudProviderID *uuid.UUID
	ResourceTypeID  *uuid.UUID
}

type PropertyInput struct {
	Name         string
	DataType     models.PropertyDataType
	Required     bool
	DefaultValue string
	Description  string
	Rules        map[string]any
}

// MappingDetail is a mapping with its property schemas and derived
// completeness flag.
type MappingDetail struct {
	models.ResourceTypeCloudMapping
	Properties []models.PropertySchema `json:"properties"`
	IsComplete bool                    `json:"is_complete"`
}

type catalogService struct {
	repos   *repository.Registry
	auditor *Auditor
}

func NewCatalogService(repos *repository.Registry, auditor *Auditor) CatalogService {
	return &catalogService{repos: repos, auditor: auditor}
}

var _ CatalogService = (*catalogService)(nil)

func (s *catalogService) CreateProvider(ctx context.Context, actor string, in *ProviderInput) (*models.CloudProvider, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, appErr.New(appErr.CodeInvalid, "provider name is required")
	}
	if _, err := s.repos.CloudProviders.GetByName(ctx, name); err == nil {
		return nil, appErr.Newf(appErr.CodeAlreadyExists, "cloud provider %q already exists", name)
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	p := &models.CloudProvider{
		Name:        name,
		Description: in.Description,
		Enabled:     true,
		CreatedBy:   actor,
	}
	if err := s.repos.CloudProviders.Create(ctx, p); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "CloudProvider", p.ID.String(), map[string]any{"name": p.Name})
	return p, nil
}

func (s *catalogService) GetProvider(ctx context.Context, id uuid.UUID) (*models.CloudProvider, error) {
	return s.repos.CloudProviders.GetByID(ctx, id)
}

func (s *catalogService) ListProviders(ctx context.Context) ([]models.CloudProvider, error) {
	return s.repos.CloudProviders.List(ctx)
}

func (s *catalogService) UpdateProvider(ctx context.Context, actor string, id uuid.UUID, in *ProviderInput) (*models.CloudProvider, error) {
	p, err := s.repos.CloudProviders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != p.Name {
		if _, err := s.repos.CloudProviders.GetByName(ctx, name); err == nil {
			return nil, appErr.Newf(appErr.CodeAlreadyExists, "cloud provider %q already exists", name)
		} else if !appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, err
		}
		p.Name = name
	}
	p.Description = in.Description
	if err := s.repos.CloudProviders.Update(ctx, p); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "update", "CloudProvider", p.ID.String(), map[string]any{"name": p.Name})
	return p, nil
}

func (s *catalogService) SetProviderEnabled(ctx context.Context, actor string, id uuid.UUID, enabled bool) (*models.CloudProvider, error) {
	p, err := s.repos.CloudProviders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Enabled = enabled
	if err := s.repos.CloudProviders.Update(ctx, p); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, toggleAction(enabled), "CloudProvider", p.ID.String(), nil)
	return p, nil
}

func (s *catalogService) DeleteProvider(ctx context.Context, actor string, id uuid.UUID) error {
	mappings, err := s.repos.Mappings.ListByProvider(ctx, id)
	if err != nil {
		return err
	}
	if len(mappings) > 0 {
		return appErr.New(appErr.CodeConflict, "cloud provider still has resource type mappings")
	}
	if err := s.repos.CloudProviders.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor, "delete", "CloudProvider", id.String(), nil)
	return nil
}

func (s *catalogService) CreateResourceType(ctx context.Context, actor string, in *ResourceTypeInput) (*models.ResourceType, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, appErr.New(appErr.CodeInvalid, "resource type name is required")
	}
	switch in.Category {
	case models.CategoryShared, models.CategoryNonShared, models.CategoryBoth:
	default:
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown resource category %q", in.Category)
	}
	if _, err := s.repos.ResourceTypes.GetByName(ctx, name); err == nil {
		return nil, appErr.Newf(appErr.CodeAlreadyExists, "resource type %q already exists", name)
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	rt := &models.ResourceType{
		Name:        name,
		Description: in.Description,
		Category:    in.Category,
		Enabled:     true,
		CreatedBy:   actor,
	}
	if err := s.repos.ResourceTypes.Create(ctx, rt); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "ResourceType", rt.ID.String(), map[string]any{"name": rt.Name})
	return rt, nil
}

func (s *catalogService) GetResourceType(ctx context.Context, id uuid.UUID) (*models.ResourceType, error) {
	return s.repos.ResourceTypes.GetByID(ctx, id)
}

func (s *catalogService) ListResourceTypes(ctx context.Context) ([]models.ResourceType, error) {
	return s.repos.ResourceTypes.List(ctx)
}

func (s *catalogService) UpdateResourceType(ctx context.Context, actor string, id uuid.UUID, in *ResourceTypeInput) (*models.ResourceType, error) {
	rt, err := s.repos.ResourceTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != rt.Name {
		if _, err := s.repos.ResourceTypes.GetByName(ctx, name); err == nil {
			return nil, appErr.Newf(appErr.CodeAlreadyExists, "resource type %q already exists", name)
		} else if !appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, err
		}
		rt.Name = name
	}
	if in.Category != "" {
		switch in.Category {
		case models.CategoryShared, models.CategoryNonShared, models.CategoryBoth:
			rt.Category = in.Category
		default:
			return nil, appErr.Newf(appErr.CodeInvalid, "unknown resource category %q", in.Category)
		}
	}
	rt.Description = in.Description
	if err := s.repos.ResourceTypes.Update(ctx, rt); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "update", "ResourceType", rt.ID.String(), map[string]any{"name": rt.Name})
	return rt, nil
}

func (s *catalogService) SetResourceTypeEnabled(ctx context.Context, actor string, id uuid.UUID, enabled bool) (*models.ResourceType, error) {
	rt, err := s.repos.ResourceTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rt.Enabled = enabled
	if err := s.repos.ResourceTypes.Update(ctx, rt); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, toggleAction(enabled), "ResourceType", rt.ID.String(), nil)
	return rt, nil
}

func (s *catalogService) DeleteResourceType(ctx context.Context, actor string, id uuid.UUID) error {
	mappings, err := s.repos.Mappings.ListByResourceType(ctx, id)
	if err != nil {
		return err
	}
	if len(mappings) > 0 {
		return appErr.New(appErr.CodeConflict, "resource type still has cloud mappings")
	}
	if err := s.repos.ResourceTypes.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor, "delete", "ResourceType", id.String(), nil)
	return nil
}

func (s *catalogService) CreateMapping(ctx context.Context, actor string, in *MappingInput) (*MappingDetail, error) {
	if _, err := s.repos.ResourceTypes.GetByID(ctx, in.ResourceTypeID); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "resource type does not exist")
	}
	provider, err := s.repos.CloudProviders.GetByID(ctx, in.CloudProviderID)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "cloud provider does not exist")
	}
	if !provider.Enabled {
		return nil, appErr.Newf(appErr.CodeInvalid, "cloud provider %q is disabled", provider.Name)
	}
	if _, err := s.repos.Mappings.GetByPair(ctx, in.ResourceTypeID, in.CloudProviderID); err == nil {
		return nil, appErr.New(appErr.CodeAlreadyExists, "mapping for this resource type and provider already exists")
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}
	if err := validLocationType(in.LocationType, in.ModuleLocation); err != nil {
		return nil, err
	}

	m := &models.ResourceTypeCloudMapping{
		ResourceTypeID:  in.ResourceTypeID,
		CloudProviderID: in.CloudProviderID,
		ModuleLocation:  strings.TrimSpace(in.ModuleLocation),
		LocationType:    in.LocationType,
		ModuleVersion:   in.ModuleVersion,
		Enabled:         false,
		CreatedBy:       actor,
	}
	if err := s.repos.Mappings.Create(ctx, m); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "ResourceTypeCloudMapping", m.ID.String(), nil)
	return &MappingDetail{ResourceTypeCloudMapping: *m, Properties: []models.PropertySchema{}, IsComplete: false}, nil
}

func (s *catalogService) GetMapping(ctx context.Context, id uuid.UUID) (*MappingDetail, error) {
	m, err := s.repos.Mappings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, m)
}

func (s *catalogService) ListMappings(ctx context.Context, filter MappingFilter) ([]MappingDetail, error) {
	var (
		mappings []models.ResourceTypeCloudMapping
		err      error
	)
	switch {
	case filter.CloudProviderID != nil:
		mappings, err = s.repos.Mappings.ListByProvider(ctx, *filter.CloudProviderID)
	case filter.ResourceTypeID != nil:
		mappings, err = s.repos.Mappings.ListByResourceType(ctx, *filter.ResourceTypeID)
	default:
		mappings, err = s.repos.Mappings.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]MappingDetail, 0, len(mappings))
	for i := range mappings {
		d, err := s.detail(ctx, &mappings[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *catalogService) UpdateMapping(ctx context.Context, actor string, id uuid.UUID, in *MappingUpdate) (*MappingDetail, error) {
	m, err := s.repos.Mappings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validLocationType(in.LocationType, in.ModuleLocation); err != nil {
		return nil, err
	}
	m.ModuleLocation = strings.TrimSpace(in.ModuleLocation)
	m.LocationType = in.LocationType
	m.ModuleVersion = in.ModuleVersion

	// Clearing the module location demotes the mapping; it must not stay
	// enabled while incomplete.
	if m.Enabled && !m.HasModuleLocation() {
		m.Enabled = false
	}
	if err := s.repos.Mappings.Update(ctx, m); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "update", "ResourceTypeCloudMapping", m.ID.String(), nil)
	return s.detail(ctx, m)
}

func (s *catalogService) SetMappingEnabled(ctx context.Context, actor string, id uuid.UUID, enabled bool) (*MappingDetail, error) {
	m, err := s.repos.Mappings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if enabled {
		complete, err := s.isComplete(ctx, m)
		if err != nil {
			return nil, err
		}
		if !complete {
			return nil, appErr.New(appErr.CodeInvalid, "mapping cannot be enabled until it has a module location and at least one property schema")
		}
	}
	m.Enabled = enabled
	if err := s.repos.Mappings.Update(ctx, m); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, toggleAction(enabled), "ResourceTypeCloudMapping", m.ID.String(), nil)
	return s.detail(ctx, m)
}

func (s *catalogService) DeleteMapping(ctx context.Context, actor string, id uuid.UUID) error {
	if _, err := s.repos.Mappings.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repos.Properties.DeleteByMapping(ctx, id); err != nil {
		return err
	}
	if err := s.repos.Mappings.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor, "delete", "ResourceTypeCloudMapping", id.String(), nil)
	return nil
}

func (s *catalogService) AddProperty(ctx context.Context, actor string, mappingID uuid.UUID, in *PropertyInput) (*models.PropertySchema, error) {
	if _, err := s.repos.Mappings.GetByID(ctx, mappingID); err != nil {
		return nil, err
	}
	p, err := buildProperty(mappingID, in)
	if err != nil {
		return nil, err
	}

	existing, err := s.repos.Properties.ListByMapping(ctx, mappingID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.Name == p.Name {
			return nil, appErr.Newf(appErr.CodeAlreadyExists, "property %q already exists on this mapping", p.Name)
		}
	}

	if err := s.repos.Properties.Create(ctx, p); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "PropertySchema", p.ID.String(), map[string]any{"name": p.Name})
	return p, nil
}

func (s *catalogService) ListProperties(ctx context.Context, mappingID uuid.UUID) ([]models.PropertySchema, error) {
	return s.repos.Properties.ListByMapping(ctx, mappingID)
}

func (s *catalogService) UpdateProperty(ctx context.Context, actor string, id uuid.UUID, in *PropertyInput) (*models.PropertySchema, error) {
	p, err := s.repos.Properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := buildProperty(p.MappingID, in)
	if err != nil {
		return nil, err
	}
	updated.ID = p.ID
	updated.CreatedAt = p.CreatedAt
	if err := s.repos.Properties.Update(ctx, updated); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "update", "PropertySchema", p.ID.String(), map[string]any{"name": updated.Name})
	return updated, nil
}

func (s *catalogService) DeleteProperty(ctx context.Context, actor string, id uuid.UUID) error {
	p, err := s.repos.Properties.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Properties.Delete(ctx, id); err != nil {
		return err
	}

	// Removing the last schema makes the mapping incomplete; disable it.
	n, err := s.repos.Properties.CountByMapping(ctx, p.MappingID)
	if err == nil && n == 0 {
		if m, err := s.repos.Mappings.GetByID(ctx, p.MappingID); err == nil && m.Enabled {
			m.Enabled = false
			if err := s.repos.Mappings.Update(ctx, m); err != nil {
				logger.L().Warn("disable incomplete mapping failed", zap.Error(err))
			}
		}
	}

	s.auditor.Record(ctx, actor, "delete", "PropertySchema", id.String(), nil)
	return nil
}

func (s *catalogService) detail(ctx context.Context, m *models.ResourceTypeCloudMapping) (*MappingDetail, error) {
	props, err := s.repos.Properties.ListByMapping(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if props == nil {
		props = []models.PropertySchema{}
	}
	return &MappingDetail{
		ResourceTypeCloudMapping: *m,
		Properties:               props,
		IsComplete:               m.HasModuleLocation() && len(props) > 0,
	}, nil
}

func (s *catalogService) isComplete(ctx context.Context, m *models.ResourceTypeCloudMapping) (bool, error) {
	if !m.HasModuleLocation() {
		return false, nil
	}
	n, err := s.repos.Properties.CountByMapping(ctx, m.ID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func buildProperty(mappingID uuid.UUID, in *PropertyInput) (*models.PropertySchema, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, appErr.New(appErr.CodeInvalid, "property name is required")
	}
	switch in.DataType {
	case models.PropertyString, models.PropertyNumber, models.PropertyBoolean, models.PropertyList:
	default:
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown property data type %q", in.DataType)
	}

	p := &models.PropertySchema{
		MappingID:    mappingID,
		Name:         name,
		DataType:     in.DataType,
		Required:     in.Required,
		DefaultValue: in.DefaultValue,
		Description:  in.Description,
	}
	if in.Rules != nil {
		b, err := json.Marshal(in.Rules)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid validation rules")
		}
		if _, err := parseRules(b); err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid validation rules")
		}
		p.Rules = datatypes.JSON(b)
	}
	return p, nil
}

func validLocationType(t models.ModuleLocationType, location string) error {
	if strings.TrimSpace(location) == "" {
		return nil
	}
	switch t {
	case models.ModuleLocationGit, models.ModuleLocationFileSystem, models.ModuleLocationRegistry:
		return nil
	default:
		return appErr.Newf(appErr.CodeInvalid, "unknown module location type %q", t)
	}
}

func toggleAction(enabled bool) string {
	if enabled {
		return "enable"
	}
	return "disable"
}
