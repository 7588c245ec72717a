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

// Actor identifies who is performing a service call.
type Actor struct {
	Email string
	Admin bool
}

func (a Actor) mayManage(owner string) bool {
	return a.Admin || ownerMatches(owner, a.Email)
}

// ProvisioningEnqueuer schedules asynchronous provisioning metadata
// generation for a stack.
type ProvisioningEnqueuer interface {
	EnqueueGenerate(ctx context.Context, stackID uuid.UUID) error
}

// ProvisioningMetadata is stored per stack resource once generated.
type ProvisioningMetadata struct {
	ModuleLocation string `json:"module_location"`
	LocationType   string `json:"location_type,omitempty"`
	ModuleVersion  string `json:"module_version,omitempty"`
	Provisioner    string `json:"provisioner,omitempty"`
}

// ProvisioningView is the assembled provisioning plan for a stack.
type ProvisioningView struct {
	StackID            uuid.UUID                       `json:"stack_id"`
	CloudName          string                          `json:"cloud_name"`
	Provider           string                          `json:"provider"`
	ComputePlatform    models.ComputePlatform          `json:"compute_platform,omitempty"`
	ComputeProvisioner string                          `json:"compute_provisioner,omitempty"`
	Resources          map[string]ProvisioningMetadata `json:"resources"`
}

// StackService manages stacks, their resources, and provisioning metadata.
type StackService interface {
	Create(ctx context.Context, actor Actor, in *StackInput) (*StackDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*StackDetail, error)
	List(ctx context.Context, filter StackFilter) ([]models.Stack, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in *StackUpdate) (*StackDetail, error)
	SetEnabled(ctx context.Context, actor Actor, id uuid.UUID, enabled bool) (*models.Stack, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error

	AddResource(ctx context.Context, actor Actor, stackID uuid.UUID, in *StackResourceInput) (*models.StackResource, error)
	RemoveResource(ctx context.Context, actor Actor, stackID, resourceID uuid.UUID) error

	RequestProvisioning(ctx context.Context, actor Actor, id uuid.UUID) error
	GenerateProvisioningMetadata(ctx context.Context, stackID uuid.UUID) error
	GetProvisioning(ctx context.Context, id uuid.UUID) (*ProvisioningView, error)
}

type StackInput struct {
	Name         string
	CloudName    string
	Description  string
	StackType    models.StackType
	Language     models.ProgrammingLanguage
	BlueprintID  uuid.UUID
	TeamID       *uuid.UUID
	DomainID     *uuid.UUID
	CategoryID   *uuid.UUID
	CollectionID *uuid.UUID
	Public       bool
	RoutePath    string
	Resources    []StackResourceInput
}

type StackUpdate struct {
	Name         string
	Description  string
	Language     models.ProgrammingLanguage
	TeamID       *uuid.UUID
	DomainID     *uuid.UUID
	CategoryID   *uuid.UUID
	CollectionID *uuid.UUID
	Public       bool
	RoutePath    string
}

type StackFilter struct {
	Owner        string
	StackType    models.StackType
	TeamID       *uuid.UUID
	DomainID     *uuid.UUID
	CategoryID   *uuid.UUID
	CollectionID *uuid.UUID
}

func (f StackFilter) matches(st *models.Stack) bool {
	if f.Owner != "" && !ownerMatches(st.CreatedBy, f.Owner) {
		return false
	}
	if f.StackType != "" && st.StackType != f.StackType {
		return false
	}
	if f.TeamID != nil && (st.TeamID == nil || *st.TeamID != *f.TeamID) {
		return false
	}
	if f.DomainID != nil && (st.DomainID == nil || *st.DomainID != *f.DomainID) {
		return false
	}
	if f.CategoryID != nil && (st.CategoryID == nil || *st.CategoryID != *f.CategoryID) {
		return false
	}
	if f.CollectionID != nil && (st.CollectionID == nil || *st.CollectionID != *f.CollectionID) {
		return false
	}
	return true
}

type StackResourceInput struct {
	MappingID     uuid.UUID
	Name          string
	Configuration map[string]any
}

type StackDetail struct {
	models.Stack
	Resources []models.StackResource `json:"resources"`
}

type stackService struct {
	repos    *repository.Registry
	auditor  *Auditor
	enqueuer ProvisioningEnqueuer
}

func NewStackService(repos *repository.Registry, auditor *Auditor, enqueuer ProvisioningEnqueuer) StackService {
	return &stackService{repos: repos, auditor: auditor, enqueuer: enqueuer}
}

var _ StackService = (*stackService)(nil)

func (s *stackService) Create(ctx context.Context, actor Actor, in *StackInput) (*StackDetail, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, appErr.New(appErr.CodeInvalid, "stack name is required")
	}

	bp, err := s.repos.Blueprints.GetByID(ctx, in.BlueprintID)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "blueprint does not exist")
	}
	if !bp.Enabled {
		return nil, appErr.Newf(appErr.CodeInvalid, "blueprint %q is disabled", bp.Name)
	}
	if in.StackType != "" && in.StackType != bp.StackType {
		return nil, appErr.Newf(appErr.CodeInvalid, "stack type %s does not match blueprint stack type %s", in.StackType, bp.StackType)
	}

	provider, err := s.repos.CloudProviders.GetByID(ctx, bp.CloudProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.Enabled {
		return nil, appErr.Newf(appErr.CodeInvalid, "cloud provider %q is disabled", provider.Name)
	}

	st := &models.Stack{
		Name:            strings.TrimSpace(in.Name),
		CloudName:       in.CloudName,
		Description:     in.Description,
		StackType:       bp.StackType,
		Language:        in.Language,
		BlueprintID:     bp.ID,
		CloudProviderID: bp.CloudProviderID,
		TeamID:          in.TeamID,
		DomainID:        in.DomainID,
		CategoryID:      in.CategoryID,
		CollectionID:    in.CollectionID,
		Public:          in.Public,
		RoutePath:       in.RoutePath,
		Enabled:         true,
		CreatedBy:       actor.Email,
	}
	if err := normalizeStackSettings(st); err != nil {
		return nil, err
	}
	if err := s.checkTaxonomy(ctx, st); err != nil {
		return nil, err
	}

	if _, err := s.repos.Stacks.GetByCloudName(ctx, st.CloudName); err == nil {
		return nil, appErr.Newf(appErr.CodeAlreadyExists, "cloud name %q is already taken", st.CloudName)
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}
	if taken, err := s.repos.Stacks.ExistsByNameAndOwner(ctx, st.Name, actor.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, appErr.Newf(appErr.CodeAlreadyExists, "you already have a stack named %q", st.Name)
	}

	resources := make([]*models.StackResource, 0, len(in.Resources))
	for i := range in.Resources {
		sr, err := s.buildResource(ctx, st, &in.Resources[i])
		if err != nil {
			return nil, err
		}
		resources = append(resources, sr)
	}

	if err := s.repos.Stacks.Create(ctx, st); err != nil {
		return nil, err
	}
	saved := make([]models.StackResource, 0, len(resources))
	for _, sr := range resources {
		sr.StackID = st.ID
		if err := s.repos.StackResources.Create(ctx, sr); err != nil {
			return nil, err
		}
		saved = append(saved, *sr)
	}

	logger.L().Info("stack created",
		zap.String("stack_id", st.ID.String()),
		zap.String("cloud_name", st.CloudName),
		zap.String("owner", st.CreatedBy))
	s.enqueueGenerate(ctx, st.ID)
	return &StackDetail{Stack: *st, Resources: saved}, nil
}

// enqueueGenerate schedules metadata generation after a write. The write has
// already committed, so a queue hiccup is logged rather than surfaced.
func (s *stackService) enqueueGenerate(ctx context.Context, stackID uuid.UUID) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueueGenerate(ctx, stackID); err != nil {
		logger.L().Warn("enqueue provisioning task failed",
			zap.String("stack_id", stackID.String()),
			zap.Error(err))
	}
}

func (s *stackService) Get(ctx context.Context, id uuid.UUID) (*StackDetail, error) {
	st, err := s.repos.Stacks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resources, err := s.repos.StackResources.ListByStack(ctx, id)
	if err != nil {
		return nil, err
	}
	if resources == nil {
		resources = []models.StackResource{}
	}
	return &StackDetail{Stack: *st, Resources: resources}, nil
}

func (s *stackService) List(ctx context.Context, filter StackFilter) ([]models.Stack, error) {
	// The narrowest indexed query fetches the candidate set; the remaining
	// filter fields are applied in memory.
	var (
		items []models.Stack
		err   error
	)
	switch {
	case filter.Owner != "":
		items, err = s.repos.Stacks.ListByOwner(ctx, filter.Owner)
	case filter.TeamID != nil:
		items, err = s.repos.Stacks.ListByTeam(ctx, *filter.TeamID)
	case filter.CollectionID != nil:
		items, err = s.repos.Stacks.ListByCollection(ctx, *filter.CollectionID)
	default:
		items, err = s.repos.Stacks.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]models.Stack, 0, len(items))
	for i := range items {
		if filter.matches(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

func (s *stackService) Update(ctx context.Context, actor Actor, id uuid.UUID, in *StackUpdate) (*StackDetail, error) {
	st, err := s.repos.Stacks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.mayManage(st.CreatedBy) {
		return nil, appErr.New(appErr.CodeForbidden, "only the stack owner or an admin may modify this stack")
	}

	if name := strings.TrimSpace(in.Name); name != "" && name != st.Name {
		if taken, err := s.repos.Stacks.ExistsByNameAndOwner(ctx, name, st.CreatedBy); err != nil {
			return nil, err
		} else if taken {
			return nil, appErr.Newf(appErr.CodeAlreadyExists, "you already have a stack named %q", name)
		}
		st.Name = name
	}
	st.Description = in.Description
	if in.Language != "" {
		st.Language = in.Language
	}
	st.TeamID = in.TeamID
	st.DomainID = in.DomainID
	st.CategoryID = in.CategoryID
	st.CollectionID = in.CollectionID
	st.Public = in.Public
	st.RoutePath = in.RoutePath

	if err := normalizeStackSettings(st); err != nil {
		return nil, err
	}
	if err := s.checkTaxonomy(ctx, st); err != nil {
		return nil, err
	}
	if err := s.repos.Stacks.Update(ctx, st); err != nil {
		return nil, err
	}
	s.enqueueGenerate(ctx, st.ID)
	return s.Get(ctx, id)
}

func (s *stackService) SetEnabled(ctx context.Context, actor Actor, id uuid.UUID, enabled bool) (*models.Stack, error) {
	st, err := s.repos.Stacks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.mayManage(st.CreatedBy) {
		return nil, appErr.New(appErr.CodeForbidden, "only the stack owner or an admin may modify this stack")
	}
	st.Enabled = enabled
	if err := s.repos.Stacks.Update(ctx, st); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor.Email, toggleAction(enabled), "Stack", st.ID.String(), nil)
	return st, nil
}

func (s *stackService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	st, err := s.repos.Stacks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.mayManage(st.CreatedBy) {
		return appErr.New(appErr.CodeForbidden, "only the stack owner or an admin may delete this stack")
	}
	if err := s.repos.StackResources.DeleteByStack(ctx, id); err != nil {
		return err
	}
	if err := s.repos.Stacks.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor.Email, "delete", "Stack", id.String(), map[string]any{"cloud_name": st.CloudName})
	return nil
}

func (s *stackService) AddResource(ctx context.Context, actor Actor, stackID uuid.UUID, in *StackResourceInput) (*models.StackResource, error) {
	st, err := s.repos.Stacks.GetByID(ctx, stackID)
	if err != nil {
		return nil, err
	}
	if !actor.mayManage(st.CreatedBy) {
		return nil, appErr.New(appErr.CodeForbidden, "only the stack owner or an admin may modify this stack")
	}
	sr, err := s.buildResource(ctx, st, in)
	if err != nil {
		return nil, err
	}
	sr.StackID = st.ID
	if err := s.repos.StackResources.Create(ctx, sr); err != nil {
		return nil, err
	}
	return sr, nil
}

func (s *stackService) RemoveResource(ctx context.Context, actor Actor, stackID, resourceID uuid.UUID) error {
	st, err := s.repos.Stacks.GetByID(ctx, stackID)
	if err != nil {
		return err
	}
	if !actor.mayManage(st.CreatedBy) {
		return appErr.New(appErr.CodeForbidden, "only the stack owner or an admin may modify this stack")
	}
	sr, err := s.repos.StackResources.GetByID(ctx, resourceID)
	if err != nil {
		return err
	}
	if sr.StackID != stackID {
		return appErr.New(appErr.CodeNotFound, "stack resource not found")
	}
	return s.repos.StackResources.Delete(ctx, resourceID)
}

func (s *stackService) RequestProvisioning(ctx context.Context, actor Actor, id uuid.UUID) error {
	st, err := s.repos.Stacks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.mayManage(st.CreatedBy) {
		return appErr.New(appErr.CodeForbidden, "only the stack owner or an admin may provision this stack")
	}
	if !st.Enabled {
		return appErr.New(appErr.CodeInvalid, "disabled stacks cannot be provisioned")
	}
	if s.enqueuer == nil {
		return appErr.New(appErr.CodeUnavailable, "provisioning queue is not configured")
	}
	if err := s.enqueuer.EnqueueGenerate(ctx, id); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "enqueue provisioning task failed")
	}
	logger.L().Info("provisioning requested",
		zap.String("stack_id", id.String()),
		zap.String("actor", actor.Email))
	return nil
}

// GenerateProvisioningMetadata resolves the Terraform module and provisioner
// for every stack resource and stores the result in the resource
// configuration. Runs on the worker.
func (s *stackService) GenerateProvisioningMetadata(ctx context.Context, stackID uuid.UUID) error {
	st, err := s.repos.Stacks.GetByID(ctx, stackID)
	if err != nil {
		return err
	}
	provider, err := s.repos.CloudProviders.GetByID(ctx, st.CloudProviderID)
	if err != nil {
		return err
	}

	resources, err := s.repos.StackResources.ListByStack(ctx, stackID)
	if err != nil {
		return err
	}

	for i := range resources {
		sr := &resources[i]
		m, err := s.repos.Mappings.GetByID(ctx, sr.MappingID)
		if err != nil {
			return err
		}
		rt, err := s.repos.ResourceTypes.GetByID(ctx, m.ResourceTypeID)
		if err != nil {
			return err
		}
		if !m.HasModuleLocation() {
			return appErr.Newf(appErr.CodeInvalid, "mapping for resource %q has no module location", sr.Name)
		}

		meta := ProvisioningMetadata{
			ModuleLocation: m.ModuleLocation,
			LocationType:   string(m.LocationType),
			ModuleVersion:  m.ModuleVersion,
			Provisioner:    resourceProvisioner(provider.Name, rt.Name),
		}

		config := map[string]any{}
		if len(sr.Configuration) > 0 {
			if err := json.Unmarshal(sr.Configuration, &config); err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "decode resource configuration failed")
			}
		}
		config[models.ProvisioningKey] = meta

		raw, err := json.Marshal(config)
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "encode resource configuration failed")
		}
		sr.Configuration = datatypes.JSON(raw)
		if err := s.repos.StackResources.Update(ctx, sr); err != nil {
			return err
		}
	}

	logger.L().Info("provisioning metadata generated",
		zap.String("stack_id", stackID.String()),
		zap.Int("resources", len(resources)))
	return nil
}

func (s *stackService) GetProvisioning(ctx context.Context, id uuid.UUID) (*ProvisioningView, error) {
	st, err := s.repos.Stacks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	provider, err := s.repos.CloudProviders.GetByID(ctx, st.CloudProviderID)
	if err != nil {
		return nil, err
	}

	platform, err := computePlatform(provider.Name, st.StackType)
	if err != nil {
		return nil, err
	}

	view := &ProvisioningView{
		StackID:            st.ID,
		CloudName:          st.CloudName,
		Provider:           provider.Name,
		ComputePlatform:    platform,
		ComputeProvisioner: computeProvisioner(platform),
		Resources:          map[string]ProvisioningMetadata{},
	}

	resources, err := s.repos.StackResources.ListByStack(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, sr := range resources {
		if len(sr.Configuration) == 0 {
			continue
		}
		var config map[string]json.RawMessage
		if err := json.Unmarshal(sr.Configuration, &config); err != nil {
			continue
		}
		raw, ok := config[models.ProvisioningKey]
		if !ok {
			continue
		}
		var meta ProvisioningMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			continue
		}
		view.Resources[sr.Name] = meta
	}
	return view, nil
}

// buildResource validates one stack resource attachment. Stacks take
// NON_SHARED (or BOTH) resource types; shared infrastructure comes from the
// blueprint instead.
func (s *stackService) buildResource(ctx context.Context, st *models.Stack, in *StackResourceInput) (*models.StackResource, error) {
	m, err := s.repos.Mappings.GetByID(ctx, in.MappingID)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "resource mapping does not exist")
	}
	if m.CloudProviderID != st.CloudProviderID {
		return nil, appErr.New(appErr.CodeInvalid, "resource mapping belongs to a different cloud provider")
	}
	if !m.Enabled {
		return nil, appErr.New(appErr.CodeInvalid, "resource mapping is disabled")
	}

	rt, err := s.repos.ResourceTypes.GetByID(ctx, m.ResourceTypeID)
	if err != nil {
		return nil, err
	}
	if !rt.Enabled {
		return nil, appErr.Newf(appErr.CodeInvalid, "resource type %q is disabled", rt.Name)
	}
	if !rt.UsableInStacks() {
		return nil, appErr.Newf(appErr.CodeInvalid, "resource type %q cannot be attached to stacks directly", rt.Name)
	}

	schemas, err := s.repos.Properties.ListByMapping(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	config := in.Configuration
	if config == nil {
		config = map[string]any{}
	}
	if err := ValidateProperties(schemas, config); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid resource configuration")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = rt.Name
	}
	return &models.StackResource{
		MappingID:     m.ID,
		Name:          name,
		Configuration: datatypes.JSON(raw),
	}, nil
}

func (s *stackService) checkTaxonomy(ctx context.Context, st *models.Stack) error {
	if st.TeamID != nil {
		if _, err := s.repos.Teams.GetByID(ctx, *st.TeamID); err != nil {
			return appErr.Wrap(err, appErr.CodeInvalid, "team does not exist")
		}
	}
	if st.DomainID != nil {
		if _, err := s.repos.Domains.GetByID(ctx, *st.DomainID); err != nil {
			return appErr.Wrap(err, appErr.CodeInvalid, "domain does not exist")
		}
	}
	if st.CategoryID != nil {
		if _, err := s.repos.Categories.GetByID(ctx, *st.CategoryID); err != nil {
			return appErr.Wrap(err, appErr.CodeInvalid, "category does not exist")
		}
	}
	if st.CollectionID != nil {
		if _, err := s.repos.Collections.GetByID(ctx, *st.CollectionID); err != nil {
			return appErr.Wrap(err, appErr.CodeInvalid, "stack collection does not exist")
		}
	}
	return nil
}
