package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// EnvironmentService manages deployment environments and their settings.
type EnvironmentService interface {
	Create(ctx context.Context, actor string, in *EnvironmentInput) (*models.Environment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Environment, error)
	GetByName(ctx context.Context, name models.EnvironmentName) (*models.Environment, error)
	List(ctx context.Context) ([]models.Environment, error)
	SetEnabled(ctx context.Context, actor string, id uuid.UUID, enabled bool) (*models.Environment, error)

	SetConfig(ctx context.Context, actor string, environmentID uuid.UUID, in *EnvironmentConfigInput) (*models.EnvironmentConfig, error)
	ListConfigs(ctx context.Context, environmentID uuid.UUID) ([]models.EnvironmentConfig, error)
	DeleteConfig(ctx context.Context, actor string, environmentID, configID uuid.UUID) error
}

type EnvironmentInput struct {
	Name        models.EnvironmentName
	Description string
}

type EnvironmentConfigInput struct {
	Key             string
	Value           string
	CloudProviderID *uuid.UUID
}

type environmentService struct {
	repos   *repository.Registry
	auditor *Auditor
}

func NewEnvironmentService(repos *repository.Registry, auditor *Auditor) EnvironmentService {
	return &environmentService{repos: repos, auditor: auditor}
}

var _ EnvironmentService = (*environmentService)(nil)

func (s *environmentService) Create(ctx context.Context, actor string, in *EnvironmentInput) (*models.Environment, error) {
	switch in.Name {
	case models.EnvironmentDev, models.EnvironmentProd:
	default:
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown environment %q", in.Name)
	}
	if _, err := s.repos.Environments.GetByName(ctx, in.Name); err == nil {
		return nil, appErr.Newf(appErr.CodeAlreadyExists, "environment %s already exists", in.Name)
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	env := &models.Environment{Name: in.Name, Description: in.Description, Enabled: true}
	if err := s.repos.Environments.Create(ctx, env); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "Environment", env.ID.String(), map[string]any{"name": string(env.Name)})
	return env, nil
}

func (s *environmentService) Get(ctx context.Context, id uuid.UUID) (*models.Environment, error) {
	return s.repos.Environments.GetByID(ctx, id)
}

func (s *environmentService) GetByName(ctx context.Context, name models.EnvironmentName) (*models.Environment, error) {
	return s.repos.Environments.GetByName(ctx, name)
}

func (s *environmentService) List(ctx context.Context) ([]models.Environment, error) {
	return s.repos.Environments.List(ctx)
}

func (s *environmentService) SetEnabled(ctx context.Context, actor string, id uuid.UUID, enabled bool) (*models.Environment, error) {
	env, err := s.repos.Environments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	env.Enabled = enabled
	if err := s.repos.Environments.Update(ctx, env); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, toggleAction(enabled), "Environment", env.ID.String(), nil)
	return env, nil
}

// SetConfig creates or overwrites the setting with the given key.
func (s *environmentService) SetConfig(ctx context.Context, actor string, environmentID uuid.UUID, in *EnvironmentConfigInput) (*models.EnvironmentConfig, error) {
	key := strings.TrimSpace(in.Key)
	if key == "" {
		return nil, appErr.New(appErr.CodeInvalid, "config key is required")
	}
	if _, err := s.repos.Environments.GetByID(ctx, environmentID); err != nil {
		return nil, err
	}
	if in.CloudProviderID != nil {
		if _, err := s.repos.CloudProviders.GetByID(ctx, *in.CloudProviderID); err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, "cloud provider does not exist")
		}
	}

	existing, err := s.repos.EnvironmentConfigs.ListByEnvironment(ctx, environmentID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Key == key {
			existing[i].Value = in.Value
			existing[i].CloudProviderID = in.CloudProviderID
			if err := s.repos.EnvironmentConfigs.Update(ctx, &existing[i]); err != nil {
				return nil, err
			}
			s.auditor.Record(ctx, actor, "update", "EnvironmentConfig", existing[i].ID.String(), map[string]any{"key": key})
			return &existing[i], nil
		}
	}

	cfg := &models.EnvironmentConfig{
		EnvironmentID:   environmentID,
		CloudProviderID: in.CloudProviderID,
		Key:             key,
		Value:           in.Value,
	}
	if err := s.repos.EnvironmentConfigs.Create(ctx, cfg); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor, "create", "EnvironmentConfig", cfg.ID.String(), map[string]any{"key": key})
	return cfg, nil
}

func (s *environmentService) ListConfigs(ctx context.Context, environmentID uuid.UUID) ([]models.EnvironmentConfig, error) {
	if _, err := s.repos.Environments.GetByID(ctx, environmentID); err != nil {
		return nil, err
	}
	return s.repos.EnvironmentConfigs.ListByEnvironment(ctx, environmentID)
}

func (s *environmentService) DeleteConfig(ctx context.Context, actor string, environmentID, configID uuid.UUID) error {
	cfg, err := s.repos.EnvironmentConfigs.GetByID(ctx, configID)
	if err != nil {
		return err
	}
	if cfg.EnvironmentID != environmentID {
		return appErr.New(appErr.CodeNotFound, "environment config not found")
	}
	if err := s.repos.EnvironmentConfigs.Delete(ctx, configID); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor, "delete", "EnvironmentConfig", configID.String(), nil)
	return nil
}
