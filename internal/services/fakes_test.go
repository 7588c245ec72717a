package services

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
	"github.com/angryss/idp-engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

// memRepo is an in-memory Base implementation shared by the test fakes.
type memRepo[T any] struct {
	mu    sync.Mutex
	items map[uuid.UUID]T
	getID func(*T) uuid.UUID
	setID func(*T, uuid.UUID)
}

func newMemRepo[T any](getID func(*T) uuid.UUID, setID func(*T, uuid.UUID)) *memRepo[T] {
	return &memRepo[T]{items: map[uuid.UUID]T{}, getID: getID, setID: setID}
}

func (m *memRepo[T]) Create(_ context.Context, obj *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getID(obj) == uuid.Nil {
		m.setID(obj, uuid.New())
	}
	m.items[m.getID(obj)] = *obj
	return nil
}

func (m *memRepo[T]) GetByID(_ context.Context, id uuid.UUID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, appErr.New(appErr.CodeNotFound, "entity not found")
	}
	return &item, nil
}

func (m *memRepo[T]) Update(_ context.Context, obj *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.getID(obj)
	if _, ok := m.items[id]; !ok {
		return appErr.New(appErr.CodeNotFound, "entity not found")
	}
	m.items[id] = *obj
	return nil
}

func (m *memRepo[T]) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return appErr.New(appErr.CodeNotFound, "entity not found")
	}
	delete(m.items, id)
	return nil
}

func (m *memRepo[T]) List(_ context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *memRepo[T]) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

func (m *memRepo[T]) filter(keep func(*T) bool) []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []T
	for _, item := range m.items {
		item := item
		if keep(&item) {
			out = append(out, item)
		}
	}
	return out
}

func (m *memRepo[T]) first(keep func(*T) bool) (*T, error) {
	items := m.filter(keep)
	if len(items) == 0 {
		return nil, appErr.New(appErr.CodeNotFound, "entity not found")
	}
	return &items[0], nil
}

type fakeProviders struct {
	*memRepo[models.CloudProvider]
}

func (f *fakeProviders) GetByName(_ context.Context, name string) (*models.CloudProvider, error) {
	return f.first(func(p *models.CloudProvider) bool { return p.Name == name })
}

func (f *fakeProviders) CountEnabled(_ context.Context) (int64, error) {
	return int64(len(f.filter(func(p *models.CloudProvider) bool { return p.Enabled }))), nil
}

type fakeResourceTypes struct {
	*memRepo[models.ResourceType]
}

func (f *fakeResourceTypes) GetByName(_ context.Context, name string) (*models.ResourceType, error) {
	return f.first(func(rt *models.ResourceType) bool { return rt.Name == name })
}

func (f *fakeResourceTypes) CountEnabled(_ context.Context) (int64, error) {
	return int64(len(f.filter(func(rt *models.ResourceType) bool { return rt.Enabled }))), nil
}

type fakeMappings struct {
	*memRepo[models.ResourceTypeCloudMapping]
}

func (f *fakeMappings) GetByPair(_ context.Context, rtID, cpID uuid.UUID) (*models.ResourceTypeCloudMapping, error) {
	return f.first(func(m *models.ResourceTypeCloudMapping) bool {
		return m.ResourceTypeID == rtID && m.CloudProviderID == cpID
	})
}

func (f *fakeMappings) ListByProvider(_ context.Context, cpID uuid.UUID) ([]models.ResourceTypeCloudMapping, error) {
	return f.filter(func(m *models.ResourceTypeCloudMapping) bool { return m.CloudProviderID == cpID }), nil
}

func (f *fakeMappings) ListByResourceType(_ context.Context, rtID uuid.UUID) ([]models.ResourceTypeCloudMapping, error) {
	return f.filter(func(m *models.ResourceTypeCloudMapping) bool { return m.ResourceTypeID == rtID }), nil
}

func (f *fakeMappings) CountEnabled(_ context.Context) (int64, error) {
	return int64(len(f.filter(func(m *models.ResourceTypeCloudMapping) bool { return m.Enabled }))), nil
}

type fakeProperties struct {
	*memRepo[models.PropertySchema]
}

func (f *fakeProperties) ListByMapping(_ context.Context, mappingID uuid.UUID) ([]models.PropertySchema, error) {
	return f.filter(func(p *models.PropertySchema) bool { return p.MappingID == mappingID }), nil
}

func (f *fakeProperties) CountByMapping(ctx context.Context, mappingID uuid.UUID) (int64, error) {
	items, _ := f.ListByMapping(ctx, mappingID)
	return int64(len(items)), nil
}

func (f *fakeProperties) DeleteByMapping(ctx context.Context, mappingID uuid.UUID) error {
	items, _ := f.ListByMapping(ctx, mappingID)
	for _, item := range items {
		if err := f.Delete(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

type fakeBlueprints struct {
	*memRepo[models.Blueprint]
}

func (f *fakeBlueprints) GetByName(_ context.Context, name string) (*models.Blueprint, error) {
	return f.first(func(b *models.Blueprint) bool { return b.Name == name })
}

func (f *fakeBlueprints) ListByProvider(_ context.Context, cpID uuid.UUID) ([]models.Blueprint, error) {
	return f.filter(func(b *models.Blueprint) bool { return b.CloudProviderID == cpID }), nil
}

func (f *fakeBlueprints) ListByStackType(_ context.Context, t models.StackType) ([]models.Blueprint, error) {
	return f.filter(func(b *models.Blueprint) bool { return b.StackType == t }), nil
}

func (f *fakeBlueprints) CountEnabled(_ context.Context) (int64, error) {
	return int64(len(f.filter(func(b *models.Blueprint) bool { return b.Enabled }))), nil
}

type fakeBlueprintResources struct {
	*memRepo[models.BlueprintResource]
}

func (f *fakeBlueprintResources) ListByBlueprint(_ context.Context, bpID uuid.UUID) ([]models.BlueprintResource, error) {
	return f.filter(func(r *models.BlueprintResource) bool { return r.BlueprintID == bpID }), nil
}

func (f *fakeBlueprintResources) DeleteByBlueprint(ctx context.Context, bpID uuid.UUID) error {
	items, _ := f.ListByBlueprint(ctx, bpID)
	for _, item := range items {
		if err := f.Delete(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

type fakeStacks struct {
	*memRepo[models.Stack]
}

func (f *fakeStacks) GetByCloudName(_ context.Context, cloudName string) (*models.Stack, error) {
	return f.first(func(s *models.Stack) bool { return s.CloudName == cloudName })
}

func (f *fakeStacks) ExistsByNameAndOwner(_ context.Context, name, owner string) (bool, error) {
	return len(f.filter(func(s *models.Stack) bool {
		return s.Name == name && strings.EqualFold(s.CreatedBy, owner)
	})) > 0, nil
}

func (f *fakeStacks) ListByOwner(_ context.Context, email string) ([]models.Stack, error) {
	return f.filter(func(s *models.Stack) bool { return strings.EqualFold(s.CreatedBy, email) }), nil
}

func (f *fakeStacks) ListByTeam(_ context.Context, teamID uuid.UUID) ([]models.Stack, error) {
	return f.filter(func(s *models.Stack) bool { return s.TeamID != nil && *s.TeamID == teamID }), nil
}

func (f *fakeStacks) ListByCollection(_ context.Context, id uuid.UUID) ([]models.Stack, error) {
	return f.filter(func(s *models.Stack) bool { return s.CollectionID != nil && *s.CollectionID == id }), nil
}

func (f *fakeStacks) CountByBlueprint(_ context.Context, bpID uuid.UUID) (int64, error) {
	return int64(len(f.filter(func(s *models.Stack) bool { return s.BlueprintID == bpID }))), nil
}

func (f *fakeStacks) CountEnabled(_ context.Context) (int64, error) {
	return int64(len(f.filter(func(s *models.Stack) bool { return s.Enabled }))), nil
}

type fakeStackResources struct {
	*memRepo[models.StackResource]
}

func (f *fakeStackResources) ListByStack(_ context.Context, stackID uuid.UUID) ([]models.StackResource, error) {
	return f.filter(func(r *models.StackResource) bool { return r.StackID == stackID }), nil
}

func (f *fakeStackResources) DeleteByStack(ctx context.Context, stackID uuid.UUID) error {
	items, _ := f.ListByStack(ctx, stackID)
	for _, item := range items {
		if err := f.Delete(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

type fakeTeams struct {
	*memRepo[models.Team]
}

func (f *fakeTeams) GetByName(_ context.Context, name string) (*models.Team, error) {
	return f.first(func(t *models.Team) bool { return t.Name == name })
}

type fakeDomains struct {
	*memRepo[models.Domain]
}

func (f *fakeDomains) GetByName(_ context.Context, name string) (*models.Domain, error) {
	return f.first(func(d *models.Domain) bool { return d.Name == name })
}

type fakeCategories struct {
	*memRepo[models.Category]
}

func (f *fakeCategories) GetByName(_ context.Context, name string) (*models.Category, error) {
	return f.first(func(c *models.Category) bool { return c.Name == name })
}

type fakeCollections struct {
	*memRepo[models.StackCollection]
}

func (f *fakeCollections) GetByName(_ context.Context, name string) (*models.StackCollection, error) {
	return f.first(func(c *models.StackCollection) bool { return c.Name == name })
}

type fakeEnvironments struct {
	*memRepo[models.Environment]
}

func (f *fakeEnvironments) GetByName(_ context.Context, name models.EnvironmentName) (*models.Environment, error) {
	return f.first(func(e *models.Environment) bool { return e.Name == name })
}

type fakeEnvironmentConfigs struct {
	*memRepo[models.EnvironmentConfig]
}

func (f *fakeEnvironmentConfigs) ListByEnvironment(_ context.Context, envID uuid.UUID) ([]models.EnvironmentConfig, error) {
	return f.filter(func(c *models.EnvironmentConfig) bool { return c.EnvironmentID == envID }), nil
}

type fakeAPIKeys struct {
	*memRepo[models.APIKey]
}

func (f *fakeAPIKeys) ListByPrefix(_ context.Context, prefix string) ([]models.APIKey, error) {
	return f.filter(func(k *models.APIKey) bool { return k.KeyPrefix == prefix }), nil
}

func (f *fakeAPIKeys) ListByOwner(_ context.Context, email string) ([]models.APIKey, error) {
	return f.filter(func(k *models.APIKey) bool { return strings.EqualFold(k.OwnerEmail, email) }), nil
}

func (f *fakeAPIKeys) ListExpiredActive(_ context.Context, now time.Time) ([]models.APIKey, error) {
	return f.filter(func(k *models.APIKey) bool { return !k.Revoked && k.ExpiresAt.Before(now) }), nil
}

func (f *fakeAPIKeys) ListRotatedBefore(_ context.Context, cutoff time.Time) ([]models.APIKey, error) {
	return f.filter(func(k *models.APIKey) bool {
		return !k.Revoked && k.RotatedAt != nil && k.RotatedAt.Before(cutoff)
	}), nil
}

type fakeAuditLogs struct {
	mu      sync.Mutex
	entries []models.AdminAuditLog
}

func (f *fakeAuditLogs) Create(_ context.Context, entry *models.AdminAuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditLogs) List(_ context.Context, limit, offset int) ([]models.AdminAuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.AdminAuditLog(nil), f.entries...)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAuditLogs) ListByEntityType(_ context.Context, entityType string, limit int) ([]models.AdminAuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AdminAuditLog
	for _, e := range f.entries {
		if e.EntityType == entityType {
			out = append(out, e)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// newFakeRegistry builds a fully in-memory repository registry.
func newFakeRegistry() *repository.Registry {
	return &repository.Registry{
		CloudProviders: &fakeProviders{newMemRepo(
			func(p *models.CloudProvider) uuid.UUID { return p.ID },
			func(p *models.CloudProvider, id uuid.UUID) { p.ID = id })},
		ResourceTypes: &fakeResourceTypes{newMemRepo(
			func(rt *models.ResourceType) uuid.UUID { return rt.ID },
			func(rt *models.ResourceType, id uuid.UUID) { rt.ID = id })},
		Mappings: &fakeMappings{newMemRepo(
			func(m *models.ResourceTypeCloudMapping) uuid.UUID { return m.ID },
			func(m *models.ResourceTypeCloudMapping, id uuid.UUID) { m.ID = id })},
		Properties: &fakeProperties{newMemRepo(
			func(p *models.PropertySchema) uuid.UUID { return p.ID },
			func(p *models.PropertySchema, id uuid.UUID) { p.ID = id })},
		Blueprints: &fakeBlueprints{newMemRepo(
			func(b *models.Blueprint) uuid.UUID { return b.ID },
			func(b *models.Blueprint, id uuid.UUID) { b.ID = id })},
		BlueprintResources: &fakeBlueprintResources{newMemRepo(
			func(r *models.BlueprintResource) uuid.UUID { return r.ID },
			func(r *models.BlueprintResource, id uuid.UUID) { r.ID = id })},
		Stacks: &fakeStacks{newMemRepo(
			func(s *models.Stack) uuid.UUID { return s.ID },
			func(s *models.Stack, id uuid.UUID) { s.ID = id })},
		StackResources: &fakeStackResources{newMemRepo(
			func(r *models.StackResource) uuid.UUID { return r.ID },
			func(r *models.StackResource, id uuid.UUID) { r.ID = id })},
		Teams: &fakeTeams{newMemRepo(
			func(t *models.Team) uuid.UUID { return t.ID },
			func(t *models.Team, id uuid.UUID) { t.ID = id })},
		Domains: &fakeDomains{newMemRepo(
			func(d *models.Domain) uuid.UUID { return d.ID },
			func(d *models.Domain, id uuid.UUID) { d.ID = id })},
		Categories: &fakeCategories{newMemRepo(
			func(c *models.Category) uuid.UUID { return c.ID },
			func(c *models.Category, id uuid.UUID) { c.ID = id })},
		Collections: &fakeCollections{newMemRepo(
			func(c *models.StackCollection) uuid.UUID { return c.ID },
			func(c *models.StackCollection, id uuid.UUID) { c.ID = id })},
		Environments: &fakeEnvironments{newMemRepo(
			func(e *models.Environment) uuid.UUID { return e.ID },
			func(e *models.Environment, id uuid.UUID) { e.ID = id })},
		EnvironmentConfigs: &fakeEnvironmentConfigs{newMemRepo(
			func(c *models.EnvironmentConfig) uuid.UUID { return c.ID },
			func(c *models.EnvironmentConfig, id uuid.UUID) { c.ID = id })},
		APIKeys: &fakeAPIKeys{newMemRepo(
			func(k *models.APIKey) uuid.UUID { return k.ID },
			func(k *models.APIKey, id uuid.UUID) { k.ID = id })},
		AuditLogs: &fakeAuditLogs{},
	}
}
