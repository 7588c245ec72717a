package dynamo

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
)

type auditLogRepository struct {
	store[models.AdminAuditLog]
}

func NewAuditLogRepository(client *dynamodb.Client) repository.AuditLogRepository {
	return &auditLogRepository{store: newStore[models.AdminAuditLog](client, tableAuditLogs)}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AdminAuditLog) error {
	return r.store.Create(ctx, entry)
}

func (r *auditLogRepository) List(ctx context.Context, limit, offset int) ([]models.AdminAuditLog, error) {
	items, err := r.scan(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(items)
	if offset >= len(items) {
		return nil, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (r *auditLogRepository) ListByEntityType(ctx context.Context, entityType string, limit int) ([]models.AdminAuditLog, error) {
	items, err := r.queryIndex(ctx, indexByEntityType, "EntityType", entityType, "", nil)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(items)
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func sortNewestFirst(items []models.AdminAuditLog) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
