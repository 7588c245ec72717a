package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) repository.AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AdminAuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "create audit log failed")
	}
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, limit, offset int) ([]models.AdminAuditLog, error) {
	var out []models.AdminAuditLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list audit logs failed")
	}
	return out, nil
}

func (r *auditLogRepository) ListByEntityType(ctx context.Context, entityType string, limit int) ([]models.AdminAuditLog, error) {
	var out []models.AdminAuditLog
	if err := r.db.WithContext(ctx).Where("entity_type = ?", entityType).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list audit logs failed")
	}
	return out, nil
}
