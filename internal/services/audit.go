package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	"github.com/angryss/idp-engine/pkg/logger"
)

// Auditor records administrative actions. Recording is best effort: a failed
// write is logged and never fails the action itself.
type Auditor struct {
	repo repository.AuditLogRepository
}

func NewAuditor(repo repository.AuditLogRepository) *Auditor {
	return &Auditor{repo: repo}
}

func (a *Auditor) Record(ctx context.Context, actor, action, entityType, entityID string, detail map[string]any) {
	if a == nil || a.repo == nil {
		return
	}
	entry := &models.AdminAuditLog{
		ActorEmail: actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			entry.Detail = datatypes.JSON(b)
		}
	}
	if err := a.repo.Create(ctx, entry); err != nil {
		logger.L().Warn("audit log write failed",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.Error(err))
	}
}
