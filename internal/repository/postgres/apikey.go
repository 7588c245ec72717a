package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
)

type apiKeyRepository struct {
	base[models.APIKey]
	db *gorm.DB
}

func NewAPIKeyRepository(db *gorm.DB) repository.APIKeyRepository {
	return &apiKeyRepository{base: newBase[models.APIKey](db), db: db}
}

func (r *apiKeyRepository) ListByPrefix(ctx context.Context, prefix string) ([]models.APIKey, error) {
	return listBy[models.APIKey](ctx, r.db, "key_prefix = ?", prefix)
}

func (r *apiKeyRepository) ListByOwner(ctx context.Context, email string) ([]models.APIKey, error) {
	return listBy[models.APIKey](ctx, r.db, "owner_email = ?", email)
}

func (r *apiKeyRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]models.APIKey, error) {
	return listBy[models.APIKey](ctx, r.db, "revoked = false AND expires_at < ?", now)
}

func (r *apiKeyRepository) ListRotatedBefore(ctx context.Context, cutoff time.Time) ([]models.APIKey, error) {
	return listBy[models.APIKey](ctx, r.db, "revoked = false AND rotated_at IS NOT NULL AND rotated_at < ?", cutoff)
}
