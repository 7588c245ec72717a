package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
)

type apiKeyRepository struct {
	store[models.APIKey]
}

func NewAPIKeyRepository(client *dynamodb.Client) repository.APIKeyRepository {
	return &apiKeyRepository{store: newStore[models.APIKey](client, tableAPIKeys)}
}

func (r *apiKeyRepository) ListByPrefix(ctx context.Context, prefix string) ([]models.APIKey, error) {
	return r.queryIndex(ctx, indexByKeyPrefix, "KeyPrefix", prefix, "", nil)
}

func (r *apiKeyRepository) ListByOwner(ctx context.Context, email string) ([]models.APIKey, error) {
	return r.queryIndex(ctx, indexByOwner, "OwnerEmail", email, "", nil)
}

func (r *apiKeyRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]models.APIKey, error) {
	return r.scan(ctx, "#r = :f AND #e < :now", map[string]any{
		"#r": "Revoked", ":f": false,
		"#e": "ExpiresAt", ":now": now,
	})
}

func (r *apiKeyRepository) ListRotatedBefore(ctx context.Context, cutoff time.Time) ([]models.APIKey, error) {
	return r.scan(ctx, "#r = :f AND attribute_exists(#rot) AND #rot < :cutoff", map[string]any{
		"#r": "Revoked", ":f": false,
		"#rot": "RotatedAt", ":cutoff": cutoff,
	})
}
