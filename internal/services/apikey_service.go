package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
	"github.com/angryss/idp-engine/pkg/logger"
)

const (
	// APIKeyScheme marks Bearer tokens that are platform API keys rather
	// than JWTs.
	APIKeyScheme = "idp_"

	keySecretLength = 32
	keyPrefixLength = 20

	// ExpiryWarningWindow flags keys expiring soon in list responses.
	ExpiryWarningWindow = 7 * 24 * time.Hour
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// APIKeyService issues, rotates, revokes, and authenticates API keys.
type APIKeyService interface {
	Generate(ctx context.Context, actor Actor, in *APIKeyInput) (*GeneratedKey, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*APIKeyView, error)
	ListMine(ctx context.Context, actor Actor) ([]APIKeyView, error)
	ListAll(ctx context.Context) ([]APIKeyView, error)
	Rename(ctx context.Context, actor Actor, id uuid.UUID, name, description string) (*APIKeyView, error)
	Rotate(ctx context.Context, actor Actor, id uuid.UUID) (*GeneratedKey, error)
	Revoke(ctx context.Context, actor Actor, id uuid.UUID) error

	// Authenticate resolves a presented plaintext key to its record.
	Authenticate(ctx context.Context, plaintext string) (*models.APIKey, error)

	// SweepExpired revokes active keys past expiry. Returns how many were swept.
	SweepExpired(ctx context.Context) (int, error)
	// SweepRotated revokes rotated-out keys whose grace window has elapsed.
	SweepRotated(ctx context.Context) (int, error)
}

type APIKeyInput struct {
	Name        string
	Description string
	Type        models.APIKeyType
	// OwnerEmail is only honored for SYSTEM keys created by admins;
	// USER keys always belong to the caller.
	OwnerEmail string
}

// GeneratedKey carries the plaintext exactly once, at issue time.
type GeneratedKey struct {
	APIKeyView
	Plaintext string `json:"key"`
}

// APIKeyView is the API representation with derived status fields.
type APIKeyView struct {
	models.APIKey
	Status       models.APIKeyStatus `json:"status"`
	ExpiringSoon bool                `json:"expiring_soon"`
}

type apiKeyService struct {
	repos          *repository.Registry
	auditor        *Auditor
	expirationDays int
	rotationGrace  time.Duration
}

func NewAPIKeyService(repos *repository.Registry, auditor *Auditor, expirationDays int, rotationGrace time.Duration) APIKeyService {
	return &apiKeyService{
		repos:          repos,
		auditor:        auditor,
		expirationDays: expirationDays,
		rotationGrace:  rotationGrace,
	}
}

var _ APIKeyService = (*apiKeyService)(nil)

func (s *apiKeyService) Generate(ctx context.Context, actor Actor, in *APIKeyInput) (*GeneratedKey, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, appErr.New(appErr.CodeInvalid, "key name is required")
	}

	keyType := in.Type
	if keyType == "" {
		keyType = models.APIKeyUser
	}
	owner := actor.Email
	switch keyType {
	case models.APIKeyUser:
	case models.APIKeySystem:
		if !actor.Admin {
			return nil, appErr.New(appErr.CodeForbidden, "only admins may create system keys")
		}
		if in.OwnerEmail != "" {
			owner = in.OwnerEmail
		}
	default:
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown key type %q", keyType)
	}

	plaintext, err := newKeyPlaintext(keyType)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash key failed")
	}

	key := &models.APIKey{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Type:        keyType,
		KeyPrefix:   plaintext[:keyPrefixLength],
		KeyHash:     string(hash),
		OwnerEmail:  owner,
		ExpiresAt:   time.Now().UTC().AddDate(0, 0, s.expirationDays),
	}
	if err := s.repos.APIKeys.Create(ctx, key); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actor.Email, "create", "ApiKey", key.ID.String(), map[string]any{
		"name": key.Name,
		"type": string(key.Type),
	})
	return &GeneratedKey{APIKeyView: s.view(key), Plaintext: plaintext}, nil
}

func (s *apiKeyService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*APIKeyView, error) {
	key, err := s.repos.APIKeys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.mayManage(key.OwnerEmail) {
		return nil, appErr.New(appErr.CodeForbidden, "only the key owner or an admin may view this key")
	}
	v := s.view(key)
	return &v, nil
}

func (s *apiKeyService) ListMine(ctx context.Context, actor Actor) ([]APIKeyView, error) {
	keys, err := s.repos.APIKeys.ListByOwner(ctx, actor.Email)
	if err != nil {
		return nil, err
	}
	return s.views(keys), nil
}

func (s *apiKeyService) ListAll(ctx context.Context) ([]APIKeyView, error) {
	keys, err := s.repos.APIKeys.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(keys), nil
}

// Rename updates the descriptive fields of a key. The credential itself is
// untouched.
func (s *apiKeyService) Rename(ctx context.Context, actor Actor, id uuid.UUID, name, description string) (*APIKeyView, error) {
	key, err := s.repos.APIKeys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.mayManage(key.OwnerEmail) {
		return nil, appErr.New(appErr.CodeForbidden, "only the key owner or an admin may rename this key")
	}
	if strings.TrimSpace(name) == "" {
		return nil, appErr.New(appErr.CodeInvalid, "key name is required")
	}
	key.Name = strings.TrimSpace(name)
	key.Description = description
	if err := s.repos.APIKeys.Update(ctx, key); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor.Email, "rename", "ApiKey", key.ID.String(), map[string]any{"name": key.Name})
	v := s.view(key)
	return &v, nil
}

// Rotate issues a replacement key and leaves the old one usable for the
// rotation grace window so callers can switch over without downtime.
func (s *apiKeyService) Rotate(ctx context.Context, actor Actor, id uuid.UUID) (*GeneratedKey, error) {
	old, err := s.repos.APIKeys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.mayManage(old.OwnerEmail) {
		return nil, appErr.New(appErr.CodeForbidden, "only the key owner or an admin may rotate this key")
	}
	now := time.Now().UTC()
	if old.Status(now) != models.APIKeyActive {
		return nil, appErr.New(appErr.CodeInvalid, "only active keys can be rotated")
	}
	if old.RotatedAt != nil {
		return nil, appErr.New(appErr.CodeConflict, "key has already been rotated")
	}

	plaintext, err := newKeyPlaintext(old.Type)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash key failed")
	}

	replacement := &models.APIKey{
		Name:        old.Name,
		Description: old.Description,
		Type:        old.Type,
		KeyPrefix:   plaintext[:keyPrefixLength],
		KeyHash:     string(hash),
		OwnerEmail:  old.OwnerEmail,
		ExpiresAt:   now.AddDate(0, 0, s.expirationDays),
	}
	if err := s.repos.APIKeys.Create(ctx, replacement); err != nil {
		return nil, err
	}

	old.RotatedAt = &now
	old.ReplacedByID = &replacement.ID
	if err := s.repos.APIKeys.Update(ctx, old); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actor.Email, "rotate", "ApiKey", old.ID.String(), map[string]any{
		"replaced_by": replacement.ID.String(),
	})
	return &GeneratedKey{APIKeyView: s.view(replacement), Plaintext: plaintext}, nil
}

func (s *apiKeyService) Revoke(ctx context.Context, actor Actor, id uuid.UUID) error {
	key, err := s.repos.APIKeys.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.mayManage(key.OwnerEmail) {
		return appErr.New(appErr.CodeForbidden, "only the key owner or an admin may revoke this key")
	}
	if key.Revoked {
		return nil
	}
	now := time.Now().UTC()
	key.Revoked = true
	key.RevokedAt = &now
	if err := s.repos.APIKeys.Update(ctx, key); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor.Email, "revoke", "ApiKey", key.ID.String(), nil)
	return nil
}

func (s *apiKeyService) Authenticate(ctx context.Context, plaintext string) (*models.APIKey, error) {
	if len(plaintext) < keyPrefixLength || !strings.HasPrefix(plaintext, APIKeyScheme) {
		return nil, appErr.New(appErr.CodeUnauthorized, "invalid api key")
	}

	candidates, err := s.repos.APIKeys.ListByPrefix(ctx, plaintext[:keyPrefixLength])
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range candidates {
		key := &candidates[i]
		if bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(plaintext)) != nil {
			continue
		}
		if !key.Usable(now, s.rotationGrace) {
			return nil, appErr.New(appErr.CodeUnauthorized, "api key is no longer valid")
		}
		key.LastUsedAt = &now
		if err := s.repos.APIKeys.Update(ctx, key); err != nil {
			logger.L().Warn("update key last used failed", zap.Error(err))
		}
		return key, nil
	}
	return nil, appErr.New(appErr.CodeUnauthorized, "invalid api key")
}

func (s *apiKeyService) SweepExpired(ctx context.Context) (int, error) {
	keys, err := s.repos.APIKeys.ListExpiredActive(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return s.revokeAll(ctx, keys, "expired")
}

func (s *apiKeyService) SweepRotated(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.rotationGrace)
	keys, err := s.repos.APIKeys.ListRotatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	return s.revokeAll(ctx, keys, "rotation grace elapsed")
}

func (s *apiKeyService) revokeAll(ctx context.Context, keys []models.APIKey, reason string) (int, error) {
	now := time.Now().UTC()
	swept := 0
	for i := range keys {
		key := &keys[i]
		key.Revoked = true
		key.RevokedAt = &now
		if err := s.repos.APIKeys.Update(ctx, key); err != nil {
			logger.L().Error("sweep key failed",
				zap.String("key_id", key.ID.String()),
				zap.Error(err))
			continue
		}
		swept++
		s.auditor.Record(ctx, "system", "revoke", "ApiKey", key.ID.String(), map[string]any{"reason": reason})
	}
	return swept, nil
}

func (s *apiKeyService) view(key *models.APIKey) APIKeyView {
	now := time.Now().UTC()
	return APIKeyView{
		APIKey:       *key,
		Status:       key.Status(now),
		ExpiringSoon: key.ExpiringSoon(now, ExpiryWarningWindow),
	}
}

func (s *apiKeyService) views(keys []models.APIKey) []APIKeyView {
	out := make([]APIKeyView, 0, len(keys))
	for i := range keys {
		out = append(out, s.view(&keys[i]))
	}
	return out
}

// newKeyPlaintext builds "idp_<type>_<32 base62 chars>".
func newKeyPlaintext(t models.APIKeyType) (string, error) {
	var sb strings.Builder
	sb.WriteString(APIKeyScheme)
	sb.WriteString(strings.ToLower(string(t)))
	sb.WriteByte('_')

	alphabet := big.NewInt(int64(len(base62Alphabet)))
	for i := 0; i < keySecretLength; i++ {
		n, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", appErr.Wrap(err, appErr.CodeInternal, "generate key failed")
		}
		sb.WriteByte(base62Alphabet[n.Int64()])
	}
	return sb.String(), nil
}
