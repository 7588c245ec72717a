package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angryss/idp-engine/internal/models"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// Role names attached to principals.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Authentication methods, recorded on the principal for logging.
const (
	MethodAPIKey    = "api_key"
	MethodForwarded = "forwarded_headers"
	MethodJWT       = "jwt"
	MethodDemo      = "demo"
)

// Principal is the authenticated caller identity.
type Principal struct {
	Email  string   `json:"email"`
	Name   string   `json:"name,omitempty"`
	Roles  []string `json:"roles"`
	Method string   `json:"method"`
}

func (p *Principal) IsAdmin() bool {
	for _, r := range p.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

func (p *Principal) Actor() Actor {
	return Actor{Email: p.Email, Admin: p.IsAdmin()}
}

// AuthService resolves request credentials to a principal. Mechanisms are
// tried in a fixed order: API key, proxy-forwarded identity headers, JWT,
// then demo mode. A Bearer token carrying the platform key scheme is routed
// to the key mechanism only; a malformed key never falls through to JWT.
type AuthService interface {
	Authenticate(ctx context.Context, r *http.Request) (*Principal, error)
}

type authService struct {
	keys       APIKeyService
	auditor    *Auditor
	jwtSecret  []byte
	adminGroup string
	demoMode   bool
}

func NewAuthService(keys APIKeyService, auditor *Auditor, jwtSecret []byte, adminGroup string, demoMode bool) AuthService {
	return &authService{keys: keys, auditor: auditor, jwtSecret: jwtSecret, adminGroup: adminGroup, demoMode: demoMode}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Authenticate(ctx context.Context, r *http.Request) (*Principal, error) {
	token := bearerToken(r)

	if strings.HasPrefix(token, APIKeyScheme) {
		return s.fromAPIKey(ctx, token)
	}

	if p := s.fromForwardedHeaders(r); p != nil {
		return p, nil
	}

	if token != "" {
		return s.fromJWT(token)
	}

	if s.demoMode {
		return &Principal{
			Email:  "demo@local",
			Name:   "Demo User",
			Roles:  []string{RoleAdmin, RoleUser},
			Method: MethodDemo,
		}, nil
	}

	return nil, appErr.New(appErr.CodeUnauthorized, "authentication required")
}

func (s *authService) fromAPIKey(ctx context.Context, token string) (*Principal, error) {
	key, err := s.keys.Authenticate(ctx, token)
	if err != nil {
		// Only the prefix is safe to record.
		prefix := token
		if len(prefix) > keyPrefixLength {
			prefix = prefix[:keyPrefixLength]
		}
		s.auditor.Record(ctx, "", "auth_failed", "APIKey", prefix, map[string]any{
			"reason": err.Error(),
		})
		return nil, err
	}
	roles := []string{RoleUser}
	if key.Type == models.APIKeySystem {
		roles = []string{RoleAdmin, RoleUser}
	}
	return &Principal{
		Email:  key.OwnerEmail,
		Name:   key.Name,
		Roles:  roles,
		Method: MethodAPIKey,
	}, nil
}

// fromForwardedHeaders trusts identity headers injected by the edge proxy.
// The auth-request headers win over the plain forwarded ones, and the
// identity resolves preferred username, then email, then user.
func (s *authService) fromForwardedHeaders(r *http.Request) *Principal {
	pick := func(suffix string) string {
		if v := r.Header.Get("X-Auth-Request-" + suffix); v != "" {
			return v
		}
		return r.Header.Get("X-Forwarded-" + suffix)
	}

	identity := pick("Preferred-Username")
	if identity == "" {
		identity = pick("Email")
	}
	if identity == "" {
		identity = pick("User")
	}
	if identity == "" {
		return nil
	}

	return &Principal{
		Email:  identity,
		Name:   pick("User"),
		Roles:  s.rolesFromGroups(strings.Split(pick("Groups"), ",")),
		Method: MethodForwarded,
	}
}

func (s *authService) fromJWT(token string) (*Principal, error) {
	if len(s.jwtSecret) == 0 {
		return nil, appErr.New(appErr.CodeUnauthorized, "token authentication is not configured")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErr.Newf(appErr.CodeUnauthorized, "unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErr.New(appErr.CodeUnauthorized, "invalid token")
	}

	email, _ := claims["email"].(string)
	if email == "" {
		email, _ = claims["preferred_username"].(string)
	}
	if email == "" {
		return nil, appErr.New(appErr.CodeUnauthorized, "token carries no identity")
	}
	name, _ := claims["name"].(string)

	var groups []string
	if raw, ok := claims["groups"].([]interface{}); ok {
		for _, g := range raw {
			if gs, ok := g.(string); ok {
				groups = append(groups, gs)
			}
		}
	}

	return &Principal{
		Email:  email,
		Name:   name,
		Roles:  s.rolesFromGroups(groups),
		Method: MethodJWT,
	}, nil
}

func (s *authService) rolesFromGroups(groups []string) []string {
	roles := []string{RoleUser}
	if s.adminGroup == "" {
		return roles
	}
	for _, g := range groups {
		if strings.EqualFold(strings.TrimSpace(g), s.adminGroup) {
			return []string{RoleAdmin, RoleUser}
		}
	}
	return roles
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const scheme = "Bearer "
	if len(auth) > len(scheme) && strings.EqualFold(auth[:len(scheme)], scheme) {
		return strings.TrimSpace(auth[len(scheme):])
	}
	return ""
}
