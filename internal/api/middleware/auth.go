package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/services"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

type principalKeyType string

const principalKey principalKeyType = "principal"

// Auth resolves the request credentials through the auth service and stores
// the principal in the request context.
func Auth(auth services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := auth.Authenticate(r.Context(), r)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			if p.Method == services.MethodDemo {
				w.Header().Set("X-Demo-Mode", "true")
				// Demo sessions can browse everything but change nothing.
				// Writes are acknowledged without reaching the handlers.
				if isWrite(r.Method) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusOK)
					_ = json.NewEncoder(w).Encode(types.APIResponse{Success: true})
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// RequireAdmin rejects requests whose principal lacks the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r.Context())
		if p == nil || !p.IsAdmin() {
			writeAuthError(w, appErr.New(appErr.CodeForbidden, "administrator role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p *services.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal returns the authenticated principal, or nil outside the auth
// middleware.
func GetPrincipal(ctx context.Context) *services.Principal {
	if v := ctx.Value(principalKey); v != nil {
		if p, ok := v.(*services.Principal); ok {
			return p
		}
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(types.APIResponse{Success: false, Error: types.FromAppError(err)})
}
