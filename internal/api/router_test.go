package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angryss/idp-engine/internal/api/handlers"
	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/services"
	appErr "github.com/angryss/idp-engine/pkg/errors"
	"github.com/angryss/idp-engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type stubAuth struct {
	principal *services.Principal
	err       error
}

func (s *stubAuth) Authenticate(context.Context, *http.Request) (*services.Principal, error) {
	return s.principal, s.err
}

type stubDashboard struct {
	stats *services.DashboardStatistics
}

func (s *stubDashboard) Statistics(context.Context) (*services.DashboardStatistics, error) {
	return s.stats, nil
}

func (s *stubDashboard) Invalidate(context.Context) {}

type stubAuditLogs struct {
	entries []models.AdminAuditLog
}

func (s *stubAuditLogs) Create(context.Context, *models.AdminAuditLog) error { return nil }

func (s *stubAuditLogs) List(_ context.Context, limit, offset int) ([]models.AdminAuditLog, error) {
	if offset >= len(s.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.entries) {
		end = len(s.entries)
	}
	return s.entries[offset:end], nil
}

func (s *stubAuditLogs) ListByEntityType(_ context.Context, entityType string, limit int) ([]models.AdminAuditLog, error) {
	var out []models.AdminAuditLog
	for _, e := range s.entries {
		if e.EntityType == entityType && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func testRouter(auth services.AuthService) http.Handler {
	return NewRouter(Dependencies{
		Auth: auth,
		HealthChecks: map[string]func(context.Context) error{
			"database": func(context.Context) error { return nil },
		},
		AdminHandler: handlers.NewAdminHandler(
			&stubDashboard{stats: &services.DashboardStatistics{Teams: 3}},
			&stubAuditLogs{entries: []models.AdminAuditLog{{Action: "CREATE", EntityType: "CloudProvider"}}},
		),
	})
}

func TestRouterHealthAndMetrics(t *testing.T) {
	r := testRouter(&stubAuth{err: appErr.New(appErr.CodeUnauthorized, "authentication required")})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestRouterRejectsUnauthenticated(t *testing.T) {
	r := testRouter(&stubAuth{err: appErr.New(appErr.CodeUnauthorized, "authentication required")})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stacks/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var resp types.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestRouterMetaEndpoints(t *testing.T) {
	user := &stubAuth{principal: &services.Principal{Email: "dev@corp.example", Roles: []string{services.RoleUser}}}
	r := testRouter(user)

	t.Run("user me", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Success bool               `json:"success"`
			Data    services.Principal `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "dev@corp.example", resp.Data.Email)
	})

	t.Run("stack types", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stack-types", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Success bool                     `json:"success"`
			Data    []services.StackTypeInfo `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, len(models.AllStackTypes))
	})
}

func TestRouterAdminOnlyRoutes(t *testing.T) {
	user := &stubAuth{principal: &services.Principal{Email: "dev@corp.example", Roles: []string{services.RoleUser}}}
	admin := &stubAuth{principal: &services.Principal{Email: "ops@corp.example", Roles: []string{services.RoleAdmin, services.RoleUser}}}

	t.Run("statistics forbidden for plain user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		testRouter(user).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/statistics", nil))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("statistics served for admin", func(t *testing.T) {
		rr := httptest.NewRecorder()
		testRouter(admin).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/statistics", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Success bool                          `json:"success"`
			Data    services.DashboardStatistics `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.EqualValues(t, 3, resp.Data.Teams)
	})

	t.Run("audit logs filtered by entity type", func(t *testing.T) {
		rr := httptest.NewRecorder()
		testRouter(admin).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit-logs?entity_type=CloudProvider", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Success bool                   `json:"success"`
			Data    []models.AdminAuditLog `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "CREATE", resp.Data[0].Action)
	})
}
