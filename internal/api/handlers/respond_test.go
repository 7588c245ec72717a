package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angryss/idp-engine/internal/api/middleware"
	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/services"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) types.APIResponse {
	t.Helper()
	var resp types.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"aws"}`))
		rr := httptest.NewRecorder()
		var in types.ProviderRequest
		require.True(t, decodeAndValidate(rr, req, &in))
		assert.Equal(t, "aws", in.Name)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		rr := httptest.NewRecorder()
		var in types.ProviderRequest
		require.False(t, decodeAndValidate(rr, req, &in))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"description":"no name"}`))
		rr := httptest.NewRecorder()
		var in types.ProviderRequest
		require.False(t, decodeAndValidate(rr, req, &in))
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		resp := decodeEnvelope(t, rr)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, string(appErr.CodeInvalid), resp.Error.Code)
	})
}

func TestWriteErrorViolations(t *testing.T) {
	err := appErr.New(appErr.CodeInvalid, "property validation failed").
		WithMeta("violations", []string{"engine: value is required", "instances: must be at most 5"})
	rr := httptest.NewRecorder()
	writeError(rr, err)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeEnvelope(t, rr)
	require.NotNil(t, resp.Error)
	assert.Len(t, resp.Error.Details, 2)
	assert.Contains(t, resp.Error.Details[0], "engine")
}

func TestPathID(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Get("/items/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, ok := pathID(w, req, "id")
		if !ok {
			return
		}
		got = id.String()
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/0191a0aa-1111-4222-8333-444455556666", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "0191a0aa-1111-4222-8333-444455556666", got)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOptionalID(t *testing.T) {
	rr := httptest.NewRecorder()
	id, ok := optionalID(rr, "", "team_id")
	require.True(t, ok)
	assert.Nil(t, id)

	id, ok = optionalID(rr, "0191a0aa-1111-4222-8333-444455556666", "team_id")
	require.True(t, ok)
	require.NotNil(t, id)

	rr = httptest.NewRecorder()
	_, ok = optionalID(rr, "nope", "team_id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestActorHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	// No principal in context.
	assert.Equal(t, services.Actor{}, actor(req))
	assert.Empty(t, actorEmail(req))

	p := &services.Principal{Email: "dev@corp.example", Roles: []string{services.RoleAdmin}}
	req = req.WithContext(middleware.WithPrincipal(req.Context(), p))
	a := actor(req)
	assert.Equal(t, "dev@corp.example", a.Email)
	assert.True(t, a.Admin)
	assert.Equal(t, "dev@corp.example", actorEmail(req))
}
