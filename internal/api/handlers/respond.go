package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/api/middleware"
	"github.com/angryss/idp-engine/internal/api/types"
	"github.com/angryss/idp-engine/internal/api/validators"
	"github.com/angryss/idp-engine/internal/services"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, appErr.HTTPStatus(err), types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeInvalid(w http.ResponseWriter, msg string) {
	writeError(w, appErr.New(appErr.CodeInvalid, msg))
}

// decodeAndValidate decodes the JSON body into req and runs struct validation.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeInvalid(w, "invalid json body")
		return false
	}
	if err := validators.New().Struct(req); err != nil {
		writeError(w, appErr.Wrap(err, appErr.CodeInvalid, "request validation failed"))
		return false
	}
	return true
}

// pathID parses the {id} (or named) path parameter as a UUID.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeInvalid(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// optionalID converts an optional uuid string field into a pointer.
func optionalID(w http.ResponseWriter, s, field string) (*uuid.UUID, bool) {
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		writeInvalid(w, "invalid "+field)
		return nil, false
	}
	return &id, true
}

func principal(r *http.Request) *services.Principal {
	return middleware.GetPrincipal(r.Context())
}

func actor(r *http.Request) services.Actor {
	if p := principal(r); p != nil {
		return p.Actor()
	}
	return services.Actor{}
}

func actorEmail(r *http.Request) string {
	if p := principal(r); p != nil {
		return p.Email
	}
	return ""
}
