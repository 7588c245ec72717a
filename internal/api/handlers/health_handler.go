package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/angryss/idp-engine/internal/api/types"
)

// HealthHandler serves liveness and readiness probes. Readiness pings the
// registered dependency checks.
type HealthHandler struct {
	checks map[string]func(context.Context) error
}

func NewHealthHandler(checks map[string]func(context.Context) error) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ready"}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
		} else {
			status[name] = "ok"
		}
	}
	if !healthy {
		status["status"] = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, types.APIResponse{Success: false, Data: status})
		return
	}
	writeData(w, http.StatusOK, status)
}
