package handlers

import (
	"net/http"
	"strconv"

	"github.com/angryss/idp-engine/internal/repository"
	"github.com/angryss/idp-engine/internal/services"
)

// AdminHandler exposes platform statistics and the audit trail.
// Routes using it sit behind the admin-only middleware.
type AdminHandler struct {
	dashboard services.DashboardService
	audit     repository.AuditLogRepository
}

func NewAdminHandler(dashboard services.DashboardService, audit repository.AuditLogRepository) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, audit: audit}
}

func (h *AdminHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Statistics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	if limit > 500 {
		limit = 500
	}
	if entityType := r.URL.Query().Get("entity_type"); entityType != "" {
		entries, err := h.audit.ListByEntityType(r.Context(), entityType, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, entries)
		return
	}
	entries, err := h.audit.List(r.Context(), limit, queryInt(r, "offset", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

func queryInt(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
