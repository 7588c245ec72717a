package handlers

import (
	"net/http"

	"github.com/angryss/idp-engine/internal/services"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// MetaHandler serves read-only platform metadata: the caller identity and
// the stack type catalog.
type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

func (h *MetaHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p == nil {
		writeError(w, appErr.New(appErr.CodeUnauthorized, "authentication required"))
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *MetaHandler) StackTypes(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, services.StackTypeInfos())
}
