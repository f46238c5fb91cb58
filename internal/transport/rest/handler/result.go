package handler

import (
	"net/http"
	"strconv"

	"surveyassistant/internal/service"

	"github.com/gorilla/mux"
)

// ResultHandler handles host endpoints for progress and finished documents
type ResultHandler struct {
	sessionSvc *service.SessionService
}

// NewResultHandler creates a new result handler
func NewResultHandler(sessionSvc *service.SessionService) *ResultHandler {
	return &ResultHandler{sessionSvc: sessionSvc}
}

// Get handles GET /v1/results/{sessionId}
func (h *ResultHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.sessionSvc.Result(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// List handles GET /v1/results?limit=20
func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := int64(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	results, err := h.sessionSvc.ListResults(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Progress handles GET /v1/progress/{sessionId}
func (h *ResultHandler) Progress(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessionSvc.Progress(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Close handles DELETE /v1/admin/sessions/{sessionId}
func (h *ResultHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.Close(r.Context(), mux.Vars(r)["sessionId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
