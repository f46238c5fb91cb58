package handler

import (
	"encoding/json"
	"net/http"

	"surveyassistant/internal/service"
	"surveyassistant/internal/survey"

	"github.com/gorilla/mux"
)

// SessionHandler handles respondent session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// SubmitAnswerRequest is the request body for answering the current prompt
type SubmitAnswerRequest struct {
	Text string `json:"text"`
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	resp, err := h.sessionSvc.Start(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /v1/sessions/{sessionId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.sessionSvc.Get(mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Submit handles POST /v1/sessions/{sessionId}/answers
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.sessionSvc.Submit(r.Context(), mux.Vars(r)["sessionId"], req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// Document handles GET /v1/sessions/{sessionId}/document
func (h *SessionHandler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.sessionSvc.Document(mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Fields handles GET /v1/sessions/{sessionId}/fields?path=a.b&path=c
func (h *SessionHandler) Fields(w http.ResponseWriter, r *http.Request) {
	paths := r.URL.Query()["path"]
	if len(paths) == 0 {
		writeError(w, http.StatusBadRequest, "at least one path is required")
		return
	}

	fields, err := h.sessionSvc.Fields(mux.Vars(r)["sessionId"], paths)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

// Catalog handles GET /v1/catalog
func (h *SessionHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	catalog := survey.DefaultCatalog()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"questions":      catalog,
		"totalQuestions": survey.CountedQuestions(catalog),
	})
}
