package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

// Handler exposes simulator sessions over HTTP.
type Handler struct {
	sessions *Manager
	logger   *logging.Logger
}

// NewHandler creates a simulator handler.
func NewHandler(sessions *Manager, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		sessions: sessions,
		logger:   logger,
	}
}

// SendRequest is the body of a simulator message.
type SendRequest struct {
	Text string `json:"text"`
}

// SendResponse carries the reply and the transcript after the turn.
type SendResponse struct {
	Reply   Message     `json:"reply"`
	Session SessionView `json:"session"`
}

// SetupResponse is returned with 428 when no API key is configured.
type SetupResponse struct {
	Error  string `json:"error"`
	Prompt string `json:"prompt"`
}

// Create handles POST /api/simulator/sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, session.View())
}

// Get handles GET /api/simulator/sessions/{sessionID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, session.View())
}

// Restart handles POST /api/simulator/sessions/{sessionID}/restart.
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := session.Start(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, session.View())
}

// Delete handles DELETE /api/simulator/sessions/{sessionID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Remove(chi.URLParam(r, "sessionID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Message handles POST /api/simulator/sessions/{sessionID}/messages.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := session.Send(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, SendResponse{Reply: reply, Session: session.View()})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrConfiguration):
		h.writeJSON(w, http.StatusPreconditionRequired, SetupResponse{Error: err.Error(), Prompt: SetupPrompt})
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEmptyMessage):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrSessionNotStarted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("simulator request failed", "error", err)
		http.Error(w, "simulator request failed", http.StatusBadGateway)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
