package settings

import (
	"encoding/json"
	"net/http"

	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

// Handler serves the settings form endpoints.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a settings handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Response is the masked view of the settings plus whether the AI backend can be used.
type Response struct {
	Settings
	Configured bool `json:"configured"`
}

// Get handles GET /api/settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.response(h.store.Get()))
}

// Put handles PUT /api/settings.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	var u Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		h.logger.Error("failed to decode settings update", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated := h.store.Apply(u)
	h.logger.Info("settings updated",
		"api_key_set", updated.APIKey != "",
		"google_sheet_set", updated.GoogleSheetID != "",
		"instagram_token_set", updated.InstagramToken != "",
	)
	h.writeJSON(w, http.StatusOK, h.response(updated))
}

func (h *Handler) response(s Settings) Response {
	return Response{Settings: s.Masked(), Configured: s.APIKey != ""}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
