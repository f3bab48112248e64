// Package dashboard serves the automation overview.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/adarshrealtor/lead-assistant/internal/leads"
	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

// Health labels shown for each integration.
const (
	StatusConnected    = "Connected"
	StatusDisconnected = "Disconnected"
	StatusSimulated    = "Simulated"
	StatusPendingSetup = "Pending Setup"

	recentActivityLimit = 3
)

// LeadSource is the read side of the lead store used by the overview.
type LeadSource interface {
	Recent(n int) []*leads.Lead
	Count(ctx context.Context) int
}

// CredentialChecker reports whether an API key is configured.
type CredentialChecker interface {
	HasCredential() bool
}

// SessionCounter reports live simulator sessions.
type SessionCounter interface {
	Len() int
}

// Overview is the GET /api/dashboard body.
type Overview struct {
	TotalLeads     int           `json:"total_leads"`
	ActiveSessions int           `json:"active_sessions"`
	Status         string        `json:"status"`
	RecentActivity []*leads.Lead `json:"recent_activity"`
	SystemHealth   SystemHealth  `json:"system_health"`
}

// SystemHealth is the integration status panel.
type SystemHealth struct {
	Gemini           string `json:"gemini"`
	GoogleSheets     string `json:"google_sheets"`
	InstagramWebhook string `json:"instagram_webhook"`
}

// Handler serves the overview.
type Handler struct {
	leads       LeadSource
	credentials CredentialChecker
	sessions    SessionCounter
	logger      *logging.Logger
}

// NewHandler creates a dashboard handler. sessions may be nil.
func NewHandler(leadSource LeadSource, credentials CredentialChecker, sessions SessionCounter, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		leads:       leadSource,
		credentials: credentials,
		sessions:    sessions,
		logger:      logger,
	}
}

// Build assembles the overview.
func (h *Handler) Build(ctx context.Context) Overview {
	gemini := StatusDisconnected
	if h.credentials != nil && h.credentials.HasCredential() {
		gemini = StatusConnected
	}

	overview := Overview{
		Status:         "Active",
		RecentActivity: []*leads.Lead{},
		SystemHealth: SystemHealth{
			Gemini:           gemini,
			GoogleSheets:     StatusSimulated,
			InstagramWebhook: StatusPendingSetup,
		},
	}
	if h.leads != nil {
		overview.TotalLeads = h.leads.Count(ctx)
		if recent := h.leads.Recent(recentActivityLimit); len(recent) > 0 {
			overview.RecentActivity = recent
		}
	}
	if h.sessions != nil {
		overview.ActiveSessions = h.sessions.Len()
	}
	return overview
}

// Get handles GET /api/dashboard.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.Build(r.Context())); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
