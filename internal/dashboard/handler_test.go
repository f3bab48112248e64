package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adarshrealtor/lead-assistant/internal/leads"
	"github.com/adarshrealtor/lead-assistant/internal/settings"
)

type fixedSessions int

func (f fixedSessions) Len() int { return int(f) }

func TestOverviewEmpty(t *testing.T) {
	h := NewHandler(leads.NewStore(), settings.NewStore(settings.Settings{}), nil, nil)

	overview := h.Build(context.Background())
	assert.Equal(t, 0, overview.TotalLeads)
	assert.Empty(t, overview.RecentActivity)
	assert.NotNil(t, overview.RecentActivity)
	assert.Equal(t, StatusDisconnected, overview.SystemHealth.Gemini)
	assert.Equal(t, StatusSimulated, overview.SystemHealth.GoogleSheets)
	assert.Equal(t, StatusPendingSetup, overview.SystemHealth.InstagramWebhook)
}

func TestOverviewRecentActivity(t *testing.T) {
	store := leads.NewStore()
	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Append(context.Background(), &leads.Lead{
			ID:          fmt.Sprintf("lead-%d", i),
			Name:        fmt.Sprintf("Lead %d", i),
			Phone:       "9999999999",
			Requirement: "2BHK Rent",
			Status:      leads.StatusNew,
			Source:      leads.SourceSimulator,
			CreatedAt:   time.Now(),
		}))
	}
	h := NewHandler(store, settings.NewStore(settings.Settings{APIKey: "key"}), fixedSessions(2), nil)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var overview Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.Equal(t, 5, overview.TotalLeads)
	assert.Equal(t, 2, overview.ActiveSessions)
	assert.Equal(t, StatusConnected, overview.SystemHealth.Gemini)
	require.Len(t, overview.RecentActivity, 3)
	assert.Equal(t, "lead-5", overview.RecentActivity[0].ID)
	assert.Equal(t, "lead-3", overview.RecentActivity[2].ID)
}
