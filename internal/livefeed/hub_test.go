package livefeed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adarshrealtor/lead-assistant/internal/leads"
	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Clients() == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, have %d", n, hub.Clients())
}

func TestHubBroadcastsPromotedLeads(t *testing.T) {
	hub := NewHub(nil, logging.NewWithWriter("error", "text", io.Discard))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a := dial(t, srv, nil)
	b := dial(t, srv, nil)
	waitClients(t, hub, 2)

	hub.LeadPromoted(context.Background(), &leads.Lead{ID: "lead-1", Name: "Raj", Phone: "9999999999", Requirement: "2BHK Rent", Status: leads.StatusNew, Source: leads.SourceSimulator})

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var evt Event
		require.NoError(t, conn.ReadJSON(&evt))
		assert.Equal(t, EventLeadCaptured, evt.Type)
		require.NotNil(t, evt.Lead)
		assert.Equal(t, "Raj", evt.Lead.Name)
	}
}

func TestHubForgetsDisconnectedClients(t *testing.T) {
	hub := NewHub(nil, logging.NewWithWriter("error", "text", io.Discard))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv, nil)
	waitClients(t, hub, 1)
	conn.Close()
	waitClients(t, hub, 0)

	hub.LeadPromoted(context.Background(), &leads.Lead{ID: "x"})
	hub.LeadPromoted(context.Background(), nil)
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	hub := NewHub([]string{"https://dashboard.example"}, logging.NewWithWriter("error", "text", io.Discard))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	dial(t, srv, http.Header{"Origin": []string{"https://dashboard.example"}})
	waitClients(t, hub, 1)
	hub.Close()
	assert.Equal(t, 0, hub.Clients())
}
