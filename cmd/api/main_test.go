package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/adarshrealtor/lead-assistant/internal/config"
	"github.com/adarshrealtor/lead-assistant/internal/conversation"
	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

type scriptedLLM struct{}

func (scriptedLLM) Complete(ctx context.Context, req conversation.LLMRequest) (conversation.LLMResponse, error) {
	return conversation.LLMResponse{Text: "Thank you! A team member will call you shortly."}, nil
}

func (scriptedLLM) GenerateJSON(ctx context.Context, req conversation.StructuredRequest) ([]byte, error) {
	if !strings.Contains(req.Prompt, "9999999999") {
		return []byte(`{"name":"Raj","phone":null,"requirement":"2BHK Rent","isComplete":false}`), nil
	}
	return []byte(`{"name":"Raj","phone":"9999999999","requirement":"2BHK Rent","isComplete":true}`), nil
}

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		MetricsEnabled:      true,
		GeminiAPIKey:        "test-key",
		GeminiModel:         "gemini-2.5-flash",
		ChatTemperature:     0.7,
		TurnTimeout:         time.Second,
		ExtractionTimeout:   time.Second,
		ExtractionQueueSize: 16,
		SimulatorRateLimit:  0,
		SimulatorRateBurst:  5,
	}
}

func TestSetupMetricsExposesAssistantMetrics(t *testing.T) {
	handler, m := setupMetrics(true)
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveLeadPromoted("Simulator")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "leadassist_leads_promoted_total") {
		t.Fatalf("expected promoted counter to be exported")
	}
}

func TestSetupMetricsDisabled(t *testing.T) {
	handler, m := setupMetrics(false)
	if handler != nil || m != nil {
		t.Fatalf("expected metrics to be disabled")
	}
}

func TestSetupLeadAlertsRequiresRecipient(t *testing.T) {
	logger := logging.NewWithWriter("error", "text", io.Discard)
	if l := setupLeadAlerts(testConfig(), logger); l != nil {
		t.Fatalf("expected no alerter without LEAD_ALERT_EMAIL")
	}
	cfg := testConfig()
	cfg.LeadAlertEmail = "sales@example.com"
	if l := setupLeadAlerts(cfg, logger); l == nil {
		t.Fatalf("expected alerter when recipient is configured")
	}
}

func TestNewLoggerFormatFollowsEnv(t *testing.T) {
	var buf strings.Builder
	cfg := testConfig()
	cfg.Env = "production"
	newLogger(cfg, &buf).Info("server listening", "addr", ":8080")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("expected JSON logs in production, got %q", buf.String())
	}

	buf.Reset()
	cfg.Env = "development"
	newLogger(cfg, &buf).Info("server listening", "addr", ":8080")
	if !strings.Contains(buf.String(), `msg="server listening"`) {
		t.Fatalf("expected text logs in development, got %q", buf.String())
	}
}

func TestAppCapturesLeadEndToEnd(t *testing.T) {
	logger := logging.NewWithWriter("error", "text", io.Discard)
	factory := func(ctx context.Context, apiKey string) (conversation.LLMClient, error) { return scriptedLLM{}, nil }
	a := newApp(testConfig(), factory, logger)

	ctx, cancel := context.WithCancel(context.Background())
	a.start(ctx)
	defer func() {
		cancel()
		a.close()
	}()

	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/simulator/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	var view conversation.SessionView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	resp.Body.Close()

	for _, text := range []string{"I need a 2BHK on rent", "Raj", "9999999999"} {
		body := strings.NewReader(`{"text":"` + text + `"}`)
		resp, err := http.Post(srv.URL+"/api/simulator/sessions/"+view.ID+"/messages", "application/json", body)
		if err != nil {
			t.Fatalf("send %q: %v", text, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("send %q: status %d", text, resp.StatusCode)
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for a.leads.Count(context.Background()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("lead was not captured")
		}
		time.Sleep(10 * time.Millisecond)
	}

	captured := a.leads.All()
	if len(captured) != 1 || captured[0].Name != "Raj" || captured[0].Phone != "9999999999" {
		t.Fatalf("unexpected leads %+v", captured)
	}
}
