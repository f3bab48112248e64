package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/adarshrealtor/lead-assistant/internal/leads"
)

type mockEmailSender struct {
	sent    []EmailMessage
	failOn  string // fail if To matches this
	callErr error
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if m.callErr != nil {
		return m.callErr
	}
	if m.failOn != "" && msg.To == m.failOn {
		return errors.New("mock email error")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func testLead() *leads.Lead {
	return &leads.Lead{
		ID:          "lead-1",
		Name:        "Raj",
		Phone:       "9999999999",
		Requirement: "2BHK <Rent>",
		Status:      leads.StatusNew,
		Source:      leads.SourceSimulator,
		CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestLeadAlerter_NoRecipients(t *testing.T) {
	email := &mockEmailSender{}
	alerter := NewLeadAlerter(email, []string{"", "  "}, nil)

	if err := alerter.NotifyNewLead(context.Background(), testLead()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(email.sent) != 0 {
		t.Errorf("expected no emails, got %d", len(email.sent))
	}
}

func TestLeadAlerter_SendsToEachRecipient(t *testing.T) {
	email := &mockEmailSender{}
	alerter := NewLeadAlerter(email, []string{"a@example.com", " b@example.com "}, nil)

	if err := alerter.NotifyNewLead(context.Background(), testLead()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(email.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(email.sent))
	}
	msg := email.sent[1]
	if msg.To != "b@example.com" {
		t.Errorf("expected trimmed recipient, got %q", msg.To)
	}
	if !strings.Contains(msg.Subject, "Raj") {
		t.Errorf("subject should name the lead: %q", msg.Subject)
	}
	for _, want := range []string{"9999999999", "2BHK <Rent>", "Simulator", "March 1, 2025"} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if !strings.Contains(msg.HTML, "2BHK &lt;Rent&gt;") {
		t.Errorf("html should escape values: %s", msg.HTML)
	}
	if msg.Category != alertCategory {
		t.Errorf("unexpected category %q", msg.Category)
	}
}

func TestLeadAlerter_PartialFailure(t *testing.T) {
	email := &mockEmailSender{failOn: "a@example.com"}
	alerter := NewLeadAlerter(email, []string{"a@example.com", "b@example.com"}, nil)

	err := alerter.NotifyNewLead(context.Background(), testLead())
	if err == nil {
		t.Fatal("expected error when a send fails")
	}
	if len(email.sent) != 1 {
		t.Errorf("expected remaining recipient to be emailed, got %d", len(email.sent))
	}
}

// blockingSender holds every Send until release is closed.
type blockingSender struct {
	release chan struct{}
	sent    chan EmailMessage
}

func (b *blockingSender) Send(ctx context.Context, msg EmailMessage) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	b.sent <- msg
	return nil
}

func TestLeadAlerter_LeadPromotedDoesNotWaitForDelivery(t *testing.T) {
	email := &blockingSender{release: make(chan struct{}), sent: make(chan EmailMessage, 1)}
	alerter := NewLeadAlerter(email, []string{"a@example.com"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go alerter.Run(ctx)

	returned := make(chan struct{})
	go func() {
		alerter.LeadPromoted(context.Background(), testLead())
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("LeadPromoted blocked on a slow sender")
	}

	close(email.release)
	select {
	case msg := <-email.sent:
		if msg.To != "a@example.com" {
			t.Errorf("unexpected recipient %q", msg.To)
		}
	case <-time.After(time.Second):
		t.Fatal("queued alert was never delivered")
	}
}

func TestLeadAlerter_FullQueueDropsAlerts(t *testing.T) {
	email := &mockEmailSender{}
	alerter := NewLeadAlerter(email, []string{"a@example.com"}, nil)

	for i := 0; i < alertQueueDepth+5; i++ {
		alerter.LeadPromoted(context.Background(), testLead())
	}
	if got := len(alerter.pending); got != alertQueueDepth {
		t.Fatalf("expected queue capped at %d, got %d", alertQueueDepth, got)
	}
}

func TestLeadAlerter_RunSwallowsErrors(t *testing.T) {
	email := &mockEmailSender{callErr: errors.New("down")}
	alerter := NewLeadAlerter(email, []string{"a@example.com"}, nil)
	alerter.LeadPromoted(context.Background(), testLead())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		alerter.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestLeadAlerter_StubSender(t *testing.T) {
	alerter := NewLeadAlerter(NewStubEmailSender(nil), []string{"a@example.com"}, nil)
	if err := alerter.NotifyNewLead(context.Background(), testLead()); err != nil {
		t.Fatalf("stub sender should not fail: %v", err)
	}
}
