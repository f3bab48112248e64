package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/adarshrealtor/lead-assistant/internal/leads"
	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

const (
	alertCategory   = "lead-alert"
	alertTimeout    = 10 * time.Second
	alertQueueDepth = 32
)

// LeadAlerter emails the sales team whenever a lead is captured. Alerts are
// queued by LeadPromoted and sent by Run.
type LeadAlerter struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
	pending    chan *leads.Lead
}

// NewLeadAlerter creates an alerter. Blank recipients are ignored; with none
// left, alerts are skipped.
func NewLeadAlerter(email EmailSender, recipients []string, logger *logging.Logger) *LeadAlerter {
	if logger == nil {
		logger = logging.Default()
	}
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return &LeadAlerter{
		email:      email,
		recipients: to,
		logger:     logger,
		pending:    make(chan *leads.Lead, alertQueueDepth),
	}
}

// LeadPromoted queues the alert without blocking. When the queue is full the
// alert is dropped and logged.
func (a *LeadAlerter) LeadPromoted(ctx context.Context, lead *leads.Lead) {
	if lead == nil {
		return
	}
	select {
	case a.pending <- lead:
	default:
		a.logger.Warn("notify: alert queue full, dropping lead alert", "lead_id", lead.ID)
	}
}

// Run sends queued alerts until ctx is done. Failures are logged.
func (a *LeadAlerter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case lead := <-a.pending:
			a.deliver(ctx, lead)
		}
	}
}

func (a *LeadAlerter) deliver(ctx context.Context, lead *leads.Lead) {
	ctx, cancel := context.WithTimeout(ctx, alertTimeout)
	defer cancel()
	if err := a.NotifyNewLead(ctx, lead); err != nil {
		a.logger.Error("notify: lead alert failed", "error", err, "lead_id", lead.ID)
	}
}

// NotifyNewLead emails every recipient about lead.
func (a *LeadAlerter) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if lead == nil || a.email == nil || len(a.recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("🏠 New Lead - %s", lead.Name)
	body := fmt.Sprintf(`A new lead has been captured!

Name: %s
Phone: %s
Requirement: %s
Source: %s
Captured: %s

Please call them shortly.

— Adarsh Realtor Assistant`, lead.Name, lead.Phone, lead.Requirement, lead.Source, lead.CreatedAt.Format("January 2, 2006 at 3:04 PM"))

	var errs []error
	for _, recipient := range a.recipients {
		msg := EmailMessage{
			To:       recipient,
			Subject:  subject,
			Body:     body,
			HTML:     leadHTML(lead),
			Category: alertCategory,
		}
		if err := a.email.Send(ctx, msg); err != nil {
			a.logger.Error("notify: failed to send email", "error", err, "to", recipient)
			errs = append(errs, err)
			continue
		}
		a.logger.Info("notify: lead email sent", "to", recipient, "lead_id", lead.ID)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed", len(errs))
	}
	return nil
}

func leadHTML(lead *leads.Lead) string {
	row := func(label, value string) string {
		return fmt.Sprintf(`<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`,
			label, html.EscapeString(value))
	}
	return `<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #2563eb;">🏠 New Lead Captured</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
` + row("Name", lead.Name) + "\n" +
		row("Phone", lead.Phone) + "\n" +
		row("Requirement", lead.Requirement) + "\n" +
		row("Source", string(lead.Source)) + `
</table>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— Adarsh Realtor Assistant</p>
</div>`
}
