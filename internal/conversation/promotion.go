package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adarshrealtor/lead-assistant/internal/leads"
	"github.com/adarshrealtor/lead-assistant/internal/observability/metrics"
	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

// Placeholders used when a complete extraction still omits a field.
const (
	DefaultName        = "Unknown"
	DefaultPhone       = "Unknown"
	DefaultRequirement = "Not specified"
)

// LeadAppender stores promoted leads.
type LeadAppender interface {
	Append(ctx context.Context, lead *leads.Lead) error
}

// PromotionListener is notified after a lead has been stored.
type PromotionListener interface {
	LeadPromoted(ctx context.Context, lead *leads.Lead)
}

// PromotionListenerFunc adapts a function to PromotionListener.
type PromotionListenerFunc func(ctx context.Context, lead *leads.Lead)

func (f PromotionListenerFunc) LeadPromoted(ctx context.Context, lead *leads.Lead) { f(ctx, lead) }

// promotionTarget is the session side of the one-lead-per-epoch guard.
type promotionTarget interface {
	ID() string
	claimPromotion(epoch uint64) bool
	releasePromotion(epoch uint64)
}

// Promoter turns complete extractions into stored leads, at most once per session epoch.
type Promoter struct {
	store     LeadAppender
	logger    *logging.Logger
	metrics   *metrics.AssistantMetrics
	listeners []PromotionListener
	now       func() time.Time
	newID     func() string
}

// PromoterOption customizes a Promoter.
type PromoterOption func(*Promoter)

// WithPromotionListener registers a listener for stored leads.
func WithPromotionListener(l PromotionListener) PromoterOption {
	return func(p *Promoter) {
		if l != nil {
			p.listeners = append(p.listeners, l)
		}
	}
}

// WithPromoterMetrics counts promoted leads.
func WithPromoterMetrics(m *metrics.AssistantMetrics) PromoterOption {
	return func(p *Promoter) {
		p.metrics = m
	}
}

// WithPromoterClock overrides the lead timestamp source.
func WithPromoterClock(now func() time.Time) PromoterOption {
	return func(p *Promoter) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLeadIDGenerator overrides lead id generation.
func WithLeadIDGenerator(gen func() string) PromoterOption {
	return func(p *Promoter) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// NewPromoter creates a promoter that appends to store.
func NewPromoter(store LeadAppender, logger *logging.Logger, opts ...PromoterOption) *Promoter {
	if store == nil {
		panic("conversation: lead store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	p := &Promoter{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Promote stores a lead for a complete result. It returns false when the
// result is absent or incomplete, the epoch is stale or already promoted, or
// the store rejects the lead.
func (p *Promoter) Promote(ctx context.Context, target promotionTarget, epoch uint64, result *ExtractionResult) (*leads.Lead, bool) {
	if target == nil || result == nil || !result.IsComplete {
		return nil, false
	}
	if !target.claimPromotion(epoch) {
		return nil, false
	}

	lead, defaulted := BuildLead(result, p.newID(), p.now())
	if err := p.store.Append(ctx, lead); err != nil {
		target.releasePromotion(epoch)
		p.logger.Error("failed to store lead", "error", err, "session_id", target.ID())
		return nil, false
	}

	if len(defaulted) > 0 {
		p.logger.Warn("lead promoted with defaulted fields",
			"lead_id", lead.ID,
			"session_id", target.ID(),
			"fields", defaulted,
		)
	} else {
		p.logger.Info("lead promoted", "lead_id", lead.ID, "session_id", target.ID())
	}
	p.metrics.ObserveLeadPromoted(string(lead.Source))

	for _, l := range p.listeners {
		l.LeadPromoted(ctx, lead)
	}
	return lead, true
}

// BuildLead maps an extraction onto a new simulator lead. Missing or blank
// fields take their placeholder and are reported in defaulted.
func BuildLead(result *ExtractionResult, id string, now time.Time) (*leads.Lead, []string) {
	var defaulted []string
	field := func(name string, v *string, fallback string) string {
		if v != nil {
			if s := strings.TrimSpace(*v); s != "" {
				return s
			}
		}
		defaulted = append(defaulted, name)
		return fallback
	}

	lead := &leads.Lead{
		ID:          id,
		Name:        field("name", result.Name, DefaultName),
		Phone:       field("phone", result.Phone, DefaultPhone),
		Requirement: field("requirement", result.Requirement, DefaultRequirement),
		Status:      leads.StatusNew,
		Source:      leads.SourceSimulator,
		CreatedAt:   now,
	}
	return lead, defaulted
}
