package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adarshrealtor/lead-assistant/internal/observability/metrics"
	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

// ExtractionResult is the structured lead summary of a transcript.
type ExtractionResult struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Requirement *string `json:"requirement"`
	IsComplete  bool    `json:"isComplete"`
}

// Probe asks the backend to extract lead fields from a transcript.
type Probe struct {
	model   string
	logger  *logging.Logger
	metrics *metrics.AssistantMetrics
}

// ProbeOption customizes a Probe.
type ProbeOption func(*Probe)

// WithProbeModel overrides the model used for extraction.
func WithProbeModel(model string) ProbeOption {
	return func(p *Probe) {
		if model != "" {
			p.model = model
		}
	}
}

// WithProbeMetrics records extraction outcomes.
func WithProbeMetrics(m *metrics.AssistantMetrics) ProbeOption {
	return func(p *Probe) {
		p.metrics = m
	}
}

// NewProbe creates an extraction probe.
func NewProbe(logger *logging.Logger, opts ...ProbeOption) *Probe {
	if logger == nil {
		logger = logging.Default()
	}
	p := &Probe{
		model:  defaultGeminiModel,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract returns the parsed extraction, or nil when the call fails or the
// response is empty or malformed. It is a single attempt with no retry.
func (p *Probe) Extract(ctx context.Context, client LLMClient, transcript string) *ExtractionResult {
	if client == nil {
		return nil
	}

	ctx, span := conversationTracer.Start(ctx, "conversation.extract_lead",
		trace.WithAttributes(attribute.Int("transcript.bytes", len(transcript))))
	defer span.End()

	body, err := client.GenerateJSON(ctx, StructuredRequest{
		Model:      p.model,
		Prompt:     extractionPrompt(transcript),
		Properties: leadSchema,
		Required:   []string{"isComplete"},
	})
	if err != nil {
		berr := &BackendRequestError{Op: "extraction", Err: err}
		span.RecordError(berr)
		p.logger.Warn("lead extraction failed", "error", berr)
		p.metrics.ObserveExtraction(metrics.ExtractionAbsent)
		return nil
	}

	result, err := ParseExtraction(body)
	if err != nil {
		span.RecordError(err)
		p.logger.Warn("lead extraction response unusable", "error", err)
		p.metrics.ObserveExtraction(metrics.ExtractionAbsent)
		return nil
	}

	if result.IsComplete {
		p.metrics.ObserveExtraction(metrics.ExtractionComplete)
	} else {
		p.metrics.ObserveExtraction(metrics.ExtractionIncomplete)
	}
	return result
}

// ParseExtraction decodes a structured extraction body. An empty body, invalid
// JSON or a missing isComplete flag yields an *ExtractionParseError.
func ParseExtraction(body []byte) (*ExtractionResult, error) {
	body = stripCodeFence(bytes.TrimSpace(body))
	if len(body) == 0 {
		return nil, &ExtractionParseError{}
	}

	var raw struct {
		Name        *string `json:"name"`
		Phone       *string `json:"phone"`
		Requirement *string `json:"requirement"`
		IsComplete  *bool   `json:"isComplete"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ExtractionParseError{Body: string(body), Err: err}
	}
	if raw.IsComplete == nil {
		return nil, &ExtractionParseError{Body: string(body), Err: errors.New("isComplete is missing")}
	}

	return &ExtractionResult{
		Name:        raw.Name,
		Phone:       raw.Phone,
		Requirement: raw.Requirement,
		IsComplete:  *raw.IsComplete,
	}, nil
}

func stripCodeFence(body []byte) []byte {
	if !bytes.HasPrefix(body, []byte("```")) {
		return body
	}
	body = bytes.TrimPrefix(body, []byte("```"))
	body = bytes.TrimPrefix(body, []byte("json"))
	body = bytes.TrimSuffix(bytes.TrimSpace(body), []byte("```"))
	return bytes.TrimSpace(body)
}
