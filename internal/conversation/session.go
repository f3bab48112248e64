package conversation

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adarshrealtor/lead-assistant/internal/observability/metrics"
	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

var conversationTracer = otel.Tracer("leadassist/conversation")

const (
	defaultTemperature = 0.7
	defaultTurnTimeout = 30 * time.Second
	publishTimeout     = 5 * time.Second
)

// CredentialSource supplies the operator's API key.
type CredentialSource interface {
	Credential() (string, error)
}

type sessionConfig struct {
	model       string
	temperature float32
	turnTimeout time.Duration
	metrics     *metrics.AssistantMetrics
	now         func() time.Time
}

// SessionOption customizes session behavior.
type SessionOption func(*sessionConfig)

// WithModel overrides the chat model id.
func WithModel(model string) SessionOption {
	return func(cfg *sessionConfig) {
		if strings.TrimSpace(model) != "" {
			cfg.model = model
		}
	}
}

// WithTemperature sets the chat sampling temperature.
func WithTemperature(t float32) SessionOption {
	return func(cfg *sessionConfig) {
		if t >= 0 {
			cfg.temperature = t
		}
	}
}

// WithTurnTimeout bounds each backend round trip.
func WithTurnTimeout(d time.Duration) SessionOption {
	return func(cfg *sessionConfig) {
		if d > 0 {
			cfg.turnTimeout = d
		}
	}
}

// WithSessionMetrics records turn outcomes.
func WithSessionMetrics(m *metrics.AssistantMetrics) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.metrics = m
	}
}

// WithSessionClock overrides the timestamp source.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(cfg *sessionConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// Session is one simulated conversation with the assistant. Turns are
// serialized: a second Send waits for the first to finish.
type Session struct {
	id          string
	credentials CredentialSource
	factory     ClientFactory
	publisher   TurnPublisher
	logger      *logging.Logger
	cfg         sessionConfig

	turnMu sync.Mutex

	mu       sync.RWMutex
	client   LLMClient
	messages []Message
	history  []ChatMessage
	started  bool
	epoch    uint64
	turn     uint64
	promoted bool
	active   time.Time
}

// SessionView is a read-only snapshot of a session.
type SessionView struct {
	ID       string    `json:"id"`
	Started  bool      `json:"started"`
	Epoch    uint64    `json:"epoch"`
	Turn     uint64    `json:"turn"`
	Promoted bool      `json:"lead_captured"`
	Messages []Message `json:"messages"`
}

// NewSession constructs an unstarted session. publisher may be nil, in which
// case completed turns are not submitted for extraction.
func NewSession(id string, credentials CredentialSource, factory ClientFactory, publisher TurnPublisher, logger *logging.Logger, opts ...SessionOption) *Session {
	if credentials == nil {
		panic("conversation: credential source cannot be nil")
	}
	if factory == nil {
		panic("conversation: client factory cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	cfg := sessionConfig{
		model:       defaultGeminiModel,
		temperature: defaultTemperature,
		turnTimeout: defaultTurnTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		id:          id,
		credentials: credentials,
		factory:     factory,
		publisher:   publisher,
		logger:      logger.With("session_id", id),
		cfg:         cfg,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start resets the transcript to the seed greeting and re-arms lead promotion.
func (s *Session) Start(ctx context.Context) error {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	key, err := s.credentials.Credential()
	if err != nil {
		return &ConfigurationError{Err: err}
	}

	client, err := s.factory(ctx, key)
	if err != nil {
		return &BackendRequestError{Op: "session start", Err: err}
	}

	s.mu.Lock()
	previous := s.client
	s.client = client
	s.messages = []Message{{Role: RoleModel, Text: Greeting, Timestamp: s.cfg.now()}}
	s.history = nil
	s.started = true
	s.epoch++
	s.turn = 0
	s.promoted = false
	s.active = s.cfg.now()
	epoch := s.epoch
	s.mu.Unlock()

	s.closeClient(previous)
	s.cfg.metrics.ObserveSessionStarted()
	s.logger.Info("simulator session started", "epoch", epoch)
	return nil
}

// Send runs one user turn. A backend failure is reported as an error notice
// message in the transcript and returned with a nil error.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	if _, err := s.credentials.Credential(); err != nil {
		return Message{}, &ConfigurationError{Err: err}
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return Message{}, ErrSessionNotStarted
	}
	client := s.client
	s.active = s.cfg.now()
	s.messages = append(s.messages, Message{Role: RoleUser, Text: text, Timestamp: s.cfg.now()})
	history := make([]ChatMessage, 0, len(s.history)+1)
	history = append(history, s.history...)
	history = append(history, ChatMessage{Role: ChatRoleUser, Content: text})
	s.mu.Unlock()

	ctx, span := conversationTracer.Start(ctx, "conversation.turn",
		trace.WithAttributes(attribute.String("session.id", s.id)))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.turnTimeout)
	start := time.Now()
	resp, err := client.Complete(callCtx, LLMRequest{
		Model:       s.cfg.model,
		System:      []string{SystemInstruction},
		Messages:    history,
		Temperature: s.cfg.temperature,
	})
	cancel()
	latency := time.Since(start).Seconds()

	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		berr := &BackendRequestError{Op: "chat", Err: err}
		span.RecordError(berr)
		s.logger.Warn("chat turn failed", "error", berr)
		s.cfg.metrics.ObserveTurn("error", latency)

		notice := Message{Role: RoleModel, Text: ErrorNotice, Timestamp: s.cfg.now(), Notice: true}
		s.mu.Lock()
		s.messages = append(s.messages, notice)
		s.mu.Unlock()
		return notice, nil
	}

	reply := Message{Role: RoleModel, Text: resp.Text, Timestamp: s.cfg.now()}

	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.history = append(s.history,
		ChatMessage{Role: ChatRoleUser, Content: text},
		ChatMessage{Role: ChatRoleAssistant, Content: resp.Text},
	)
	s.turn++
	job := ExtractionJob{
		SessionID:  s.id,
		Epoch:      s.epoch,
		Turn:       s.turn,
		Transcript: FormatTranscript(s.messages),
	}
	s.mu.Unlock()

	s.cfg.metrics.ObserveTurn("ok", latency)
	s.logger.Debug("chat turn completed", "turn", job.Turn, "tokens", resp.Usage.TotalTokens)
	s.publish(ctx, job)
	return reply, nil
}

func (s *Session) publish(ctx context.Context, job ExtractionJob) {
	if s.publisher == nil {
		return
	}
	// The turn has already succeeded; the caller going away must not drop the job.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishTurn(ctx, job); err != nil {
		s.logger.Warn("failed to enqueue lead extraction", "error", err, "turn", job.Turn)
	}
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// View returns a snapshot of the session state.
func (s *Session) View() SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return SessionView{
		ID:       s.id,
		Started:  s.started,
		Epoch:    s.epoch,
		Turn:     s.turn,
		Promoted: s.promoted,
		Messages: msgs,
	}
}

// Epoch returns the number of times the session has been started.
func (s *Session) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// LastActive returns when the session was last started or sent a turn.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Promoted reports whether a lead was already captured in the current epoch.
func (s *Session) Promoted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.promoted
}

// backend returns the client for epoch, or false when the session has since restarted.
func (s *Session) backend(epoch uint64) (LLMClient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.epoch != epoch {
		return nil, false
	}
	return s.client, true
}

// claimPromotion marks the current epoch as promoted. It returns false if the
// epoch is stale or a lead was already promoted.
func (s *Session) claimPromotion(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.epoch != epoch || s.promoted {
		return false
	}
	s.promoted = true
	return true
}

func (s *Session) releasePromotion(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.promoted = false
	}
}

// Close releases the backend client.
func (s *Session) Close() error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.started = false
	s.mu.Unlock()
	return closeIfCloser(client)
}

func (s *Session) closeClient(client LLMClient) {
	if err := closeIfCloser(client); err != nil {
		s.logger.Warn("failed to close previous llm client", "error", err)
	}
}

func closeIfCloser(client LLMClient) error {
	if closer, ok := client.(io.Closer); ok && closer != nil {
		return closer.Close()
	}
	return nil
}
