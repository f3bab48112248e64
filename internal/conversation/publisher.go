package conversation

import (
	"context"
	"fmt"

	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

// TurnPublisher receives a snapshot every time a turn completes successfully.
type TurnPublisher interface {
	PublishTurn(ctx context.Context, job ExtractionJob) error
}

// Publisher enqueues extraction jobs for the extraction worker.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// PublishTurn enqueues an extraction job for the given transcript snapshot.
func (p *Publisher) PublishTurn(ctx context.Context, job ExtractionJob) error {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, body, err := encodePayload(queuePayload{Kind: jobTypeExtract, Extract: job})
	if err != nil {
		return err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("conversation: failed to enqueue extraction job: %w", err)
	}

	p.logger.Debug("extraction job enqueued",
		"job_id", payload.ID,
		"session_id", job.SessionID,
		"epoch", job.Epoch,
		"turn", job.Turn,
	)
	return nil
}
