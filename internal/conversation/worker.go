package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

// SessionLookup resolves the live session an extraction job belongs to.
type SessionLookup interface {
	Get(id string) (*Session, error)
}

// ExtractionWorker consumes extraction jobs and promotes complete leads.
// A single consumer goroutine runs, so jobs for one session never overlap.
type ExtractionWorker struct {
	queue    queueClient
	sessions SessionLookup
	probe    *Probe
	promoter *Promoter
	logger   *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup

	// last job run per session; only touched by the consumer goroutine
	processed map[string]ExtractionJob
}

type workerConfig struct {
	receiveWaitSecs   int
	receiveBatchSize  int
	extractionTimeout time.Duration
	idlePoll          time.Duration
}

const (
	defaultWaitSeconds       = 1
	defaultBatchSize         = 10
	maxWaitSeconds           = 20
	maxReceiveBatchSize      = 50
	deleteTimeoutSeconds     = 5
	defaultExtractionTimeout = 30 * time.Second
	defaultIdlePoll          = 50 * time.Millisecond
)

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithReceiveWaitSeconds sets how long a poll waits for jobs. Zero polls without blocking.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many jobs to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithExtractionTimeout bounds each extraction request.
func WithExtractionTimeout(d time.Duration) WorkerOption {
	return func(cfg *workerConfig) {
		if d > 0 {
			cfg.extractionTimeout = d
		}
	}
}

// NewExtractionWorker constructs the extraction consumer.
func NewExtractionWorker(queue queueClient, sessions SessionLookup, probe *Probe, promoter *Promoter, logger *logging.Logger, opts ...WorkerOption) *ExtractionWorker {
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if sessions == nil {
		panic("conversation: session lookup cannot be nil")
	}
	if probe == nil || promoter == nil {
		panic("conversation: probe and promoter are required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		receiveWaitSecs:   defaultWaitSeconds,
		receiveBatchSize:  defaultBatchSize,
		extractionTimeout: defaultExtractionTimeout,
		idlePoll:          defaultIdlePoll,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &ExtractionWorker{
		queue:     queue,
		sessions:  sessions,
		probe:     probe,
		promoter:  promoter,
		logger:    logger,
		cfg:       cfg,
		processed: make(map[string]ExtractionJob),
	}
}

// Start launches the consumer goroutine. It stops when ctx is cancelled.
func (w *ExtractionWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Wait blocks until the consumer has exited.
func (w *ExtractionWorker) Wait() {
	w.wg.Wait()
}

func (w *ExtractionWorker) run(ctx context.Context) {
	defer w.wg.Done()
	w.logger.Debug("extraction worker started")

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("extraction worker stopping")
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			w.logger.Error("failed to receive extraction jobs", "error", err)
			if !sleepCtx(ctx, backoff) {
				return
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if len(messages) == 0 {
			w.pruneProcessed()
			if w.cfg.receiveWaitSecs == 0 && !sleepCtx(ctx, w.cfg.idlePoll) {
				return
			}
			continue
		}
		w.handleBatch(ctx, messages)
	}
}

// Drain processes every queued job on the caller's goroutine and returns when
// the queue is empty. It must not be used while the consumer started by Start is running.
func (w *ExtractionWorker) Drain(ctx context.Context) error {
	for {
		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, 0)
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			w.pruneProcessed()
			return nil
		}
		w.handleBatch(ctx, messages)
	}
}

// handleBatch keeps only the newest job per session; older snapshots of the
// same transcript are superseded.
func (w *ExtractionWorker) handleBatch(ctx context.Context, messages []queueMessage) {
	latest := make(map[string]ExtractionJob, len(messages))
	var order []string

	for _, msg := range messages {
		var payload queuePayload
		err := json.Unmarshal([]byte(msg.Body), &payload)
		w.deleteMessage(context.Background(), msg.ReceiptHandle)
		if err != nil {
			w.logger.Error("failed to decode extraction job", "error", err)
			continue
		}
		if payload.Kind != jobTypeExtract {
			w.logger.Warn("unknown job kind", "kind", payload.Kind, "job_id", payload.ID)
			continue
		}

		job := payload.Extract
		current, seen := latest[job.SessionID]
		if !seen {
			order = append(order, job.SessionID)
		}
		if !seen || job.newer(current) {
			latest[job.SessionID] = job
		}
	}

	for _, id := range order {
		w.process(ctx, latest[id])
	}
}

func (w *ExtractionWorker) process(ctx context.Context, job ExtractionJob) {
	session, err := w.sessions.Get(job.SessionID)
	if err != nil {
		delete(w.processed, job.SessionID)
		w.logger.Debug("dropping extraction job for unknown session", "session_id", job.SessionID)
		return
	}

	if last, ok := w.processed[job.SessionID]; ok && !job.newer(last) {
		return
	}
	if session.Promoted() {
		return
	}
	if _, err := session.credentials.Credential(); err != nil {
		w.logger.Debug("skipping extraction without api key", "session_id", job.SessionID)
		return
	}
	client, ok := session.backend(job.Epoch)
	if !ok {
		w.logger.Debug("dropping stale extraction job", "session_id", job.SessionID, "epoch", job.Epoch)
		return
	}
	w.processed[job.SessionID] = job

	extractCtx, cancel := context.WithTimeout(ctx, w.cfg.extractionTimeout)
	defer cancel()

	result := w.probe.Extract(extractCtx, client, job.Transcript)
	if result == nil || !result.IsComplete {
		return
	}
	w.promoter.Promote(ctx, session, job.Epoch, result)
}

// pruneProcessed forgets sessions that have since been removed.
func (w *ExtractionWorker) pruneProcessed() {
	for id := range w.processed {
		if _, err := w.sessions.Get(id); err != nil {
			delete(w.processed, id)
		}
	}
}

func (w *ExtractionWorker) deleteMessage(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}

	deleteCtx, cancel := context.WithTimeout(ctx, deleteTimeoutSeconds*time.Second)
	defer cancel()

	if err := w.queue.Delete(deleteCtx, receiptHandle); err != nil {
		w.logger.Error("failed to delete extraction job", "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
