package conversation

import (
	"context"
	"errors"
	"sync"

	"github.com/adarshrealtor/lead-assistant/internal/settings"
)

// fakeLLM replies from a script and returns a fixed extraction body.
type fakeLLM struct {
	mu          sync.Mutex
	replies     []string
	replyErr    error
	extraction  string
	extractErr  error
	completes   []LLMRequest
	extractions []StructuredRequest
	closed      bool
}

func (f *fakeLLM) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completes = append(f.completes, req)
	if f.replyErr != nil {
		return LLMResponse{}, f.replyErr
	}
	if len(f.replies) == 0 {
		return LLMResponse{Text: "Sure, tell me more."}, nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return LLMResponse{Text: reply}, nil
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, req StructuredRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extractions = append(f.extractions, req)
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return []byte(f.extraction), nil
}

func (f *fakeLLM) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeLLM) setExtraction(body string) {
	f.mu.Lock()
	f.extraction = body
	f.mu.Unlock()
}

func (f *fakeLLM) completeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.completes)
}

func (f *fakeLLM) extractionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.extractions)
}

func (f *fakeLLM) lastComplete() LLMRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completes[len(f.completes)-1]
}

// staticFactory hands out the same client and counts builds.
type staticFactory struct {
	mu     sync.Mutex
	client LLMClient
	err    error
	keys   []string
}

func (f *staticFactory) build(ctx context.Context, apiKey string) (LLMClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

func (f *staticFactory) builds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}

// toggleCredentials flips between configured and missing.
type toggleCredentials struct {
	mu  sync.Mutex
	key string
}

func (c *toggleCredentials) Credential() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == "" {
		return "", settings.ErrMissingCredential
	}
	return c.key, nil
}

func (c *toggleCredentials) set(key string) {
	c.mu.Lock()
	c.key = key
	c.mu.Unlock()
}

// recordingPublisher keeps every published job.
type recordingPublisher struct {
	mu   sync.Mutex
	jobs []ExtractionJob
	err  error
}

func (p *recordingPublisher) PublishTurn(ctx context.Context, job ExtractionJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *recordingPublisher) published() []ExtractionJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ExtractionJob, len(p.jobs))
	copy(out, p.jobs)
	return out
}

var errBackendDown = errors.New("backend down")

const completeExtraction = `{"name":"Raj","phone":"9999999999","requirement":"2BHK Rent","isComplete":true}`
