package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type jobType string

const (
	jobTypeExtract jobType = "extract_lead"
)

// ExtractionJob is the transcript snapshot taken when a turn completes.
type ExtractionJob struct {
	SessionID  string `json:"session_id"`
	Epoch      uint64 `json:"epoch"`
	Turn       uint64 `json:"turn"`
	Transcript string `json:"transcript"`
}

// newer reports whether j supersedes other for the same session.
func (j ExtractionJob) newer(other ExtractionJob) bool {
	if j.Epoch != other.Epoch {
		return j.Epoch > other.Epoch
	}
	return j.Turn > other.Turn
}

type queuePayload struct {
	ID      string        `json:"id"`
	Kind    jobType       `json:"kind"`
	Extract ExtractionJob `json:"extract"`
}

func encodePayload(payload queuePayload) (queuePayload, string, error) {
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return queuePayload{}, "", fmt.Errorf("conversation: failed to encode payload: %w", err)
	}

	return payload, string(body), nil
}
