package conversation

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches any *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("conversation: assistant is not configured")

	// ErrEmptyMessage is returned when a send carries no text.
	ErrEmptyMessage = errors.New("conversation: message text is required")

	// ErrSessionNotStarted is returned when sending before Start succeeded.
	ErrSessionNotStarted = errors.New("conversation: session has not been started")

	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("conversation: session not found")
)

// ConfigurationError reports a missing credential. No backend call was attempted.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return ErrConfiguration.Error()
	}
	return fmt.Sprintf("%s: %v", ErrConfiguration.Error(), e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// BackendRequestError wraps a failed language-model call.
type BackendRequestError struct {
	Op  string
	Err error
}

func (e *BackendRequestError) Error() string {
	return fmt.Sprintf("conversation: %s request failed: %v", e.Op, e.Err)
}

func (e *BackendRequestError) Unwrap() error { return e.Err }

// ExtractionParseError reports a missing or malformed structured extraction body.
type ExtractionParseError struct {
	Body string
	Err  error
}

func (e *ExtractionParseError) Error() string {
	if e.Err == nil {
		return "conversation: extraction response is empty"
	}
	return fmt.Sprintf("conversation: malformed extraction response: %v", e.Err)
}

func (e *ExtractionParseError) Unwrap() error { return e.Err }
