package leads

import (
	"strings"
	"time"
)

// Status is the follow-up state of a lead.
type Status string

const (
	StatusNew       Status = "New"
	StatusContacted Status = "Contacted"
	StatusClosed    Status = "Closed"
)

// Source identifies where a lead was captured.
type Source string

const (
	SourceInstagramDM Source = "Instagram DM"
	SourceComment     Source = "Comment"
	SourceSimulator   Source = "Simulator"
)

// Lead is a captured prospective client.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Requirement string    `json:"requirement"`
	Status      Status    `json:"status"`
	Source      Source    `json:"source"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusClosed:
		return true
	}
	return false
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceInstagramDM, SourceComment, SourceSimulator:
		return true
	}
	return false
}

// Validate checks a lead before it is stored.
func (l *Lead) Validate() error {
	if l == nil {
		return ErrNilLead
	}
	if strings.TrimSpace(l.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(l.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(l.Phone) == "" {
		return ErrMissingContact
	}
	if !l.Status.Valid() {
		return ErrInvalidStatus
	}
	if !l.Source.Valid() {
		return ErrInvalidSource
	}
	return nil
}
