package leads

import "errors"

var (
	// ErrNilLead is returned when a nil lead is appended
	ErrNilLead = errors.New("lead is nil")

	// ErrMissingID is returned when a lead has no identifier
	ErrMissingID = errors.New("lead id is required")

	// ErrInvalidName is returned when the name is invalid
	ErrInvalidName = errors.New("name is required")

	// ErrMissingContact is returned when the phone is missing
	ErrMissingContact = errors.New("phone is required")

	// ErrInvalidStatus is returned for an unknown status value
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrInvalidSource is returned for an unknown source value
	ErrInvalidSource = errors.New("invalid lead source")

	// ErrDuplicateLead is returned when a lead id is already stored
	ErrDuplicateLead = errors.New("lead already exists")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)
