package settings

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrMissingCredential is returned when no language-model API key has been configured.
var ErrMissingCredential = errors.New("settings: gemini api key is not configured")

// Settings is the operator-supplied configuration of the assistant.
type Settings struct {
	APIKey         string    `json:"api_key"`
	GoogleSheetID  string    `json:"google_sheet_id"`
	InstagramToken string    `json:"instagram_token"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Update is a partial settings change; nil fields are left untouched.
type Update struct {
	APIKey         *string `json:"api_key,omitempty"`
	GoogleSheetID  *string `json:"google_sheet_id,omitempty"`
	InstagramToken *string `json:"instagram_token,omitempty"`
}

// Store holds the current settings for the lifetime of the process.
type Store struct {
	mu  sync.RWMutex
	cur Settings
	now func() time.Time
}

// NewStore creates a settings store seeded with initial values.
func NewStore(initial Settings) *Store {
	initial.APIKey = strings.TrimSpace(initial.APIKey)
	initial.GoogleSheetID = strings.TrimSpace(initial.GoogleSheetID)
	initial.InstagramToken = strings.TrimSpace(initial.InstagramToken)
	return &Store{cur: initial, now: time.Now}
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Apply merges an update into the current settings and returns the result.
func (s *Store) Apply(u Update) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.APIKey != nil {
		s.cur.APIKey = strings.TrimSpace(*u.APIKey)
	}
	if u.GoogleSheetID != nil {
		s.cur.GoogleSheetID = strings.TrimSpace(*u.GoogleSheetID)
	}
	if u.InstagramToken != nil {
		s.cur.InstagramToken = strings.TrimSpace(*u.InstagramToken)
	}
	s.cur.UpdatedAt = s.now().UTC()
	return s.cur
}

// Credential returns the configured API key or ErrMissingCredential.
func (s *Store) Credential() (string, error) {
	s.mu.RLock()
	key := s.cur.APIKey
	s.mu.RUnlock()
	if key == "" {
		return "", ErrMissingCredential
	}
	return key, nil
}

// HasCredential reports whether an API key is configured.
func (s *Store) HasCredential() bool {
	_, err := s.Credential()
	return err == nil
}

// Masked returns the settings with secrets reduced to their last four characters.
func (s Settings) Masked() Settings {
	s.APIKey = mask(s.APIKey)
	s.InstagramToken = mask(s.InstagramToken)
	return s
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}
