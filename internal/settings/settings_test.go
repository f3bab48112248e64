package settings

import (
	"errors"
	"testing"
	"time"
)

func TestCredentialMissing(t *testing.T) {
	store := NewStore(Settings{APIKey: "   "})
	if _, err := store.Credential(); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if store.HasCredential() {
		t.Fatalf("expected no credential")
	}
}

func TestApplyPartialUpdate(t *testing.T) {
	store := NewStore(Settings{GoogleSheetID: "sheet-1"})
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	key := " AIza-test-key "
	got := store.Apply(Update{APIKey: &key})

	if got.APIKey != "AIza-test-key" {
		t.Fatalf("expected trimmed key, got %q", got.APIKey)
	}
	if got.GoogleSheetID != "sheet-1" {
		t.Fatalf("expected sheet id preserved, got %q", got.GoogleSheetID)
	}
	if !got.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected updated_at %v, got %v", fixed, got.UpdatedAt)
	}
	cred, err := store.Credential()
	if err != nil || cred != "AIza-test-key" {
		t.Fatalf("unexpected credential %q err=%v", cred, err)
	}

	empty := ""
	store.Apply(Update{APIKey: &empty})
	if store.HasCredential() {
		t.Fatalf("expected clearing the key to remove the credential")
	}
}

func TestMasked(t *testing.T) {
	s := Settings{APIKey: "AIzaSyABCDEF1234", InstagramToken: "abc", GoogleSheetID: "sheet"}.Masked()
	if s.APIKey != "********1234" {
		t.Fatalf("unexpected masked key %q", s.APIKey)
	}
	if s.InstagramToken != "***" {
		t.Fatalf("unexpected masked token %q", s.InstagramToken)
	}
	if s.GoogleSheetID != "sheet" {
		t.Fatalf("sheet id should not be masked, got %q", s.GoogleSheetID)
	}
}
