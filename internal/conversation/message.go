package conversation

import (
	"strings"
	"time"
)

// Role is the author of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry of a session transcript. Messages are never mutated after creation.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	// Notice marks an in-transcript error notice rather than a model reply.
	Notice bool `json:"notice,omitempty"`
}

// FormatTranscript renders messages as "<role>: <text>" lines joined by newlines.
func FormatTranscript(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, string(msg.Role)+": "+msg.Text)
	}
	return strings.Join(lines, "\n")
}
