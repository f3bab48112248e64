package conversation

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is the backend-facing message representation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// SchemaType is the JSON type of a structured-output property.
type SchemaType string

const (
	SchemaString  SchemaType = "string"
	SchemaBoolean SchemaType = "boolean"
)

// SchemaProperty declares one field of a structured response.
type SchemaProperty struct {
	Name        string
	Type        SchemaType
	Nullable    bool
	Description string
}

// StructuredRequest asks the backend for a JSON document matching the declared properties.
type StructuredRequest struct {
	Model       string
	Prompt      string
	Properties  []SchemaProperty
	Required    []string
	Temperature float32
}

// LLMClient is the language-model backend used for chat turns and lead extraction.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
	GenerateJSON(ctx context.Context, req StructuredRequest) ([]byte, error)
}

// ClientFactory builds a backend client for an operator-supplied API key.
type ClientFactory func(ctx context.Context, apiKey string) (LLMClient, error)
