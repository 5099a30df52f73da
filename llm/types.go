package llm

import (
	"github.com/go-playground/validator/v10"
)

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Model tiers understood by the remote service.
const (
	ModelFast     = "fast"
	ModelBalanced = "balanced"
	ModelPowerful = "powerful"
)

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// ChatInput is the value object for one chat call, streaming or not.
type ChatInput struct {
	Messages     []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	SystemPrompt string        `json:"systemPrompt,omitempty"`
	Model        string        `json:"model,omitempty" validate:"omitempty,oneof=fast balanced powerful"`
	MaxTokens    int           `json:"maxTokens,omitempty" validate:"omitempty,min=1"`
	Temperature  float64       `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
}

// StreamChunk is one incremental content fragment. Index is assigned by
// the remote service and is monotonic but not necessarily gapless.
type StreamChunk struct {
	Content string `json:"content"`
	Index   int    `json:"index"`
}

// ChatResponse is the terminal aggregate of one chat turn.
type ChatResponse struct {
	Content      string  `json:"fullContent"`
	Model        string  `json:"model,omitempty"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	CostUsd      float64 `json:"costUsd,omitempty"`
	LatencyMs    int64   `json:"latencyMs,omitempty"`
	StopReason   string  `json:"stopReason,omitempty"`
}

var validate = validator.New()

// Validate checks the input against its declared constraints.
func (in *ChatInput) Validate() error {
	return validate.Struct(in)
}
