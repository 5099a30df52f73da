package protocol

import (
	"github.com/almatuck/levee-go/codec"
	"github.com/almatuck/levee-go/libs/errors"
	"github.com/almatuck/levee-go/llm"
)

// Inbound frame types accepted by the push bridge.
const (
	BridgeStart      = "start"
	BridgeMessage    = "message"
	BridgeAbort      = "abort"
	BridgeToolResult = "tool_result"
)

// Outbound frame types sent by the push bridge.
const (
	BridgeStarted    = "started"
	BridgeChunk      = "chunk"
	BridgeCompletion = "completion"
	BridgeError      = "error"
	BridgeToolCall   = "tool_call"
)

// BridgeStartPayload is what a socket client sends to open a session.
// Credentials never come from the socket; the bridge injects its own.
type BridgeStartPayload struct {
	SystemPrompt string            `json:"systemPrompt,omitempty"`
	Model        string            `json:"model,omitempty"`
	MaxTokens    int               `json:"maxTokens,omitempty"`
	Temperature  float64           `json:"temperature,omitempty"`
	Messages     []llm.ChatMessage `json:"messages,omitempty"`
}

type BridgeMessagePayload struct {
	Content string `json:"content"`
}

type BridgeToolResultPayload struct {
	ToolCallId string `json:"toolCallId"`
	Result     string `json:"result"`
	IsError    bool   `json:"isError,omitempty"`
}

type BridgeStartedPayload struct {
	SessionId string `json:"sessionId"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

type BridgeErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func NewStartedFrame(sessionId, provider, model string) (*codec.Frame, error) {
	return codec.NewFrame(BridgeStarted, BridgeStartedPayload{
		SessionId: sessionId,
		Provider:  provider,
		Model:     model,
	})
}

func NewChunkFrame(chunk *llm.StreamChunk) (*codec.Frame, error) {
	return codec.NewFrame(BridgeChunk, chunk)
}

func NewCompletionFrame(resp *llm.ChatResponse) (*codec.Frame, error) {
	return codec.NewFrame(BridgeCompletion, resp)
}

func NewErrorFrame(code, message string, retryable bool) (*codec.Frame, error) {
	return codec.NewFrame(BridgeError, BridgeErrorPayload{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	})
}

// NewErrorFrameOf maps a client-side error onto an outbound error frame.
func NewErrorFrameOf(err error) (*codec.Frame, error) {
	if se, ok := errors.AsStack(err); ok {
		return NewErrorFrame(se.Code(), se.Msg(), se.Retryable())
	}
	return NewErrorFrame(errors.CodeInternal, err.Error(), false)
}
