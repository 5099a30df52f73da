package protocol

import (
	"encoding/json"

	"github.com/almatuck/levee-go/codec"
	"github.com/almatuck/levee-go/libs/errors"
	"github.com/almatuck/levee-go/llm"
)

// Frame types written by the client on the duplex stream.
const (
	ClientStart   = "start"
	ClientMessage = "message"
	ClientAbort   = "abort"
)

// Frame types read from the duplex stream.
const (
	EventSessionStarted = "session_started"
	EventChunk          = "chunk"
	EventCompletion     = "completion"
	EventError          = "error"
	EventAborted        = "aborted"
)

// StartPayload is the opening envelope of a duplex session.
type StartPayload struct {
	ApiKey       string            `json:"apiKey"`
	SystemPrompt string            `json:"systemPrompt,omitempty"`
	Model        string            `json:"model,omitempty"`
	MaxTokens    int               `json:"maxTokens,omitempty"`
	Temperature  float64           `json:"temperature,omitempty"`
	Messages     []llm.ChatMessage `json:"messages"`
	RequestId    string            `json:"requestId,omitempty"`
}

type AbortPayload struct {
	Reason string `json:"reason,omitempty"`
}

type sessionStartedPayload struct {
	SessionId string `json:"sessionId"`
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
}

type errorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// SessionEvent is the decoded form of one inbound duplex frame. Exactly
// one of the payload fields is set, selected by Type.
type SessionEvent struct {
	Type       string
	SessionId  string
	Provider   string
	Model      string
	Chunk      *llm.StreamChunk
	Completion *llm.ChatResponse
	Err        *errors.StackError
	Reason     string
}

// Terminal reports whether the event ends the session.
func (e *SessionEvent) Terminal() bool {
	switch e.Type {
	case EventCompletion, EventError, EventAborted:
		return true
	}
	return false
}

// DecodeSessionEvent classifies one inbound frame. Unrecognized frame
// types come back as an error event, never as a decode failure; the
// caller decides what to do with the session.
func DecodeSessionEvent(f codec.IFrame) *SessionEvent {
	switch f.GetType() {
	case EventSessionStarted:
		var p sessionStartedPayload
		if err := json.Unmarshal(f.GetData(), &p); err != nil {
			return malformedEvent(f.GetType())
		}
		return &SessionEvent{Type: EventSessionStarted, SessionId: p.SessionId, Provider: p.Provider, Model: p.Model}
	case EventChunk:
		var c llm.StreamChunk
		if err := json.Unmarshal(f.GetData(), &c); err != nil {
			return malformedEvent(f.GetType())
		}
		return &SessionEvent{Type: EventChunk, Chunk: &c}
	case EventCompletion:
		var r llm.ChatResponse
		if err := json.Unmarshal(f.GetData(), &r); err != nil {
			return malformedEvent(f.GetType())
		}
		return &SessionEvent{Type: EventCompletion, Completion: &r}
	case EventError:
		var p errorPayload
		if err := json.Unmarshal(f.GetData(), &p); err != nil {
			return malformedEvent(f.GetType())
		}
		return &SessionEvent{Type: EventError, Err: errors.Remote(p.Code, p.Message, p.Retryable)}
	case EventAborted:
		var p AbortPayload
		if err := json.Unmarshal(f.GetData(), &p); err != nil {
			return malformedEvent(f.GetType())
		}
		return &SessionEvent{Type: EventAborted, Reason: p.Reason}
	default:
		return &SessionEvent{
			Type: EventError,
			Err:  errors.Remote(errors.CodeUnknownFrame, "unrecognized frame type: "+f.GetType(), false),
		}
	}
}

func malformedEvent(frameType string) *SessionEvent {
	return &SessionEvent{
		Type: EventError,
		Err:  errors.Remote(errors.CodeUnknownFrame, "malformed "+frameType+" frame", false),
	}
}
