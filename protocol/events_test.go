package protocol

import (
	"testing"

	"github.com/almatuck/levee-go/codec"
	"github.com/almatuck/levee-go/libs/errors"
	"github.com/almatuck/levee-go/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFrame[T any](t *testing.T, frameType string, data T) codec.IFrame {
	t.Helper()
	f, err := codec.NewFrame(frameType, data)
	require.NoError(t, err)
	return f
}

func TestDecodeChunkEvent(t *testing.T) {
	ev := DecodeSessionEvent(mustFrame(t, EventChunk, llm.StreamChunk{Content: "He", Index: 3}))
	require.Equal(t, EventChunk, ev.Type)
	require.Equal(t, "He", ev.Chunk.Content)
	require.Equal(t, 3, ev.Chunk.Index)
	assert.False(t, ev.Terminal())
}

func TestDecodeCompletionEvent(t *testing.T) {
	ev := DecodeSessionEvent(mustFrame(t, EventCompletion, llm.ChatResponse{
		Content:      "Hello",
		StopReason:   "end_turn",
		OutputTokens: 2,
	}))
	require.Equal(t, EventCompletion, ev.Type)
	require.Equal(t, "Hello", ev.Completion.Content)
	assert.True(t, ev.Terminal())
}

func TestDecodeErrorEvent(t *testing.T) {
	ev := DecodeSessionEvent(mustFrame(t, EventError, map[string]interface{}{
		"code":      "rate_limited",
		"message":   "slow down",
		"retryable": true,
	}))
	require.Equal(t, EventError, ev.Type)
	require.Equal(t, "rate_limited", ev.Err.Code())
	require.Equal(t, "slow down", ev.Err.Msg())
	assert.True(t, ev.Err.Retryable())
	assert.True(t, ev.Terminal())
}

func TestDecodeSessionStarted(t *testing.T) {
	ev := DecodeSessionEvent(mustFrame(t, EventSessionStarted, map[string]string{
		"sessionId": "sess-1",
		"provider":  "levee",
	}))
	require.Equal(t, EventSessionStarted, ev.Type)
	require.Equal(t, "sess-1", ev.SessionId)
	assert.False(t, ev.Terminal())
}

func TestDecodeUnknownFrameType(t *testing.T) {
	ev := DecodeSessionEvent(mustFrame(t, "telemetry", map[string]int{"cpu": 99}))
	require.Equal(t, EventError, ev.Type)
	require.Equal(t, errors.CodeUnknownFrame, ev.Err.Code())
	assert.False(t, ev.Err.Retryable())
}

func TestDecodeMalformedPayload(t *testing.T) {
	f := &codec.Frame{Type: EventChunk, Data: []byte(`"not an object"`)}
	ev := DecodeSessionEvent(f)
	require.Equal(t, EventError, ev.Type)
	require.Equal(t, errors.CodeUnknownFrame, ev.Err.Code())
}

func TestBridgeFrameConstructors(t *testing.T) {
	started, err := NewStartedFrame("sess-1", "levee", "balanced")
	require.NoError(t, err)
	assert.Equal(t, BridgeStarted, started.Type)
	assert.JSONEq(t, `{"sessionId":"sess-1","provider":"levee","model":"balanced"}`, string(started.Data))

	errFrame, err := NewErrorFrameOf(errors.Remote("rate_limited", "slow down", true))
	require.NoError(t, err)
	assert.Equal(t, BridgeError, errFrame.Type)
	assert.JSONEq(t, `{"code":"rate_limited","message":"slow down","retryable":true}`, string(errFrame.Data))
}
