package stream

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/almatuck/levee-go/libs/errors"
	"github.com/almatuck/levee-go/llm"
	"github.com/almatuck/levee-go/protocol"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestStreamYieldsChunksThenResult(t *testing.T) {
	addr := newUpstream(t, helloScript)
	st, err := Open(context.Background(), Config{Address: addr, ApiKey: "test-key"}, helloInput())
	require.NoError(t, err)
	defer st.Close()

	chunk, err := st.Recv()
	require.NoError(t, err)
	require.Equal(t, "He", chunk.Content)

	chunk, err = st.Recv()
	require.NoError(t, err)
	require.Equal(t, "llo", chunk.Content)

	_, err = st.Recv()
	require.Equal(t, io.EOF, err)

	resp, err := st.Result()
	require.NoError(t, err)
	require.Equal(t, "Hello", resp.Content)
	require.Equal(t, "end_turn", resp.StopReason)
	require.Equal(t, 5, resp.InputTokens)
	require.Equal(t, 2, resp.OutputTokens)
}

func TestStreamBuffersEarlyChunks(t *testing.T) {
	released := make(chan struct{})
	addr := newUpstream(t, func(conn *websocket.Conn, start protocol.StartPayload) {
		writeJSON(conn, protocol.EventChunk, llm.StreamChunk{Content: "one", Index: 0})
		writeJSON(conn, protocol.EventChunk, llm.StreamChunk{Content: "two", Index: 1})
		writeJSON(conn, protocol.EventChunk, llm.StreamChunk{Content: "three", Index: 2})
		writeJSON(conn, protocol.EventCompletion, llm.ChatResponse{Content: "onetwothree", StopReason: "end_turn"})
		<-released
	})
	st, err := Open(context.Background(), Config{Address: addr, ApiKey: "test-key"}, helloInput())
	require.NoError(t, err)
	defer st.Close()
	defer close(released)

	// everything already arrived before the first pull
	time.Sleep(100 * time.Millisecond)

	for i, want := range []string{"one", "two", "three"} {
		chunk, err := st.Recv()
		require.NoError(t, err)
		require.Equal(t, want, chunk.Content)
		require.Equal(t, i, chunk.Index)
	}
	_, err = st.Recv()
	require.Equal(t, io.EOF, err)
}

func TestStreamRaisesRemoteError(t *testing.T) {
	addr := newUpstream(t, func(conn *websocket.Conn, start protocol.StartPayload) {
		writeJSON(conn, protocol.EventError, map[string]interface{}{
			"code":      "rate_limited",
			"message":   "slow down",
			"retryable": true,
		})
	})
	st, err := Open(context.Background(), Config{Address: addr, ApiKey: "test-key"}, helloInput())
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Recv()
	require.Error(t, err)
	require.True(t, errors.IsRemote(err))
	se, ok := errors.AsStack(err)
	require.True(t, ok)
	require.Equal(t, "rate_limited", se.Code())
	require.Equal(t, "slow down", se.Msg())
	require.True(t, se.Retryable())

	// no partial completion value
	resp, rerr := st.Result()
	require.Nil(t, resp)
	require.Equal(t, err, rerr)

	// the error is sticky
	_, again := st.Recv()
	require.Equal(t, err, again)
}

func TestStreamEndedWithoutCompletion(t *testing.T) {
	addr := newUpstream(t, func(conn *websocket.Conn, start protocol.StartPayload) {
		writeJSON(conn, protocol.EventChunk, llm.StreamChunk{Content: "cut", Index: 0})
		// connection drops with no terminal event
	})
	st, err := Open(context.Background(), Config{Address: addr, ApiKey: "test-key"}, helloInput())
	require.NoError(t, err)
	defer st.Close()

	chunk, err := st.Recv()
	require.NoError(t, err)
	require.Equal(t, "cut", chunk.Content)

	_, err = st.Recv()
	require.Error(t, err)
	require.True(t, errors.IsProtocol(err))
	se, ok := errors.AsStack(err)
	require.True(t, ok)
	require.Equal(t, errors.CodeStreamEnded, se.Code())
}

func TestStreamAborted(t *testing.T) {
	addr := newUpstream(t, func(conn *websocket.Conn, start protocol.StartPayload) {
		writeJSON(conn, protocol.EventAborted, protocol.AbortPayload{Reason: "remote shutdown"})
	})
	st, err := Open(context.Background(), Config{Address: addr, ApiKey: "test-key"}, helloInput())
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Recv()
	require.Error(t, err)
	se, ok := errors.AsStack(err)
	require.True(t, ok)
	require.Equal(t, errors.CodeAborted, se.Code())
	require.Equal(t, "remote shutdown", se.Msg())
}

func TestForwardConsumesOnce(t *testing.T) {
	addr := newUpstream(t, helloScript)
	st, err := Open(context.Background(), Config{Address: addr, ApiKey: "test-key"}, helloInput())
	require.NoError(t, err)
	defer st.Close()

	var got []string
	resp, err := st.Forward(func(c llm.StreamChunk) {
		got = append(got, c.Content)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"He", "llo"}, got)
	require.Equal(t, "Hello", resp.Content)

	// consumed: further pulls report end of stream, not a replay
	_, err = st.Recv()
	require.Equal(t, io.EOF, err)
}
