package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/almatuck/levee-go/codec"
	"github.com/almatuck/levee-go/llm"
	"github.com/almatuck/levee-go/protocol"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstreamScript plays the remote chat service after the start frame
// arrived.
type upstreamScript func(conn *websocket.Conn, start protocol.StartPayload)

// newUpstream starts a scripted fake of the remote chat service and
// returns its ws address.
func newUpstream(t *testing.T, script upstreamScript) string {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f codec.Frame
		if !assert.NoError(t, json.Unmarshal(raw, &f)) {
			return
		}
		if !assert.Equal(t, protocol.ClientStart, f.Type) {
			return
		}
		var start protocol.StartPayload
		if !assert.NoError(t, json.Unmarshal(f.Data, &start)) {
			return
		}
		script(conn, start)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func helloInput() llm.ChatInput {
	return llm.ChatInput{
		Messages: []llm.ChatMessage{{Role: llm.RoleUser, Content: "hi"}},
	}
}

func helloScript(conn *websocket.Conn, start protocol.StartPayload) {
	// the fixture ignores t inside the script on purpose: write errors
	// just end the connection
	writeJSON(conn, protocol.EventSessionStarted, map[string]string{"sessionId": "sess-42", "provider": "levee", "model": "balanced"})
	writeJSON(conn, protocol.EventChunk, llm.StreamChunk{Content: "He", Index: 0})
	writeJSON(conn, protocol.EventChunk, llm.StreamChunk{Content: "llo", Index: 1})
	writeJSON(conn, protocol.EventCompletion, llm.ChatResponse{
		Content:      "Hello",
		StopReason:   "end_turn",
		InputTokens:  5,
		OutputTokens: 2,
	})
}

func writeJSON[T any](conn *websocket.Conn, eventType string, data T) {
	f, err := codec.NewFrame(eventType, data)
	if err != nil {
		return
	}
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	conn.WriteMessage(websocket.TextMessage, b)
}

func requireChunk(t *testing.T, ev *protocol.SessionEvent, content string, index int) {
	t.Helper()
	require.Equal(t, protocol.EventChunk, ev.Type)
	require.Equal(t, content, ev.Chunk.Content)
	require.Equal(t, index, ev.Chunk.Index)
}
