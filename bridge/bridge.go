package bridge

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/almatuck/levee-go/codec"
	"github.com/almatuck/levee-go/libs/errors"
	"github.com/almatuck/levee-go/libs/logs"
	"github.com/almatuck/levee-go/llm"
	"github.com/almatuck/levee-go/protocol"
	"github.com/almatuck/levee-go/stream"
	"github.com/almatuck/levee-go/wire"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionFactory supplies a fresh upstream session per start frame. No
// shared or cached transport handle: each inbound connection drives its
// own sessions.
type SessionFactory func() *stream.Session

// Bridge adapts one inbound socket connection to the duplex session /
// pull stream pair. One session at a time per connection; a second start
// while one is active is a protocol error.
type Bridge struct {
	conn       wire.Conn
	codec      codec.ICodec
	sender     *wire.Sender
	receiver   *wire.Receiver
	newSession SessionFactory
	logger     *zap.Logger

	mu      sync.Mutex
	active  bool
	session *stream.Session
	wg      sync.WaitGroup
}

func New(conn wire.Conn, factory SessionFactory, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = logs.GetLogger("bridge")
	}
	c := codec.NewJsonCodec()
	return &Bridge{
		conn:       conn,
		codec:      c,
		sender:     wire.NewSender(conn, c, logger),
		receiver:   wire.NewReceiver(conn, 1<<20, logger),
		newSession: factory,
		logger:     logger,
	}
}

// Serve pumps the connection until it closes or ctx is done. Any active
// session is cancelled best-effort before teardown.
func (b *Bridge) Serve(ctx context.Context) error {
	b.sender.Start()
	b.receiver.Start()
	defer b.teardown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-b.receiver.Frames():
			if !ok {
				return nil
			}
			b.dispatch(ctx, raw)
		}
	}
}

func (b *Bridge) dispatch(ctx context.Context, raw []byte) {
	f, err := b.codec.Decode(raw)
	if err != nil {
		// bad inbound frame, connection stays open
		b.sendError(errors.CodeInvalidJSON, "malformed frame: "+err.Error(), false)
		return
	}

	switch f.GetType() {
	case protocol.BridgeStart:
		b.handleStart(ctx, f)
	case protocol.BridgeAbort:
		b.handleAbort(f)
	case protocol.BridgeMessage:
		b.rejectMidStream("message frames")
	case protocol.BridgeToolResult:
		b.rejectMidStream("tool_result frames")
	default:
		b.sendError(errors.CodeUnknownFrame, "unrecognized frame type: "+f.GetType(), false)
	}
}

func (b *Bridge) handleStart(ctx context.Context, f codec.IFrame) {
	var payload protocol.BridgeStartPayload
	if err := decodeData(f, &payload); err != nil {
		b.sendError(errors.CodeInvalidJSON, "malformed start payload: "+err.Error(), false)
		return
	}

	b.mu.Lock()
	if b.active {
		b.mu.Unlock()
		// the running session is untouched
		b.sendError(errors.CodeAlreadyStarted, "a session is already active on this connection", false)
		return
	}
	sess := b.newSession()
	b.active = true
	b.session = sess
	b.mu.Unlock()

	input := llm.ChatInput{
		Messages:     payload.Messages,
		SystemPrompt: payload.SystemPrompt,
		Model:        payload.Model,
		MaxTokens:    payload.MaxTokens,
		Temperature:  payload.Temperature,
	}
	if err := sess.Start(ctx, input); err != nil {
		b.logger.Warn("upstream start failed", logs.ErrorInfo(err))
		b.clearSession()
		b.sendErrorOf(err)
		return
	}

	// the upstream hands no identifier back before the first chunk, so
	// the bridge mints one for the started frame
	sessionId := uuid.NewString()
	model := payload.Model
	if model == "" {
		model = llm.ModelBalanced
	}
	started, err := protocol.NewStartedFrame(sessionId, sess.Provider(), model)
	if err == nil {
		b.sender.SendFrame(started)
	}

	b.wg.Add(1)
	go b.forward(ctx, sess, sessionId)
}

// forward drains the pull stream onto the socket: chunk frames, then
// exactly one terminal frame, then back to idle.
func (b *Bridge) forward(ctx context.Context, sess *stream.Session, sessionId string) {
	defer b.wg.Done()
	defer b.clearSession()

	st := stream.NewStream(ctx, sess)
	for {
		chunk, err := st.Recv()
		if err == io.EOF {
			resp, rerr := st.Result()
			if rerr != nil {
				b.sendErrorOf(rerr)
				return
			}
			frame, ferr := protocol.NewCompletionFrame(resp)
			if ferr == nil {
				b.sender.SendFrame(frame)
			}
			b.logger.Debug("session completed",
				logs.String("sessionId", sessionId),
				logs.Int("outputTokens", resp.OutputTokens))
			return
		}
		if err != nil {
			b.sendErrorOf(err)
			return
		}
		frame, ferr := protocol.NewChunkFrame(chunk)
		if ferr != nil {
			continue
		}
		b.sender.SendFrame(frame)
	}
}

func (b *Bridge) handleAbort(f codec.IFrame) {
	var payload protocol.AbortPayload
	if err := decodeData(f, &payload); err != nil {
		b.sendError(errors.CodeInvalidJSON, "malformed abort payload: "+err.Error(), false)
		return
	}

	b.mu.Lock()
	sess := b.session
	active := b.active
	b.mu.Unlock()
	if !active || sess == nil {
		// abort with nothing running is silently ignored
		return
	}
	if err := sess.Abort(payload.Reason); err != nil {
		b.logger.Warn("abort signal failed", logs.ErrorInfo(err))
	}
}

// rejectMidStream carries forward a known limitation: multi-turn message
// frames and tool_result forwarding are not supported, only a single
// start/stream/completion per session.
func (b *Bridge) rejectMidStream(what string) {
	b.mu.Lock()
	active := b.active
	b.mu.Unlock()
	if !active {
		b.sendError(errors.CodeNotStarted, "no active session on this connection", false)
		return
	}
	b.sendError(errors.CodeNotImplemented, what+" are not supported on an active session", false)
}

func (b *Bridge) clearSession() {
	b.mu.Lock()
	b.active = false
	b.session = nil
	b.mu.Unlock()
}

func (b *Bridge) teardown() {
	b.mu.Lock()
	sess := b.session
	b.mu.Unlock()
	if sess != nil {
		// connection is going away: cancel whatever is running
		sess.Abort("connection closed")
		sess.Close()
	}
	b.wg.Wait()
	b.receiver.Stop()
	b.sender.Stop()
}

func (b *Bridge) sendError(code, message string, retryable bool) {
	frame, err := protocol.NewErrorFrame(code, message, retryable)
	if err != nil {
		return
	}
	b.sender.SendFrame(frame)
}

func (b *Bridge) sendErrorOf(err error) {
	frame, ferr := protocol.NewErrorFrameOf(err)
	if ferr != nil {
		return
	}
	b.sender.SendFrame(frame)
}

func decodeData(f codec.IFrame, out interface{}) error {
	data := f.GetData()
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
