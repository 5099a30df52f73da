package stream

import (
	"context"
	"io"

	"github.com/almatuck/levee-go/libs/errors"
	"github.com/almatuck/levee-go/llm"
	"github.com/almatuck/levee-go/protocol"
)

// Stream is the pull side of a duplex session: a forward-only, single-use
// sequence of chunks. Events that arrive before the consumer asks for
// them sit in the session's buffer; a consumer already waiting gets the
// next event as it lands. Recv returns io.EOF when the turn completed,
// after which Result holds the aggregate response.
//
// A Stream is not restartable. Open a new one for each turn.
type Stream struct {
	session *Session
	ctx     context.Context
	result  *llm.ChatResponse
	err     error
	done    bool
}

// Open creates a fresh session, starts it with the given input and
// returns the pull side. The returned stream owns the session.
func Open(ctx context.Context, cfg Config, input llm.ChatInput) (*Stream, error) {
	s := NewSession(cfg)
	if err := s.Start(ctx, input); err != nil {
		return nil, err
	}
	return NewStream(ctx, s), nil
}

// NewStream wraps an already-started session. The bridge uses this with
// its own per-connection session.
func NewStream(ctx context.Context, s *Session) *Stream {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Stream{session: s, ctx: ctx}
}

// Recv returns the next chunk in transport arrival order. Terminal
// outcomes: io.EOF after a completion (Result is then set), the remote
// error for an error event, a protocol error when the transport closed
// with no terminal event. The error is sticky.
func (st *Stream) Recv() (*llm.StreamChunk, error) {
	if st.done {
		if st.err != nil {
			return nil, st.err
		}
		return nil, io.EOF
	}
	for {
		select {
		case <-st.ctx.Done():
			st.session.Abort("context cancelled")
			return nil, st.finish(nil, st.ctx.Err())
		case ev, ok := <-st.session.Events():
			if !ok {
				return nil, st.finish(nil, errors.Protocol(errors.CodeStreamEnded, "stream ended without completion"))
			}
			switch ev.Type {
			case protocol.EventSessionStarted:
				// identifier already captured by the session
				continue
			case protocol.EventChunk:
				return ev.Chunk, nil
			case protocol.EventCompletion:
				return nil, st.finish(ev.Completion, nil)
			case protocol.EventError:
				return nil, st.finish(nil, ev.Err)
			case protocol.EventAborted:
				reason := ev.Reason
				if reason == "" {
					reason = "session aborted"
				}
				return nil, st.finish(nil, errors.Remote(errors.CodeAborted, reason, false))
			}
		}
	}
}

// finish records the terminal outcome, releases the session and returns
// the error Recv should surface (io.EOF on clean completion).
func (st *Stream) finish(result *llm.ChatResponse, err error) error {
	st.done = true
	st.result = result
	st.err = err
	st.session.Close()
	if err != nil {
		return err
	}
	return io.EOF
}

// Result returns the aggregate response after Recv returned io.EOF.
func (st *Stream) Result() (*llm.ChatResponse, error) {
	if st.err != nil {
		return nil, st.err
	}
	if st.result == nil {
		return nil, errors.Protocol(errors.CodeStreamEnded, "stream has not completed")
	}
	return st.result, nil
}

// SessionId returns the session identifier.
func (st *Stream) SessionId() string {
	return st.session.Id()
}

// Abort requests cancellation. Advisory; consume until Recv reports a
// terminal outcome.
func (st *Stream) Abort(reason string) error {
	return st.session.Abort(reason)
}

// Close releases the underlying session. Idempotent.
func (st *Stream) Close() error {
	return st.session.Close()
}
