package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/almatuck/levee-go/codec"
	"github.com/almatuck/levee-go/libs/errors"
	"github.com/almatuck/levee-go/libs/logs"
	"github.com/almatuck/levee-go/llm"
	"github.com/almatuck/levee-go/protocol"
	"github.com/almatuck/levee-go/wire"
	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State of a duplex session.
type State int32

const (
	StateUnstarted State = iota
	StateActive
	StateCompleted
	StateErrored
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// DialFunc establishes the duplex connection to the remote chat service.
type DialFunc func(ctx context.Context, addr string) (wire.Conn, error)

// Config for one streaming session.
type Config struct {
	Address  string
	ApiKey   string
	Provider string
	Logger   *zap.Logger
	Dial     DialFunc
}

func gorillaDial(ctx context.Context, addr string) (wire.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

func requestId() string {
	nodeOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			panic("snowflake node init: " + err.Error())
		}
		node = n
	})
	return node.Generate().String()
}

// Session owns one bidirectional stream to the remote chat service for a
// single conversation turn. Events arrive on Events() in transport order;
// at most one terminal event is ever delivered.
type Session struct {
	cfg       Config
	codec     codec.ICodec
	logger    *zap.Logger
	conn      wire.Conn
	sender    *wire.Sender
	receiver  *wire.Receiver
	events    chan *protocol.SessionEvent
	state     atomic.Int32
	sessionId atomic.Value
	requestId string
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewSession(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = logs.GetLogger("stream.session")
	}
	if cfg.Dial == nil {
		cfg.Dial = gorillaDial
	}
	if cfg.Provider == "" {
		cfg.Provider = "levee"
	}
	s := &Session{
		cfg:       cfg,
		codec:     codec.NewJsonCodec(),
		logger:    cfg.Logger,
		events:    make(chan *protocol.SessionEvent, 256),
		done:      make(chan struct{}),
		requestId: requestId(),
	}
	s.sessionId.Store(s.requestId)
	return s
}

// Id returns the session identifier: remote-assigned once session_started
// arrives, locally generated before that.
func (s *Session) Id() string {
	return s.sessionId.Load().(string)
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) Provider() string {
	return s.cfg.Provider
}

// Events delivers decoded inbound events in arrival order. The channel
// closes when the transport stream ends.
func (s *Session) Events() <-chan *protocol.SessionEvent {
	return s.events
}

// Start dials the remote service and sends the opening envelope with the
// full message history. At most one call per session; a second call fails
// without touching the connection.
func (s *Session) Start(ctx context.Context, input llm.ChatInput) error {
	if !s.state.CompareAndSwap(int32(StateUnstarted), int32(StateActive)) {
		return errors.Protocol(errors.CodeAlreadyStarted, "session already started")
	}
	if err := input.Validate(); err != nil {
		s.state.Store(int32(StateErrored))
		return errors.Protocol(errors.CodeBadRequest, "invalid chat input: "+err.Error())
	}

	conn, err := s.cfg.Dial(ctx, s.cfg.Address)
	if err != nil {
		s.state.Store(int32(StateErrored))
		return errors.Connection("dial chat stream "+s.cfg.Address, err)
	}
	s.conn = conn
	s.sender = wire.NewSender(conn, s.codec, s.logger)
	s.receiver = wire.NewReceiver(conn, 0, s.logger)
	s.sender.Start()
	s.receiver.Start()

	start := protocol.StartPayload{
		ApiKey:       s.cfg.ApiKey,
		SystemPrompt: input.SystemPrompt,
		Model:        input.Model,
		MaxTokens:    input.MaxTokens,
		Temperature:  input.Temperature,
		Messages:     input.Messages,
		RequestId:    s.requestId,
	}
	frame, err := codec.NewFrame(protocol.ClientStart, start)
	if err != nil {
		s.state.Store(int32(StateErrored))
		s.Close()
		return errors.Connection("encode start envelope", err)
	}
	if err := s.sender.SendFrame(frame); err != nil {
		s.state.Store(int32(StateErrored))
		s.Close()
		return errors.Connection("send start envelope", err)
	}

	s.logger.Debug("session started",
		logs.String("sessionId", s.Id()),
		logs.String("model", input.Model),
		logs.Int("messages", len(input.Messages)))

	s.wg.Add(1)
	go s.eventPump()
	return nil
}

// Abort asks the remote side to stop generating. Advisory: chunks already
// in flight may still arrive and are handled by the terminal tracking in
// the event pump.
func (s *Session) Abort(reason string) error {
	switch s.State() {
	case StateUnstarted:
		return errors.Protocol(errors.CodeNotStarted, "abort before start")
	case StateActive:
	default:
		// already terminal, nothing to cancel
		return nil
	}
	frame, err := codec.NewFrame(protocol.ClientAbort, protocol.AbortPayload{Reason: reason})
	if err != nil {
		return err
	}
	return s.sender.SendFrame(frame)
}

// Close releases the transport connection. Idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.sender != nil {
			s.sender.Stop()
		}
		if s.receiver != nil {
			s.receiver.Stop()
		}
		s.wg.Wait()
		s.logger.Debug("session closed", logs.String("sessionId", s.Id()))
	})
	return nil
}

// eventPump classifies inbound frames and forwards them. After a terminal
// event, later chunks are dropped rather than forwarded; the remote may
// legitimately emit a few after an advisory abort.
func (s *Session) eventPump() {
	defer func() {
		close(s.events)
		s.wg.Done()
	}()

	terminal := false
	for raw := range s.receiver.Frames() {
		f, decErr := s.codec.Decode(raw)
		var ev *protocol.SessionEvent
		if decErr != nil {
			ev = &protocol.SessionEvent{
				Type: protocol.EventError,
				Err:  errors.Remote(errors.CodeUnknownFrame, "undecodable transport frame", false),
			}
		} else {
			ev = protocol.DecodeSessionEvent(f)
		}

		if terminal {
			if ev.Type == protocol.EventChunk {
				s.logger.Debug("dropping chunk after terminal event",
					logs.String("sessionId", s.Id()),
					logs.Int("index", ev.Chunk.Index))
			}
			continue
		}

		if ev.Type == protocol.EventSessionStarted && ev.SessionId != "" {
			s.sessionId.Store(ev.SessionId)
		}
		if ev.Terminal() {
			terminal = true
			s.markTerminal(ev)
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

func (s *Session) markTerminal(ev *protocol.SessionEvent) {
	switch ev.Type {
	case protocol.EventCompletion:
		s.state.Store(int32(StateCompleted))
	case protocol.EventError:
		s.state.Store(int32(StateErrored))
	case protocol.EventAborted:
		s.state.Store(int32(StateAborted))
	}
}
