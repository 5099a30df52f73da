package wire

import (
	"context"
	"sync"
	"time"

	"github.com/almatuck/levee-go/codec"
	"github.com/almatuck/levee-go/libs/logs"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn is the subset of *websocket.Conn the pumps rely on.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendWait   = 5 * time.Second
)

// Sender owns all writes to one connection: a buffered outbound channel
// drained by a single write pump, with keepalive pings.
type Sender struct {
	conn       Conn
	codec      codec.ICodec
	sendChan   chan []byte
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *zap.Logger
	stopOnce   sync.Once
	pingTicker *time.Ticker
}

type ISender interface {
	Start()
	Stop()
	SendFrame(frame codec.IFrame) error
	SendRawBytes(data []byte) error
	IsRunning() bool
}

func NewSender(conn Conn, c codec.ICodec, logger *zap.Logger) *Sender {
	ctx, cancel := context.WithCancel(context.Background())

	return &Sender{
		conn:       conn,
		codec:      c,
		sendChan:   make(chan []byte, 256),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
		pingTicker: time.NewTicker(pingPeriod),
	}
}

func (s *Sender) Start() {
	s.wg.Add(1)
	go s.sendPump()
}

// Stop shuts the pump down. Safe to call more than once.
func (s *Sender) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.pingTicker.Stop()
		close(s.sendChan)
		s.wg.Wait()
	})
}

// SendFrame encodes and queues one frame.
func (s *Sender) SendFrame(frame codec.IFrame) error {
	data, err := s.codec.Encode(frame)
	if err != nil {
		s.logger.Error("Failed to encode frame",
			logs.String("type", frame.GetType()),
			logs.ErrorInfo(err))
		return err
	}
	return s.SendRawBytes(data)
}

func (s *Sender) SendRawBytes(data []byte) error {
	select {
	case s.sendChan <- data:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	case <-time.After(sendWait):
		s.logger.Warn("Send queue is full, message timeout")
		return context.DeadlineExceeded
	}
}

func (s *Sender) IsRunning() bool {
	select {
	case <-s.ctx.Done():
		return false
	default:
		return true
	}
}

func (s *Sender) sendPump() {
	defer s.wg.Done()

	for {
		select {
		case message, ok := <-s.sendChan:
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Error("Failed to write message", logs.ErrorInfo(err))
				return
			}

		case <-s.pingTicker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Error("Failed to send ping", logs.ErrorInfo(err))
				return
			}

		case <-s.ctx.Done():
			return
		}
	}
}
