package wire

import (
	"context"
	"sync"
	"time"

	"github.com/almatuck/levee-go/libs/logs"
	"go.uber.org/zap"
)

// Receiver owns all reads on one connection and hands raw frames to the
// consumer over a channel. The channel closes when the connection ends,
// for any reason.
type Receiver struct {
	conn      Conn
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *zap.Logger
	frameChan chan []byte
	stopOnce  sync.Once
	readLimit int64
}

type IReceiver interface {
	Start()
	Stop()
	Frames() <-chan []byte
	IsRunning() bool
}

func NewReceiver(conn Conn, readLimit int64, logger *zap.Logger) *Receiver {
	ctx, cancel := context.WithCancel(context.Background())

	return &Receiver{
		conn:      conn,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
		frameChan: make(chan []byte, 256),
		readLimit: readLimit,
	}
}

func (r *Receiver) Start() {
	r.wg.Add(1)
	go r.readPump()
}

// Stop terminates the pump by closing the connection; the pump owns
// closing the frame channel. Safe to call more than once.
func (r *Receiver) Stop() {
	r.stopOnce.Do(func() {
		r.cancel()
		r.conn.Close()
		r.wg.Wait()
	})
}

// Frames returns the inbound frame channel. It closes when the
// connection is gone.
func (r *Receiver) Frames() <-chan []byte {
	return r.frameChan
}

func (r *Receiver) IsRunning() bool {
	select {
	case <-r.ctx.Done():
		return false
	default:
		return true
	}
}

func (r *Receiver) readPump() {
	defer func() {
		close(r.frameChan)
		r.wg.Done()
	}()

	if lc, ok := r.conn.(interface{ SetReadLimit(int64) }); ok && r.readLimit > 0 {
		lc.SetReadLimit(r.readLimit)
	}
	r.conn.SetReadDeadline(time.Now().Add(pongWait))
	r.conn.SetPongHandler(func(string) error {
		r.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := r.conn.ReadMessage()
		if err != nil {
			r.logger.Debug("read pump closing", logs.ErrorInfo(err))
			return
		}
		if len(msg) == 0 {
			continue
		}
		select {
		case r.frameChan <- msg:
		case <-r.ctx.Done():
			return
		}
	}
}
