package server

import (
	"context"
	"net/http"
	"time"

	"github.com/almatuck/levee-go/libs/logs"
	"github.com/almatuck/levee-go/utils"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OriginPredicate decides whether a declared origin may connect.
type OriginPredicate func(origin string) bool

// OriginAllowList builds a predicate from a configured list. An empty
// list allows every origin.
func OriginAllowList(allowed []string) OriginPredicate {
	if len(allowed) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(origin string) bool {
		_, ok := set[origin]
		return ok
	}
}

// ConnHandler serves one upgraded connection and returns when it is done.
type ConnHandler func(ctx context.Context, conn *websocket.Conn)

// NewWsEndpoint returns an echo handler that upgrades the request and
// hands the connection to handle. Connections whose Origin fails the
// predicate are rejected before the upgrade.
func NewWsEndpoint(cfg WebSocketConfig, check OriginPredicate, handle ConnHandler, logger *zap.Logger) echo.HandlerFunc {
	if logger == nil {
		logger = logs.GetLogger("wsEndpoint")
	}
	if check == nil {
		check = OriginAllowList(cfg.AllowedOrigins)
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:   cfg.ReadBufferSize,
		WriteBufferSize:  cfg.WriteBufferSize,
		HandshakeTimeout: time.Duration(cfg.HandshakeTimeout) * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			return check(r.Header.Get("Origin"))
		},
	}
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			logger.Warn("websocket upgrade rejected",
				logs.String("remote", utils.GetRemoteAddr(c.Request())),
				logs.ErrorInfo(err))
			return err
		}
		logger.Info("websocket client connected",
			logs.String("remote", utils.GetRemoteAddr(c.Request())))
		// the request context dies with this handler; the connection
		// lives on its own
		go handle(context.Background(), conn)
		return nil
	}
}
