package main

import (
	"context"
	"net/http"
	"os"

	"github.com/almatuck/levee-go/bridge"
	"github.com/almatuck/levee-go/libs/conf"
	"github.com/almatuck/levee-go/libs/logs"
	"github.com/almatuck/levee-go/libs/option"
	"github.com/almatuck/levee-go/libs/server"
	"github.com/almatuck/levee-go/stream"
	"github.com/almatuck/levee-go/utils"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type HealthReq struct {
}

type HealthResp struct {
	Status string `json:"status"`
}

func main() {
	opts := option.NewOptions()
	if err := opts.Parse(); err != nil {
		os.Exit(1)
	}
	conf.Init(opts.ConfigFile)
	if raw := conf.Get("logger"); raw != nil {
		logs.Init(raw)
	}
	logger := logs.GetLogger("levee-bridge")

	var wsCfg server.WebSocketConfig
	if raw := conf.Get("websocket"); raw != nil {
		var err error
		wsCfg, err = utils.Bytes2Struct[server.WebSocketConfig](raw)
		if err != nil {
			logger.Error("invalid websocket configuration", logs.ErrorInfo(err))
			os.Exit(1)
		}
	}

	httpSrv, err := server.NewHttpServer(opts)
	if err != nil {
		logger.Error("create http server", logs.ErrorInfo(err))
		os.Exit(1)
	}

	factory := func() *stream.Session {
		return stream.NewSession(stream.Config{
			Address: opts.Upstream.Address,
			ApiKey:  opts.Upstream.ApiKey,
			Logger:  logs.GetLogger("stream.session"),
		})
	}

	endpoint := server.NewWsEndpoint(wsCfg, nil, func(ctx context.Context, conn *websocket.Conn) {
		b := bridge.New(conn, factory, logs.GetLogger("bridge"))
		if err := b.Serve(ctx); err != nil && err != context.Canceled {
			logger.Warn("bridge connection ended", logs.ErrorInfo(err))
		}
	}, logger)
	httpSrv.AddNativeHandler(http.MethodGet, "chat/ws", endpoint)

	health := server.NewHandler(
		"health",
		[]string{"ops"},
		func(ctx echo.Context, req HealthReq, resp HealthResp) error {
			resp.Status = "ok"
			return ctx.JSON(http.StatusOK, resp)
		},
	)
	httpSrv.Get("health", health)

	go func() {
		if err := httpSrv.Startup(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited", logs.ErrorInfo(err))
			os.Exit(1)
		}
	}()

	<-utils.MakeShutdownCh()
	logger.Info("bridge shutting down")
	httpSrv.Stop()
}
