package server

import (
	"time"

	"github.com/almatuck/levee-go/libs/logs"
	"github.com/almatuck/levee-go/utils"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func Cors() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, "X-Api-Key"},
	})
}

func Request() echo.MiddlewareFunc {
	logger := logs.GetLogger("httpRequest")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			err := next(c)
			logger.Info("request",
				logs.String("method", c.Request().Method),
				logs.String("path", c.Request().URL.Path),
				logs.String("remote", utils.GetRemoteAddr(c.Request())),
				logs.Int("status", c.Response().Status),
				logs.Duration("elapsed", time.Since(begin)))
			return err
		}
	}
}
