package server

import (
	"github.com/labstack/echo/v4"
)

type Handler[Req any, Resp any] struct {
	Name string
	Tags []string
	Func func(echo.Context, Req, Resp) error
	req  Req
	resp Resp
}

type IHandler interface {
	GetName() string
	GetTags() []string
	GetFunc() func(echo.Context) error
}

func NewHandler[Req any, Resp any](
	name string,
	tags []string,
	f func(echo.Context, Req, Resp) error,
) *Handler[Req, Resp] {
	var req Req
	var resp Resp
	return &Handler[Req, Resp]{
		Name: name,
		Tags: tags,
		Func: f,
		req:  req,
		resp: resp,
	}
}

func (h *Handler[Req, Resp]) GetName() string {
	return h.Name
}

func (h *Handler[Req, Resp]) GetTags() []string {
	return h.Tags
}

func (h *Handler[Req, Resp]) GetFunc() func(echo.Context) error {
	return func(c echo.Context) error {
		if err := c.Bind(&h.req); err != nil {
			return err
		}
		if err := c.Validate(&h.req); err != nil {
			return err
		}
		return h.Func(c, h.req, h.resp)
	}
}
