// Package levee is the Go client for the Levee platform: resource
// wrappers over the HTTP API and a streaming bridge to the LLM chat
// service.
package levee

import (
	"context"
	"sync"
	"time"

	"github.com/almatuck/levee-go/libs/logs"
	"github.com/almatuck/levee-go/llm"
	"github.com/almatuck/levee-go/services"
	"github.com/almatuck/levee-go/stream"
	"github.com/almatuck/levee-go/transport"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL       = "https://api.levee.dev/v1"
	DefaultStreamAddress = "wss://stream.levee.dev/v1/chat"
	DefaultTimeout       = 30 * time.Second
)

type Config struct {
	ApiKey        string
	Secret        string // optional request-signing secret
	BaseURL       string
	StreamAddress string
	Timeout       time.Duration // bounds non-streaming calls only
	Logger        *zap.Logger
}

// Client holds one resource transport plus at most one active duplex
// stream, created lazily by StreamChat and released by Close.
type Client struct {
	cfg       Config
	transport *transport.Transport
	contacts  *services.ContactsService
	stats     *services.StatsService
	logger    *zap.Logger

	mu     sync.Mutex
	active *stream.Stream
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.StreamAddress == "" {
		cfg.StreamAddress = DefaultStreamAddress
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logs.GetLogger("levee")
	}
	t := transport.New(transport.Config{
		BaseURL: cfg.BaseURL,
		ApiKey:  cfg.ApiKey,
		Secret:  cfg.Secret,
		Timeout: cfg.Timeout,
		Logger:  cfg.Logger,
	})
	return &Client{
		cfg:       cfg,
		transport: t,
		contacts:  services.NewContactsService(t),
		stats:     services.NewStatsService(t),
		logger:    cfg.Logger,
	}
}

func (c *Client) Contacts() *services.ContactsService {
	return c.contacts
}

func (c *Client) Stats() *services.StatsService {
	return c.stats
}

// StreamChat opens a fresh chat stream. Streams are single-use; the
// client keeps at most one open at a time and releases any previous one
// before dialing again.
func (c *Client) StreamChat(ctx context.Context, input llm.ChatInput) (*stream.Stream, error) {
	c.mu.Lock()
	if c.active != nil {
		c.logger.Warn("releasing previous chat stream before opening a new one")
		c.active.Close()
		c.active = nil
	}
	c.mu.Unlock()

	st, err := stream.Open(ctx, stream.Config{
		Address: c.cfg.StreamAddress,
		ApiKey:  c.cfg.ApiKey,
		Logger:  c.logger,
	}, input)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.active = st
	c.mu.Unlock()
	return st, nil
}

// StreamChatFunc streams one turn, invoking onChunk per fragment, and
// returns the aggregate result. The underlying stream is consumed in a
// single pass.
func (c *Client) StreamChatFunc(ctx context.Context, input llm.ChatInput, onChunk func(llm.StreamChunk)) (*llm.ChatResponse, error) {
	st, err := c.StreamChat(ctx, input)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Forward(onChunk)
}

// CompleteChat is the non-streaming variant, bounded by the configured
// timeout.
func (c *Client) CompleteChat(ctx context.Context, input llm.ChatInput) (*llm.ChatResponse, error) {
	return llm.Complete(ctx, llm.CompleteConfig{
		BaseURL: c.cfg.BaseURL,
		ApiKey:  c.cfg.ApiKey,
		Timeout: c.cfg.Timeout,
	}, input)
}

// Close releases the active stream and the resource transport.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.active != nil {
		c.active.Close()
		c.active = nil
	}
	c.mu.Unlock()
	return c.transport.Close()
}
