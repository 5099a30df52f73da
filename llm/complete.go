package llm

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/almatuck/levee-go/libs/errors"
	pkgerrors "github.com/pkg/errors"
	"resty.dev/v3"
)

// CompleteConfig bounds one non-streaming chat call.
type CompleteConfig struct {
	BaseURL string
	ApiKey  string
	Timeout time.Duration
}

// Complete sends one chat request and waits for the full response. No
// streaming, no session state; the call fails with a timeout error once
// the configured deadline passes.
func Complete(ctx context.Context, cfg CompleteConfig, input ChatInput) (*ChatResponse, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.Protocol(errors.CodeBadRequest, "invalid chat input: "+err.Error())
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	defer client.Close()
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	resp, err := client.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", cfg.ApiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(cfg.BaseURL + "/chat/complete")
	if err != nil {
		if isTimeout(err) {
			return nil, errors.Timeout("chat completion timed out", err)
		}
		return nil, errors.Connection("chat completion request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode() != 200 {
		return nil, errors.FromStatus(resp.StatusCode(), string(resp.Bytes()))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(resp.Bytes(), &chatResp); err != nil {
		return nil, errors.Protocol(errors.CodeUnknownFrame, "undecodable completion response: "+err.Error())
	}
	return &chatResp, nil
}

func isTimeout(err error) bool {
	if pkgerrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return pkgerrors.As(err, &ne) && ne.Timeout()
}
