package transport

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"time"

	"github.com/almatuck/levee-go/libs/errors"
	"github.com/almatuck/levee-go/libs/logs"
	"github.com/almatuck/levee-go/utils"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"resty.dev/v3"
)

// Config for the resource request transport.
type Config struct {
	BaseURL string
	ApiKey  string
	Secret  string // optional; enables HMAC request signing
	Timeout time.Duration
	Logger  *zap.Logger
}

// Transport performs plain request/response exchanges against the
// resource API: key credential header, optional HMAC signature,
// snake_case on the wire, camelCase in memory, status-code error
// classification. No retries; retry policy belongs to the caller.
type Transport struct {
	client *resty.Client
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config) *Transport {
	if cfg.Logger == nil {
		cfg.Logger = logs.GetLogger("transport")
	}
	client := resty.New().SetBaseURL(cfg.BaseURL)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Transport{
		client: client,
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

func (t *Transport) Close() error {
	return t.client.Close()
}

// Do performs one exchange. Body fields go out snake_cased; response
// fields come back camelCased before decoding into out. Out may be nil
// when the caller discards the body.
func (t *Transport) Do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	req := t.client.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", t.cfg.ApiKey)
	if t.cfg.Secret != "" {
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		req.SetHeader("X-Timestamp", ts)
		req.SetHeader("X-Signature", utils.GenerateHMAC(t.cfg.ApiKey+ts, t.cfg.Secret))
	}
	if body != nil {
		wireBody, err := toWire(body)
		if err != nil {
			return err
		}
		req.SetHeader("Content-Type", "application/json").SetBody(wireBody)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if isTimeout(err) {
			return errors.Timeout(method+" "+path+" timed out", err)
		}
		return errors.Connection(method+" "+path, err)
	}
	defer resp.Body.Close()

	t.logger.Debug("resource call",
		logs.String("method", method),
		logs.String("path", path),
		logs.Int("status", resp.StatusCode()))

	if resp.StatusCode() >= 400 {
		return errors.FromStatus(resp.StatusCode(), string(resp.Bytes()))
	}
	if out == nil {
		return nil
	}
	data, err := fromWire(resp.Bytes())
	if err != nil {
		return errors.Protocol(errors.CodeUnknownFrame, "undecodable response body: "+err.Error())
	}
	return json.Unmarshal(data, out)
}

// toWire marshals v and rewrites its keys to the wire naming convention.
func toWire(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(utils.SnakifyKeys(generic))
}

// fromWire rewrites wire keys back to the in-memory convention.
func fromWire(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return []byte("null"), nil
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(utils.CamelizeKeys(generic))
}

func isTimeout(err error) bool {
	if pkgerrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return pkgerrors.As(err, &ne) && ne.Timeout()
}
