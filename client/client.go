package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/kbukum/ssehub/errors"
	"github.com/kbukum/ssehub/logger"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client publishes to and subscribes from a hub.
type Client struct {
	base       *url.URL
	eventsPath string

	// publish carries the request timeout; stream has none since event
	// streams stay open indefinitely.
	publish *http.Client
	stream  *http.Client

	log *logger.Logger
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.URL, "/"))
	if err != nil {
		return nil, err
	}
	tlsConfig, err := cfg.TLS.ClientConfig()
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}
	return &Client{
		base:       base,
		eventsPath: cfg.EventsPath,
		publish:    &http.Client{Transport: transport, Timeout: cfg.Timeout},
		stream:     &http.Client{Transport: transport},
		log:        logger.WithComponent("client"),
	}, nil
}

// Publish sends message to every subscriber of the hub. Errors reported by
// the hub come back as *errors.AppError.
func (c *Client) Publish(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/broadcast"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.publish.Do(req)
	if err != nil {
		return apperrors.ServiceUnavailable("hub").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Subscribe opens the event stream. The stream ends when ctx is done, the
// hub evicts the subscriber or the hub shuts down.
func (c *Client) Subscribe(ctx context.Context) (*Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.eventsPath), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, apperrors.ServiceUnavailable("hub").WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "text/event-stream" {
		resp.Body.Close()
		return nil, apperrors.Unsupported("event stream").
			WithDetail("content_type", resp.Header.Get("Content-Type"))
	}

	c.log.Debug("Subscribed", map[string]interface{}{
		"url":                 c.endpoint(c.eventsPath),
		logger.FieldTransport: "sse",
	})
	return NewReader(resp.Body), nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// decodeError turns a non-200 response into an AppError, keeping the hub's
// code when the body carries one.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body apperrors.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Code != "" {
		return &apperrors.AppError{
			Code:       body.Error.Code,
			Message:    body.Error.Message,
			Retryable:  body.Error.Retryable,
			HTTPStatus: resp.StatusCode,
			Details:    body.Error.Details,
		}
	}

	code := apperrors.ErrCodeInternal
	if resp.StatusCode == http.StatusServiceUnavailable {
		code = apperrors.ErrCodeServiceUnavailable
	}
	return apperrors.New(code, fmt.Sprintf("unexpected status %d", resp.StatusCode), resp.StatusCode)
}
