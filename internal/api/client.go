// Package api is the single configured entry point for every call to the
// remote items API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/Makepad-fr/itemdesk/internal/logging"
	"github.com/Makepad-fr/itemdesk/internal/session"
)

const (
	userAgent       = "itemdesk/1.0"
	requestIDHeader = "X-Request-ID"
)

// Options configure a Client. Only BaseURL and Session are required.
type Options struct {
	BaseURL string
	Session session.Store
	Timeout time.Duration // 0 keeps the transport default
	Logger  *slog.Logger
	// HTTPClient replaces the underlying transport client, mostly for tests.
	HTTPClient *http.Client
}

// Client wraps a resty client with two hooks: the request hook attaches the
// bearer token from the session store, the response hook turns a 401 into
// a cleared session plus ErrUnauthorized. There is no retry or queueing;
// every call goes out once.
type Client struct {
	http    *resty.Client
	session session.Store
	log     *slog.Logger
}

func New(opt Options) *Client {
	rc := resty.New()
	if opt.HTTPClient != nil {
		rc = resty.NewWithClient(opt.HTTPClient)
	}
	log := opt.Logger
	if log == nil {
		log = logging.Discard()
	}
	c := &Client{http: rc, session: opt.Session, log: log}

	rc.SetBaseURL(opt.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetRetryCount(0)
	if opt.Timeout > 0 {
		rc.SetTimeout(opt.Timeout)
	}
	rc.OnBeforeRequest(c.attachToken)
	rc.OnAfterResponse(c.checkResponse)
	return c
}

// attachToken is the request interceptor.
func (c *Client) attachToken(_ *resty.Client, r *resty.Request) error {
	r.SetHeader(requestIDHeader, uuid.NewString())
	if c.session == nil {
		return nil
	}
	tok, err := session.Token(c.session)
	if err != nil {
		return err
	}
	if tok != "" {
		r.SetHeader("Authorization", "Bearer "+tok)
	}
	return nil
}

// checkResponse is the response interceptor. Successful answers pass
// through; a 401 clears the session before the error reaches the caller.
func (c *Client) checkResponse(_ *resty.Client, resp *resty.Response) error {
	req := resp.Request
	c.log.Debug("api call",
		"method", req.Method,
		"url", req.URL,
		"status", resp.StatusCode(),
		"request_id", req.Header.Get(requestIDHeader),
		"duration", resp.Time(),
	)
	if resp.StatusCode() != http.StatusUnauthorized {
		return nil
	}
	if c.session != nil {
		if err := c.session.Clear(); err != nil {
			c.log.Error("clear session after 401", "error", err)
		} else {
			c.log.Warn("session cleared", "status", resp.StatusCode(), "url", req.URL)
		}
	}
	return newError(resp)
}

func newError(resp *resty.Response) *Error {
	return &Error{
		Method:  resp.Request.Method,
		Path:    resp.Request.URL,
		Status:  resp.StatusCode(),
		Message: messageFrom(resp.Body()),
	}
}

// do sends body (if any) and decodes a 2xx answer into out (if any).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return newError(resp)
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
