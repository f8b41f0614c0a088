// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient is the typed client for the college backend REST API.
// Each method performs exactly one HTTP round trip and returns normalized
// data or an *Error. Nothing is retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/olegiv/campus-go/internal/model"
)

const (
	DefaultTimeout = 30 * time.Second
	UserAgent      = "campus-go/1.0"
	MaxResponseLen = 8 << 20 // 8MB
)

// TokenSource supplies the bearer token of the browser session that owns ctx.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Observer records completed backend calls. Status is 0 when no response
// was received.
type Observer interface {
	ObserveAPICall(op string, status int, d time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource

	// OnAuthFailure runs for every 401/403 response, before the error is
	// returned to the caller.
	OnAuthFailure func(ctx context.Context, err *Error)

	Observer   Observer
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the backend. Operations are grouped by audience.
type Client struct {
	baseURL       string
	http          *http.Client
	tokens        TokenSource
	onAuthFailure func(ctx context.Context, err *Error)
	observer      Observer
	logger        *slog.Logger

	Public *PublicAPI
	Admin  *AdminAPI
	Auth   *AuthAPI
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:       strings.TrimRight(u.String(), "/"),
		http:          hc,
		tokens:        opts.Tokens,
		onAuthFailure: opts.OnAuthFailure,
		observer:      opts.Observer,
		logger:        logger,
	}
	// Public reads also run from background jobs, whose contexts carry no
	// browser session, so they never consult the token source.
	anon := *c
	anon.tokens = nil
	anon.onAuthFailure = nil
	c.Public = &PublicAPI{c: &anon}
	c.Admin = &AdminAPI{c: c}
	c.Auth = &AuthAPI{c: c}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the backend answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: "ping", Message: "backend unreachable", Err: err}
	}
	_ = resp.Body.Close()
	return nil
}

// endpoint joins the base URL, an already escaped path and the query.
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// seg escapes one path segment.
func seg(s string) string {
	return url.PathEscape(s)
}

// requestID forwards the inbound request ID when there is one.
func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values) (Payload, error) {
	return c.do(ctx, op, http.MethodGet, path, query, nil, "")
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, v any) (Payload, error) {
	var body io.Reader
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return Payload{}, &Error{Kind: KindClient, Op: op, Message: "invalid request payload", Err: err}
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, op, method, path, nil, body, "application/json")
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return Payload{}, &Error{Kind: KindNetwork, Op: op, Message: "failed to create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Request-ID", requestID(ctx))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, 0, start)
		c.logger.Warn("backend unreachable", "category", model.EventCategoryAPI, "op", op, "error", err)
		return Payload{}, &Error{Kind: KindNetwork, Op: op, Message: "backend unreachable", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	c.observe(op, resp.StatusCode, start)
	if err != nil {
		return Payload{}, &Error{Kind: KindNetwork, Status: resp.StatusCode, Op: op, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode >= 400 {
		apiErr := newStatusError(op, resp.StatusCode, errorMessage(raw))
		if apiErr.IsAuthFailure() && c.onAuthFailure != nil {
			c.onAuthFailure(ctx, apiErr)
		}
		c.logger.Warn("backend call failed",
			"category", model.EventCategoryAPI,
			"op", op,
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
		return Payload{}, apiErr
	}

	p, err := Normalize(raw)
	if err != nil {
		return Payload{}, &Error{Kind: KindServer, Status: resp.StatusCode, Op: op, Message: "invalid response body", Err: err}
	}
	return p, nil
}

func (c *Client) observe(op string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveAPICall(op, status, time.Since(start))
	}
}

// IsNetwork reports whether err is a failure without a response.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
