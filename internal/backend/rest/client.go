// Package rest implements service.API against the task REST backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"taskboard/internal/config"
	"taskboard/internal/service"
)

// DefaultTimeout bounds each API call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Client implements service.API over HTTP with a cookie session.
type Client struct {
	base       *url.URL
	http       *http.Client
	jar        http.CookieJar
	cookiePath string
	timeout    time.Duration
	tracer     trace.Tracer
	logger     *slog.Logger
}

// New creates a REST client for cfg.ServerURL.
// Session cookies are loaded from and saved to cfg.CookiePath().
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c, err := NewWithHTTPClient(cfg.ServerURL, &http.Client{Jar: jar}, logger)
	if err != nil {
		return nil, err
	}
	c.timeout = cfg.Timeout
	c.cookiePath = cfg.CookiePath()
	if err := loadCookies(c.cookiePath, jar, c.base); err != nil {
		logger.Warn("ignoring unreadable cookie file", "path", c.cookiePath, "error", err)
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Cookies live only in httpClient.Jar; nothing is persisted.
func NewWithHTTPClient(serverURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(serverURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server url: %q", serverURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}
	return &Client{
		base:    base,
		http:    httpClient,
		jar:     httpClient.Jar,
		timeout: DefaultTimeout,
		tracer:  otel.Tracer("taskboard/rest"),
		logger:  logger,
	}, nil
}

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
}

// Unwrap maps auth and lookup statuses to service sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return service.ErrUnauthorized
	case http.StatusNotFound:
		return service.ErrNotFound
	}
	return nil
}

// envelope wraps user payloads of the users/* endpoints.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// CheckAuth implements service.API.
func (c *Client) CheckAuth(ctx context.Context) (service.User, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "users/check-auth", nil, &env); err != nil {
		return service.User{}, err
	}
	return decodeUser(env)
}

// Login implements service.API.
func (c *Client) Login(ctx context.Context, email, password string) (service.User, error) {
	body := map[string]string{"email": email, "password": password}
	var env envelope
	if err := c.do(ctx, http.MethodPost, "users/login", body, &env); err != nil {
		return service.User{}, err
	}
	return decodeUser(env)
}

// Logout implements service.API.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "users/logout", struct{}{}, nil)
}

// Register implements service.API.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "users/register", body, nil)
}

// ListTasks implements service.API.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, http.MethodGet, "tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask implements service.API.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// CreateTask implements service.API.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodPost, "tasks", in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask implements service.API.
func (c *Client) UpdateTask(ctx context.Context, id string, in service.TaskInput) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask implements service.API.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id string) string {
	return "tasks/" + url.PathEscape(id)
}

func decodeUser(env envelope) (service.User, error) {
	var user service.User
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return user, nil
	}
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return service.User{}, fmt.Errorf("invalid user payload: %w", err)
	}
	return user, nil
}

// do sends one JSON request. Any 2xx is success; out is decoded when the
// response has a body. Cookies are persisted after every response.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	target := c.base.ResolveReference(ref)
	reqID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", target.String()),
		attribute.String("request.id", reqID),
	)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		err = wrapError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("api request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", reqID,
	)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.saveCookies()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response from %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) saveCookies() {
	if c.cookiePath == "" {
		return
	}
	if err := saveCookies(c.cookiePath, c.jar, c.base); err != nil {
		c.logger.Warn("failed to save cookies", "path", c.cookiePath, "error", err)
	}
}

// errorMessage extracts "message" or "error" from a JSON error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}
