// Package googletasks implements service.API on the Google Tasks default list.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskboard/internal/config"
	"taskboard/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks fetched per page.
	PageSize = 100

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// Client implements service.API using the Google Tasks API.
// The service is built lazily so that login can run before a token exists.
type Client struct {
	cfg     *config.Config
	timeout time.Duration

	mu  sync.Mutex
	svc *tasks.Service

	// Prompt receives the authorization URL during Login.
	Prompt io.Writer
}

// New creates a Google Tasks client. Missing credentials are reported by the
// first call that needs them, not here.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	return &Client{cfg: cfg, timeout: cfg.Timeout, Prompt: os.Stderr}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, timeout: 5 * time.Second, Prompt: io.Discard}, nil
}

// service returns the Tasks service, building it from token.json on first use.
func (c *Client) service(ctx context.Context) (*tasks.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}
	oauthConfig, err := c.oauthConfig()
	if err != nil {
		return nil, err
	}
	token, err := loadToken(c.cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: not logged in (run: taskboard login)", service.ErrUnauthorized)
	}

	// Create HTTP client with a token source that auto-refreshes
	httpClient := oauth2.NewClient(context.Background(), oauthConfig.TokenSource(context.Background(), token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	c.svc = svc
	return svc, nil
}

func (c *Client) oauthConfig() (*oauth2.Config, error) {
	if c.cfg == nil {
		return nil, errors.New("no configuration")
	}
	clientJSON, err := os.ReadFile(c.cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found in %s", service.ErrUnauthorized, config.OAuthClientFile, c.cfg.Dir)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// CheckAuth implements service.API. The account is represented by its default list.
func (c *Client) CheckAuth(ctx context.Context) (service.User, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return service.User{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return service.User{}, wrapError(err)
	}
	return service.User{ID: list.Id, Name: "Google Tasks (" + list.Title + ")"}, nil
}

// Logout implements service.API by removing the stored token.
func (c *Client) Logout(ctx context.Context) error {
	if c.cfg == nil || !c.cfg.HasToken() {
		return nil
	}
	if err := c.cfg.RemoveToken(); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	c.reset()
	return nil
}

// Register implements service.API. Google accounts cannot be created here.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return service.ErrUnsupported
}

// ListTasks implements service.API, including completed tasks.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result []service.Task
	err = svc.Tasks.List(DefaultListID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, fromGoogle(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// GetTask implements service.API.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return service.Task{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	t, err := svc.Tasks.Get(DefaultListID, id).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromGoogle(t), nil
}

// CreateTask implements service.API.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return service.Task{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	t, err := svc.Tasks.Insert(DefaultListID, toGoogle(in)).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromGoogle(t), nil
}

// UpdateTask implements service.API as a full replacement.
func (c *Client) UpdateTask(ctx context.Context, id string, in service.TaskInput) (service.Task, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return service.Task{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	gt := toGoogle(in)
	gt.Id = id
	t, err := svc.Tasks.Update(DefaultListID, id, gt).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromGoogle(t), nil
}

// DeleteTask implements service.API.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := svc.Tasks.Delete(DefaultListID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// reset drops the cached service so the next call rereads token.json.
func (c *Client) reset() {
	c.mu.Lock()
	c.svc = nil
	c.mu.Unlock()
}

// wrapError maps API errors to service sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: taskboard login)", service.ErrUnauthorized)
		case http.StatusNotFound:
			return service.ErrNotFound
		}
	}

	// Token refresh failures surface as oauth2 errors inside url errors.
	if strings.Contains(err.Error(), "oauth2: ") {
		return fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
	}
	return err
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	return &token, nil
}

// saveToken saves an OAuth token to a file with mode 0600.
func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
