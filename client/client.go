// Package client talks to a remote ganttline sync server. It holds the
// current access token, transparently adopting renewed tokens the server
// hands back on each authed call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ganttline/ganttline/internal/db"
	"github.com/ganttline/ganttline/models"
	"github.com/ganttline/ganttline/types"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
)

// ErrSessionExpired indicates the stored access token has expired and the
// user must log in again.
var ErrSessionExpired = errors.New("session expired, log in again")

// Client is a remote sync client bound to one server address.
type Client struct {
	baseURL    string
	http       *http.Client
	logger     *log.Logger
	maxRetries int

	mu    sync.Mutex
	token string
}

// New creates a client from the remote configuration.
func New(cfg types.RemoteConfig, logger *log.Logger) (*Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("remote address is not configured")
	}

	timeout := defaultTimeout
	if cfg.RequestTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}
	retries := defaultMaxRetries
	if cfg.MaxRetries > 0 {
		retries = cfg.MaxRetries
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.Address, "/"),
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
		maxRetries: retries,
	}, nil
}

// Token returns the current access token.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetToken installs a previously saved access token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// call sends one JSON request and decodes the response into dst (which may
// be nil). Renewed tokens in the response replace the stored one.
func (c *Client) call(ctx context.Context, method, path string, payload, dst interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusGone {
			return ErrSessionExpired
		}
		var apiErr types.APIError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Code != "" {
			return &apiErr
		}
		return fmt.Errorf("server returned %d for %s", resp.StatusCode, path)
	}

	var envelope struct {
		AccessToken string `json:"access_token"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.AccessToken != "" {
		c.SetToken(envelope.AccessToken)
	}

	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Register creates a new remote account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	payload := map[string]string{"username": username, "password": password}
	return c.call(ctx, http.MethodPost, "/user/register", payload, nil)
}

// Login authenticates and stores the returned access token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload := map[string]string{"username": username, "password": password}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.call(ctx, http.MethodPost, "/user/authorise", payload, &resp); err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("login response carried no access token")
	}
	c.SetToken(resp.AccessToken)
	return nil
}

type authedPayload struct {
	AccessToken string       `json:"access_token"`
	ProjectID   string       `json:"project_id,omitempty"`
	TaskID      string       `json:"task_id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Task        *models.Task `json:"task,omitempty"`
}

// CreateProject creates a remote project and returns its metadata.
func (c *Client) CreateProject(ctx context.Context, name string) (db.ProjectRecord, error) {
	var resp struct {
		Project db.ProjectRecord `json:"project"`
	}
	err := c.call(ctx, http.MethodPut, "/project/new-project",
		authedPayload{AccessToken: c.Token(), Name: name}, &resp)
	return resp.Project, err
}

// RenameProject renames a remote project.
func (c *Client) RenameProject(ctx context.Context, projectID, name string) (db.ProjectRecord, error) {
	var resp struct {
		Project db.ProjectRecord `json:"project"`
	}
	err := c.call(ctx, http.MethodPost, "/project/rename-project",
		authedPayload{AccessToken: c.Token(), ProjectID: projectID, Name: name}, &resp)
	return resp.Project, err
}

// DeleteProject removes a remote project and all its tasks.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.call(ctx, http.MethodPost, "/project/delete-project",
		authedPayload{AccessToken: c.Token(), ProjectID: projectID}, nil)
}

// FetchProjects lists the remote projects owned by the logged-in user.
func (c *Client) FetchProjects(ctx context.Context) ([]db.ProjectRecord, error) {
	var resp struct {
		Projects []db.ProjectRecord `json:"projects"`
	}
	err := c.call(ctx, http.MethodPost, "/project/fetch-user-projects",
		authedPayload{AccessToken: c.Token()}, &resp)
	return resp.Projects, err
}

// CreateTask creates a task remotely. The server assigns the lane.
func (c *Client) CreateTask(ctx context.Context, projectID string, task models.Task) (models.Task, error) {
	var resp struct {
		Task models.Task `json:"task"`
	}
	err := c.call(ctx, http.MethodPut, "/project/task/new",
		authedPayload{AccessToken: c.Token(), ProjectID: projectID, Task: &task}, &resp)
	return resp.Task, err
}

// UpdateTask upserts a task's full state remotely.
func (c *Client) UpdateTask(ctx context.Context, projectID string, task models.Task) error {
	return c.call(ctx, http.MethodPost, "/project/task/update",
		authedPayload{AccessToken: c.Token(), ProjectID: projectID, Task: &task}, nil)
}

// DeleteTask removes a task remotely.
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	return c.call(ctx, http.MethodPost, "/project/task/delete",
		authedPayload{AccessToken: c.Token(), ProjectID: projectID, TaskID: taskID}, nil)
}

// FetchTasks pulls every task of a remote project.
func (c *Client) FetchTasks(ctx context.Context, projectID string) (map[string]models.Task, error) {
	var resp struct {
		Tasks map[string]models.Task `json:"tasks"`
	}
	err := c.call(ctx, http.MethodPost, "/project/task/fetch-all",
		authedPayload{AccessToken: c.Token(), ProjectID: projectID}, &resp)
	return resp.Tasks, err
}
