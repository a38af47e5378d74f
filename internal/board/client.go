package board

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://agilezen.com/api/v1/"

// apiKeyHeader carries the per-user API key on every request.
const apiKeyHeader = "X-Zen-ApiKey"

// maxErrorBody bounds how much of an error response is kept for logs.
const maxErrorBody = 512

// Config holds client configuration.
type Config struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL. Override
	// for testing against a local server.
	BaseURL string

	// APIKey is the per-user authentication key. Required.
	APIKey string

	// PageSize is the page size for list requests (default: 100).
	PageSize int

	// Timeout bounds each HTTP request (default: 30s).
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	// Only for testing against self-signed endpoints.
	InsecureSkipVerify bool

	// Logger for request activity (default: stderr logger).
	Logger *log.Logger
}

// Client talks to the board service. One Client holds one HTTP session;
// requests are issued sequentially by the sync run, so the client does
// no internal locking.
type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	http     *http.Client
	logger   *log.Logger
}

// NewClient creates a board service client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(config.BaseURL, "/") {
		config.BaseURL += "/"
	}
	if config.PageSize <= 0 {
		config.PageSize = 100
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[board] ", log.LstdFlags)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:  config.BaseURL,
		apiKey:   config.APIKey,
		pageSize: config.PageSize,
		http: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: config.Logger,
	}, nil
}

// page is the envelope of paginated list responses.
type page struct {
	Items      json.RawMessage `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(data)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return &APIError{Op: op, StatusCode: resp.StatusCode, URL: u, Body: snippet}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: malformed response: %w", op, err)
		}
	}
	return nil
}

// list fetches every page of a collection endpoint and returns the
// concatenated raw items.
func (c *Client) list(ctx context.Context, op, path string, params url.Values) ([]json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}

	var items []json.RawMessage
	for pageNum := 1; ; pageNum++ {
		params.Set("page", strconv.Itoa(pageNum))
		params.Set("pageSize", strconv.Itoa(c.pageSize))

		var envelope page
		if err := c.do(ctx, op, http.MethodGet, path, params, nil, &envelope); err != nil {
			return nil, err
		}

		var raw []json.RawMessage
		if err := json.Unmarshal(envelope.Items, &raw); err != nil {
			return nil, fmt.Errorf("%s: malformed items: %w", op, err)
		}
		items = append(items, raw...)

		if pageNum >= envelope.TotalPages {
			return items, nil
		}
	}
}

// Boards lists boards, optionally filtered with the service's "where"
// query syntax (e.g. "name:Personal").
func (c *Client) Boards(ctx context.Context, where string) ([]Board, error) {
	params := url.Values{}
	if where != "" {
		params.Set("where", where)
	}
	raw, err := c.list(ctx, "list boards", "projects", params)
	if err != nil {
		return nil, err
	}

	boards := make([]Board, 0, len(raw))
	for _, item := range raw {
		var b Board
		if err := json.Unmarshal(item, &b); err != nil {
			return nil, fmt.Errorf("list boards: malformed board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, nil
}

// BoardByName finds the board with the given name.
func (c *Client) BoardByName(ctx context.Context, name string) (*Board, error) {
	boards, err := c.Boards(ctx, "name:"+name)
	if err != nil {
		return nil, err
	}
	for i := range boards {
		if boards[i].Name == name {
			return &boards[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrBoardNotFound, name)
}

// Phases lists a board's phases. Order is as returned by the service;
// use NewTrack to resolve anchors.
func (c *Client) Phases(ctx context.Context, boardID int) ([]Phase, error) {
	raw, err := c.list(ctx, "list phases",
		fmt.Sprintf("projects/%d/phases", boardID), nil)
	if err != nil {
		return nil, err
	}

	phases := make([]Phase, 0, len(raw))
	for _, item := range raw {
		var p Phase
		if err := json.Unmarshal(item, &p); err != nil {
			return nil, fmt.Errorf("list phases: malformed phase: %w", err)
		}
		phases = append(phases, p)
	}
	return phases, nil
}

// Stories lists every story on a board, enriched with details, tags and
// tasks so one listing is enough for a whole sync run.
func (c *Client) Stories(ctx context.Context, boardID int) ([]Story, error) {
	params := url.Values{}
	params.Set("with", "details,tags,tasks")

	raw, err := c.list(ctx, "list stories",
		fmt.Sprintf("projects/%d/stories", boardID), params)
	if err != nil {
		return nil, err
	}

	stories := make([]Story, 0, len(raw))
	for _, item := range raw {
		var s Story
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, fmt.Errorf("list stories: malformed story: %w", err)
		}
		stories = append(stories, s)
	}
	return stories, nil
}

// CreateStory creates a story on the board.
func (c *Client) CreateStory(ctx context.Context, boardID int, draft StoryDraft) (*Story, error) {
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}
	var story Story
	err := c.do(ctx, "create story", http.MethodPost,
		fmt.Sprintf("projects/%d/stories", boardID), nil, draft, &story)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("created story %d %q", story.ID, story.Text)
	return &story, nil
}

// UpdateStory updates a story's writable fields.
func (c *Client) UpdateStory(ctx context.Context, boardID, storyID int, draft StoryDraft) (*Story, error) {
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("update story %d: %w", storyID, err)
	}
	var story Story
	err := c.do(ctx, fmt.Sprintf("update story %d", storyID), http.MethodPut,
		fmt.Sprintf("projects/%d/stories/%d", boardID, storyID), nil, draft, &story)
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// DeleteStory deletes a story and, implicitly, its tasks.
func (c *Client) DeleteStory(ctx context.Context, boardID, storyID int) error {
	return c.do(ctx, fmt.Sprintf("delete story %d", storyID), http.MethodDelete,
		fmt.Sprintf("projects/%d/stories/%d", boardID, storyID), nil, nil, nil)
}

// CreateTask appends a checklist task to a story.
func (c *Client) CreateTask(ctx context.Context, boardID, storyID int, draft TaskDraft) (*Task, error) {
	var task Task
	err := c.do(ctx, fmt.Sprintf("create task in story %d", storyID), http.MethodPost,
		fmt.Sprintf("projects/%d/stories/%d/tasks", boardID, storyID), nil, draft, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask updates a checklist task.
func (c *Client) UpdateTask(ctx context.Context, boardID, storyID, taskID int, draft TaskDraft) (*Task, error) {
	var task Task
	err := c.do(ctx, fmt.Sprintf("update task %d in story %d", taskID, storyID), http.MethodPut,
		fmt.Sprintf("projects/%d/stories/%d/tasks/%d", boardID, storyID, taskID), nil, draft, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask deletes a checklist task.
func (c *Client) DeleteTask(ctx context.Context, boardID, storyID, taskID int) error {
	return c.do(ctx, fmt.Sprintf("delete task %d in story %d", taskID, storyID), http.MethodDelete,
		fmt.Sprintf("projects/%d/stories/%d/tasks/%d", boardID, storyID, taskID), nil, nil, nil)
}

// ReorderTasks replaces the order of a story's tasks. The task IDs must
// be the complete set of the story's current tasks, in the desired
// order.
func (c *Client) ReorderTasks(ctx context.Context, boardID, storyID int, taskIDs []int) error {
	return c.do(ctx, fmt.Sprintf("reorder tasks in story %d", storyID), http.MethodPut,
		fmt.Sprintf("projects/%d/stories/%d/tasks", boardID, storyID), nil, taskIDs, nil)
}
