// Package client talks to the pipeline API on behalf of the board.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/hiring-board/internal/board"
	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/models"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// RequestIDHeader carries a per-request id the server echoes and logs.
const RequestIDHeader = "X-Request-ID"

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a client for baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListApplications(ctx context.Context, jobID uint) ([]models.Application, error) {
	var apps []models.Application
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/jobs/%d/applications", jobID), nil, &apps)
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) UpdateKanban(ctx context.Context, jobID uint, updates []dtos.KanbanUpdate) error {
	body := dtos.KanbanBatchRequest{Updates: updates}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/jobs/%d/applications/kanban", jobID), body, nil)
}

func (c *Client) GetJob(ctx context.Context, jobID uint) (*models.Job, error) {
	var job models.Job
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/jobs/%d", jobID), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

var _ board.Backend = (*Client)(nil)
