// Package statusstore is the HTTP client for the report request status API
// (PUT /api/request, GET /api/request/{id}).
package statusstore

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
	"strconv"
	"strings"
	"time"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 1 << 20

// Config holds status API client configuration
type Config struct {
	// Domain is the base URL of the status API, e.g. https://requests.example.com
	Domain  string
	Timeout time.Duration
	Client  *http.Client
	Logger  *slog.Logger
}

// Client reads and updates report requests through the status API
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient builds a status API client
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Domain), "/")
	if baseURL == "" {
		return nil, errors.New("status api domain is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid status api domain %q: %w", baseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{baseURL: baseURL, client: hc, logger: logger}, nil
}

// UpdateRequestPayload is the body of PUT /api/request
type UpdateRequestPayload struct {
	ID     int64         `json:"id"`
	Status domain.Status `json:"status"`
	URL    string        `json:"url,omitempty"`
}

// UpdateRequest records a status transition. url is omitted when empty.
func (c *Client) UpdateRequest(ctx context.Context, id int64, status domain.Status, url string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	body, err := json.Marshal(UpdateRequestPayload{ID: id, Status: status, URL: url})
	if err != nil {
		return fmt.Errorf("encode update request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/request", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NewTransportError("update request", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return domain.NewTransportError("update request", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	c.logger.Info("Request status updated",
		slog.Int64("job_id", id),
		slog.String("status", string(status)),
	)
	return nil
}

type requestRecord struct {
	ID         json.Number `json:"id"`
	Type       string      `json:"type"`
	SampleSize json.Number `json:"sample_size"`
	Status     string      `json:"status"`
	URL        string      `json:"url"`
}

// GetRequest fetches a request record. The API answers with an array whose
// first element is the record.
func (c *Client) GetRequest(ctx context.Context, id int64) (*domain.Job, error) {
	endpoint := c.baseURL + "/api/request/" + strconv.FormatInt(id, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create get request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NewTransportError("get request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("request %d: %w", id, domain.ErrJobNotFound)
	}
	if err := checkStatus(resp); err != nil {
		return nil, domain.NewTransportError("get request", err)
	}

	var records []requestRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&records); err != nil {
		return nil, domain.NewParseError("get request", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("request %d: %w", id, domain.ErrJobNotFound)
	}

	rec := records[0]
	if strings.TrimSpace(rec.Type) == "" {
		return nil, domain.NewParseError("get request", fmt.Errorf("request %d has no type", id))
	}
	job := &domain.Job{
		ID:     id,
		Type:   rec.Type,
		Status: domain.Status(rec.Status),
		URL:    rec.URL,
	}
	if rec.SampleSize != "" {
		if n, err := domain.ParseInteger(rec.SampleSize); err == nil {
			job.SampleSize = int(n)
		}
	}
	return job, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
