package statusstore

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		Domain: srv.URL,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain is required")

	c, err := NewClient(Config{Domain: "https://requests.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://requests.example.com", c.baseURL)
}

func TestClient_UpdateRequest(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.Status
		url      string
		wantBody map[string]any
	}{
		{
			name:     "in progress omits url",
			status:   domain.StatusInProgress,
			wantBody: map[string]any{"id": float64(7), "status": "inprogress"},
		},
		{
			name:     "completed carries url",
			status:   domain.StatusCompleted,
			url:      "https://acct.blob.core.windows.net/reports/poke_report_7.csv",
			wantBody: map[string]any{"id": float64(7), "status": "completed", "url": "https://acct.blob.core.windows.net/reports/poke_report_7.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, "/api/request", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				_, _ = w.Write([]byte(`{"ok": true}`))
			})

			err := c.UpdateRequest(context.Background(), 7, tt.status, tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestClient_UpdateRequest_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
	})

	err := c.UpdateRequest(context.Background(), 1, domain.StatusFailed, "")
	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, err.Error(), "503")

	err = c.UpdateRequest(context.Background(), 1, domain.Status("done"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestClient_GetRequest(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType string
		wantErr  error
		wantAs   any
	}{
		{
			name:     "first element is used",
			status:   http.StatusOK,
			body:     `[{"id": 7, "type": "grass", "sample_size": 2, "status": "pending"}, {"id": 7, "type": "fire"}]`,
			wantType: "grass",
		},
		{
			name:     "string identifiers are tolerated",
			status:   http.StatusOK,
			body:     `[{"id": "7", "type": "water"}]`,
			wantType: "water",
		},
		{name: "empty array", status: http.StatusOK, body: `[]`, wantErr: domain.ErrJobNotFound},
		{name: "not found", status: http.StatusNotFound, body: `{}`, wantErr: domain.ErrJobNotFound},
		{name: "malformed", status: http.StatusOK, body: `[{"type":`, wantAs: &domain.ParseError{}},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantAs: &domain.TransportError{}},
		{name: "missing type", status: http.StatusOK, body: `[{"id": 7, "status": "pending"}]`, wantAs: &domain.ParseError{}},
		{name: "blank type", status: http.StatusOK, body: `[{"id": 7, "type": "  "}]`, wantAs: &domain.ParseError{}},
		{
			name:   "oversized body is truncated",
			status: http.StatusOK,
			body:   `[{"id": 7, "type": "` + strings.Repeat("a", maxBodyBytes+1) + `"}]`,
			wantAs: &domain.ParseError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/request/7", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			job, err := c.GetRequest(context.Background(), 7)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAs != nil:
				require.Error(t, err)
				switch want := tt.wantAs.(type) {
				case *domain.ParseError:
					assert.ErrorAs(t, err, &want)
				case *domain.TransportError:
					assert.ErrorAs(t, err, &want)
				}
			default:
				require.NoError(t, err)
				assert.Equal(t, int64(7), job.ID)
				assert.Equal(t, tt.wantType, job.Type)
			}
		})
	}
}
