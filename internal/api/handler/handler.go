package handler

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/poke-report/internal/api/model"
	"github.com/cuongbtq/poke-report/internal/api/storage"
	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// RequestStore is the persistence the handlers need
type RequestStore interface {
	CreateRequest(ctx context.Context, req *model.Request) error
	GetRequest(ctx context.Context, id int64) (*model.Request, error)
	UpdateRequest(ctx context.Context, id int64, status domain.Status, url string) error
	ListRequests(ctx context.Context, filter storage.RequestFilter) ([]model.Request, error)
}

// Publisher enqueues job messages for the report worker
type Publisher interface {
	PublishJSON(ctx context.Context, v any) error
}

// HealthChecker reports whether a backing service is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	Store     RequestStore
	Publisher Publisher
	Health    HealthChecker
	Service   string
}

// RequestHandler handles report request HTTP requests
type RequestHandler struct {
	logger    *slog.Logger
	store     RequestStore
	publisher Publisher
}

// NewRequestHandler creates a new RequestHandler instance
func NewRequestHandler(deps *Dependencies) *RequestHandler {
	return &RequestHandler{
		logger:    deps.Logger,
		store:     deps.Store,
		publisher: deps.Publisher,
	}
}
