package report

import (
	"context"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// StatusStore reads report requests and records their status transitions
type StatusStore interface {
	GetRequest(ctx context.Context, id int64) (*domain.Job, error)
	UpdateRequest(ctx context.Context, id int64, status domain.Status, url string) error
}

// Catalog lists the items of a category and fetches per-item detail
type Catalog interface {
	ListByType(ctx context.Context, category string) ([]domain.CatalogItem, error)
	GetDetail(ctx context.Context, itemURL string) (*domain.ItemDetail, error)
}

// Uploader stores a named blob, overwriting any existing object of that name
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	URL(name string) string
}

// Encoder renders report rows into an artifact
type Encoder interface {
	Encode(rows []domain.ReportRow) ([]byte, error)
	Extension() string
	ContentType() string
}
