package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/cuongbtq/poke-report/internal/api/model"
	"github.com/cuongbtq/poke-report/internal/report/domain"
	"github.com/jmoiron/sqlx"
)

const requestColumns = `id, type, sample_size, status, url, created_at, updated_at`

// Storage persists report requests in PostgreSQL
type Storage struct {
	db *sqlx.DB
}

// NewStorage creates a storage on top of an open database handle
func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// CreateRequest inserts req and fills in its generated id and timestamps
func (s *Storage) CreateRequest(ctx context.Context, req *model.Request) error {
	query := `
		INSERT INTO report_requests (type, sample_size, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	row := s.db.QueryRowxContext(ctx, query, req.Type, req.SampleSize, req.Status)
	if err := row.Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetRequest returns the request with the given id or domain.ErrJobNotFound
func (s *Storage) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	var req model.Request
	query := `SELECT ` + requestColumns + ` FROM report_requests WHERE id = $1`

	err := s.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return &req, nil
}

// UpdateRequest sets the status and report url of a request.
// An empty url clears any previously recorded one.
func (s *Storage) UpdateRequest(ctx context.Context, id int64, status domain.Status, url string) error {
	query := `
		UPDATE report_requests
		SET status = $2, url = $3, updated_at = NOW()
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query, id, string(status), sql.NullString{String: url, Valid: url != ""})
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

// RequestFilter narrows ListRequests
type RequestFilter struct {
	Type     string
	Status   string
	PageSize int
	Cursor   *RequestCursor
}

// RequestCursor is the keyset position of the last row of a page
type RequestCursor struct {
	CreatedAt time.Time
	ID        int64
}

// ListRequests returns up to PageSize+1 requests, newest first
func (s *Storage) ListRequests(ctx context.Context, filter RequestFilter) ([]model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM report_requests WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, filter.Type)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.ID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, id DESC"

	// one extra row tells the caller whether another page exists
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var requests []model.Request
	if err := s.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	return requests, nil
}

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema files in name order. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := fs.ReadFile(migrations, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}
