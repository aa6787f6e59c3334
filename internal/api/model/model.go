package model

import (
	"database/sql"
	"time"
)

// Request is a row of the report_requests table
type Request struct {
	ID         int64          `db:"id"`
	Type       string         `db:"type"`
	SampleSize int            `db:"sample_size"`
	Status     string         `db:"status"`
	URL        sql.NullString `db:"url"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}
