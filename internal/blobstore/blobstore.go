// Package blobstore uploads report artifacts to object storage. Azure Blob
// Storage is the default provider; any S3-compatible store can be used instead.
package blobstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Supported providers
const (
	ProviderAzure = "azure"
	ProviderS3    = "s3"
)

// Config holds object storage configuration
type Config struct {
	Provider string

	// Azure
	ConnectionString string
	AccountName      string

	// S3
	Region   string
	Endpoint string

	// Container is the Azure container or S3 bucket
	Container string
	// PublicBaseURL overrides the host used to build artifact URLs
	PublicBaseURL string
}

// Uploader stores named blobs and reports their public address
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	URL(name string) string
}

// New builds the uploader for cfg.Provider
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Uploader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Container) == "" {
		return nil, fmt.Errorf("storage container is required")
	}

	switch cfg.Provider {
	case ProviderAzure, "":
		u, err := NewAzureUploader(cfg, logger)
		if err != nil {
			return nil, err
		}
		return u, nil
	case ProviderS3:
		u, err := NewS3Uploader(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return u, nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %q", cfg.Provider)
	}
}

// joinURL builds https://<host>/<container>/<blob> with each segment escaped
func joinURL(base, container, name string) string {
	base = strings.TrimRight(base, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return base + "/" + url.PathEscape(container) + "/" + url.PathEscape(name)
}
