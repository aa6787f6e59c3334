package blobstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// azureBlobAPI is the subset of *azblob.Client used by the uploader
type azureBlobAPI interface {
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// AzureUploader writes block blobs into one container
type AzureUploader struct {
	client    azureBlobAPI
	container string
	baseURL   string
	logger    *slog.Logger
}

// NewAzureUploader builds an uploader from a storage connection string
func NewAzureUploader(cfg Config, logger *slog.Logger) (*AzureUploader, error) {
	if strings.TrimSpace(cfg.ConnectionString) == "" {
		return nil, fmt.Errorf("azure storage connection string is required")
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}

	return newAzureUploader(client, cfg, logger)
}

func newAzureUploader(client azureBlobAPI, cfg Config, logger *slog.Logger) (*AzureUploader, error) {
	baseURL := strings.TrimSpace(cfg.PublicBaseURL)
	if baseURL == "" {
		account := strings.TrimSpace(cfg.AccountName)
		if account == "" {
			return nil, fmt.Errorf("azure storage account name is required")
		}
		if !strings.Contains(account, ".") {
			account += ".blob.core.windows.net"
		}
		baseURL = account
	}

	return &AzureUploader{
		client:    client,
		container: cfg.Container,
		baseURL:   baseURL,
		logger:    logger,
	}, nil
}

// Upload writes data as a block blob, replacing any existing blob of that name
func (u *AzureUploader) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	opts := &azblob.UploadBufferOptions{}
	if contentType != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: &contentType}
	}

	if _, err := u.client.UploadBuffer(ctx, u.container, name, data, opts); err != nil {
		u.logger.Error("Error uploading report to blob storage",
			slog.String("container", u.container),
			slog.String("blob", name),
			slog.Any("error", err),
		)
		return domain.NewTransportError("upload blob", err)
	}

	u.logger.Info("Report uploaded to blob storage",
		slog.String("container", u.container),
		slog.String("blob", name),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// URL joins the public base URL, or the account host when none is set, with
// the container and blob name. A bare account name maps to
// <account>.blob.core.windows.net; a dotted one is used as the host.
func (u *AzureUploader) URL(name string) string {
	return joinURL(u.baseURL, u.container, name)
}
