package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// failedWriteTimeout bounds the failed transition, which runs detached from the job context
const failedWriteTimeout = 30 * time.Second

// Config holds pipeline collaborators
type Config struct {
	Logger   *slog.Logger
	Status   StatusStore
	Catalog  Catalog
	Uploader Uploader
	Encoder  Encoder
	Sampler  *Sampler
}

// Pipeline turns one job message into an uploaded report
type Pipeline struct {
	logger   *slog.Logger
	status   StatusStore
	catalog  Catalog
	uploader Uploader
	encoder  Encoder
	sampler  *Sampler
}

// Result describes a completed job
type Result struct {
	JobID    int64
	Category string
	Rows     int
	BlobName string
	URL      string
}

// NewPipeline creates a new pipeline instance
func NewPipeline(cfg *Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	encoder := cfg.Encoder
	if encoder == nil {
		encoder = CSVEncoder{}
	}
	sampler := cfg.Sampler
	if sampler == nil {
		sampler = NewSampler(nil)
	}

	return &Pipeline{
		logger:   logger,
		status:   cfg.Status,
		catalog:  cfg.Catalog,
		uploader: cfg.Uploader,
		encoder:  encoder,
		sampler:  sampler,
	}
}

// Process runs one job message through received → inprogress → completed|failed.
// A validation failure returns before any status write. Once the job is
// inprogress, any error triggers a best-effort failed transition.
func (p *Pipeline) Process(ctx context.Context, body []byte) (*Result, error) {
	msg, err := ParseMessage(body)
	if err != nil {
		p.logger.Error("Rejected job message",
			slog.Any("error", err),
			slog.Int("body_size", len(body)),
		)
		return nil, err
	}

	logger := p.logger.With(slog.Int64("job_id", msg.ID))
	logger.Info("Processing job")

	if err := p.status.UpdateRequest(ctx, msg.ID, domain.StatusInProgress, ""); err != nil {
		logger.Error("Failed to mark job in progress", slog.Any("error", err))
		return nil, fmt.Errorf("mark job %d in progress: %w", msg.ID, err)
	}

	result, err := p.run(ctx, logger, msg)
	if err != nil {
		logger.Error("Job failed", slog.Any("error", err))

		if updateErr := p.markFailed(ctx, msg.ID); updateErr != nil {
			logger.Error("Failed to mark job failed", slog.Any("error", updateErr))
			return nil, errors.Join(err, fmt.Errorf("mark job %d failed: %w", msg.ID, updateErr))
		}
		return nil, err
	}

	logger.Info("Job completed",
		slog.String("category", result.Category),
		slog.Int("rows", result.Rows),
		slog.String("url", result.URL),
	)
	return result, nil
}

// markFailed records the failed status even when the job context has expired
func (p *Pipeline) markFailed(ctx context.Context, id int64) error {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failedWriteTimeout)
	defer cancel()
	return p.status.UpdateRequest(fctx, id, domain.StatusFailed, "")
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, msg *domain.Message) (*Result, error) {
	job, err := p.status.GetRequest(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", msg.ID, err)
	}
	logger = logger.With(slog.String("category", job.Type))

	sampleSize, err := msg.SampleSize()
	if err != nil {
		return nil, err
	}

	population, err := p.catalog.ListByType(ctx, job.Type)
	if err != nil {
		return nil, fmt.Errorf("list category %q: %w", job.Type, err)
	}

	selected := p.sampler.Sample(population, sampleSize)
	logger.Info("Selected items",
		slog.Int("population", len(population)),
		slog.Int("sample_size", sampleSize),
		slog.Int("selected", len(selected)),
	)

	rows, err := p.enrichAll(ctx, logger, selected)
	if err != nil {
		return nil, fmt.Errorf("enrich items: %w", err)
	}

	data, err := p.encoder.Encode(rows)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	blobName := domain.ReportName(msg.ID, p.encoder.Extension())
	if err := p.uploader.Upload(ctx, blobName, data, p.encoder.ContentType()); err != nil {
		logger.Error("Failed to upload report",
			slog.String("blob", blobName),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("upload report: %w", err)
	}
	logger.Info("Report uploaded",
		slog.String("blob", blobName),
		slog.Int("bytes", len(data)),
	)

	url := p.uploader.URL(blobName)
	if err := p.status.UpdateRequest(ctx, msg.ID, domain.StatusCompleted, url); err != nil {
		return nil, fmt.Errorf("mark job %d completed: %w", msg.ID, err)
	}

	return &Result{
		JobID:    msg.ID,
		Category: job.Type,
		Rows:     len(rows),
		BlobName: blobName,
		URL:      url,
	}, nil
}
