package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cuongbtq/poke-report/internal/api/dto"
	"github.com/cuongbtq/poke-report/internal/api/model"
	"github.com/cuongbtq/poke-report/internal/api/storage"
	"github.com/cuongbtq/poke-report/internal/report/domain"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateRequest handles POST /api/request.
// The row is stored as pending and a job message is published for the worker.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	record := model.Request{
		Type:       req.Type,
		SampleSize: req.SampleSize,
		Status:     string(domain.StatusPending),
	}

	ctx := c.Request.Context()
	if err := h.store.CreateRequest(ctx, &record); err != nil {
		h.logger.Error("Failed to create request", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create request",
		})
		return
	}

	msg := []dto.JobMessage{{IDRequest: record.ID, SampleSize: record.SampleSize}}
	if err := h.publisher.PublishJSON(ctx, msg); err != nil {
		h.logger.Error("Failed to publish job message",
			slog.Int64("request_id", record.ID),
			slog.String("error", err.Error()),
		)
		if updateErr := h.store.UpdateRequest(ctx, record.ID, domain.StatusFailed, ""); updateErr != nil {
			h.logger.Error("Failed to mark unpublished request as failed",
				slog.Int64("request_id", record.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Failed to enqueue request",
			"id":    record.ID,
		})
		return
	}

	h.logger.Info("Request created",
		slog.Int64("request_id", record.ID),
		slog.String("type", record.Type),
		slog.Int("sample_size", record.SampleSize),
	)

	c.JSON(http.StatusCreated, toDTO(&record))
}

// UpdateRequest handles PUT /api/request
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	var req dto.UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	status := domain.Status(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "status must be one of pending, inprogress, completed, failed",
		})
		return
	}

	err := h.store.UpdateRequest(c.Request.Context(), req.ID, status, req.URL)
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Request not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("Failed to update request",
			slog.Int64("request_id", req.ID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update request",
		})
		return
	}

	h.logger.Info("Request status updated",
		slog.Int64("request_id", req.ID),
		slog.String("status", req.Status),
	)

	c.JSON(http.StatusOK, gin.H{
		"id":     req.ID,
		"status": req.Status,
	})
}

// GetRequest handles GET /api/request/:id.
// The record is returned as a one-element array, the shape the worker reads.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id must be a positive integer",
		})
		return
	}

	record, err := h.store.GetRequest(c.Request.Context(), id)
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, []dto.RequestDTO{})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get request",
			slog.Int64("request_id", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get request",
		})
		return
	}

	c.JSON(http.StatusOK, []dto.RequestDTO{toDTO(record)})
}

// ListRequests handles GET /api/request
func (h *RequestHandler) ListRequests(c *gin.Context) {
	var req dto.ListRequestsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	if req.Status != "" && !domain.Status(req.Status).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid status filter",
		})
		return
	}

	cursor, err := DecodeRequestCursor(req.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	requests, err := h.store.ListRequests(c.Request.Context(), storage.RequestFilter{
		Type:     req.Type,
		Status:   req.Status,
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		h.logger.Error("Failed to list requests", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list requests",
		})
		return
	}

	hasMore := len(requests) > req.PageSize
	if hasMore {
		requests = requests[:req.PageSize]
	}

	resp := dto.ListRequestsResponse{Requests: make([]dto.RequestDTO, len(requests))}
	for i := range requests {
		resp.Requests[i] = toDTO(&requests[i])
	}

	if hasMore {
		last := requests[len(requests)-1]
		resp.NextCursor = EncodeRequestCursor(&storage.RequestCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	c.JSON(http.StatusOK, resp)
}

func toDTO(r *model.Request) dto.RequestDTO {
	return dto.RequestDTO{
		ID:         r.ID,
		Type:       r.Type,
		SampleSize: r.SampleSize,
		Status:     r.Status,
		URL:        r.URL.String,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
}
