package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pawhaven-donation-engine/internal/api/middleware"
	"github.com/pawhaven-donation-engine/internal/domain/outbox"
)

// AuditReader reads archived donation events from the audit store
type AuditReader interface {
	GetByDonationID(ctx context.Context, donationID uuid.UUID) ([]*outbox.DonationEvent, error)
	GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*outbox.DonationEvent, error)
}

// AuditHandler serves the archived donation event stream. The archive is a
// query-side copy; these endpoints never touch the reconciliation state.
type AuditHandler struct {
	auditRepo AuditReader
	logger    *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditRepo AuditReader, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// GetDonationEvents handles GET /api/v1/donations/:id/events. Events are
// returned oldest first, forming the donation's audit trail.
func (h *AuditHandler) GetDonationEvents(c *gin.Context) {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid donation ID format")
		return
	}

	events, err := h.auditRepo.GetByDonationID(c.Request.Context(), donationID)
	if err != nil {
		h.logger.Error("Failed to get donation events",
			"donation_id", donationID.String(),
			"error", err,
			"correlation_id", middleware.GetCorrelationID(c),
		)
		RespondInternalError(c)
		return
	}

	RespondOK(c, events)
}

// auditQueryParams bounds the audit event listing. Times are RFC 3339; an
// empty window defaults to the last 24 hours.
type auditQueryParams struct {
	Start   string `form:"start"`
	End     string `form:"end"`
	Page    int    `form:"page,default=1" binding:"min=1"`
	PerPage int    `form:"per_page,default=50" binding:"min=1,max=200"`
}

// GetEvents handles GET /api/v1/audit/events, listing archived events within
// a time window, most recent first.
func (h *AuditHandler) GetEvents(c *gin.Context) {
	var params auditQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	endTime := time.Now()
	if params.End != "" {
		parsed, err := time.Parse(time.RFC3339, params.End)
		if err != nil {
			RespondBadRequest(c, "Invalid end time, expected RFC 3339")
			return
		}
		endTime = parsed
	}

	startTime := endTime.Add(-24 * time.Hour)
	if params.Start != "" {
		parsed, err := time.Parse(time.RFC3339, params.Start)
		if err != nil {
			RespondBadRequest(c, "Invalid start time, expected RFC 3339")
			return
		}
		startTime = parsed
	}

	if !startTime.Before(endTime) {
		RespondBadRequest(c, "Start time must be before end time")
		return
	}

	offset := (params.Page - 1) * params.PerPage
	events, err := h.auditRepo.GetByTimeRange(c.Request.Context(), startTime, endTime, params.PerPage, offset)
	if err != nil {
		h.logger.Error("Failed to get audit events",
			"error", err,
			"correlation_id", middleware.GetCorrelationID(c),
		)
		RespondInternalError(c)
		return
	}

	RespondOK(c, events)
}
