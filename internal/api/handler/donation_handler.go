package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pawhaven-donation-engine/internal/api/middleware"
	"github.com/pawhaven-donation-engine/internal/domain/animal"
	"github.com/pawhaven-donation-engine/internal/domain/campaign"
	"github.com/pawhaven-donation-engine/internal/domain/donation"
	"github.com/pawhaven-donation-engine/internal/domain/donor"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/pawhaven-donation-engine/internal/platform/payment"
	"github.com/pawhaven-donation-engine/internal/reconciliation/service"
)

// DonationHandler handles donation API requests
type DonationHandler struct {
	donationService service.DonationService
	logger          *slog.Logger
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService service.DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		logger:          logger,
	}
}

// CreateIntent handles POST /api/v1/donations/intent
func (h *DonationHandler) CreateIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	donorID, err := uuid.Parse(req.DonorID)
	if err != nil {
		RespondBadRequest(c, "Invalid donor ID format")
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		RespondBadRequest(c, "Invalid target ID format")
		return
	}

	var target donation.Target
	switch shared.DonationKind(req.TargetKind) {
	case shared.DonationKindAnimal:
		target = donation.AnimalTarget(targetID)
	case shared.DonationKindCampaign:
		target = donation.CampaignTarget(targetID)
	default:
		RespondBadRequest(c, "Target kind must be ANIMAL or CAMPAIGN")
		return
	}

	cmd := &service.CreateIntentCommand{
		DonorID:       donorID,
		Target:        target,
		Amount:        req.Amount,
		CorrelationID: middleware.GetCorrelationID(c),
	}

	result, err := h.donationService.CreateIntent(c.Request.Context(), cmd)
	if err != nil {
		h.respondServiceError(c, err, "Failed to create donation intent")
		return
	}

	RespondCreated(c, IntentResponse{
		Donation:     toDonationResponse(result.Donation),
		IntentRef:    result.Donation.IntentRef,
		ClientSecret: result.ClientSecret,
	})
}

// Confirm handles POST /api/v1/donations/confirm
func (h *DonationHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	donorID, err := uuid.Parse(req.DonorID)
	if err != nil {
		RespondBadRequest(c, "Invalid donor ID format")
		return
	}

	cmd := &service.ConfirmCommand{
		IntentRef:     req.IntentRef,
		DonorID:       donorID,
		CorrelationID: middleware.GetCorrelationID(c),
	}

	result, err := h.donationService.Confirm(c.Request.Context(), cmd)
	if err != nil {
		h.respondServiceError(c, err, "Failed to confirm donation")
		return
	}

	RespondOK(c, ConfirmResponse{
		Donation:          toDonationResponse(result.Donation),
		TargetName:        result.TargetName,
		ShelterName:       result.ShelterName,
		CampaignCompleted: result.CampaignCompleted,
		RewardBalance:     result.RewardBalance,
	})
}

// Refund handles POST /api/v1/donations/:id/refund
func (h *DonationHandler) Refund(c *gin.Context) {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid donation ID format")
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	donorID, err := uuid.Parse(req.DonorID)
	if err != nil {
		RespondBadRequest(c, "Invalid donor ID format")
		return
	}

	cmd := &service.RefundCommand{
		DonationID:    donationID,
		DonorID:       donorID,
		Amount:        req.Amount,
		Reason:        req.Reason,
		Initiator:     shared.RefundInitiator(req.Initiator),
		CorrelationID: middleware.GetCorrelationID(c),
	}

	d, err := h.donationService.Refund(c.Request.Context(), cmd)
	if err != nil {
		h.respondServiceError(c, err, "Failed to refund donation")
		return
	}

	RespondOK(c, toDonationResponse(d))
}

// GetByID handles GET /api/v1/donations/:id
func (h *DonationHandler) GetByID(c *gin.Context) {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid donation ID format")
		return
	}

	d, err := h.donationService.GetDonation(c.Request.Context(), donationID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to get donation")
		return
	}

	RespondOK(c, toDonationResponse(d))
}

// GetRewards handles GET /api/v1/donors/:id/rewards
func (h *DonationHandler) GetRewards(c *gin.Context) {
	donorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid donor ID format")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	offset := (params.Page - 1) * params.PerPage
	history, err := h.donationService.GetRewardHistory(c.Request.Context(), donorID, params.PerPage, offset)
	if err != nil {
		h.respondServiceError(c, err, "Failed to get reward history")
		return
	}

	entries := make([]RewardEntryResponse, 0, len(history.Entries))
	for _, e := range history.Entries {
		entry := RewardEntryResponse{
			ID:           e.ID.String(),
			Delta:        e.Delta,
			Kind:         string(e.Kind),
			Description:  e.Description,
			BalanceAfter: e.BalanceAfter,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		}
		if e.DonationID != nil {
			entry.DonationID = e.DonationID.String()
		}
		entries = append(entries, entry)
	}

	response := RewardHistoryResponse{
		DonorID: history.Donor.ID.String(),
		Balance: history.Donor.RewardPoints,
		Entries: entries,
	}

	RespondWithPaginatedData(c, 200, response, params.Page, params.PerPage, int(history.Total))
}

// respondServiceError maps service errors to HTTP responses
func (h *DonationHandler) respondServiceError(c *gin.Context, err error, logMsg string) {
	correlationID := middleware.GetCorrelationID(c)

	switch {
	case errors.Is(err, donation.ErrAmountOutOfBounds{}),
		errors.Is(err, donation.ErrInvalidAmount),
		errors.Is(err, donation.ErrInvalidKind):
		RespondBadRequest(c, err.Error())

	case errors.Is(err, donation.ErrDonationNotFound{}),
		errors.Is(err, donation.ErrIntentNotFound{}),
		errors.Is(err, donor.ErrDonorNotFound{}),
		errors.Is(err, animal.ErrAnimalNotFound{}),
		errors.Is(err, campaign.ErrCampaignNotFound{}):
		RespondNotFound(c, err.Error())

	case errors.Is(err, donation.ErrAlreadyProcessed{}):
		RespondConflict(c, err.Error())

	case errors.Is(err, donation.ErrNotSettled{}),
		errors.Is(err, donation.ErrRefundExceedsRemaining{}),
		errors.Is(err, animal.ErrNotAcceptingDonations{}),
		errors.Is(err, campaign.ErrNotAcceptingDonations{}):
		RespondUnprocessable(c, err.Error())

	default:
		var procErr *payment.ProcessorError
		if errors.As(err, &procErr) {
			h.logger.Error(logMsg,
				"error", err,
				"correlation_id", correlationID,
			)
			RespondBadGateway(c, "")
			return
		}

		h.logger.Error(logMsg,
			"error", err,
			"correlation_id", correlationID,
		)
		RespondInternalError(c)
	}
}

func toDonationResponse(d *donation.Donation) DonationResponse {
	resp := DonationResponse{
		ID:             d.ID.String(),
		DonorID:        d.DonorID.String(),
		TargetKind:     string(d.Target.Kind),
		TargetID:       d.Target.ID.String(),
		Amount:         d.Amount,
		Currency:       d.Currency,
		Status:         string(d.Status),
		FeeAmount:      d.FeeAmount,
		FeeBps:         d.FeeBps,
		ShelterShare:   d.ShelterShare(),
		PointsAwarded:  d.PointsAwarded,
		RefundedAmount: d.RefundedAmount,
		RefundReason:   d.RefundReason,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}

	if d.Target.Kind == shared.DonationKindAnimal && d.Status != shared.DonationStatusPending && d.Status != shared.DonationStatusFailed {
		resp.Distribution = &AllocationResponse{
			Medical:    d.Distribution.Medical,
			Food:       d.Distribution.Food,
			Preventive: d.Distribution.Preventive,
			Other:      d.Distribution.Other,
		}
	}
	if d.CompletedAt != nil {
		resp.CompletedAt = d.CompletedAt.Format(time.RFC3339)
	}
	if d.RefundedAt != nil {
		resp.RefundedAt = d.RefundedAt.Format(time.RFC3339)
	}

	return resp
}
