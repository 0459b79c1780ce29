package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawhaven-donation-engine/internal/api/middleware"
	"github.com/pawhaven-donation-engine/internal/platform/payment"
	"github.com/pawhaven-donation-engine/internal/reconciliation/service"
)

// maxWebhookBodySize bounds the webhook payload we are willing to read
const maxWebhookBodySize = 1 << 20

// SignatureHeader carries the processor's signed timestamp and digest
const SignatureHeader = "Pay-Signature"

// WebhookHandler handles payment processor webhook deliveries
type WebhookHandler struct {
	donationService service.DonationService
	logger          *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(donationService service.DonationService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		donationService: donationService,
		logger:          logger,
	}
}

// HandlePaymentEvent handles POST /webhooks/payment. The raw body is needed
// for signature verification, so the payload is read before any decoding.
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize))
	if err != nil {
		RespondBadRequest(c, "Failed to read webhook payload")
		return
	}

	sigHeader := c.GetHeader(SignatureHeader)
	if sigHeader == "" {
		RespondBadRequest(c, "Missing signature header")
		return
	}

	err = h.donationService.HandleWebhook(c.Request.Context(), payload, sigHeader)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			h.logger.Warn("Webhook signature verification failed",
				"correlation_id", middleware.GetCorrelationID(c),
			)
			RespondUnauthorized(c, "Invalid webhook signature")
			return
		}

		// Once the signature checks out the event is acknowledged no matter
		// what; processing failures are logged, never surfaced. State is
		// recovered through the donor's confirm call, not redelivery.
		h.logger.Error("Failed to process webhook",
			"error", err,
			"correlation_id", middleware.GetCorrelationID(c),
		)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
