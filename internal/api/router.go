package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawhaven-donation-engine/internal/api/handler"
	"github.com/pawhaven-donation-engine/internal/api/middleware"
)

func setupRouter(logger *slog.Logger, router *gin.Engine, donationHandler *handler.DonationHandler, webhookHandler *handler.WebhookHandler, auditHandler *handler.AuditHandler) {
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CorrelationID())
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		donations := v1.Group("/donations")
		{
			donations.POST("/intent", donationHandler.CreateIntent)
			donations.POST("/confirm", donationHandler.Confirm)
			donations.POST("/:id/refund", donationHandler.Refund)
			donations.GET("/:id", donationHandler.GetByID)
			donations.GET("/:id/events", auditHandler.GetDonationEvents)
		}

		donors := v1.Group("/donors")
		{
			donors.GET("/:id/rewards", donationHandler.GetRewards)
		}

		audit := v1.Group("/audit")
		{
			audit.GET("/events", auditHandler.GetEvents)
		}
	}

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/payment", webhookHandler.HandlePaymentEvent)
	}
}
