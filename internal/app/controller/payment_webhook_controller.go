package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	apperrors "github.com/lucaanasser/nsr-ecommerce-backend/internal/errors"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/payment/pagbank"
)

// PaymentWebhookController receives asynchronous charge notifications
// from PagBank. The endpoint is unauthenticated; charges that do not
// match a known payment are ignored.
type PaymentWebhookController struct {
	orderService service.OrderService
}

func NewPaymentWebhookController(orderService service.OrderService) *PaymentWebhookController {
	return &PaymentWebhookController{
		orderService: orderService,
	}
}

// HandleNotification processes a PagBank webhook event
// POST /api/v1/payments/webhook
func (ctrl *PaymentWebhookController) HandleNotification(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var event pagbank.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		log.Warn("Invalid webhook payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "payload inválido")
		return
	}

	if err := ctrl.orderService.HandlePaymentNotification(c.Request.Context(), event); err != nil {
		log.Error("Failed to process payment notification", err, map[string]interface{}{
			"event_id":     event.ID,
			"charge_count": len(event.Charges),
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Payment notification processed", map[string]interface{}{
		"event_id":     event.ID,
		"charge_count": len(event.Charges),
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "notificação processada",
	})
}
