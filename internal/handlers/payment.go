// internal/handlers/payment.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoploop/shoploop-backend/internal/services"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBodyBytes = 65536

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreatePaymentIntentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// POST /payments/webhook
//
// Signature verification needs the raw body bytes, so this handler
// never binds JSON.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		utils.BadRequestResponse(c, "failed to read payload", nil)
		return
	}

	if err := h.paymentService.HandleWebhook(payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"received": true})
}

// POST /admin/payments/refund
func (h *PaymentHandler) Refund(c *gin.Context) {
	var req services.RefundRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.paymentService.ProcessRefund(&req); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "refund processed"})
}
