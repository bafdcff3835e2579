// internal/services/payment_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
	"github.com/shoploop/shoploop-backend/internal/config"
	"github.com/shoploop/shoploop-backend/internal/models"
)

type PaymentService struct {
	db           *gorm.DB
	config       *config.Config
	orderService *OrderService
}

type CreatePaymentIntentRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type RefundRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Amount  float64   `json:"amount,omitempty"`
	Reason  string    `json:"reason" validate:"required"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, orderService *OrderService) *PaymentService {
	// Initialize Stripe
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:           db,
		config:       cfg,
		orderService: orderService,
	}
}

// CreatePaymentIntent opens a Stripe payment for a pending order. The
// charged amount always comes from the stored order total, never from
// the client.
func (s *PaymentService) CreatePaymentIntent(userID uuid.UUID, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	var order models.Order
	if err := s.db.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.Status != models.OrderStatusPending {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("order in status %s cannot be paid", order.Status))
	}

	amountInCents := int64(order.Total*100 + 0.5)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String("usd"),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("order_number", order.OrderNumber)
	params.AddMetadata("user_id", userID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.db.Model(&order).Update("payment_intent_id", pi.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to store payment reference: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// HandleWebhook verifies the Stripe signature over the raw payload and
// dispatches the event. Unknown event types are acknowledged and
// ignored.
func (s *PaymentService) HandleWebhook(payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEvent(payload, signatureHeader, s.config.Payment.StripeWebhookSecret)
	if err != nil {
		return apperrors.NewUnauthorizedError("invalid webhook signature")
	}

	switch event.Type {
	case "payment_intent.succeeded":
		return s.handlePaymentSucceeded(event)
	case "payment_intent.payment_failed":
		return s.handlePaymentFailed(event)
	default:
		logrus.WithField("event_type", event.Type).Debug("Ignoring webhook event")
		return nil
	}
}

func (s *PaymentService) handlePaymentSucceeded(event stripe.Event) error {
	pi, orderID, err := s.orderFromEvent(event)
	if err != nil {
		return err
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("order")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Stripe retries deliveries; a second success for an already
	// confirmed order is a no-op.
	if order.Status != models.OrderStatusPending {
		return nil
	}

	if err := s.orderService.MarkConfirmed(order.ID, pi.ID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":          order.ID,
		"payment_intent_id": pi.ID,
	}).Info("Payment succeeded")
	return nil
}

func (s *PaymentService) handlePaymentFailed(event stripe.Event) error {
	pi, orderID, err := s.orderFromEvent(event)
	if err != nil {
		return err
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("order")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if order.Status != models.OrderStatusPending {
		return nil
	}

	if err := s.orderService.CancelForPaymentFailure(order.ID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":          order.ID,
		"payment_intent_id": pi.ID,
	}).Warn("Payment failed, order cancelled")
	return nil
}

func (s *PaymentService) orderFromEvent(event stripe.Event) (*stripe.PaymentIntent, uuid.UUID, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, uuid.Nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	orderIDStr, ok := pi.Metadata["order_id"]
	if !ok {
		return nil, uuid.Nil, apperrors.NewValidationError("payment intent has no order_id metadata")
	}
	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		return nil, uuid.Nil, apperrors.NewValidationError("payment intent has malformed order_id metadata")
	}

	return &pi, orderID, nil
}

// ProcessRefund refunds an order's charge through Stripe and moves the
// order to RETURNED. Admin only; the route enforces the role.
func (s *PaymentService) ProcessRefund(req *RefundRequest) error {
	var order models.Order
	if err := s.db.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("order")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if order.PaymentIntentID == "" {
		return apperrors.NewValidationError("order has no captured payment")
	}

	refundAmount := req.Amount
	if refundAmount <= 0 || refundAmount > order.Total {
		refundAmount = order.Total
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(order.PaymentIntentID),
		Amount:        stripe.Int64(int64(refundAmount*100 + 0.5)),
		Reason:        stripe.String("requested_by_customer"),
	}
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("failed to process refund: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", models.OrderStatusReturned).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		tracking := &models.OrderTracking{
			OrderID:     order.ID,
			Status:      models.OrderStatusReturned,
			Description: fmt.Sprintf("Refund issued: %s", req.Reason),
		}
		return tx.Create(tracking).Error
	})
}
