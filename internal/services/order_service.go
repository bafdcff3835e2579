// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
	"github.com/shoploop/shoploop-backend/internal/config"
	"github.com/shoploop/shoploop-backend/internal/models"
	"github.com/shoploop/shoploop-backend/internal/pricing"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

type OrderService struct {
	db                  *gorm.DB
	cfg                 *config.Config
	rules               pricing.Rules
	notificationService *NotificationService
}

type OrderItemRequest struct {
	ProductID        uuid.UUID              `json:"product_id" validate:"required"`
	Quantity         int                    `json:"quantity" validate:"required,min=1"`
	SelectedVariants map[string]interface{} `json:"selected_variants,omitempty"`
}

type PlaceOrderRequest struct {
	Items             []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddressID uuid.UUID          `json:"shipping_address_id" validate:"required"`
	BillingAddressID  uuid.UUID          `json:"billing_address_id" validate:"required"`
	PaymentMethodID   uuid.UUID          `json:"payment_method_id" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status         models.OrderStatus `json:"status" validate:"required"`
	TrackingNumber string             `json:"tracking_number,omitempty"`
	Carrier        string             `json:"carrier,omitempty"`
}

type OrderListParams struct {
	utils.PaginationParams
	Status *models.OrderStatus
}

// trackingDescriptions are the canned human-readable event texts appended
// on each status change.
var trackingDescriptions = map[models.OrderStatus]string{
	models.OrderStatusPending:    "Order Placed",
	models.OrderStatusConfirmed:  "Order confirmed, payment received",
	models.OrderStatusProcessing: "Order is being processed",
	models.OrderStatusShipped:    "Order has been shipped",
	models.OrderStatusDelivered:  "Order delivered",
	models.OrderStatusCancelled:  "Order cancelled",
	models.OrderStatusReturned:   "Order returned",
}

// TrackingDescription returns the canned event text for a status.
func TrackingDescription(status models.OrderStatus) string {
	if d, ok := trackingDescriptions[status]; ok {
		return d
	}
	return string(status)
}

func NewOrderService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService) *OrderService {
	return &OrderService{
		db:  db,
		cfg: cfg,
		rules: pricing.NewRules(
			cfg.Commerce.TaxRate,
			cfg.Commerce.FreeShippingThreshold,
			cfg.Commerce.ShippingFee,
		),
		notificationService: notificationService,
	}
}

// GenerateOrderNumber builds prefix + unix millis + 3 random digits. The
// scheme is inherited from the storefront and is not collision-proof;
// the uuid primary key identifies the order.
func GenerateOrderNumber(prefix string) string {
	suffix, err := utils.RandomDigits(3)
	if err != nil {
		suffix = "000"
	}
	return fmt.Sprintf("%s%d%s", prefix, time.Now().UnixMilli(), suffix)
}

// PlaceOrder validates the request against current product and ownership
// state, computes totals from current prices (client prices are never
// trusted), then writes the order, its items, the first tracking event,
// the stock decrements, and the cart wipe in a single transaction.
func (s *OrderService) PlaceOrder(userID uuid.UUID, req *PlaceOrderRequest) (*models.Order, error) {
	// Ownership checks: all three references must belong to the caller.
	var shipping, billing models.Address
	if err := s.db.Where("id = ? AND user_id = ?", req.ShippingAddressID, userID).First(&shipping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("shipping address")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if err := s.db.Where("id = ? AND user_id = ?", req.BillingAddressID, userID).First(&billing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("billing address")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	var paymentMethod models.PaymentMethod
	if err := s.db.Where("id = ? AND user_id = ?", req.PaymentMethodID, userID).First(&paymentMethod).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment method")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Load every referenced product and check availability before any
	// write happens.
	productIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	var products []models.Product
	if err := s.db.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	productsByID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		productsByID[products[i].ID] = &products[i]
	}

	lines := make([]pricing.Line, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := productsByID[item.ProductID]
		if !ok {
			return nil, apperrors.NewNotFoundError("product")
		}
		if !product.InStock || product.StockQuantity < item.Quantity {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("insufficient stock for %q", product.Title),
				apperrors.FieldError{
					Field:   "items",
					Message: fmt.Sprintf("product %s has %d units available", product.ID, product.StockQuantity),
				})
		}
		lines = append(lines, pricing.Line{UnitPrice: product.Price, Quantity: item.Quantity})
	}

	totals := pricing.Compute(s.rules, lines)
	estimatedDelivery := time.Now().AddDate(0, 0, s.cfg.Commerce.DeliveryEstimateDays)

	order := &models.Order{
		OrderNumber:       GenerateOrderNumber(s.cfg.Commerce.OrderNumberPrefix),
		UserID:            userID,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		PaymentMethodID:   req.PaymentMethodID,
		Subtotal:          totals.Subtotal,
		Tax:               totals.Tax,
		Shipping:          totals.Shipping,
		Total:             totals.Total,
		Status:            models.OrderStatusPending,
		EstimatedDelivery: &estimatedDelivery,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range req.Items {
			product := productsByID[item.ProductID]

			orderItem := &models.OrderItem{
				OrderID:          order.ID,
				ProductID:        item.ProductID,
				Quantity:         item.Quantity,
				UnitPrice:        product.Price,
				SelectedVariants: models.JSONB(item.SelectedVariants),
			}
			if err := tx.Create(orderItem).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			// Guarded decrement: the WHERE clause re-checks stock so two
			// concurrent orders for the last unit cannot both succeed.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to update stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.NewValidationError(
					fmt.Sprintf("insufficient stock for %q", product.Title),
					apperrors.FieldError{
						Field:   "items",
						Message: fmt.Sprintf("product %s sold out while placing the order", product.ID),
					})
			}

			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
				UpdateColumn("in_stock", gorm.Expr("stock_quantity > 0")).Error; err != nil {
				return fmt.Errorf("failed to update stock flag: %w", err)
			}
		}

		tracking := &models.OrderTracking{
			OrderID:     order.ID,
			Status:      models.OrderStatusPending,
			Description: TrackingDescription(models.OrderStatusPending),
		}
		if err := tx.Create(tracking).Error; err != nil {
			return fmt.Errorf("failed to create tracking event: %w", err)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total":        order.Total,
	}).Info("Order placed")

	if s.notificationService != nil {
		go s.notificationService.SendOrderConfirmationEmail(order.ID)
	}

	return s.loadOrder(order.ID)
}

func (s *OrderService) GetOrder(orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.NewNotFoundError("order")
	}
	return order, nil
}

func (s *OrderService) ListOrders(userID uuid.UUID, params OrderListParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID)

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "total", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Preload("Items").Preload("Items.Product").Preload("Tracking").
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// CancelOrder is the customer-initiated path: legal only from PENDING or
// CONFIRMED. Stock is restored for every line item in the same
// transaction that flips the status.
func (s *OrderService) CancelOrder(orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !order.CanCancel() {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return cancelOrderTx(tx, &order, TrackingDescription(models.OrderStatusCancelled))
	})
	if err != nil {
		return nil, err
	}

	return s.loadOrder(orderID)
}

// cancelOrderTx flips the order to CANCELLED, restores every line item's
// quantity onto its product, and appends a tracking event. It is shared
// between customer cancellation and payment-failure reconciliation.
func cancelOrderTx(tx *gorm.DB, order *models.Order, description string) error {
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusCancelled).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	for _, item := range order.Items {
		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			UpdateColumn("in_stock", gorm.Expr("stock_quantity > 0")).Error; err != nil {
			return fmt.Errorf("failed to update stock flag: %w", err)
		}
	}

	tracking := &models.OrderTracking{
		OrderID:     order.ID,
		Status:      models.OrderStatusCancelled,
		Description: description,
	}
	if err := tx.Create(tracking).Error; err != nil {
		return fmt.Errorf("failed to create tracking event: %w", err)
	}

	return nil
}

// UpdateStatus is the seller/admin path. The status column is a flat
// field update: any enum member is accepted from any current status, and
// no transition table is consulted. A tracking event is appended and
// delivered_at is stamped when the new status is DELIVERED.
func (s *OrderService) UpdateStatus(orderID uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if !models.ValidOrderStatus(req.Status) {
		return nil, apperrors.NewValidationError("invalid order status",
			apperrors.FieldError{Field: "status", Message: "unknown status " + string(req.Status)})
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.TrackingNumber != "" {
		updates["tracking_number"] = req.TrackingNumber
	}
	if req.Carrier != "" {
		updates["carrier"] = req.Carrier
	}
	if req.Status == models.OrderStatusDelivered {
		updates["delivered_at"] = time.Now()
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		tracking := &models.OrderTracking{
			OrderID:     order.ID,
			Status:      req.Status,
			Description: TrackingDescription(req.Status),
		}
		return tx.Create(tracking).Error
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil && req.Status == models.OrderStatusShipped {
		go s.notificationService.SendOrderShippedEmail(order.ID)
	}

	return s.loadOrder(orderID)
}

// MarkConfirmed flips a pending order to CONFIRMED with a tracking
// event, used by payment reconciliation.
func (s *OrderService) MarkConfirmed(orderID uuid.UUID, paymentIntentID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":            models.OrderStatusConfirmed,
			"payment_intent_id": paymentIntentID,
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to confirm order: %w", err)
		}

		tracking := &models.OrderTracking{
			OrderID:     orderID,
			Status:      models.OrderStatusConfirmed,
			Description: TrackingDescription(models.OrderStatusConfirmed),
		}
		return tx.Create(tracking).Error
	})
}

// CancelForPaymentFailure mirrors customer cancellation for the webhook
// path: status, stock restore, and tracking event in one transaction.
func (s *OrderService) CancelForPaymentFailure(orderID uuid.UUID) error {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("order")
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return cancelOrderTx(tx, &order, "Order cancelled, payment failed")
	})
}

func (s *OrderService) loadOrder(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.
		Preload("Items").Preload("Items.Product").
		Preload("ShippingAddress").Preload("BillingAddress").
		Preload("PaymentMethod").
		Preload("Tracking", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_trackings.created_at ASC")
		}).
		First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}
