// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	// OrderNumber is timestamp-derived and not guaranteed unique; the uuid
	// primary key is what identifies the order.
	OrderNumber       string      `json:"order_number" gorm:"size:30;not null;index"`
	UserID            uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	ShippingAddressID uuid.UUID   `json:"shipping_address_id" gorm:"type:uuid;not null"`
	BillingAddressID  uuid.UUID   `json:"billing_address_id" gorm:"type:uuid;not null"`
	PaymentMethodID   uuid.UUID   `json:"payment_method_id" gorm:"type:uuid;not null"`
	Subtotal          float64     `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	Tax               float64     `json:"tax" gorm:"type:decimal(10,2);not null"`
	Shipping          float64     `json:"shipping" gorm:"type:decimal(10,2);not null"`
	Total             float64     `json:"total" gorm:"type:decimal(10,2);not null"`
	Status            OrderStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	PaymentIntentID   string      `json:"payment_intent_id,omitempty" gorm:"size:255;index"`
	TrackingNumber    string      `json:"tracking_number,omitempty" gorm:"size:100"`
	Carrier           string      `json:"carrier,omitempty" gorm:"size:50"`
	EstimatedDelivery *time.Time  `json:"estimated_delivery"`
	DeliveredAt       *time.Time  `json:"delivered_at"`

	// Relationships
	User            User           `json:"-" gorm:"foreignKey:UserID"`
	ShippingAddress Address        `json:"shipping_address,omitempty" gorm:"foreignKey:ShippingAddressID"`
	BillingAddress  Address        `json:"billing_address,omitempty" gorm:"foreignKey:BillingAddressID"`
	PaymentMethod   PaymentMethod  `json:"payment_method,omitempty" gorm:"foreignKey:PaymentMethodID"`
	Items           []OrderItem    `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Tracking        []OrderTracking `json:"tracking,omitempty" gorm:"foreignKey:OrderID"`
}

// CanCancel reports whether a customer-initiated cancellation is legal
// from the order's current status.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// OrderItem snapshots the product's price, quantity and variant selection
// at purchase time.
type OrderItem struct {
	BaseModel
	OrderID          uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity         int       `json:"quantity" gorm:"not null"`
	UnitPrice        float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	SelectedVariants JSONB     `json:"selected_variants" gorm:"type:jsonb"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// OrderTracking is an append-only log of human-readable status events.
type OrderTracking struct {
	BaseModel
	OrderID     uuid.UUID   `json:"order_id" gorm:"type:uuid;not null;index"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(20);not null"`
	Description string      `json:"description" gorm:"size:255;not null"`
	Location    string      `json:"location,omitempty" gorm:"size:100"`
}
