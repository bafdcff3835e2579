// internal/models/cart.go
package models

import "github.com/google/uuid"

// CartItem holds one (user, product) line. Adding an existing product
// merges quantities; an update to quantity zero deletes the row; the
// whole set is wiped on successful order placement.
type CartItem struct {
	BaseModel
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	ProductID        uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	Quantity         int       `json:"quantity" gorm:"not null;check:quantity >= 1"`
	SelectedVariants JSONB     `json:"selected_variants" gorm:"type:jsonb"`

	// Relationships
	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
