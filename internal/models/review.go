// internal/models/review.go
package models

import "github.com/google/uuid"

type Review struct {
	BaseModel
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_user_product"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Title     string    `json:"title" gorm:"size:255"`
	Body      string    `json:"body" gorm:"type:text"`
	// IsVerified is computed once at creation from a delivered-order lookup
	// and never re-evaluated.
	IsVerified bool `json:"is_verified" gorm:"default:false"`

	// Relationships
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}
