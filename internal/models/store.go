// internal/models/store.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Store struct {
	BaseModel
	SellerID    uuid.UUID   `json:"seller_id" gorm:"type:uuid;not null;uniqueIndex"`
	Name        string      `json:"name" gorm:"size:100;not null"`
	Slug        string      `json:"slug" gorm:"size:120;uniqueIndex;not null"`
	Description string      `json:"description" gorm:"type:text"`
	LogoURL     string      `json:"logo_url" gorm:"size:500"`
	Status      StoreStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	// IsActive is recomputed only when Status changes, never on read.
	IsActive   bool       `json:"is_active" gorm:"default:false"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	ReviewedBy *uuid.UUID `json:"reviewed_by" gorm:"type:uuid"`

	// Relationships
	Seller   User      `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Products []Product `json:"products,omitempty" gorm:"foreignKey:StoreID"`
}

// ActiveForStatus derives the is_active flag written alongside a status
// change.
func ActiveForStatus(s StoreStatus) bool {
	return s == StoreStatusApproved
}
