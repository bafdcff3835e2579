// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	StoreID       uuid.UUID      `json:"store_id" gorm:"type:uuid;not null;index"`
	Title         string         `json:"title" gorm:"size:255;not null"`
	Description   string         `json:"description" gorm:"type:text"`
	Category      string         `json:"category" gorm:"size:100;index"`
	Price         float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice *float64       `json:"original_price,omitempty" gorm:"type:decimal(10,2)"`
	StockQuantity int            `json:"stock_quantity" gorm:"not null;default:0;check:stock_quantity >= 0"`
	InStock       bool           `json:"in_stock" gorm:"default:false"`
	Status        ProductStatus  `json:"status" gorm:"type:varchar(20);default:'DRAFT';index"`
	Images        pq.StringArray `json:"images" gorm:"type:text[]"`
	Tags          pq.StringArray `json:"tags" gorm:"type:text[]"`
	Variants      JSONB          `json:"variants" gorm:"type:jsonb"`
	// Rating and ReviewCount are recomputed when a review is written, not
	// live-derived on read.
	Rating      float64 `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount int64   `json:"review_count" gorm:"default:0"`

	// Relationships
	Store   Store    `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}
