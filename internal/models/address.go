// internal/models/address.go
package models

import "github.com/google/uuid"

// Address rows are referenced by orders, not copied into them. Editing an
// address after placement changes how historical orders render.
type Address struct {
	BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	FullName   string    `json:"full_name" gorm:"size:100;not null"`
	Line1      string    `json:"line1" gorm:"size:255;not null"`
	Line2      string    `json:"line2" gorm:"size:255"`
	City       string    `json:"city" gorm:"size:100;not null"`
	State      string    `json:"state" gorm:"size:100"`
	PostalCode string    `json:"postal_code" gorm:"size:20;not null"`
	Country    string    `json:"country" gorm:"size:2;not null;default:'US'"`
	Phone      string    `json:"phone" gorm:"size:30"`
	IsDefault  bool      `json:"is_default" gorm:"default:false"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

type PaymentMethod struct {
	BaseModel
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Type      string    `json:"type" gorm:"size:20;not null;default:'card'"`
	Brand     string    `json:"brand" gorm:"size:20"`
	Last4     string    `json:"last4" gorm:"size:4"`
	ExpMonth  int       `json:"exp_month"`
	ExpYear   int       `json:"exp_year"`
	IsDefault bool      `json:"is_default" gorm:"default:false"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
