// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;default:'CUSTOMER'"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData  JSONB      `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Addresses      []Address       `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
	PaymentMethods []PaymentMethod `json:"payment_methods,omitempty" gorm:"foreignKey:UserID"`
	CartItems      []CartItem      `json:"cart_items,omitempty" gorm:"foreignKey:UserID"`
	Orders         []Order         `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	Reviews        []Review        `json:"reviews,omitempty" gorm:"foreignKey:UserID"`
	Store          *Store          `json:"store,omitempty" gorm:"foreignKey:SellerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// Session backs a refresh token. Only a hash of the token is stored;
// revoking the row invalidates the token before its JWT expiry.
type Session struct {
	BaseModel
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	TokenHash string     `json:"-" gorm:"size:64;not null;uniqueIndex"`
	UserAgent string     `json:"user_agent" gorm:"type:text"`
	IPAddress string     `json:"ip_address" gorm:"size:45"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null;index"`
	RevokedAt *time.Time `json:"revoked_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (s *Session) Valid(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
