// internal/services/address_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
	"github.com/shoploop/shoploop-backend/internal/models"
)

// AddressService manages the customer's address book and saved payment
// methods. Orders reference these rows by id.
type AddressService struct {
	db *gorm.DB
}

type AddressRequest struct {
	FullName   string `json:"full_name" validate:"required,max=100"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2,omitempty" validate:"max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state,omitempty" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country,omitempty" validate:"omitempty,len=2"`
	Phone      string `json:"phone,omitempty" validate:"max=30"`
	IsDefault  bool   `json:"is_default,omitempty"`
}

type PaymentMethodRequest struct {
	Type      string `json:"type,omitempty" validate:"omitempty,oneof=card"`
	Brand     string `json:"brand" validate:"required,max=20"`
	Last4     string `json:"last4" validate:"required,len=4,numeric"`
	ExpMonth  int    `json:"exp_month" validate:"required,min=1,max=12"`
	ExpYear   int    `json:"exp_year" validate:"required,min=2020"`
	IsDefault bool   `json:"is_default,omitempty"`
}

func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

func (s *AddressService) ListAddresses(userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	if err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch addresses: %w", err)
	}
	return addresses, nil
}

func (s *AddressService) CreateAddress(userID uuid.UUID, req *AddressRequest) (*models.Address, error) {
	country := req.Country
	if country == "" {
		country = "US"
	}

	address := &models.Address{
		UserID:     userID,
		FullName:   req.FullName,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    country,
		Phone:      req.Phone,
		IsDefault:  req.IsDefault,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := clearDefaultFlag(tx, &models.Address{}, userID); err != nil {
				return err
			}
		}
		return tx.Create(address).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return address, nil
}

func (s *AddressService) UpdateAddress(userID, addressID uuid.UUID, req *AddressRequest) (*models.Address, error) {
	var address models.Address
	if err := s.db.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("address")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	address.FullName = req.FullName
	address.Line1 = req.Line1
	address.Line2 = req.Line2
	address.City = req.City
	address.State = req.State
	address.PostalCode = req.PostalCode
	if req.Country != "" {
		address.Country = req.Country
	}
	address.Phone = req.Phone
	address.IsDefault = req.IsDefault

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := clearDefaultFlag(tx, &models.Address{}, userID); err != nil {
				return err
			}
		}
		return tx.Save(&address).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return &address, nil
}

func (s *AddressService) DeleteAddress(userID, addressID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", addressID, userID).Delete(&models.Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("address")
	}
	return nil
}

func (s *AddressService) ListPaymentMethods(userID uuid.UUID) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch payment methods: %w", err)
	}
	return methods, nil
}

func (s *AddressService) CreatePaymentMethod(userID uuid.UUID, req *PaymentMethodRequest) (*models.PaymentMethod, error) {
	methodType := req.Type
	if methodType == "" {
		methodType = "card"
	}

	method := &models.PaymentMethod{
		UserID:    userID,
		Type:      methodType,
		Brand:     req.Brand,
		Last4:     req.Last4,
		ExpMonth:  req.ExpMonth,
		ExpYear:   req.ExpYear,
		IsDefault: req.IsDefault,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := clearDefaultFlag(tx, &models.PaymentMethod{}, userID); err != nil {
				return err
			}
		}
		return tx.Create(method).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment method: %w", err)
	}

	return method, nil
}

func (s *AddressService) DeletePaymentMethod(userID, methodID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", methodID, userID).Delete(&models.PaymentMethod{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete payment method: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("payment method")
	}
	return nil
}

func clearDefaultFlag(tx *gorm.DB, model interface{}, userID uuid.UUID) error {
	return tx.Model(model).Where("user_id = ? AND is_default = true", userID).
		Update("is_default", false).Error
}
