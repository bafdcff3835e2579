// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
	"github.com/shoploop/shoploop-backend/internal/config"
	"github.com/shoploop/shoploop-backend/internal/models"
	"github.com/shoploop/shoploop-backend/internal/pricing"
)

type CartService struct {
	db    *gorm.DB
	rules pricing.Rules
}

type AddCartItemRequest struct {
	ProductID        uuid.UUID              `json:"product_id" validate:"required"`
	Quantity         int                    `json:"quantity" validate:"required,min=1"`
	SelectedVariants map[string]interface{} `json:"selected_variants,omitempty"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CartSummary is the cart with its recomputed totals. Totals are never
// stored; every read recomputes them from the current line items.
type CartSummary struct {
	Items  []models.CartItem `json:"items"`
	Totals pricing.Totals    `json:"totals"`
}

func NewCartService(db *gorm.DB, cfg *config.Config) *CartService {
	return &CartService{
		db: db,
		rules: pricing.NewRules(
			cfg.Commerce.TaxRate,
			cfg.Commerce.FreeShippingThreshold,
			cfg.Commerce.ShippingFee,
		),
	}
}

func (s *CartService) GetCart(userID uuid.UUID) (*CartSummary, error) {
	var items []models.CartItem
	if err := s.db.Preload("Product").Where("user_id = ?", userID).
		Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return s.summarize(items), nil
}

// AddItem inserts a new line or merges the quantity into an existing
// line for the same product.
func (s *CartService) AddItem(userID uuid.UUID, req *AddCartItemRequest) (*CartSummary, error) {
	var product models.Product
	if err := s.db.Where("id = ? AND status = ?", req.ProductID, models.ProductStatusActive).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("product")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var item models.CartItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if req.SelectedVariants != nil {
			item.SelectedVariants = models.JSONB(req.SelectedVariants)
		}
		if err := s.db.Save(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			UserID:           userID,
			ProductID:        req.ProductID,
			Quantity:         req.Quantity,
			SelectedVariants: models.JSONB(req.SelectedVariants),
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("database error: %w", err)
	}

	return s.GetCart(userID)
}

// UpdateItem sets an absolute quantity; zero removes the line.
func (s *CartService) UpdateItem(userID, itemID uuid.UUID, req *UpdateCartItemRequest) (*CartSummary, error) {
	var item models.CartItem
	if err := s.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("cart item")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Quantity == 0 {
		if err := s.db.Delete(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		return s.GetCart(userID)
	}

	item.Quantity = req.Quantity
	if err := s.db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(userID)
}

func (s *CartService) RemoveItem(userID, itemID uuid.UUID) (*CartSummary, error) {
	result := s.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NewNotFoundError("cart item")
	}
	return s.GetCart(userID)
}

func (s *CartService) ClearCart(userID uuid.UUID) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) summarize(items []models.CartItem) *CartSummary {
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.Line{
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
		})
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return &CartSummary{
		Items:  items,
		Totals: pricing.Compute(s.rules, lines),
	}
}
