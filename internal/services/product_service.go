// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
	"github.com/shoploop/shoploop-backend/internal/models"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Title         string                 `json:"title" validate:"required,min=3,max=255"`
	Description   string                 `json:"description" validate:"max=5000"`
	Category      string                 `json:"category" validate:"required,max=100"`
	Price         float64                `json:"price" validate:"required,gt=0"`
	OriginalPrice *float64               `json:"original_price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity int                    `json:"stock_quantity" validate:"min=0"`
	Images        []string               `json:"images,omitempty" validate:"max=10,dive,url"`
	Tags          []string               `json:"tags,omitempty" validate:"max=20"`
	Variants      map[string]interface{} `json:"variants,omitempty"`
}

type UpdateProductRequest struct {
	Title         *string                `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description   *string                `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category      *string                `json:"category,omitempty" validate:"omitempty,max=100"`
	Price         *float64               `json:"price,omitempty" validate:"omitempty,gt=0"`
	OriginalPrice *float64               `json:"original_price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity *int                   `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	Status        *models.ProductStatus  `json:"status,omitempty"`
	Images        []string               `json:"images,omitempty" validate:"omitempty,max=10,dive,url"`
	Tags          []string               `json:"tags,omitempty" validate:"omitempty,max=20"`
	Variants      map[string]interface{} `json:"variants,omitempty"`
}

type ProductListParams struct {
	utils.PaginationParams
	MinPrice *float64
	MaxPrice *float64
	InStock  *bool
	StoreID  *uuid.UUID
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// ListProducts is the public catalog view: only ACTIVE products from
// active stores are visible.
func (s *ProductService) ListProducts(params ProductListParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Joins("JOIN stores ON stores.id = products.store_id AND stores.is_active = true").
		Where("products.status = ?", models.ProductStatusActive)

	query = s.applyFilters(query, params)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "price", "rating", "title", "review_count"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Preload("Store").Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) applyFilters(query *gorm.DB, params ProductListParams) *gorm.DB {
	if params.Search != "" {
		query = query.Where(
			"to_tsvector('english', products.title || ' ' || products.description) @@ plainto_tsquery('english', ?)",
			params.Search)
	}
	if params.Category != "" {
		query = query.Where("products.category = ?", params.Category)
	}
	if params.MinPrice != nil {
		query = query.Where("products.price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		query = query.Where("products.price <= ?", *params.MaxPrice)
	}
	if params.InStock != nil {
		query = query.Where("products.in_stock = ?", *params.InStock)
	}
	if params.StoreID != nil {
		query = query.Where("products.store_id = ?", *params.StoreID)
	}
	return query
}

// GetProduct returns one publicly visible product with its store.
func (s *ProductService) GetProduct(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Store").
		Where("id = ? AND status = ?", productID, models.ProductStatusActive).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("product")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// ListSellerProducts returns the seller's own products in any status.
func (s *ProductService) ListSellerProducts(sellerID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	store, err := s.storeForSeller(sellerID)
	if err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Product{}).Where("store_id = ?", store.ID)
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "price", "title", "stock_quantity", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// CreateProduct requires the seller to hold an APPROVED store. New
// products start in DRAFT.
func (s *ProductService) CreateProduct(sellerID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	store, err := s.approvedStoreForSeller(sellerID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:       store.ID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		StockQuantity: req.StockQuantity,
		InStock:       req.StockQuantity > 0,
		Status:        models.ProductStatusDraft,
		Images:        pq.StringArray(req.Images),
		Tags:          pq.StringArray(req.Tags),
		Variants:      models.JSONB(req.Variants),
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) UpdateProduct(sellerID, productID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.ownedProduct(sellerID, productID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && !models.ValidProductStatus(*req.Status) {
		return nil, apperrors.NewValidationError("invalid product status",
			apperrors.FieldError{Field: "status", Message: "unknown status " + string(*req.Status)})
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = req.OriginalPrice
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
		product.InStock = *req.StockQuantity > 0
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	if req.Images != nil {
		product.Images = pq.StringArray(req.Images)
	}
	if req.Tags != nil {
		product.Tags = pq.StringArray(req.Tags)
	}
	if req.Variants != nil {
		product.Variants = models.JSONB(req.Variants)
	}

	if err := s.db.Save(product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct soft-deletes; order items keep their snapshot of the
// title and price regardless.
func (s *ProductService) DeleteProduct(sellerID, productID uuid.UUID) error {
	product, err := s.ownedProduct(sellerID, productID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// AddImages appends uploaded image URLs to the product.
func (s *ProductService) AddImages(sellerID, productID uuid.UUID, urls []string) (*models.Product, error) {
	product, err := s.ownedProduct(sellerID, productID)
	if err != nil {
		return nil, err
	}

	product.Images = append(product.Images, urls...)
	if err := s.db.Model(product).Update("images", product.Images).Error; err != nil {
		return nil, fmt.Errorf("failed to update images: %w", err)
	}
	return product, nil
}

// ListCategories returns the distinct categories of visible products.
func (s *ProductService) ListCategories() ([]string, error) {
	var categories []string
	if err := s.db.Model(&models.Product{}).
		Where("status = ? AND category <> ''", models.ProductStatusActive).
		Distinct().Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *ProductService) storeForSeller(sellerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := s.db.Where("seller_id = ?", sellerID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("store")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &store, nil
}

func (s *ProductService) approvedStoreForSeller(sellerID uuid.UUID) (*models.Store, error) {
	store, err := s.storeForSeller(sellerID)
	if err != nil {
		return nil, err
	}
	if store.Status != models.StoreStatusApproved {
		return nil, apperrors.NewForbiddenError("store is not approved")
	}
	return store, nil
}

func (s *ProductService) ownedProduct(sellerID, productID uuid.UUID) (*models.Product, error) {
	store, err := s.storeForSeller(sellerID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.Where("id = ? AND store_id = ?", productID, store.ID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("product")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}
