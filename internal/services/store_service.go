// internal/services/store_service.go
package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
	"github.com/shoploop/shoploop-backend/internal/models"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

type StoreService struct {
	db *gorm.DB
}

type CreateStoreRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=5000"`
	LogoURL     string `json:"logo_url,omitempty" validate:"omitempty,url"`
}

type UpdateStoreRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	LogoURL     *string `json:"logo_url,omitempty" validate:"omitempty,url"`
}

type ReviewStoreRequest struct {
	Status models.StoreStatus `json:"status" validate:"required"`
}

type StoreListParams struct {
	utils.PaginationParams
	Status *models.StoreStatus
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses non-alphanumeric runs into
// single hyphens.
func Slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func NewStoreService(db *gorm.DB) *StoreService {
	return &StoreService{db: db}
}

// CreateStore opens the seller's single store in PENDING. It stays
// invisible to the catalog until an admin approves it.
func (s *StoreService) CreateStore(sellerID uuid.UUID, req *CreateStoreRequest) (*models.Store, error) {
	var existing models.Store
	if err := s.db.Where("seller_id = ?", sellerID).First(&existing).Error; err == nil {
		return nil, apperrors.NewConflictError("seller already has a store")
	}

	slug := Slugify(req.Name)
	var count int64
	if err := s.db.Model(&models.Store{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		suffix, err := utils.GenerateRandomString(6)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug suffix: %w", err)
		}
		slug = slug + "-" + strings.ToLower(suffix)
	}

	store := &models.Store{
		SellerID:    sellerID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		Status:      models.StoreStatusPending,
		IsActive:    models.ActiveForStatus(models.StoreStatusPending),
	}

	if err := s.db.Create(store).Error; err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return store, nil
}

func (s *StoreService) GetSellerStore(sellerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := s.db.Where("seller_id = ?", sellerID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("store")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &store, nil
}

// GetStoreBySlug is the public storefront view: only active stores
// resolve.
func (s *StoreService) GetStoreBySlug(slug string) (*models.Store, error) {
	var store models.Store
	if err := s.db.Where("slug = ? AND is_active = true", slug).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("store")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &store, nil
}

func (s *StoreService) UpdateStore(sellerID uuid.UUID, req *UpdateStoreRequest) (*models.Store, error) {
	store, err := s.GetSellerStore(sellerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.Description != nil {
		store.Description = *req.Description
	}
	if req.LogoURL != nil {
		store.LogoURL = *req.LogoURL
	}

	if err := s.db.Save(store).Error; err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}
	return store, nil
}

// ListStores is the admin view, optionally filtered by status.
func (s *StoreService) ListStores(params StoreListParams) ([]models.Store, int64, error) {
	query := s.db.Model(&models.Store{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stores: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var stores []models.Store
	if err := query.Preload("Seller").Find(&stores).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch stores: %w", err)
	}

	return stores, total, nil
}

// ReviewStore is the admin status change. The is_active flag is derived
// from the new status here and nowhere else; reads never recompute it.
func (s *StoreService) ReviewStore(adminID, storeID uuid.UUID, req *ReviewStoreRequest) (*models.Store, error) {
	if !models.ValidStoreStatus(req.Status) {
		return nil, apperrors.NewValidationError("invalid store status",
			apperrors.FieldError{Field: "status", Message: "unknown status " + string(req.Status)})
	}

	var store models.Store
	if err := s.db.First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("store")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      req.Status,
		"is_active":   models.ActiveForStatus(req.Status),
		"reviewed_at": now,
		"reviewed_by": adminID,
	}

	if err := s.db.Model(&store).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"store_id": store.ID,
		"status":   req.Status,
		"admin_id": adminID,
	}).Info("Store reviewed")

	return &store, nil
}
