// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
	"github.com/shoploop/shoploop-backend/internal/models"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

type ReviewService struct {
	db *gorm.DB
}

type CreateReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Title  string `json:"title" validate:"max=200"`
	Body   string `json:"body" validate:"max=5000"`
}

type UpdateReviewRequest struct {
	Rating *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Title  *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Body   *string `json:"body,omitempty" validate:"omitempty,max=5000"`
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// CreateReview writes one review per (user, product). The verified flag
// is decided once at creation time from delivery history and never
// recomputed afterwards, even if the order is later returned.
func (s *ReviewService) CreateReview(userID, productID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	var product models.Product
	if err := s.db.Where("id = ? AND status = ?", productID, models.ProductStatusActive).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("product")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing models.Review
	if err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&existing).Error; err == nil {
		return nil, apperrors.NewConflictError("you have already reviewed this product")
	}

	verified, err := s.hasDeliveredOrder(userID, productID)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID:     userID,
		ProductID:  productID,
		Rating:     req.Rating,
		Title:      req.Title,
		Body:       req.Body,
		IsVerified: verified,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return recomputeProductRating(tx, productID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("User").First(review, review.ID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return review, nil
}

func (s *ReviewService) UpdateReview(userID, reviewID uuid.UUID, req *UpdateReviewRequest) (*models.Review, error) {
	var review models.Review
	if err := s.db.Where("id = ? AND user_id = ?", reviewID, userID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("review")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Title != nil {
		review.Title = *req.Title
	}
	if req.Body != nil {
		review.Body = *req.Body
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&review).Error; err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		return recomputeProductRating(tx, review.ProductID)
	})
	if err != nil {
		return nil, err
	}

	return &review, nil
}

func (s *ReviewService) DeleteReview(userID, reviewID uuid.UUID) error {
	var review models.Review
	if err := s.db.Where("id = ? AND user_id = ?", reviewID, userID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("review")
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return recomputeProductRating(tx, review.ProductID)
	})
}

func (s *ReviewService) ListProductReviews(productID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	allowedSortFields := []string{"created_at", "rating"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Preload("User").Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}

// hasDeliveredOrder reports whether the user has a DELIVERED order that
// contains the product.
func (s *ReviewService) hasDeliveredOrder(userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status = ?",
			userID, productID, models.OrderStatusDelivered).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

// recomputeProductRating rewrites the denormalized rating and review
// count on the product from the surviving reviews.
func recomputeProductRating(tx *gorm.DB, productID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	return tx.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       agg.Avg,
			"review_count": agg.Count,
		}).Error
}
