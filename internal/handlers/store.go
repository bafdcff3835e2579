// internal/handlers/store.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shoploop/shoploop-backend/internal/models"
	"github.com/shoploop/shoploop-backend/internal/services"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

type StoreHandler struct {
	storeService        *services.StoreService
	notificationService *services.NotificationService
}

func NewStoreHandler(storeService *services.StoreService, notificationService *services.NotificationService) *StoreHandler {
	return &StoreHandler{
		storeService:        storeService,
		notificationService: notificationService,
	}
}

// GET /stores/:slug
func (h *StoreHandler) GetStoreBySlug(c *gin.Context) {
	store, err := h.storeService.GetStoreBySlug(c.Param("slug"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"store": store})
}

// POST /seller/store
func (h *StoreHandler) CreateStore(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateStoreRequest
	if !bindAndValidate(c, &req) {
		return
	}

	store, err := h.storeService.CreateStore(userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"store": store})
}

// GET /seller/store
func (h *StoreHandler) GetSellerStore(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	store, err := h.storeService.GetSellerStore(userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"store": store})
}

// PUT /seller/store
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateStoreRequest
	if !bindAndValidate(c, &req) {
		return
	}

	store, err := h.storeService.UpdateStore(userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"store": store})
}

// GET /admin/stores
func (h *StoreHandler) ListStores(c *gin.Context) {
	params := services.StoreListParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if v := c.Query("status"); v != "" {
		status := models.StoreStatus(v)
		if !models.ValidStoreStatus(status) {
			utils.BadRequestResponse(c, "invalid status filter", nil)
			return
		}
		params.Status = &status
	}

	stores, total, err := h.storeService.ListStores(params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(stores, total, params.PaginationParams))
}

// PATCH /admin/stores/:id/status
func (h *StoreHandler) ReviewStore(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	storeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.ReviewStoreRequest
	if !bindAndValidate(c, &req) {
		return
	}

	store, err := h.storeService.ReviewStore(adminID, storeID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	go h.notificationService.SendStoreReviewedEmail(store)

	utils.SuccessResponse(c, gin.H{"store": store})
}
