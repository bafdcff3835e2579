// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shoploop/shoploop-backend/internal/models"
	"github.com/shoploop/shoploop-backend/internal/services"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// POST /orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.PlaceOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}

	order, err := h.orderService.PlaceOrder(userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"order": order})
}

// GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := services.OrderListParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if v := c.Query("status"); v != "" {
		status := models.OrderStatus(v)
		if !models.ValidOrderStatus(status) {
			utils.BadRequestResponse(c, "invalid status filter", nil)
			return
		}
		params.Status = &status
	}

	orders, total, err := h.orderService.ListOrders(userID, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params.PaginationParams))
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(orderID, userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// PATCH /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(orderID, userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// PATCH /orders/admin/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(orderID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}
