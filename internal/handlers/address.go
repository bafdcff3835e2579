// internal/handlers/address.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shoploop/shoploop-backend/internal/services"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

type AddressHandler struct {
	addressService *services.AddressService
}

func NewAddressHandler(addressService *services.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
	}
}

// GET /addresses
func (h *AddressHandler) ListAddresses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	addresses, err := h.addressService.ListAddresses(userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"addresses": addresses})
}

// POST /addresses
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AddressRequest
	if !bindAndValidate(c, &req) {
		return
	}

	address, err := h.addressService.CreateAddress(userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"address": address})
}

// PUT /addresses/:id
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	addressID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.AddressRequest
	if !bindAndValidate(c, &req) {
		return
	}

	address, err := h.addressService.UpdateAddress(userID, addressID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"address": address})
}

// DELETE /addresses/:id
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	addressID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.addressService.DeleteAddress(userID, addressID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "address deleted"})
}

// GET /payment-methods
func (h *AddressHandler) ListPaymentMethods(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	methods, err := h.addressService.ListPaymentMethods(userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"payment_methods": methods})
}

// POST /payment-methods
func (h *AddressHandler) CreatePaymentMethod(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.PaymentMethodRequest
	if !bindAndValidate(c, &req) {
		return
	}

	method, err := h.addressService.CreatePaymentMethod(userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"payment_method": method})
}

// DELETE /payment-methods/:id
func (h *AddressHandler) DeletePaymentMethod(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	methodID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.addressService.DeletePaymentMethod(userID, methodID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "payment method deleted"})
}
