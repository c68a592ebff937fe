package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	apperrors "github.com/lucaanasser/nsr-ecommerce-backend/internal/errors"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

type CreateAddressRequest struct {
	Label      string `json:"label"`
	Recipient  string `json:"recipient" binding:"required"`
	Phone      string `json:"phone"`
	ZipCode    string `json:"zip_code" binding:"required"`
	Street     string `json:"street" binding:"required"`
	Number     string `json:"number" binding:"required"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required,len=2"`
	IsDefault  bool   `json:"is_default"`
}

type UpdateAddressRequest struct {
	Label      string `json:"label"`
	Recipient  string `json:"recipient" binding:"required"`
	Phone      string `json:"phone"`
	ZipCode    string `json:"zip_code" binding:"required"`
	Street     string `json:"street" binding:"required"`
	Number     string `json:"number" binding:"required"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required,len=2"`
}

// GetAddresses lists the addresses of the logged in user, default first
// GET /api/v1/user/addresses
func (ctrl *AddressController) GetAddresses(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	addresses, err := ctrl.addressService.GetUserAddresses(userID)
	if err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to fetch addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
	})
}

// GetAddress returns one address owned by the logged in user
// GET /api/v1/user/addresses/:id
func (ctrl *AddressController) GetAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	address, err := ctrl.addressService.GetAddress(userID, addressID)
	if err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": address,
	})
}

// CreateAddress registers a new address; the first one becomes the default
// POST /api/v1/user/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid address creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do endereço são inválidos")
		return
	}

	address := &model.Address{
		Label:      req.Label,
		Recipient:  req.Recipient,
		Phone:      req.Phone,
		ZipCode:    req.ZipCode,
		Street:     req.Street,
		Number:     req.Number,
		Complement: req.Complement,
		District:   req.District,
		City:       req.City,
		State:      req.State,
		IsDefault:  req.IsDefault,
	}

	if err := ctrl.addressService.CreateAddress(userID, address); err != nil {
		if errors.Is(err, service.ErrInvalidZipCode) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidZip, "CEP inválido: informe 8 dígitos")
			return
		}
		log.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "address")
		return
	}

	log.Info("Address created", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
		"is_default": address.IsDefault,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "endereço cadastrado com sucesso",
		"address": address,
	})
}

// UpdateAddress overwrites the address fields, keeping the default flag
// PUT /api/v1/user/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid address update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do endereço são inválidos")
		return
	}

	updated := &model.Address{
		Label:      req.Label,
		Recipient:  req.Recipient,
		Phone:      req.Phone,
		ZipCode:    req.ZipCode,
		Street:     req.Street,
		Number:     req.Number,
		Complement: req.Complement,
		District:   req.District,
		City:       req.City,
		State:      req.State,
	}

	if err := ctrl.addressService.UpdateAddress(userID, addressID, updated); err != nil {
		if errors.Is(err, service.ErrInvalidZipCode) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidZip, "CEP inválido: informe 8 dígitos")
			return
		}
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "endereço atualizado com sucesso",
	})
}

// DeleteAddress removes an address; when the default is removed another
// address is promoted
// DELETE /api/v1/user/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.DeleteAddress(userID, addressID); err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	log := middleware.GetLoggerFromContext(c)
	log.Info("Address deleted", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "endereço removido com sucesso",
	})
}

// SetDefaultAddress marks a single address as the user's default
// PATCH /api/v1/user/addresses/:id/default
func (ctrl *AddressController) SetDefaultAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.SetDefaultAddress(userID, addressID); err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "endereço padrão atualizado",
	})
}

func (ctrl *AddressController) respondAddressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAddressNotFound):
		apperrors.NotFound(c, apperrors.AddressNotFound, "endereço não encontrado")
	case errors.Is(err, service.ErrUnauthorizedAccess):
		apperrors.Forbidden(c, "")
	default:
		log := middleware.GetLoggerFromContext(c)
		log.Error("Address operation failed", err, nil)
		apperrors.InternalError(c, "")
	}
}
