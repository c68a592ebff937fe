package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	apperrors "github.com/lucaanasser/nsr-ecommerce-backend/internal/errors"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
)

type ShippingController struct {
	shippingService service.ShippingService
}

func NewShippingController(shippingService service.ShippingService) *ShippingController {
	return &ShippingController{
		shippingService: shippingService,
	}
}

type ShippingItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type CalculateShippingRequest struct {
	Items     []ShippingItemInput `json:"items" binding:"required"`
	ZipCode   string              `json:"zip_code" binding:"required"`
	CartTotal float64             `json:"cart_total"`
}

// CalculateShipping quotes every active shipping method for the cart
// POST /api/v1/shipping/calculate
func (ctrl *ShippingController) CalculateShipping(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CalculateShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid shipping calculation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do cálculo de frete são inválidos")
		return
	}

	items := make([]service.ShippingItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.ShippingItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	options, err := ctrl.shippingService.CalculateOptions(items, req.ZipCode, req.CartTotal)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidZipCode):
			apperrors.BadRequest(c, apperrors.ValidationInvalidZip, "CEP inválido: informe 8 dígitos")
		case errors.Is(err, service.ErrEmptyShippingCart):
			apperrors.BadRequest(c, apperrors.ValidationEmptyCart, "o carrinho está vazio")
		default:
			log.Error("Failed to calculate shipping", err, map[string]interface{}{
				"zip_code": req.ZipCode,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Shipping calculated", map[string]interface{}{
		"zip_code":     req.ZipCode,
		"option_count": len(options),
	})

	c.JSON(http.StatusOK, gin.H{
		"methods": options,
	})
}

// ListMethods lists the active shipping methods without quoting
// GET /api/v1/shipping/methods
func (ctrl *ShippingController) ListMethods(c *gin.Context) {
	methods, err := ctrl.shippingService.ListMethods()
	if err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to list shipping methods", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"methods": methods,
	})
}
