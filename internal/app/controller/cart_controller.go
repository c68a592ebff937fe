package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	apperrors "github.com/lucaanasser/nsr-ecommerce-backend/internal/errors"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
)

type CartController struct {
	cartService  service.CartService
	stockService service.StockService
}

func NewCartController(cartService service.CartService, stockService service.StockService) *CartController {
	return &CartController{
		cartService:  cartService,
		stockService: stockService,
	}
}

type AddToCartRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetCart returns the cart of the logged in user with product data preloaded
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	items, err := ctrl.cartService.GetUserCart(userID)
	if err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
	})
}

// AddToCart adds a product (optionally a variant) to the cart, merging the
// quantity when the same line already exists
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do item são inválidos")
		return
	}

	if err := ctrl.cartService.AddToCart(userID, req.ProductID, req.VariantID, req.Quantity); err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "item adicionado ao carrinho",
	})
}

// UpdateCartItem changes the quantity of a cart line
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "quantidade inválida")
		return
	}

	if err := ctrl.cartService.UpdateCartItem(userID, itemID, req.Quantity); err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "carrinho atualizado",
	})
}

// RemoveFromCart deletes a cart line
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveFromCart(userID, itemID); err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "item removido do carrinho",
	})
}

// ClearCart removes every line of the user's cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "carrinho esvaziado",
	})
}

// ValidateCart re-checks current stock for every cart line and reports the
// shortfall without touching the cart
// POST /api/v1/cart/validate
func (ctrl *CartController) ValidateCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	items, err := ctrl.cartService.GetUserCart(userID)
	if err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to fetch cart for validation", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	stockItems := make([]service.StockItem, 0, len(items))
	for _, item := range items {
		stockItems = append(stockItems, service.StockItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	validation, err := ctrl.stockService.ValidateStock(stockItems)
	if err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to validate cart stock", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available":         validation.Available,
		"unavailable_items": validation.UnavailableItems,
	})
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "produto não encontrado")
	case errors.Is(err, service.ErrCartItemNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "item do carrinho não encontrado")
	case errors.Is(err, service.ErrInvalidVariant):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "variação de produto inválida")
	case errors.Is(err, service.ErrInsufficientStock):
		apperrors.Conflict(c, apperrors.StockUnavailable, "estoque insuficiente para a quantidade solicitada")
	default:
		log := middleware.GetLoggerFromContext(c)
		log.Error("Cart operation failed", err, nil)
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	}
}
