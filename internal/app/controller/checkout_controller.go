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

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

type SubmitBuyerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	CPF   string `json:"cpf" binding:"required"`
	Phone string `json:"phone"`
}

type SubmitRecipientRequest struct {
	AddressID        uint `json:"address_id" binding:"required"`
	ShippingMethodID uint `json:"shipping_method_id" binding:"required"`
}

type SubmitPaymentStepRequest struct {
	Method string `json:"method" binding:"required"`
}

type GoToStepRequest struct {
	Step string `json:"step" binding:"required"`
}

// StartCheckout opens (or resets) the checkout wizard for the user
// POST /api/v1/checkout/start
func (ctrl *CheckoutController) StartCheckout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	session, err := ctrl.checkoutService.StartSession(c.Request.Context(), userID)
	if err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to start checkout session", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": session,
	})
}

// GetCheckout returns the current wizard state
// GET /api/v1/checkout
func (ctrl *CheckoutController) GetCheckout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	session, err := ctrl.checkoutService.GetSession(c.Request.Context(), userID)
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
	})
}

// SubmitBuyer records the buyer step and advances the wizard
// PUT /api/v1/checkout/buyer
func (ctrl *CheckoutController) SubmitBuyer(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req SubmitBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do comprador são inválidos")
		return
	}

	session, err := ctrl.checkoutService.SubmitBuyer(c.Request.Context(), userID, model.BuyerInfo{
		Name:  req.Name,
		Email: req.Email,
		CPF:   req.CPF,
		Phone: req.Phone,
	})
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
	})
}

// SubmitRecipient records the chosen address and shipping method
// PUT /api/v1/checkout/recipient
func (ctrl *CheckoutController) SubmitRecipient(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req SubmitRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados de entrega são inválidos")
		return
	}

	session, err := ctrl.checkoutService.SubmitRecipient(c.Request.Context(), userID, model.RecipientInfo{
		AddressID:        req.AddressID,
		ShippingMethodID: req.ShippingMethodID,
	})
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
	})
}

// SubmitPayment records the chosen payment method and moves the wizard
// to the confirmation step
// PUT /api/v1/checkout/payment
func (ctrl *CheckoutController) SubmitPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req SubmitPaymentStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados de pagamento são inválidos")
		return
	}

	session, err := ctrl.checkoutService.SubmitPayment(c.Request.Context(), userID, model.PaymentInfo{
		Method: model.PaymentMethod(req.Method),
	})
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
	})
}

// GoToStep navigates back to an earlier step of the wizard
// PUT /api/v1/checkout/step
func (ctrl *CheckoutController) GoToStep(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req GoToStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "etapa inválida")
		return
	}

	session, err := ctrl.checkoutService.GoToStep(c.Request.Context(), userID, model.CheckoutStep(req.Step))
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
	})
}

// CancelCheckout discards the wizard state
// DELETE /api/v1/checkout
func (ctrl *CheckoutController) CancelCheckout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.checkoutService.CancelSession(c.Request.Context(), userID); err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "checkout cancelado",
	})
}

func (ctrl *CheckoutController) respondCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCheckoutSessionNotFound):
		apperrors.NotFound(c, apperrors.CheckoutSessionNotFound, "sessão de checkout não encontrada ou expirada")
	case errors.Is(err, service.ErrCheckoutStepIncomplete):
		apperrors.UnprocessableEntity(c, apperrors.CheckoutStepIncomplete, "complete a etapa anterior antes de avançar")
	case errors.Is(err, service.ErrCheckoutInvalidStep):
		apperrors.BadRequest(c, apperrors.CheckoutInvalidStep, "etapa de checkout inválida")
	case errors.Is(err, service.ErrCheckoutFieldsMissing):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "preencha todos os campos obrigatórios da etapa")
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		apperrors.BadRequest(c, apperrors.OrderInvalidPayment, "forma de pagamento inválida")
	default:
		log := middleware.GetLoggerFromContext(c)
		log.Error("Checkout operation failed", err, nil)
		apperrors.InternalError(c, "")
	}
}
