package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	apperrors "github.com/lucaanasser/nsr-ecommerce-backend/internal/errors"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type OrderItemInput struct {
	ProductID uint   `json:"product_id" binding:"required"`
	VariantID *uint  `json:"variant_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CreditCardRequest struct {
	Encrypted  string `json:"encrypted" binding:"required"`
	HolderName string `json:"holder_name" binding:"required"`
	HolderCPF  string `json:"holder_cpf" binding:"required"`
}

type CreateOrderRequest struct {
	AddressID        uint                `json:"address_id" binding:"required"`
	Items            []OrderItemInput    `json:"items" binding:"required"`
	ShippingMethodID uint                `json:"shipping_method_id" binding:"required"`
	PaymentMethod    model.PaymentMethod `json:"payment_method" binding:"required"`
	CreditCard       *CreditCardRequest  `json:"credit_card"`
	CouponCode       string              `json:"coupon_code"`
	Notes            string              `json:"notes"`
}

type RetryPaymentRequest struct {
	PaymentMethod model.PaymentMethod `json:"payment_method" binding:"required"`
	CreditCard    *CreditCardRequest  `json:"credit_card"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// PaymentSummary é o bloco de pagamento devolvido junto com o pedido.
type PaymentSummary struct {
	Status          model.PaymentStatus `json:"status"`
	Method          model.PaymentMethod `json:"method"`
	PixQrCode       string              `json:"pix_qr_code,omitempty"`
	PixQrCodeBase64 string              `json:"pix_qr_code_base64,omitempty"`
	PixExpiresAt    *time.Time          `json:"pix_expires_at,omitempty"`
	BoletoBarcode   string              `json:"boleto_barcode,omitempty"`
	BoletoDueDate   *time.Time          `json:"boleto_due_date,omitempty"`
	FailureReason   string              `json:"failure_reason,omitempty"`
}

func paymentSummary(order *model.Order) *PaymentSummary {
	payment := order.ActivePayment()
	if payment == nil {
		return nil
	}
	return &PaymentSummary{
		Status:          payment.Status,
		Method:          payment.Method,
		PixQrCode:       payment.PixQrCode,
		PixQrCodeBase64: payment.PixQrCodeBase64,
		PixExpiresAt:    payment.PixExpiresAt,
		BoletoBarcode:   payment.BoletoBarcode,
		BoletoDueDate:   payment.BoletoDueDate,
		FailureReason:   payment.FailureReason,
	}
}

func toServiceItems(items []OrderItemInput) []service.CheckoutCartItem {
	out := make([]service.CheckoutCartItem, 0, len(items))
	for _, item := range items {
		out = append(out, service.CheckoutCartItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Size:      item.Size,
			Quantity:  item.Quantity,
		})
	}
	return out
}

// CreateOrder creates an order from the validated cart
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order creation request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do pedido são inválidos")
		return
	}

	input := service.CreateOrderInput{
		AddressID:        req.AddressID,
		Items:            toServiceItems(req.Items),
		ShippingMethodID: req.ShippingMethodID,
		PaymentMethod:    req.PaymentMethod,
		CouponCode:       req.CouponCode,
		Notes:            req.Notes,
	}
	if req.CreditCard != nil {
		input.CreditCard = &service.CreditCardInput{
			Encrypted:  req.CreditCard.Encrypted,
			HolderName: req.CreditCard.HolderName,
			HolderCPF:  req.CreditCard.HolderCPF,
		}
	}

	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), userID, input)
	if err != nil {
		ctrl.respondOrderError(c, userID, err)
		return
	}

	log.Info("Order created successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
	})

	c.JSON(http.StatusCreated, gin.H{
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"payment":      paymentSummary(order),
		"total":        order.Total,
		"order":        order,
	})
}

func (ctrl *OrderController) respondOrderError(c *gin.Context, userID uint, err error) {
	log := middleware.GetLoggerFromContext(c)

	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		log.Warn("Order rejected: stock shortfall", map[string]interface{}{
			"user_id":           userID,
			"unavailable_count": len(stockErr.Items),
		})
		c.JSON(http.StatusConflict, gin.H{
			"error":             apperrors.StockUnavailable,
			"message":           "alguns itens do carrinho estão sem estoque suficiente",
			"unavailable_items": stockErr.Items,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrAddressNotFound):
		apperrors.NotFound(c, apperrors.AddressNotFound, "endereço não encontrado")
	case errors.Is(err, service.ErrUnauthorizedAccess):
		apperrors.Forbidden(c, "o endereço informado não pertence a você")
	case errors.Is(err, service.ErrShippingMethodUnknown):
		apperrors.BadRequest(c, apperrors.ShippingMethodNotFound, "método de envio não encontrado ou inativo")
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		apperrors.BadRequest(c, apperrors.OrderInvalidPayment, "forma de pagamento inválida")
	case errors.Is(err, service.ErrMissingCardData):
		apperrors.BadRequest(c, apperrors.OrderInvalidPayment, "dados criptografados do cartão são obrigatórios")
	case errors.Is(err, service.ErrCouponInvalid):
		apperrors.BadRequest(c, apperrors.CouponNotFound, "cupom inválido ou expirado")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "produto não encontrado")
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "pedido não encontrado")
	case errors.Is(err, service.ErrOrderNotPending):
		apperrors.Conflict(c, apperrors.OrderNotPending, "o pedido não está aguardando pagamento")
	case errors.Is(err, service.ErrPaymentAlreadyDone):
		apperrors.Conflict(c, apperrors.OrderNotPending, "o pagamento deste pedido já foi confirmado")
	default:
		// erros de validação estrutural do carrinho chegam aqui com
		// mensagem própria para o painel do checkout
		log.Warn("Order rejected by validation", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	}
}

// RetryPayment re-runs the payment step on a pending order
// POST /api/v1/orders/:id/retry-payment
func (ctrl *OrderController) RetryPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RetryPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do pagamento são inválidos")
		return
	}

	input := service.RetryPaymentInput{PaymentMethod: req.PaymentMethod}
	if req.CreditCard != nil {
		input.CreditCard = &service.CreditCardInput{
			Encrypted:  req.CreditCard.Encrypted,
			HolderName: req.CreditCard.HolderName,
			HolderCPF:  req.CreditCard.HolderCPF,
		}
	}

	order, err := ctrl.orderService.RetryPayment(c.Request.Context(), userID, orderID, input)
	if err != nil {
		ctrl.respondOrderError(c, userID, err)
		return
	}

	log.Info("Payment retried", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"payment":      paymentSummary(order),
		"total":        order.Total,
	})
}

// GetPaymentStatus is the polling target while a PIX charge is outstanding
// GET /api/v1/orders/:id/payment-status
func (ctrl *OrderController) GetPaymentStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := ctrl.orderService.GetPaymentStatus(userID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "pedido não encontrado")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrders returns user's orders
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID returns one order owned by the caller
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "pedido não encontrado")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// UpdateOrderStatus updates the fulfillment status (admin)
// PATCH /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "status inválido")
		return
	}

	switch req.Status {
	case model.OrderStatusPending, model.OrderStatusProcessing,
		model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCancelled:
	default:
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "status inválido")
		return
	}

	if err := ctrl.orderService.UpdateOrderStatus(orderID, req.Status); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "pedido não encontrado")
			return
		}
		log.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "status do pedido atualizado",
	})
}

// parseIDParam lê um parâmetro numérico de rota, respondendo 400 se inválido.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID inválido")
		return 0, false
	}
	return uint(id), true
}
