package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/payment/pagbank"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/util"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound           = errors.New("pedido não encontrado")
	ErrEmptyCart               = errors.New("o carrinho está vazio")
	ErrInvalidPaymentMethod    = errors.New("forma de pagamento inválida")
	ErrMissingCardData         = errors.New("dados criptografados do cartão são obrigatórios")
	ErrOrderNotPending         = errors.New("o pedido não está aguardando pagamento")
	ErrPaymentAlreadyDone      = errors.New("o pagamento deste pedido já foi confirmado")
	ErrCouponInvalid           = errors.New("cupom inválido ou expirado")
)

// StockError carrega o detalhamento por item de um checkout abortado
// por falta de estoque.
type StockError struct {
	Items []UnavailableItem
}

func (e *StockError) Error() string {
	return fmt.Sprintf("estoque insuficiente para %d item(ns)", len(e.Items))
}

// CreditCardInput é o payload de cartão aceito pela API. Só transporta o
// blob criptografado pelo Encryptor, nunca os campos crus do cartão.
type CreditCardInput struct {
	Encrypted  string `json:"encrypted"`
	HolderName string `json:"holder_name"`
	HolderCPF  string `json:"holder_cpf"`
}

type CreateOrderInput struct {
	AddressID        uint
	Items            []CheckoutCartItem
	ShippingMethodID uint
	PaymentMethod    model.PaymentMethod
	CreditCard       *CreditCardInput
	CouponCode       string
	Notes            string
}

type RetryPaymentInput struct {
	PaymentMethod model.PaymentMethod
	CreditCard    *CreditCardInput
}

// PaymentStatusResult é a resposta do polling de status de pagamento.
type PaymentStatusResult struct {
	Status       model.PaymentStatus `json:"status"`
	PixExpiresAt *time.Time          `json:"pix_expires_at,omitempty"`
}

// PaymentGateway é a fatia do cliente PagBank que o orquestrador usa.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req pagbank.OrderRequest) (*pagbank.OrderResponse, error)
	PayOrder(ctx context.Context, orderID string, req pagbank.PayRequest) (*pagbank.OrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (*pagbank.OrderResponse, error)
	GetConfig() pagbank.Config
}

// OrderService orquestra a criação do pedido: endereço, estoque, frete,
// cupom e a cobrança no PSP, com ramificação por forma de pagamento.
type OrderService interface {
	CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*model.Order, error)
	RetryPayment(ctx context.Context, userID, orderID uint, input RetryPaymentInput) (*model.Order, error)
	GetPaymentStatus(userID, orderID uint) (*PaymentStatusResult, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) error
	HandlePaymentNotification(ctx context.Context, event pagbank.WebhookEvent) error
	ExpireStalePixPayments(now time.Time) (int, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	paymentRepo  repository.PaymentRepository
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	addressRepo  repository.AddressRepository
	cartService  CartService
	stockService StockService
	gateway      PaymentGateway
	db           *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	addressRepo repository.AddressRepository,
	cartService CartService,
	stockService StockService,
	gateway PaymentGateway,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		addressRepo:  addressRepo,
		cartService:  cartService,
		stockService: stockService,
		gateway:      gateway,
		db:           db,
	}
}

func validPaymentMethod(m model.PaymentMethod) bool {
	switch m {
	case model.PaymentMethodCreditCard, model.PaymentMethodPix, model.PaymentMethodBoleto:
		return true
	}
	return false
}

// toCentavos converte reais para centavos, a unidade do PSP.
func toCentavos(value float64) int64 {
	return int64(math.Round(value * 100))
}

func (s *orderService) CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*model.Order, error) {
	logger.Info("Creating order", map[string]interface{}{
		"user_id":            userID,
		"address_id":         input.AddressID,
		"shipping_method_id": input.ShippingMethodID,
		"payment_method":     input.PaymentMethod,
		"item_count":         len(input.Items),
	})

	if !validPaymentMethod(input.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}
	if input.PaymentMethod == model.PaymentMethodCreditCard {
		if input.CreditCard == nil || input.CreditCard.Encrypted == "" {
			return nil, ErrMissingCardData
		}
	}

	// endereço tem que pertencer ao comprador
	address, err := s.addressRepo.FindByID(input.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		logger.Warn("Order creation rejected: address belongs to another user", map[string]interface{}{
			"user_id":    userID,
			"address_id": input.AddressID,
		})
		return nil, ErrUnauthorizedAccess
	}

	if err := s.cartService.ValidateCartItemsForCheckout(input.Items); err != nil {
		return nil, err
	}

	stockItems := make([]StockItem, 0, len(input.Items))
	for _, item := range input.Items {
		stockItems = append(stockItems, StockItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	validation, err := s.stockService.ValidateStock(stockItems)
	if err != nil {
		return nil, err
	}
	if !validation.Available {
		logger.Warn("Order creation aborted: stock shortfall", map[string]interface{}{
			"user_id":           userID,
			"unavailable_count": len(validation.UnavailableItems),
		})
		return nil, &StockError{Items: validation.UnavailableItems}
	}

	now := time.Now()

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var (
		subtotal    float64
		totalWeight float64
		orderItems  []model.OrderItem
	)

	for _, item := range input.Items {
		// trava a linha do produto até o commit
		product, err := s.productRepo.LockForUpdate(tx, item.ProductID)
		if err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}

		unitPrice := product.Price
		var size, color string
		var variantID *uint

		if item.VariantID != nil {
			variant, err := s.productRepo.LockVariantForUpdate(tx, *item.VariantID)
			if err != nil {
				tx.Rollback()
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrInvalidVariant
				}
				return nil, err
			}
			if variant.ProductID != item.ProductID {
				tx.Rollback()
				return nil, ErrInvalidVariant
			}
			if variant.StockQuantity < item.Quantity {
				tx.Rollback()
				return nil, &StockError{Items: []UnavailableItem{{
					ProductID:         product.ID,
					ProductName:       product.Name,
					RequestedQuantity: item.Quantity,
					AvailableQuantity: variant.StockQuantity,
				}}}
			}
			if err := s.productRepo.DecrementVariantStock(tx, variant.ID, item.Quantity); err != nil {
				tx.Rollback()
				return nil, err
			}
			unitPrice += variant.AdditionalPrice
			size = variant.Size
			color = variant.Color
			variantID = &variant.ID
		} else {
			if product.StockQuantity < item.Quantity {
				tx.Rollback()
				return nil, &StockError{Items: []UnavailableItem{{
					ProductID:         product.ID,
					ProductName:       product.Name,
					RequestedQuantity: item.Quantity,
					AvailableQuantity: product.StockQuantity,
				}}}
			}
			if err := s.productRepo.DecrementStock(tx, product.ID, item.Quantity); err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		orderItems = append(orderItems, model.OrderItem{
			ProductID: item.ProductID,
			VariantID: variantID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			Size:      size,
			Color:     color,
		})
		subtotal += unitPrice * float64(item.Quantity)

		weight := product.Weight
		if weight <= 0 {
			weight = defaultItemWeight
		}
		totalWeight += weight * float64(item.Quantity)
	}

	// frete e cupom são lidos pela própria transação
	var method model.ShippingMethod
	if err := tx.Where("id = ? AND is_active = ?", input.ShippingMethodID, true).First(&method).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShippingMethodUnknown
		}
		return nil, err
	}
	shipping := quote(&method, totalWeight, subtotal)

	var discount float64
	couponCode := strings.ToUpper(strings.TrimSpace(input.CouponCode))
	if couponCode != "" {
		var coupon model.Coupon
		if err := tx.Where("code = ?", couponCode).First(&coupon).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCouponInvalid
			}
			return nil, err
		}
		discount = coupon.DiscountFor(subtotal, now)
		if discount == 0 {
			tx.Rollback()
			return nil, ErrCouponInvalid
		}
	}

	total := subtotal + shipping.Cost - discount
	if total < 0 {
		total = 0
	}

	order := &model.Order{
		OrderNumber:   util.GenerateOrderNumber(now),
		UserID:        userID,
		AddressID:     address.ID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Subtotal:      subtotal,
		ShippingCost:  shipping.Cost,
		Discount:      discount,
		Total:         total,
		ShippingName:  shipping.Name,
		CouponCode:    couponCode,
		Notes:         input.Notes,
		OrderItems:    orderItems,
	}

	if err := s.orderRepo.Create(tx, order); err != nil {
		tx.Rollback()
		return nil, err
	}

	payment := &model.Payment{
		OrderID: order.ID,
		Method:  input.PaymentMethod,
		Status:  model.PaymentStatusPending,
		Amount:  total,
		Active:  true,
	}
	if err := s.paymentRepo.Create(tx, payment); err != nil {
		tx.Rollback()
		return nil, err
	}

	// o carrinho some junto com a criação do pedido
	if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart after order creation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        total,
		"item_count":   len(orderItems),
	})

	// a cobrança no PSP roda fora da transação: o estoque já está
	// reservado e uma falha aqui vira tentativa de pagamento falhada
	full, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}
	s.chargePayment(ctx, full, payment, input.CreditCard)

	return s.orderRepo.FindByID(order.ID)
}

// sendCharge cria o pedido no PSP na primeira cobrança; nas tentativas
// seguintes só a etapa de pagamento roda de novo, sobre o pedido existente.
func (s *orderService) sendCharge(ctx context.Context, order *model.Order, req pagbank.OrderRequest) (*pagbank.OrderResponse, error) {
	if order.ProviderOrderID != "" {
		return s.gateway.PayOrder(ctx, order.ProviderOrderID, pagbank.PayRequest{
			Charges: req.Charges,
			QRCodes: req.QRCodes,
		})
	}

	resp, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.ID != "" {
		order.ProviderOrderID = resp.ID
		if uerr := s.orderRepo.UpdateProviderOrderID(order.ID, resp.ID); uerr != nil {
			logger.Error("Failed to persist PSP order id", uerr, map[string]interface{}{
				"order_id": order.ID,
			})
		}
	}
	return resp, nil
}

// chargePayment executa a cobrança no PSP para o pagamento ativo do pedido.
// Recusa e falha de comunicação são registradas no próprio Payment; o
// chamador decide pela resposta, não por erro.
func (s *orderService) chargePayment(ctx context.Context, order *model.Order, payment *model.Payment, card *CreditCardInput) {
	user, err := s.userRepo.FindByID(order.UserID)
	if err != nil {
		s.failPayment(order, payment, "não foi possível identificar o comprador")
		return
	}

	cfg := s.gateway.GetConfig()
	customer := pagbank.Customer{
		Name:  user.Name,
		Email: user.Email,
		TaxID: user.CPF,
	}

	items := make([]pagbank.Item, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, pagbank.Item{
			ReferenceID: fmt.Sprintf("%d", item.ProductID),
			Name:        item.Product.Name,
			Quantity:    item.Quantity,
			UnitAmount:  toCentavos(item.UnitPrice),
		})
	}

	amount := pagbank.Amount{Value: toCentavos(payment.Amount), Currency: "BRL"}
	req := pagbank.OrderRequest{
		ReferenceID: order.OrderNumber,
		Customer:    customer,
		Items:       items,
	}

	switch payment.Method {
	case model.PaymentMethodPix:
		expiry := time.Now().Add(time.Duration(cfg.PixExpiryMinutes) * time.Minute)
		req.QRCodes = []pagbank.QRCodeRequest{{
			Amount:         amount,
			ExpirationDate: expiry.Format(time.RFC3339),
		}}

		resp, err := s.sendCharge(ctx, order, req)
		if err != nil {
			s.failPayment(order, payment, gatewayFailureReason(err))
			return
		}
		if len(resp.QRCodes) == 0 {
			s.failPayment(order, payment, "o PSP não retornou o QR code PIX")
			return
		}

		qr := resp.QRCodes[0]
		payment.ProviderCharge = resp.ID
		payment.PixQrCode = qr.Text
		payment.PixExpiresAt = &expiry
		if png, encErr := qrcode.Encode(qr.Text, qrcode.Medium, 256); encErr == nil {
			payment.PixQrCodeBase64 = base64.StdEncoding.EncodeToString(png)
		}
		if err := s.paymentRepo.Update(payment); err != nil {
			logger.Error("Failed to persist PIX payment data", err, map[string]interface{}{
				"payment_id": payment.ID,
			})
		}

	case model.PaymentMethodCreditCard:
		req.Charges = []pagbank.ChargeRequest{{
			ReferenceID: order.OrderNumber,
			Description: fmt.Sprintf("Pedido %s", order.OrderNumber),
			Amount:      amount,
			PaymentMethod: pagbank.PaymentMethod{
				Type:         "CREDIT_CARD",
				Installments: 1,
				Capture:      true,
				Card: &pagbank.EncryptedCard{
					Encrypted: card.Encrypted,
					Holder: pagbank.CardHolder{
						Name:  card.HolderName,
						TaxID: card.HolderCPF,
					},
				},
			},
		}}

		resp, err := s.sendCharge(ctx, order, req)
		if err != nil {
			s.failPayment(order, payment, gatewayFailureReason(err))
			return
		}
		s.applyChargeResult(order, payment, resp)

	case model.PaymentMethodBoleto:
		dueDate := time.Now().AddDate(0, 0, cfg.BoletoDueDays)
		req.Charges = []pagbank.ChargeRequest{{
			ReferenceID: order.OrderNumber,
			Description: fmt.Sprintf("Pedido %s", order.OrderNumber),
			Amount:      amount,
			PaymentMethod: pagbank.PaymentMethod{
				Type: "BOLETO",
				Boleto: &pagbank.Boleto{
					DueDate: dueDate.Format("2006-01-02"),
					Holder: pagbank.CardHolder{
						Name:  user.Name,
						TaxID: user.CPF,
					},
				},
			},
		}}

		resp, err := s.sendCharge(ctx, order, req)
		if err != nil {
			s.failPayment(order, payment, gatewayFailureReason(err))
			return
		}
		if len(resp.Charges) > 0 {
			charge := resp.Charges[0]
			payment.ProviderCharge = charge.ID
			payment.BoletoBarcode = charge.PaymentMethod.Boleto.FormattedBarcode
			if payment.BoletoBarcode == "" {
				payment.BoletoBarcode = charge.PaymentMethod.Boleto.Barcode
			}
			if due, parseErr := time.Parse("2006-01-02", charge.PaymentMethod.Boleto.DueDate); parseErr == nil {
				payment.BoletoDueDate = &due
			} else {
				payment.BoletoDueDate = &dueDate
			}
			if err := s.paymentRepo.Update(payment); err != nil {
				logger.Error("Failed to persist boleto payment data", err, map[string]interface{}{
					"payment_id": payment.ID,
				})
			}
		}
	}
}

// applyChargeResult mapeia o status de uma cobrança do PSP para o Payment
// e propaga para o pedido.
func (s *orderService) applyChargeResult(order *model.Order, payment *model.Payment, resp *pagbank.OrderResponse) {
	if len(resp.Charges) == 0 {
		s.failPayment(order, payment, "o PSP não retornou a cobrança")
		return
	}

	charge := resp.Charges[0]
	payment.ProviderCharge = charge.ID
	payment.CardBrand = charge.PaymentMethod.Card.Brand
	payment.CardLastDigits = charge.PaymentMethod.Card.LastDigits

	switch charge.Status {
	case "PAID", "AUTHORIZED":
		now := time.Now()
		payment.Status = model.PaymentStatusPaid
		payment.PaidAt = &now
		if err := s.paymentRepo.Update(payment); err != nil {
			logger.Error("Failed to persist paid payment", err, map[string]interface{}{
				"payment_id": payment.ID,
			})
		}
		s.markOrderPaid(order)
	case "DECLINED", "CANCELED":
		reason := charge.PaymentResponse.Message
		if reason == "" {
			reason = "pagamento recusado pelo emissor"
		}
		s.failPayment(order, payment, reason)
	default: // WAITING
		if err := s.paymentRepo.Update(payment); err != nil {
			logger.Error("Failed to persist pending payment", err, map[string]interface{}{
				"payment_id": payment.ID,
			})
		}
	}
}

func (s *orderService) markOrderPaid(order *model.Order) {
	if err := s.orderRepo.UpdatePaymentStatus(order.ID, model.PaymentStatusPaid); err != nil {
		logger.Error("Failed to update order payment status", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return
	}
	if err := s.orderRepo.UpdateStatus(order.ID, model.OrderStatusProcessing); err != nil {
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}
	logger.Info("Order payment confirmed", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
}

func (s *orderService) failPayment(order *model.Order, payment *model.Payment, reason string) {
	logger.Warn("Payment attempt failed", map[string]interface{}{
		"order_id":   order.ID,
		"payment_id": payment.ID,
		"method":     payment.Method,
		"reason":     reason,
	})

	payment.Status = model.PaymentStatusFailed
	payment.FailureReason = reason
	if err := s.paymentRepo.Update(payment); err != nil {
		logger.Error("Failed to persist failed payment", err, map[string]interface{}{
			"payment_id": payment.ID,
		})
	}
	if err := s.orderRepo.UpdatePaymentStatus(order.ID, model.PaymentStatusFailed); err != nil {
		logger.Error("Failed to update order payment status", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}
}

func gatewayFailureReason(err error) string {
	var validation *pagbank.ValidationErrors
	if errors.As(err, &validation) && len(validation.Fields) > 0 {
		parts := make([]string, 0, len(validation.Fields))
		for _, f := range validation.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
		}
		return strings.Join(parts, "; ")
	}
	if errors.Is(err, pagbank.ErrUnauthorized) {
		return "falha de autenticação com o PSP"
	}
	return "falha de comunicação com o PSP. tente novamente"
}

// RetryPayment refaz apenas a etapa de cobrança de um pedido pendente.
// O pedido e a reserva de estoque ficam como estão; o pagamento anterior
// é desativado para manter um único pagamento ativo.
func (s *orderService) RetryPayment(ctx context.Context, userID, orderID uint, input RetryPaymentInput) (*model.Order, error) {
	logger.Info("Retrying payment", map[string]interface{}{
		"user_id":        userID,
		"order_id":       orderID,
		"payment_method": input.PaymentMethod,
	})

	if !validPaymentMethod(input.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}
	if input.PaymentMethod == model.PaymentMethodCreditCard {
		if input.CreditCard == nil || input.CreditCard.Encrypted == "" {
			return nil, ErrMissingCardData
		}
	}

	order, err := s.orderRepo.FindByIDAndUser(orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.PaymentStatus == model.PaymentStatusPaid {
		return nil, ErrPaymentAlreadyDone
	}
	if order.Status != model.OrderStatusPending {
		return nil, ErrOrderNotPending
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := s.paymentRepo.DeactivateByOrderID(tx, order.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	payment := &model.Payment{
		OrderID: order.ID,
		Method:  input.PaymentMethod,
		Status:  model.PaymentStatusPending,
		Amount:  order.Total,
		Active:  true,
	}
	if err := s.paymentRepo.Create(tx, payment); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// a nova tentativa volta o pedido para pagamento pendente
	if err := s.orderRepo.UpdatePaymentStatus(order.ID, model.PaymentStatusPending); err != nil {
		return nil, err
	}

	s.chargePayment(ctx, order, payment, input.CreditCard)

	return s.orderRepo.FindByID(order.ID)
}

// GetPaymentStatus é o alvo do polling do cliente durante um PIX pendente.
// QR expirado marca a tentativa como falhada na hora, sem esperar o sweeper.
func (s *orderService) GetPaymentStatus(userID, orderID uint) (*PaymentStatusResult, error) {
	order, err := s.orderRepo.FindByIDAndUser(orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	payment := order.ActivePayment()
	if payment == nil {
		return &PaymentStatusResult{Status: order.PaymentStatus}, nil
	}

	if payment.Expired(time.Now()) {
		s.failPayment(order, payment, "QR code PIX expirado")
		return &PaymentStatusResult{
			Status:       model.PaymentStatusFailed,
			PixExpiresAt: payment.PixExpiresAt,
		}, nil
	}

	return &PaymentStatusResult{
		Status:       order.PaymentStatus,
		PixExpiresAt: payment.PixExpiresAt,
	}, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	logger.Debug("Fetching user orders", map[string]interface{}{
		"user_id": userID,
	})
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDAndUser(orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) error {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	// cancelamento devolve o estoque debitado na criação do pedido
	if status == model.OrderStatusCancelled && order.Status != model.OrderStatusCancelled {
		return s.cancelAndRestock(order)
	}
	return s.orderRepo.UpdateStatus(orderID, status)
}

func (s *orderService) cancelAndRestock(order *model.Order) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	// devolve cada item à mesma contagem debitada: variante ou produto
	for _, item := range order.OrderItems {
		if item.VariantID != nil {
			if err := s.productRepo.IncrementVariantStock(tx, *item.VariantID, item.Quantity); err != nil {
				tx.Rollback()
				return err
			}
			continue
		}
		if err := s.productRepo.IncrementStock(tx, item.ProductID, item.Quantity); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Model(&model.Order{}).
		Where("id = ?", order.ID).
		Update("status", model.OrderStatusCancelled).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	logger.Info("Order cancelled and stock restored", map[string]interface{}{
		"order_id": order.ID,
		"items":    len(order.OrderItems),
	})
	return nil
}

// HandlePaymentNotification processa o webhook do PSP. A cobrança é
// resolvida pelo reference_id (número do pedido) ou pelo ID da cobrança.
func (s *orderService) HandlePaymentNotification(ctx context.Context, event pagbank.WebhookEvent) error {
	for _, charge := range event.Charges {
		order, payment, err := s.resolveCharge(charge)
		if err != nil {
			logger.Warn("Webhook charge did not match any payment", map[string]interface{}{
				"charge_id":    charge.ID,
				"reference_id": charge.ReferenceID,
			})
			continue
		}

		logger.Info("Processing payment notification", map[string]interface{}{
			"order_id":  order.ID,
			"charge_id": charge.ID,
			"status":    charge.Status,
		})

		switch charge.Status {
		case "PAID", "AUTHORIZED":
			now := time.Now()
			payment.ProviderCharge = charge.ID
			payment.Status = model.PaymentStatusPaid
			payment.PaidAt = &now
			if err := s.paymentRepo.Update(payment); err != nil {
				return err
			}
			s.markOrderPaid(order)
		case "DECLINED", "CANCELED":
			reason := charge.PaymentResponse.Message
			if reason == "" {
				reason = "pagamento recusado"
			}
			s.failPayment(order, payment, reason)
		}
	}
	return nil
}

func (s *orderService) resolveCharge(charge pagbank.Charge) (*model.Order, *model.Payment, error) {
	if charge.ReferenceID != "" {
		if order, err := s.orderRepo.FindByOrderNumber(charge.ReferenceID); err == nil {
			if payment := order.ActivePayment(); payment != nil {
				return order, payment, nil
			}
		}
	}

	payment, err := s.paymentRepo.FindByProviderCharge(charge.ID)
	if err != nil {
		return nil, nil, err
	}
	order, err := s.orderRepo.FindByID(payment.OrderID)
	if err != nil {
		return nil, nil, err
	}
	return order, payment, nil
}

// ExpireStalePixPayments varre cobranças PIX vencidas e as marca como
// falhadas. Chamado pelo scheduler.
func (s *orderService) ExpireStalePixPayments(now time.Time) (int, error) {
	payments, err := s.paymentRepo.FindExpiredPixPayments(now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range payments {
		payment := &payments[i]
		order, err := s.orderRepo.FindByID(payment.OrderID)
		if err != nil {
			logger.Error("Failed to load order for expired PIX payment", err, map[string]interface{}{
				"payment_id": payment.ID,
				"order_id":   payment.OrderID,
			})
			continue
		}
		s.failPayment(order, payment, "QR code PIX expirado")
		expired++
	}

	if expired > 0 {
		logger.Info("Expired PIX payments swept", map[string]interface{}{
			"count": expired,
		})
	}
	return expired, nil
}
