package service

import (
	"context"
	"testing"
	"time"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/db"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/payment/pagbank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeGateway devolve respostas pré-programadas no lugar do PSP.
type fakeGateway struct {
	cfg         pagbank.Config
	resp        *pagbank.OrderResponse
	err         error
	requests    []pagbank.OrderRequest
	payOrderIDs []string
}

func (f *fakeGateway) CreateOrder(_ context.Context, req pagbank.OrderRequest) (*pagbank.OrderResponse, error) {
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func (f *fakeGateway) PayOrder(_ context.Context, orderID string, _ pagbank.PayRequest) (*pagbank.OrderResponse, error) {
	f.payOrderIDs = append(f.payOrderIDs, orderID)
	return f.resp, f.err
}

func (f *fakeGateway) GetOrder(_ context.Context, _ string) (*pagbank.OrderResponse, error) {
	return f.resp, f.err
}

func (f *fakeGateway) GetConfig() pagbank.Config {
	return f.cfg
}

func pixResponse(text string) *pagbank.OrderResponse {
	return &pagbank.OrderResponse{
		ID: "ORDE_PIX_1",
		QRCodes: []pagbank.QRCode{{
			ID:   "QRCO_1",
			Text: text,
		}},
	}
}

func chargeResponse(status, brand, lastDigits, message string) *pagbank.OrderResponse {
	resp := &pagbank.OrderResponse{
		ID: "ORDE_CARD_1",
		Charges: []pagbank.Charge{{
			ID:     "CHAR_1",
			Status: status,
		}},
	}
	resp.Charges[0].PaymentMethod.Card.Brand = brand
	resp.Charges[0].PaymentMethod.Card.LastDigits = lastDigits
	resp.Charges[0].PaymentResponse.Message = message
	return resp
}

type orderTestEnv struct {
	db          *gorm.DB
	service     OrderService
	gateway     *fakeGateway
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	user        *model.User
	address     *model.Address
	method      *model.ShippingMethod
}

func setupOrderServiceTest(t *testing.T) *orderTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	orderRepo := repository.NewOrderRepository(testDB)
	paymentRepo := repository.NewPaymentRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)

	cartService := NewCartService(cartRepo, productRepo)
	stockService := NewStockService(productRepo)

	gateway := &fakeGateway{
		cfg: pagbank.Config{
			Token:            "test-token",
			BaseURL:          "https://sandbox.api.pagseguro.com",
			PixExpiryMinutes: 30,
			BoletoDueDays:    3,
		},
		resp: pixResponse("00020126pix-copia-e-cola"),
	}

	orderService := NewOrderService(
		orderRepo, paymentRepo, productRepo, userRepo, addressRepo,
		cartService, stockService, gateway, testDB,
	)

	user := &model.User{
		Email:        "ana@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Ana Souza",
		CPF:          "52998224725",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)

	address := &model.Address{
		UserID:    user.ID,
		Recipient: "Ana Souza",
		ZipCode:   "04538133",
		Street:    "Avenida Faria Lima",
		Number:    "1500",
		City:      "São Paulo",
		State:     "SP",
		IsDefault: true,
	}
	require.NoError(t, testDB.Create(address).Error)

	method := &model.ShippingMethod{
		Name:     "PAC",
		BaseCost: 15.00,
		MinDays:  5,
		MaxDays:  10,
		IsActive: true,
	}
	require.NoError(t, testDB.Create(method).Error)

	return &orderTestEnv{
		db:          testDB,
		service:     orderService,
		gateway:     gateway,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		user:        user,
		address:     address,
		method:      method,
	}
}

func (env *orderTestEnv) createOrderInput(product *model.Product, quantity int, method model.PaymentMethod) CreateOrderInput {
	return CreateOrderInput{
		AddressID:        env.address.ID,
		Items:            []CheckoutCartItem{{ProductID: product.ID, Quantity: quantity}},
		ShippingMethodID: env.method.ID,
		PaymentMethod:    method,
	}
}

func TestOrderService_CreateOrder_Pix(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	// o carrinho é limpo junto com a criação do pedido
	require.NoError(t, env.db.Create(&model.CartItem{
		UserID: env.user.ID, ProductID: product.ID, Quantity: 2,
	}).Error)

	order, err := env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 2, model.PaymentMethodPix))
	require.NoError(t, err)

	assert.Contains(t, order.OrderNumber, "NSR-")
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	assert.InDelta(t, 159.80, order.Subtotal, 0.001)
	assert.InDelta(t, 15.00, order.ShippingCost, 0.001)
	assert.InDelta(t, 174.80, order.Total, 0.001)
	assert.Equal(t, "PAC", order.ShippingName)
	require.Len(t, order.OrderItems, 1)
	assert.InDelta(t, 79.90, order.OrderItems[0].UnitPrice, 0.001)

	payment := order.ActivePayment()
	require.NotNil(t, payment)
	assert.Equal(t, model.PaymentMethodPix, payment.Method)
	assert.Equal(t, "00020126pix-copia-e-cola", payment.PixQrCode)
	assert.NotEmpty(t, payment.PixQrCodeBase64)
	require.NotNil(t, payment.PixExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), *payment.PixExpiresAt, 10*time.Second)

	var updated model.Product
	require.NoError(t, env.db.First(&updated, product.ID).Error)
	assert.Equal(t, 8, updated.StockQuantity)

	var cartCount int64
	require.NoError(t, env.db.Model(&model.CartItem{}).
		Where("user_id = ?", env.user.ID).Count(&cartCount).Error)
	assert.Zero(t, cartCount)

	require.Len(t, env.gateway.requests, 1)
	assert.Equal(t, order.OrderNumber, env.gateway.requests[0].ReferenceID)
	assert.Equal(t, "52998224725", env.gateway.requests[0].Customer.TaxID)
	require.Len(t, env.gateway.requests[0].QRCodes, 1)
	assert.Equal(t, int64(17480), env.gateway.requests[0].QRCodes[0].Amount.Value)
}

func TestOrderService_CreateOrder_CardApproved(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Tênis Urbano", 5)
	env.gateway.resp = chargeResponse("PAID", "visa", "1234", "")

	input := env.createOrderInput(product, 1, model.PaymentMethodCreditCard)
	input.CreditCard = &CreditCardInput{
		Encrypted:  "encrypted-card-blob",
		HolderName: "Ana Souza",
		HolderCPF:  "52998224725",
	}

	order, err := env.service.CreateOrder(context.Background(), env.user.ID, input)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, model.OrderStatusProcessing, order.Status)

	payment := order.ActivePayment()
	require.NotNil(t, payment)
	assert.Equal(t, model.PaymentStatusPaid, payment.Status)
	assert.Equal(t, "visa", payment.CardBrand)
	assert.Equal(t, "1234", payment.CardLastDigits)
	assert.Equal(t, "CHAR_1", payment.ProviderCharge)
	assert.NotNil(t, payment.PaidAt)
}

func TestOrderService_CreateOrder_CardDeclined(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Tênis Urbano", 5)
	env.gateway.resp = chargeResponse("DECLINED", "visa", "1234", "saldo insuficiente")

	input := env.createOrderInput(product, 1, model.PaymentMethodCreditCard)
	input.CreditCard = &CreditCardInput{Encrypted: "encrypted-card-blob"}

	order, err := env.service.CreateOrder(context.Background(), env.user.ID, input)
	require.NoError(t, err)

	// recusa não é erro: o pedido existe e a tentativa fica registrada
	assert.Equal(t, model.PaymentStatusFailed, order.PaymentStatus)
	assert.Equal(t, model.OrderStatusPending, order.Status)

	payment := order.ActivePayment()
	require.NotNil(t, payment)
	assert.Equal(t, model.PaymentStatusFailed, payment.Status)
	assert.Equal(t, "saldo insuficiente", payment.FailureReason)

	// estoque permanece reservado para a nova tentativa
	var updated model.Product
	require.NoError(t, env.db.First(&updated, product.ID).Error)
	assert.Equal(t, 4, updated.StockQuantity)
}

func TestOrderService_CreateOrder_Boleto(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	resp := chargeResponse("WAITING", "", "", "")
	resp.Charges[0].PaymentMethod.Boleto.Barcode = "34191790010104351004791020150008291070026000"
	resp.Charges[0].PaymentMethod.Boleto.FormattedBarcode = "34191.79001 01043.510047 91020.150008 2 91070026000"
	resp.Charges[0].PaymentMethod.Boleto.DueDate = time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	env.gateway.resp = resp

	order, err := env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 1, model.PaymentMethodBoleto))
	require.NoError(t, err)

	payment := order.ActivePayment()
	require.NotNil(t, payment)
	assert.Equal(t, model.PaymentMethodBoleto, payment.Method)
	assert.Equal(t, "34191.79001 01043.510047 91020.150008 2 91070026000", payment.BoletoBarcode)
	require.NotNil(t, payment.BoletoDueDate)
}

func TestOrderService_CreateOrder_InputValidation(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	_, err := env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 1, "cheque"))
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 1, model.PaymentMethodCreditCard))
	assert.ErrorIs(t, err, ErrMissingCardData)
}

func TestOrderService_CreateOrder_AddressOwnership(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	other := &model.User{
		Email: "bruno@example.com", PasswordHash: "hash", Name: "Bruno Lima", Role: model.RoleUser,
	}
	require.NoError(t, env.db.Create(other).Error)
	otherAddress := &model.Address{
		UserID: other.ID, Recipient: "Bruno Lima", ZipCode: "01310100",
		Street: "Avenida Paulista", Number: "900", City: "São Paulo", State: "SP",
	}
	require.NoError(t, env.db.Create(otherAddress).Error)

	input := env.createOrderInput(product, 1, model.PaymentMethodPix)
	input.AddressID = otherAddress.ID
	_, err := env.service.CreateOrder(context.Background(), env.user.ID, input)
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)

	input.AddressID = 9999
	_, err = env.service.CreateOrder(context.Background(), env.user.ID, input)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestOrderService_CreateOrder_StockShortfall(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 2)

	_, err := env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 5, model.PaymentMethodPix))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acima do estoque disponível (2)")

	// nada foi persistido nem debitado
	var orderCount int64
	require.NoError(t, env.db.Model(&model.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	var updated model.Product
	require.NoError(t, env.db.First(&updated, product.ID).Error)
	assert.Equal(t, 2, updated.StockQuantity)
}

func TestOrderService_CreateOrder_ShippingMethod(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	inactive := &model.ShippingMethod{
		Name:     "Transportadora Desativada",
		BaseCost: 9.90,
		MinDays:  2,
		MaxDays:  6,
		IsActive: false,
	}
	require.NoError(t, env.db.Create(inactive).Error)

	input := env.createOrderInput(product, 2, model.PaymentMethodPix)
	input.ShippingMethodID = inactive.ID
	_, err := env.service.CreateOrder(context.Background(), env.user.ID, input)
	assert.ErrorIs(t, err, ErrShippingMethodUnknown)

	input.ShippingMethodID = 9999
	_, err = env.service.CreateOrder(context.Background(), env.user.ID, input)
	assert.ErrorIs(t, err, ErrShippingMethodUnknown)

	// o rollback devolve o estoque reservado dentro da transação
	var updated model.Product
	require.NoError(t, env.db.First(&updated, product.ID).Error)
	assert.Equal(t, 10, updated.StockQuantity)

	// o método ativo segue cotável
	input.ShippingMethodID = env.method.ID
	order, err := env.service.CreateOrder(context.Background(), env.user.ID, input)
	require.NoError(t, err)
	assert.InDelta(t, 15.00, order.ShippingCost, 0.001)
}

func TestOrderService_CreateOrder_Coupon(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)
	require.NoError(t, env.db.Create(&model.Coupon{
		Code:         "BEMVINDA10",
		DiscountType: model.DiscountPercent,
		Value:        10,
		IsActive:     true,
	}).Error)

	input := env.createOrderInput(product, 2, model.PaymentMethodPix)
	input.CouponCode = " bemvinda10 "

	order, err := env.service.CreateOrder(context.Background(), env.user.ID, input)
	require.NoError(t, err)

	assert.Equal(t, "BEMVINDA10", order.CouponCode)
	assert.InDelta(t, 15.98, order.Discount, 0.001)
	assert.InDelta(t, 159.80+15.00-15.98, order.Total, 0.001)

	input.CouponCode = "INEXISTENTE"
	_, err = env.service.CreateOrder(context.Background(), env.user.ID, input)
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestOrderService_RetryPayment(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Tênis Urbano", 5)
	env.gateway.resp = chargeResponse("DECLINED", "visa", "1234", "saldo insuficiente")

	input := env.createOrderInput(product, 1, model.PaymentMethodCreditCard)
	input.CreditCard = &CreditCardInput{Encrypted: "encrypted-card-blob"}

	order, err := env.service.CreateOrder(context.Background(), env.user.ID, input)
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusFailed, order.PaymentStatus)
	firstPaymentID := order.ActivePayment().ID

	// nova tentativa via PIX
	env.gateway.resp = pixResponse("00020126pix-retry")

	retried, err := env.service.RetryPayment(context.Background(), env.user.ID, order.ID, RetryPaymentInput{
		PaymentMethod: model.PaymentMethodPix,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusPending, retried.PaymentStatus)

	payment := retried.ActivePayment()
	require.NotNil(t, payment)
	assert.NotEqual(t, firstPaymentID, payment.ID)
	assert.Equal(t, model.PaymentMethodPix, payment.Method)
	assert.Equal(t, "00020126pix-retry", payment.PixQrCode)

	var first model.Payment
	require.NoError(t, env.db.First(&first, firstPaymentID).Error)
	assert.False(t, first.Active)

	// a retentativa reaproveita o pedido já aberto no PSP
	assert.Equal(t, "ORDE_CARD_1", retried.ProviderOrderID)
	assert.Len(t, env.gateway.requests, 1)
	assert.Equal(t, []string{"ORDE_CARD_1"}, env.gateway.payOrderIDs)
}

func TestOrderService_RetryPayment_Errors(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Tênis Urbano", 5)
	env.gateway.resp = chargeResponse("PAID", "visa", "1234", "")

	input := env.createOrderInput(product, 1, model.PaymentMethodCreditCard)
	input.CreditCard = &CreditCardInput{Encrypted: "encrypted-card-blob"}

	order, err := env.service.CreateOrder(context.Background(), env.user.ID, input)
	require.NoError(t, err)

	_, err = env.service.RetryPayment(context.Background(), env.user.ID, order.ID, RetryPaymentInput{
		PaymentMethod: model.PaymentMethodPix,
	})
	assert.ErrorIs(t, err, ErrPaymentAlreadyDone)

	_, err = env.service.RetryPayment(context.Background(), env.user.ID, 9999, RetryPaymentInput{
		PaymentMethod: model.PaymentMethodPix,
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = env.service.RetryPayment(context.Background(), env.user.ID, order.ID, RetryPaymentInput{
		PaymentMethod: model.PaymentMethodCreditCard,
	})
	assert.ErrorIs(t, err, ErrMissingCardData)
}

func TestOrderService_GetPaymentStatus(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	order, err := env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 1, model.PaymentMethodPix))
	require.NoError(t, err)

	result, err := env.service.GetPaymentStatus(env.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, result.Status)
	assert.NotNil(t, result.PixExpiresAt)

	// QR vencido: o polling marca a tentativa como falhada na hora
	expired := time.Now().Add(-time.Minute)
	payment := order.ActivePayment()
	require.NoError(t, env.db.Model(&model.Payment{}).
		Where("id = ?", payment.ID).
		Update("pix_expires_at", expired).Error)

	result, err = env.service.GetPaymentStatus(env.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, result.Status)

	var persisted model.Payment
	require.NoError(t, env.db.First(&persisted, payment.ID).Error)
	assert.Equal(t, model.PaymentStatusFailed, persisted.Status)
	assert.Equal(t, "QR code PIX expirado", persisted.FailureReason)

	_, err = env.service.GetPaymentStatus(env.user.ID, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_GetOrders_Ownership(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	order, err := env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 1, model.PaymentMethodPix))
	require.NoError(t, err)

	orders, err := env.service.GetUserOrders(env.user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	found, err := env.service.GetOrderByID(env.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)

	other := &model.User{
		Email: "bruno@example.com", PasswordHash: "hash", Name: "Bruno Lima", Role: model.RoleUser,
	}
	require.NoError(t, env.db.Create(other).Error)

	_, err = env.service.GetOrderByID(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	order, err := env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 1, model.PaymentMethodPix))
	require.NoError(t, err)

	require.NoError(t, env.service.UpdateOrderStatus(order.ID, model.OrderStatusShipped))

	updated, err := env.orderRepo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, updated.Status)

	err = env.service.UpdateOrderStatus(9999, model.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_UpdateOrderStatus_CancellationRestocks(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	order, err := env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 3, model.PaymentMethodPix))
	require.NoError(t, err)

	var debited model.Product
	require.NoError(t, env.db.First(&debited, product.ID).Error)
	require.Equal(t, 7, debited.StockQuantity)

	require.NoError(t, env.service.UpdateOrderStatus(order.ID, model.OrderStatusCancelled))

	cancelled, err := env.orderRepo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)

	var restocked model.Product
	require.NoError(t, env.db.First(&restocked, product.ID).Error)
	assert.Equal(t, 10, restocked.StockQuantity)

	// cancelar um pedido já cancelado não devolve o estoque em dobro
	require.NoError(t, env.service.UpdateOrderStatus(order.ID, model.OrderStatusCancelled))
	require.NoError(t, env.db.First(&restocked, product.ID).Error)
	assert.Equal(t, 10, restocked.StockQuantity)
}

func TestOrderService_HandlePaymentNotification(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	order, err := env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 1, model.PaymentMethodPix))
	require.NoError(t, err)

	event := pagbank.WebhookEvent{
		ID: "NOTI_1",
		Charges: []pagbank.Charge{{
			ID:          "CHAR_PIX_1",
			ReferenceID: order.OrderNumber,
			Status:      "PAID",
		}},
	}
	require.NoError(t, env.service.HandlePaymentNotification(context.Background(), event))

	updated, err := env.orderRepo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, model.OrderStatusProcessing, updated.Status)

	payment := updated.ActivePayment()
	require.NotNil(t, payment)
	assert.Equal(t, model.PaymentStatusPaid, payment.Status)
	assert.Equal(t, "CHAR_PIX_1", payment.ProviderCharge)
	assert.NotNil(t, payment.PaidAt)

	// cobrança desconhecida é ignorada sem erro
	unknown := pagbank.WebhookEvent{
		ID:      "NOTI_2",
		Charges: []pagbank.Charge{{ID: "CHAR_GHOST", ReferenceID: "NSR-00000000-XXXXXX", Status: "PAID"}},
	}
	assert.NoError(t, env.service.HandlePaymentNotification(context.Background(), unknown))
}

func TestOrderService_ExpireStalePixPayments(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product := createTestProduct(t, env.db, "Camiseta Básica", 10)

	order, err := env.service.CreateOrder(context.Background(), env.user.ID,
		env.createOrderInput(product, 1, model.PaymentMethodPix))
	require.NoError(t, err)

	payment := order.ActivePayment()
	require.NotNil(t, payment)

	// antes da expiração nada muda
	count, err := env.service.ExpireStalePixPayments(time.Now())
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = env.service.ExpireStalePixPayments(time.Now().Add(31 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var persisted model.Payment
	require.NoError(t, env.db.First(&persisted, payment.ID).Error)
	assert.Equal(t, model.PaymentStatusFailed, persisted.Status)

	updated, err := env.orderRepo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, updated.PaymentStatus)
}
