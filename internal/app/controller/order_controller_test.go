package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/db"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/payment/pagbank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubGateway responde o fluxo de cobrança sem falar com o PSP.
type stubGateway struct {
	resp *pagbank.OrderResponse
	err  error
}

func (g *stubGateway) CreateOrder(context.Context, pagbank.OrderRequest) (*pagbank.OrderResponse, error) {
	return g.resp, g.err
}

func (g *stubGateway) PayOrder(context.Context, string, pagbank.PayRequest) (*pagbank.OrderResponse, error) {
	return g.resp, g.err
}

func (g *stubGateway) GetOrder(context.Context, string) (*pagbank.OrderResponse, error) {
	return g.resp, g.err
}

func (g *stubGateway) GetConfig() pagbank.Config {
	return pagbank.Config{
		Token:            "test-token",
		BaseURL:          "https://sandbox.api.pagseguro.com",
		PixExpiryMinutes: 30,
		BoletoDueDays:    3,
	}
}

type orderControllerEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	gateway *stubGateway
	user    *model.User
	token   string
	address *model.Address
	method  *model.ShippingMethod
}

func setupOrderControllerTest(t *testing.T) *orderControllerEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	orderRepo := repository.NewOrderRepository(testDB)
	paymentRepo := repository.NewPaymentRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)

	cartService := service.NewCartService(cartRepo, productRepo)
	stockService := service.NewStockService(productRepo)

	gateway := &stubGateway{
		resp: &pagbank.OrderResponse{
			ID:      "ORDE_1",
			QRCodes: []pagbank.QRCode{{ID: "QRCO_1", Text: "00020126pix-copia-e-cola"}},
		},
	}

	orderService := service.NewOrderService(
		orderRepo, paymentRepo, productRepo, userRepo, addressRepo,
		cartService, stockService, gateway, testDB,
	)

	ctrl := NewOrderController(orderService)
	authMiddleware := middleware.NewAuthMiddleware(controllerTestSecret)

	router := gin.New()
	orders := router.Group("/orders", authMiddleware.Authenticate())
	{
		orders.POST("", ctrl.CreateOrder)
		orders.GET("", ctrl.GetOrders)
		orders.GET("/:id", ctrl.GetOrderByID)
		orders.POST("/:id/retry-payment", ctrl.RetryPayment)
		orders.GET("/:id/payment-status", ctrl.GetPaymentStatus)
	}
	router.PUT("/admin/orders/:id/status",
		authMiddleware.Authenticate(),
		authMiddleware.RequireRole("admin"),
		ctrl.UpdateOrderStatus,
	)

	user, token := seedControllerUser(t, testDB, "ana@example.com", model.RoleUser)

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

	return &orderControllerEnv{
		router:  router,
		db:      testDB,
		gateway: gateway,
		user:    user,
		token:   token,
		address: address,
		method:  method,
	}
}

func (env *orderControllerEnv) orderPayload(product *model.Product, quantity int) CreateOrderRequest {
	return CreateOrderRequest{
		AddressID:        env.address.ID,
		Items:            []OrderItemInput{{ProductID: product.ID, Quantity: quantity}},
		ShippingMethodID: env.method.ID,
		PaymentMethod:    model.PaymentMethodPix,
	}
}

func TestOrderController_CreateOrder_Pix(t *testing.T) {
	env := setupOrderControllerTest(t)

	product := seedControllerProduct(t, env.db, "Camiseta Básica", 79.90, 10)

	w := jsonRequest(t, env.router, "POST", "/orders", env.orderPayload(product, 2), env.token)
	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		OrderNumber string `json:"order_number"`
		Status      string `json:"status"`
		Total       float64
		Payment     struct {
			Status       string `json:"status"`
			Method       string `json:"method"`
			PixQrCode    string `json:"pix_qr_code"`
			PixExpiresAt string `json:"pix_expires_at"`
		} `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.OrderNumber, "NSR-")
	assert.Equal(t, "pending", response.Status)
	assert.Equal(t, "pix", response.Payment.Method)
	assert.Equal(t, "00020126pix-copia-e-cola", response.Payment.PixQrCode)

	// a expiração do QR sai como timestamp RFC 3339
	expiresAt, err := time.Parse(time.RFC3339, response.Payment.PixExpiresAt)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))
}

func TestOrderController_CreateOrder_StockShortfall(t *testing.T) {
	env := setupOrderControllerTest(t)

	product := seedControllerProduct(t, env.db, "Camiseta Básica", 79.90, 2)

	w := jsonRequest(t, env.router, "POST", "/orders", env.orderPayload(product, 5), env.token)

	// a validação estrutural do carrinho barra antes do débito de estoque
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "acima do estoque disponível")
}

func TestOrderController_CreateOrder_Validation(t *testing.T) {
	env := setupOrderControllerTest(t)

	product := seedControllerProduct(t, env.db, "Camiseta Básica", 79.90, 10)

	t.Run("requires authentication", func(t *testing.T) {
		w := jsonRequest(t, env.router, "POST", "/orders", env.orderPayload(product, 1), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing shipping method fails binding", func(t *testing.T) {
		payload := env.orderPayload(product, 1)
		payload.ShippingMethodID = 0
		w := jsonRequest(t, env.router, "POST", "/orders", payload, env.token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("card without encrypted data", func(t *testing.T) {
		payload := env.orderPayload(product, 1)
		payload.PaymentMethod = model.PaymentMethodCreditCard
		w := jsonRequest(t, env.router, "POST", "/orders", payload, env.token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "cartão")
	})

	t.Run("foreign address", func(t *testing.T) {
		other := &model.User{
			Email: "bruno@example.com", PasswordHash: "hash", Name: "Bruno Lima", Role: model.RoleUser,
		}
		require.NoError(t, env.db.Create(other).Error)
		foreign := &model.Address{
			UserID: other.ID, Recipient: "Bruno Lima", ZipCode: "01310100",
			Street: "Avenida Paulista", Number: "900", City: "São Paulo", State: "SP",
		}
		require.NoError(t, env.db.Create(foreign).Error)

		payload := env.orderPayload(product, 1)
		payload.AddressID = foreign.ID
		w := jsonRequest(t, env.router, "POST", "/orders", payload, env.token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestOrderController_GetOrders(t *testing.T) {
	env := setupOrderControllerTest(t)

	product := seedControllerProduct(t, env.db, "Camiseta Básica", 79.90, 10)

	w := jsonRequest(t, env.router, "POST", "/orders", env.orderPayload(product, 1), env.token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = jsonRequest(t, env.router, "GET", "/orders", nil, env.token)
	assert.Equal(t, http.StatusOK, w.Code)

	var listResponse struct {
		Orders []model.Order `json:"orders"`
		Count  int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResponse))
	assert.Equal(t, 1, listResponse.Count)
	require.Len(t, listResponse.Orders, 1)

	orderID := listResponse.Orders[0].ID

	w = jsonRequest(t, env.router, "GET", "/orders/"+itoa(orderID), nil, env.token)
	assert.Equal(t, http.StatusOK, w.Code)

	// pedido de outro usuário não aparece
	_, otherToken := seedControllerUser(t, env.db, "bruno@example.com", model.RoleUser)
	w = jsonRequest(t, env.router, "GET", "/orders/"+itoa(orderID), nil, otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_RetryPayment(t *testing.T) {
	env := setupOrderControllerTest(t)

	product := seedControllerProduct(t, env.db, "Tênis Urbano", 249.90, 5)

	// primeira tentativa com cartão recusado
	declined := &pagbank.OrderResponse{
		ID:      "ORDE_1",
		Charges: []pagbank.Charge{{ID: "CHAR_1", Status: "DECLINED"}},
	}
	declined.Charges[0].PaymentResponse.Message = "saldo insuficiente"
	env.gateway.resp = declined

	payload := env.orderPayload(product, 1)
	payload.PaymentMethod = model.PaymentMethodCreditCard
	payload.CreditCard = &CreditCardRequest{
		Encrypted:  "encrypted-card-blob",
		HolderName: "Ana Souza",
		HolderCPF:  "52998224725",
	}

	w := jsonRequest(t, env.router, "POST", "/orders", payload, env.token)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Order struct {
			ID uint `json:"id"`
		} `json:"order"`
		Payment struct {
			Status        string `json:"status"`
			FailureReason string `json:"failure_reason"`
		} `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "failed", created.Payment.Status)
	assert.Equal(t, "saldo insuficiente", created.Payment.FailureReason)

	// nova tentativa via PIX
	env.gateway.resp = &pagbank.OrderResponse{
		ID:      "ORDE_2",
		QRCodes: []pagbank.QRCode{{ID: "QRCO_2", Text: "00020126pix-retry"}},
	}

	w = jsonRequest(t, env.router, "POST", "/orders/"+itoa(created.Order.ID)+"/retry-payment", RetryPaymentRequest{
		PaymentMethod: model.PaymentMethodPix,
	}, env.token)
	assert.Equal(t, http.StatusOK, w.Code)

	var retried struct {
		Payment struct {
			Method    string `json:"method"`
			Status    string `json:"status"`
			PixQrCode string `json:"pix_qr_code"`
		} `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &retried))
	assert.Equal(t, "pix", retried.Payment.Method)
	assert.Equal(t, "pending", retried.Payment.Status)
	assert.Equal(t, "00020126pix-retry", retried.Payment.PixQrCode)
}

func TestOrderController_GetPaymentStatus(t *testing.T) {
	env := setupOrderControllerTest(t)

	product := seedControllerProduct(t, env.db, "Camiseta Básica", 79.90, 10)

	w := jsonRequest(t, env.router, "POST", "/orders", env.orderPayload(product, 1), env.token)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Order struct {
			ID uint `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = jsonRequest(t, env.router, "GET", "/orders/"+itoa(created.Order.ID)+"/payment-status", nil, env.token)
	assert.Equal(t, http.StatusOK, w.Code)

	var status struct {
		Status       string  `json:"status"`
		PixExpiresAt *string `json:"pix_expires_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "pending", status.Status)
	assert.NotNil(t, status.PixExpiresAt)

	w = jsonRequest(t, env.router, "GET", "/orders/9999/payment-status", nil, env.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_UpdateOrderStatus(t *testing.T) {
	env := setupOrderControllerTest(t)

	product := seedControllerProduct(t, env.db, "Camiseta Básica", 79.90, 10)

	w := jsonRequest(t, env.router, "POST", "/orders", env.orderPayload(product, 1), env.token)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Order struct {
			ID uint `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	_, adminToken := seedControllerUser(t, env.db, "admin@example.com", model.RoleAdmin)

	t.Run("admin updates fulfillment status", func(t *testing.T) {
		w := jsonRequest(t, env.router, "PUT", "/admin/orders/"+itoa(created.Order.ID)+"/status", UpdateOrderStatusRequest{
			Status: model.OrderStatusShipped,
		}, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)

		var order model.Order
		require.NoError(t, env.db.First(&order, created.Order.ID).Error)
		assert.Equal(t, model.OrderStatusShipped, order.Status)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		w := jsonRequest(t, env.router, "PUT", "/admin/orders/"+itoa(created.Order.ID)+"/status", map[string]string{
			"status": "teleportado",
		}, adminToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		w := jsonRequest(t, env.router, "PUT", "/admin/orders/"+itoa(created.Order.ID)+"/status", UpdateOrderStatusRequest{
			Status: model.OrderStatusCancelled,
		}, env.token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
