package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/db"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const controllerTestSecret = "test-secret"

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func seedControllerUser(t *testing.T, testDB *gorm.DB, email string, role model.UserRole) (*model.User, string) {
	user := &model.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		Name:         "Ana Souza",
		Role:         role,
	}
	require.NoError(t, testDB.Create(user).Error)

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, string(user.Role),
		controllerTestSecret,
		15*time.Minute, 7*24*time.Hour,
	)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func seedControllerProduct(t *testing.T, testDB *gorm.DB, name string, price float64, stock int) *model.Product {
	product := &model.Product{
		Name:          name,
		Price:         price,
		Category:      model.CategoryClothing,
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func jsonRequest(t *testing.T, router *gin.Engine, method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func setupCartControllerTest(t *testing.T) (*gin.Engine, *gorm.DB, string) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := service.NewCartService(cartRepo, productRepo)
	stockService := service.NewStockService(productRepo)

	ctrl := NewCartController(cartService, stockService)
	authMiddleware := middleware.NewAuthMiddleware(controllerTestSecret)

	router := gin.New()
	cart := router.Group("/cart", authMiddleware.Authenticate())
	{
		cart.GET("", ctrl.GetCart)
		cart.POST("/items", ctrl.AddToCart)
		cart.PUT("/items/:id", ctrl.UpdateCartItem)
		cart.DELETE("/items/:id", ctrl.RemoveFromCart)
		cart.DELETE("", ctrl.ClearCart)
		cart.POST("/validate", ctrl.ValidateCart)
	}

	_, token := seedControllerUser(t, testDB, "ana@example.com", model.RoleUser)
	return router, testDB, token
}

func TestCartController_AddAndGet(t *testing.T) {
	router, testDB, token := setupCartControllerTest(t)

	product := seedControllerProduct(t, testDB, "Camiseta Básica", 79.90, 10)

	w := jsonRequest(t, router, "POST", "/cart/items", AddToCartRequest{
		ProductID: product.ID,
		Quantity:  2,
	}, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = jsonRequest(t, router, "GET", "/cart", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Items []model.CartItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Items, 1)
	assert.Equal(t, product.ID, response.Items[0].ProductID)
	assert.Equal(t, 2, response.Items[0].Quantity)
	assert.Equal(t, "Camiseta Básica", response.Items[0].Product.Name)
}

func TestCartController_AddToCart_Errors(t *testing.T) {
	router, testDB, token := setupCartControllerTest(t)

	product := seedControllerProduct(t, testDB, "Camiseta Básica", 79.90, 2)

	t.Run("requires authentication", func(t *testing.T) {
		w := jsonRequest(t, router, "POST", "/cart/items", AddToCartRequest{
			ProductID: product.ID, Quantity: 1,
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("zero quantity fails binding", func(t *testing.T) {
		w := jsonRequest(t, router, "POST", "/cart/items", map[string]interface{}{
			"product_id": product.ID, "quantity": 0,
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := jsonRequest(t, router, "POST", "/cart/items", AddToCartRequest{
			ProductID: 9999, Quantity: 1,
		}, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		w := jsonRequest(t, router, "POST", "/cart/items", AddToCartRequest{
			ProductID: product.ID, Quantity: 5,
		}, token)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "estoque insuficiente")
	})
}

func TestCartController_UpdateAndRemove(t *testing.T) {
	router, testDB, token := setupCartControllerTest(t)

	product := seedControllerProduct(t, testDB, "Camiseta Básica", 79.90, 10)

	w := jsonRequest(t, router, "POST", "/cart/items", AddToCartRequest{
		ProductID: product.ID, Quantity: 1,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var item model.CartItem
	require.NoError(t, testDB.First(&item).Error)

	w = jsonRequest(t, router, "PUT", "/cart/items/"+itoa(item.ID), UpdateCartItemRequest{
		Quantity: 4,
	}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, testDB.First(&item, item.ID).Error)
	assert.Equal(t, 4, item.Quantity)

	w = jsonRequest(t, router, "DELETE", "/cart/items/"+itoa(item.ID), nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	err := testDB.First(&model.CartItem{}, item.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// item inexistente
	w = jsonRequest(t, router, "DELETE", "/cart/items/9999", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_ClearCart(t *testing.T) {
	router, testDB, token := setupCartControllerTest(t)

	product := seedControllerProduct(t, testDB, "Camiseta Básica", 79.90, 10)
	other := seedControllerProduct(t, testDB, "Tênis Urbano", 249.90, 5)

	for _, p := range []*model.Product{product, other} {
		w := jsonRequest(t, router, "POST", "/cart/items", AddToCartRequest{
			ProductID: p.ID, Quantity: 1,
		}, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := jsonRequest(t, router, "DELETE", "/cart", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, testDB.Model(&model.CartItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCartController_ValidateCart(t *testing.T) {
	router, testDB, token := setupCartControllerTest(t)

	product := seedControllerProduct(t, testDB, "Camiseta Básica", 79.90, 5)

	w := jsonRequest(t, router, "POST", "/cart/items", AddToCartRequest{
		ProductID: product.ID, Quantity: 3,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = jsonRequest(t, router, "POST", "/cart/validate", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Available        bool                      `json:"available"`
		UnavailableItems []service.UnavailableItem `json:"unavailable_items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Available)
	assert.Empty(t, response.UnavailableItems)

	// estoque caiu depois que o item entrou no carrinho
	require.NoError(t, testDB.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Update("stock_quantity", 1).Error)

	w = jsonRequest(t, router, "POST", "/cart/validate", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Available)
	require.Len(t, response.UnavailableItems, 1)
	assert.Equal(t, product.ID, response.UnavailableItems[0].ProductID)
	assert.Equal(t, 3, response.UnavailableItems[0].RequestedQuantity)
	assert.Equal(t, 1, response.UnavailableItems[0].AvailableQuantity)
}
