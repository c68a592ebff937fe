package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/db"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthControllerTest(t *testing.T) (*gin.Engine, service.AuthService) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)

	ctrl := NewAuthController(authService, 15*time.Minute)
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	router.POST("/register", ctrl.Register)
	router.POST("/login", ctrl.Login)
	router.GET("/me", authMiddleware.Authenticate(), ctrl.Me)
	router.PUT("/profile", authMiddleware.Authenticate(), ctrl.UpdateProfile)

	return router, authService
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthController_Register_Success(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	w := postJSON(t, router, "/register", RegisterRequest{
		Email:    "ana@example.com",
		Password: "senhasegura1",
		Name:     "Ana Souza",
		CPF:      "529.982.247-25",
		Phone:    "(11) 98765-4321",
	}, "")

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotNil(t, response["user"])
	assert.NotNil(t, response["tokens"])

	user := response["user"].(map[string]interface{})
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "52998224725", user["cpf"])
}

func TestAuthController_Register_Validation(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	t.Run("invalid email", func(t *testing.T) {
		w := postJSON(t, router, "/register", RegisterRequest{
			Email: "nao-e-email", Password: "senhasegura1", Name: "Ana Souza",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		w := postJSON(t, router, "/register", RegisterRequest{
			Email: "ana@example.com", Password: "curta", Name: "Ana Souza",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid CPF", func(t *testing.T) {
		w := postJSON(t, router, "/register", RegisterRequest{
			Email: "ana@example.com", Password: "senhasegura1", Name: "Ana Souza",
			CPF: "529.982.247-26",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "CPF inválido")
	})
}

func TestAuthController_Register_DuplicateEmail(t *testing.T) {
	router, authService := setupAuthControllerTest(t)

	_, _, err := authService.Register("ana@example.com", "senhasegura1", "Ana Souza", "", "")
	require.NoError(t, err)

	w := postJSON(t, router, "/register", RegisterRequest{
		Email: "ana@example.com", Password: "outrasenha1", Name: "Outra Ana",
	}, "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "e-mail já cadastrado")
}

func TestAuthController_Login(t *testing.T) {
	router, authService := setupAuthControllerTest(t)

	_, _, err := authService.Register("ana@example.com", "senhasegura1", "Ana Souza", "", "")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		w := postJSON(t, router, "/login", LoginRequest{
			Email: "ana@example.com", Password: "senhasegura1",
		}, "")

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotNil(t, response["tokens"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(t, router, "/login", LoginRequest{
			Email: "ana@example.com", Password: "senhaerrada1",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "e-mail ou senha incorretos")
	})

	t.Run("unknown email", func(t *testing.T) {
		w := postJSON(t, router, "/login", LoginRequest{
			Email: "ninguem@example.com", Password: "senhasegura1",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthController_Me(t *testing.T) {
	router, authService := setupAuthControllerTest(t)

	_, tokens, err := authService.Register("ana@example.com", "senhasegura1", "Ana Souza", "", "")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	user := response["user"].(map[string]interface{})
	assert.Equal(t, "ana@example.com", user["email"])

	// sem token não há perfil
	req = httptest.NewRequest("GET", "/me", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_UpdateProfile(t *testing.T) {
	router, authService := setupAuthControllerTest(t)

	_, tokens, err := authService.Register("ana@example.com", "senhasegura1", "Ana Souza", "", "")
	require.NoError(t, err)

	body, err := json.Marshal(UpdateProfileRequest{
		Name:  "Ana Souza Lima",
		Phone: "(11) 91234-5678",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/profile", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	user := response["user"].(map[string]interface{})
	assert.Equal(t, "Ana Souza Lima", user["name"])
	assert.Equal(t, "11912345678", user["phone"])
}
