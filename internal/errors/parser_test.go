package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		context     string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "record not found maps to resource message",
			err:         gorm.ErrRecordNotFound,
			context:     "GetProduct",
			wantCode:    ResourceNotFound,
			wantMessage: "produto não encontrado",
		},
		{
			name:        "nil error falls back to server error",
			err:         nil,
			context:     "",
			wantCode:    InternalServerError,
			wantMessage: "ocorreu um erro no servidor",
		},
		{
			name:        "network error maps to external API failure",
			err:         errors.New("dial tcp: connection refused"),
			context:     "CreateOrder",
			wantCode:    InternalExternalAPI,
			wantMessage: "falha ao conectar com o serviço externo. tente novamente em instantes",
		},
		{
			name:        "unknown error uses context default",
			err:         errors.New("falha inesperada"),
			context:     "CreateCoupon",
			wantCode:    InternalServerError,
			wantMessage: "erro ao criar o registro. tente novamente em instantes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.Equal(t, tt.wantMessage, info.Message)
		})
	}
}

func TestParseAndRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ParseAndRespond(c, http.StatusInternalServerError, errors.New("boom"), "ListCoupons")

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, InternalServerError, body.Error)
	assert.NotEmpty(t, body.Message)
}
