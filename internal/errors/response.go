package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse estrutura padrão de resposta de erro
type ErrorResponse struct {
	Error   string `json:"error"`   // código do erro (para mapeamento no frontend)
	Message string `json:"message"` // mensagem amigável ao usuário (português)
}

// RespondWithError helper de resposta de erro
// statusCode: código HTTP
// errorCode: constante de código de erro (ver codes.go)
// message: mensagem em português exibida ao usuário
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Atalhos para as respostas de erro mais frequentes

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "é necessário fazer login"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "você não tem permissão para acessar este recurso"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func UnprocessableEntity(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusUnprocessableEntity, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "ocorreu um erro no servidor. tente novamente em instantes"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationError erro de validação (opcional: erros por campo)
type ValidationError struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"` // mensagem de erro por campo
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationError{
		Error:   ValidationInvalidInput,
		Message: "os dados informados são inválidos",
		Fields:  fields,
	})
}
