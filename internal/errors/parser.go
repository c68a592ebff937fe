package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo informação de erro já traduzida
type ErrorInfo struct {
	Code    string // código do erro (ver codes.go)
	Message string // mensagem amigável ao usuário
}

// ParseError converte um erro em código + mensagem amigável
// Esconde detalhes sensíveis mas dá ao usuário informação suficiente para agir
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "ocorreu um erro no servidor",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. Erros básicos do GORM
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. Erros do PostgreSQL

	// 2-1. Violação de unique constraint (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr, context)
	}

	// 2-2. Violação de foreign key (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr, context)
	}

	// 2-3. Violação de not null (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return parseNotNullError(errStr, context)
	}

	// 2-4. Violação de check constraint (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return parseCheckConstraintError(errStr, context)
	}

	// 3. Erros de rede/conexão
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "falha ao conectar com o serviço externo. tente novamente em instantes",
		}
	}

	// 4. Erro interno padrão
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// parseDuplicateKeyError parsing de violação de unique constraint
func parseDuplicateKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// e-mail duplicado
	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "este e-mail já está cadastrado",
		}
	}

	// CPF duplicado
	if strings.Contains(errLower, "cpf") || strings.Contains(errLower, "idx_users_cpf") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "este CPF já está cadastrado",
		}
	}

	// SKU de variação duplicado
	if strings.Contains(errLower, "sku") || strings.Contains(errLower, "idx_product_variants_sku") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "já existe uma variação com este SKU",
		}
	}

	// número de pedido duplicado
	if strings.Contains(errLower, "order_number") || strings.Contains(errLower, "idx_orders_order_number") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "conflito ao gerar o número do pedido. tente novamente",
		}
	}

	// código de cupom duplicado
	if strings.Contains(errLower, "coupons") && strings.Contains(errLower, "code") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "já existe um cupom com este código",
		}
	}

	// primary key duplicada
	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "este registro já existe. tente novamente",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "este registro já existe",
	}
}

// parseForeignKeyError parsing de violação de foreign key
func parseForeignKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// exclusão bloqueada por registros dependentes
	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		if strings.Contains(context, "product") || strings.Contains(context, "produto") {
			return ErrorInfo{
				Code:    ResourceConflict,
				Message: "o produto possui pedidos vinculados e não pode ser excluído",
			}
		}
		if strings.Contains(context, "address") || strings.Contains(context, "endereço") {
			return ErrorInfo{
				Code:    ResourceConflict,
				Message: "o endereço está vinculado a pedidos e não pode ser excluído",
			}
		}
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "existem registros vinculados que impedem a exclusão",
		}
	}

	// referência a registro inexistente
	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "usuário inexistente",
		}
	}
	if strings.Contains(errLower, "product_id") || strings.Contains(errLower, "fk_products") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "produto inexistente",
		}
	}
	if strings.Contains(errLower, "address_id") || strings.Contains(errLower, "fk_addresses") {
		return ErrorInfo{
			Code:    AddressNotFound,
			Message: "endereço inexistente",
		}
	}
	if strings.Contains(errLower, "order_id") || strings.Contains(errLower, "fk_orders") {
		return ErrorInfo{
			Code:    OrderNotFound,
			Message: "pedido inexistente",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "registro referenciado não encontrado",
	}
}

// parseNotNullError parsing de violação de not null
func parseNotNullError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: ValidationRequired, Message: "o e-mail é obrigatório"}
	}
	if strings.Contains(errLower, "password") {
		return ErrorInfo{Code: ValidationRequired, Message: "a senha é obrigatória"}
	}
	if strings.Contains(errLower, "name") {
		return ErrorInfo{Code: ValidationRequired, Message: "o nome é obrigatório"}
	}
	if strings.Contains(errLower, "zip_code") {
		return ErrorInfo{Code: ValidationRequired, Message: "o CEP é obrigatório"}
	}

	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "há campos obrigatórios não preenchidos",
	}
}

// parseCheckConstraintError parsing de violação de check constraint
func parseCheckConstraintError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "quantity") {
		return ErrorInfo{
			Code:    ValidationInvalidRange,
			Message: "a quantidade deve ser maior que zero",
		}
	}

	if strings.Contains(errLower, "price") || strings.Contains(errLower, "total") {
		return ErrorInfo{
			Code:    ValidationInvalidRange,
			Message: "o valor informado é inválido",
		}
	}

	return ErrorInfo{
		Code:    ValidationInvalidInput,
		Message: "os dados informados são inválidos",
	}
}

// getNotFoundMessage mensagem de não encontrado conforme o contexto
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "product") || strings.Contains(contextLower, "produto") {
		return "produto não encontrado"
	}
	if strings.Contains(contextLower, "user") || strings.Contains(contextLower, "usuário") {
		return "usuário não encontrado"
	}
	if strings.Contains(contextLower, "order") || strings.Contains(contextLower, "pedido") {
		return "pedido não encontrado"
	}
	if strings.Contains(contextLower, "address") || strings.Contains(contextLower, "endereço") {
		return "endereço não encontrado"
	}
	if strings.Contains(contextLower, "cart") || strings.Contains(contextLower, "carrinho") {
		return "item do carrinho não encontrado"
	}
	if strings.Contains(contextLower, "coupon") || strings.Contains(contextLower, "cupom") {
		return "cupom não encontrado"
	}
	if strings.Contains(contextLower, "shipping") || strings.Contains(contextLower, "frete") {
		return "método de envio não encontrado"
	}

	return "o registro solicitado não foi encontrado"
}

// getDefaultErrorMessage mensagem de erro padrão conforme o contexto
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "criar") {
		return "erro ao criar o registro. tente novamente em instantes"
	}
	if strings.Contains(contextLower, "update") || strings.Contains(contextLower, "atualizar") {
		return "erro ao atualizar o registro. tente novamente em instantes"
	}
	if strings.Contains(contextLower, "delete") || strings.Contains(contextLower, "excluir") {
		return "erro ao excluir o registro. tente novamente em instantes"
	}
	if strings.Contains(contextLower, "checkout") || strings.Contains(contextLower, "payment") || strings.Contains(contextLower, "pagamento") {
		return "erro ao processar o pagamento. tente novamente em instantes"
	}

	return "ocorreu um erro no servidor. tente novamente em instantes"
}

// ParseAndRespond parseia o erro e escreve a resposta (helper)
// para uso direto nos controllers
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
