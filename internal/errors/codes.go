package errors

// Constantes de código de erro
// Formato: CATEGORIA_DETALHE
// O frontend mapeia mensagens a partir destes códigos

const (
	// ==================== Autenticação (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login necessário
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // e-mail ou senha incorretos
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expirado
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // token inválido
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token revogado (logout)
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // e-mail já cadastrado
	AuthInvalidCPF         = "AUTH_INVALID_CPF"         // CPF inválido

	// ==================== Autorização (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // sem permissão de acesso
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // somente administradores
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"     // somente o dono do recurso
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // perfil ausente no contexto

	// ==================== Validação (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // entrada inválida
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // ID inválido
	ValidationInvalidZip    = "VALIDATION_INVALID_ZIP"    // CEP inválido
	ValidationEmptyCart     = "VALIDATION_EMPTY_CART"     // carrinho vazio
	ValidationRequired      = "VALIDATION_REQUIRED"       // campo obrigatório
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"  // valor fora do intervalo

	// ==================== Recurso (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // recurso não encontrado
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // já existe
	ResourceConflict      = "RESOURCE_CONFLICT"       // conflito

	// ==================== Estoque (STOCK_) ====================
	StockUnavailable = "STOCK_UNAVAILABLE" // itens sem estoque suficiente

	// ==================== Frete (SHIPPING_) ====================
	ShippingMethodNotFound = "SHIPPING_METHOD_NOT_FOUND" // método inexistente ou inativo

	// ==================== Pedido (ORDER_) ====================
	OrderNotFound       = "ORDER_NOT_FOUND"        // pedido não encontrado
	OrderNotPending     = "ORDER_NOT_PENDING"      // pedido não está aguardando pagamento
	OrderInvalidPayment = "ORDER_INVALID_PAYMENT"  // forma de pagamento inválida

	// ==================== Pagamento (PAYMENT_) ====================
	PaymentGatewayError   = "PAYMENT_GATEWAY_ERROR"   // falha no PSP
	PaymentCardValidation = "PAYMENT_CARD_VALIDATION" // dados do cartão recusados
	PaymentExpired        = "PAYMENT_EXPIRED"         // QR code PIX expirado

	// ==================== Endereço (ADDRESS_) ====================
	AddressNotFound = "ADDRESS_NOT_FOUND" // endereço não encontrado

	// ==================== Cupom (COUPON_) ====================
	CouponNotFound = "COUPON_NOT_FOUND" // cupom inexistente ou expirado

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutSessionNotFound = "CHECKOUT_SESSION_NOT_FOUND" // sessão expirada ou inexistente
	CheckoutStepIncomplete  = "CHECKOUT_STEP_INCOMPLETE"   // etapa anterior incompleta
	CheckoutInvalidStep     = "CHECKOUT_INVALID_STEP"      // etapa desconhecida ou salto adiante

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // tipo de arquivo não permitido
	UploadFailed          = "UPLOAD_FAILED"            // falha no upload

	// ==================== Interno (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // erro do servidor
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // erro de banco
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // erro em API externa
)
