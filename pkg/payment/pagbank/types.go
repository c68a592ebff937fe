package pagbank

import "fmt"

// Amount is a monetary value in centavos
type Amount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency,omitempty"`
}

// Customer identifies the buyer on an order
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	TaxID string `json:"tax_id"` // CPF, somente dígitos
}

// Item is an order line item
type Item struct {
	ReferenceID string `json:"reference_id,omitempty"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	UnitAmount  int64  `json:"unit_amount"`
}

// CardHolder identifies the card owner
type CardHolder struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id,omitempty"`
}

// EncryptedCard carries the opaque blob produced by the Encryptor. The raw
// PAN never appears in this struct.
type EncryptedCard struct {
	Encrypted string     `json:"encrypted"`
	Holder    CardHolder `json:"holder"`
	Store     bool       `json:"store,omitempty"`
}

// Boleto describes a boleto payment slip request
type Boleto struct {
	DueDate string     `json:"due_date"` // YYYY-MM-DD
	Holder  CardHolder `json:"holder"`
}

// PaymentMethod is the charge payment selection
type PaymentMethod struct {
	Type         string         `json:"type"` // CREDIT_CARD | BOLETO
	Installments int            `json:"installments,omitempty"`
	Capture      bool           `json:"capture,omitempty"`
	Card         *EncryptedCard `json:"card,omitempty"`
	Boleto       *Boleto        `json:"boleto,omitempty"`
}

// ChargeRequest creates a charge inside an order (credit card or boleto)
type ChargeRequest struct {
	ReferenceID   string        `json:"reference_id,omitempty"`
	Description   string        `json:"description,omitempty"`
	Amount        Amount        `json:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// QRCodeRequest creates a PIX QR code inside an order
type QRCodeRequest struct {
	Amount         Amount `json:"amount"`
	ExpirationDate string `json:"expiration_date"` // RFC3339
}

// OrderRequest represents the request body for the Orders API
type OrderRequest struct {
	ReferenceID      string          `json:"reference_id"`
	Customer         Customer        `json:"customer"`
	Items            []Item          `json:"items"`
	QRCodes          []QRCodeRequest `json:"qr_codes,omitempty"`
	Charges          []ChargeRequest `json:"charges,omitempty"`
	NotificationURLs []string        `json:"notification_urls,omitempty"`
}

// PaymentResponse is the PSP's acquirer-level result for a charge
type PaymentResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Charge is a charge inside an order response. Status is one of
// AUTHORIZED, PAID, WAITING, DECLINED, CANCELED.
type Charge struct {
	ID              string          `json:"id"`
	ReferenceID     string          `json:"reference_id"`
	Status          string          `json:"status"`
	Amount          Amount          `json:"amount"`
	PaymentResponse PaymentResponse `json:"payment_response"`
	PaidAt          string          `json:"paid_at,omitempty"`
	PaymentMethod   struct {
		Type string `json:"type"`
		Card struct {
			Brand      string `json:"brand"`
			LastDigits string `json:"last_digits"`
		} `json:"card"`
		Boleto struct {
			Barcode          string `json:"barcode"`
			FormattedBarcode string `json:"formatted_barcode"`
			DueDate          string `json:"due_date"`
		} `json:"boleto"`
	} `json:"payment_method"`
}

// QRCode is a PIX QR code inside an order response
type QRCode struct {
	ID             string `json:"id"`
	Text           string `json:"text"` // payload copia-e-cola
	Amount         Amount `json:"amount"`
	ExpirationDate string `json:"expiration_date"`
}

// OrderResponse represents the response from the Orders API
type OrderResponse struct {
	ID          string   `json:"id"`
	ReferenceID string   `json:"reference_id"`
	CreatedAt   string   `json:"created_at"`
	Customer    Customer `json:"customer"`
	Charges     []Charge `json:"charges"`
	QRCodes     []QRCode `json:"qr_codes"`
}

// PayRequest re-runs the payment step on an existing PSP order (retry)
type PayRequest struct {
	Charges []ChargeRequest `json:"charges,omitempty"`
	QRCodes []QRCodeRequest `json:"qr_codes,omitempty"`
}

// PublicKeyResponse is the RSA public key used for card encryption
type PublicKeyResponse struct {
	PublicKey string `json:"public_key"` // base64 DER
	CreatedAt int64  `json:"created_at"`
}

// WebhookEvent is the notification payload posted to the notification URL
type WebhookEvent struct {
	ID      string   `json:"id"`
	Charges []Charge `json:"charges"`
}

// ErrorResponse represents an error response from the PagBank API
type ErrorResponse struct {
	ErrorMessages []struct {
		Code          string `json:"code"`
		Description   string `json:"description"`
		ParameterName string `json:"parameter_name"`
	} `json:"error_messages"`
}

func (e *ErrorResponse) Error() string {
	if len(e.ErrorMessages) == 0 {
		return "pagbank error"
	}
	first := e.ErrorMessages[0]
	return fmt.Sprintf("pagbank error: code=%s, description=%s, parameter=%s",
		first.Code, first.Description, first.ParameterName)
}

// FieldErrors converts the PSP error list into field-level messages
func (e *ErrorResponse) FieldErrors() []FieldError {
	fields := make([]FieldError, 0, len(e.ErrorMessages))
	for _, m := range e.ErrorMessages {
		fields = append(fields, FieldError{Field: m.ParameterName, Message: m.Description})
	}
	return fields
}
