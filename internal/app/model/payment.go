package model

import (
	"time"

	"gorm.io/gorm"
)

type PaymentMethod string // forma de pagamento

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card" // cartão de crédito (dados criptografados pelo PSP)
	PaymentMethodPix        PaymentMethod = "pix"         // PIX (QR code com expiração)
	PaymentMethodBoleto     PaymentMethod = "boleto"      // boleto bancário
)

// Payment records one payment attempt against an order. Card data is never
// stored raw: only the PSP charge reference, brand and last four digits.
type Payment struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                     // ID do pagamento
	OrderID         uint           `gorm:"not null;index" json:"order_id"`                           // pedido
	Method          PaymentMethod  `gorm:"type:varchar(20);not null" json:"method"`                  // forma de pagamento
	Status          PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"status"`         // estado
	Amount          float64        `gorm:"not null" json:"amount"`                                   // valor cobrado
	Active          bool           `gorm:"not null;index" json:"active"`                             // tentativa vigente (única por pedido)
	ProviderCharge  string         `gorm:"size:100;index" json:"provider_charge_id,omitempty"`       // ID da cobrança no PSP
	CardBrand       string         `gorm:"size:20" json:"card_brand,omitempty"`                      // bandeira (cartão)
	CardLastDigits  string         `gorm:"size:4" json:"card_last_digits,omitempty"`                 // últimos 4 dígitos
	PixQrCode       string         `gorm:"type:text" json:"pix_qr_code,omitempty"`                   // payload copia-e-cola
	PixQrCodeBase64 string         `gorm:"type:text" json:"pix_qr_code_base64,omitempty"`            // PNG do QR em base64
	PixExpiresAt    *time.Time     `json:"pix_expires_at,omitempty"`                                 // expiração do QR
	BoletoBarcode   string         `gorm:"size:100" json:"boleto_barcode,omitempty"`                 // linha digitável
	BoletoDueDate   *time.Time     `json:"boleto_due_date,omitempty"`                                // vencimento do boleto
	PaidAt          *time.Time     `json:"paid_at,omitempty"`                                        // confirmação
	FailureReason   string         `gorm:"type:text" json:"failure_reason,omitempty"`                // motivo da falha
	CreatedAt       time.Time      `json:"created_at"`                                               // criação
	UpdatedAt       time.Time      `json:"updated_at"`                                               // última atualização
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                           // exclusão lógica

	Order Order `gorm:"foreignKey:OrderID" json:"-"` // pedido
}

func (Payment) TableName() string {
	return "payments"
}

// Expired reports whether a PIX charge passed its QR expiry without payment.
func (p *Payment) Expired(now time.Time) bool {
	return p.Method == PaymentMethodPix &&
		p.Status == PaymentStatusPending &&
		p.PixExpiresAt != nil &&
		now.After(*p.PixExpiresAt)
}
