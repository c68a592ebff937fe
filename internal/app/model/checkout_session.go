package model

import "time"

type CheckoutStep string // etapa do assistente de checkout

const (
	StepBuyer        CheckoutStep = "buyer"        // dados do comprador
	StepRecipient    CheckoutStep = "recipient"    // endereço e frete
	StepPayment      CheckoutStep = "payment"      // forma de pagamento
	StepConfirmation CheckoutStep = "confirmation" // revisão final
)

// CheckoutSteps in wizard order. Forward movement is strictly linear,
// backward movement is always allowed.
var CheckoutSteps = []CheckoutStep{StepBuyer, StepRecipient, StepPayment, StepConfirmation}

// BuyerInfo holds the first wizard step. Presence-only validation here;
// business validation happens at order creation.
type BuyerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
}

// RecipientInfo holds the delivery step: chosen address and shipping method.
type RecipientInfo struct {
	AddressID        uint `json:"address_id"`
	ShippingMethodID uint `json:"shipping_method_id"`
}

// PaymentInfo holds the chosen payment method. Card data never appears here,
// only the fact that credit card was selected.
type PaymentInfo struct {
	Method PaymentMethod `json:"method"`
}

// CheckoutSession is the server-side state of the checkout wizard. It lives
// in Redis under a per-user key with a TTL; abandoning the flow simply lets
// it expire with no database trace.
type CheckoutSession struct {
	UserID    uint           `json:"user_id"`
	Step      CheckoutStep   `json:"step"`
	Buyer     *BuyerInfo     `json:"buyer,omitempty"`
	Recipient *RecipientInfo `json:"recipient,omitempty"`
	Payment   *PaymentInfo   `json:"payment,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// StepIndex returns the position of s in the wizard, -1 when unknown.
func StepIndex(s CheckoutStep) int {
	for i, step := range CheckoutSteps {
		if step == s {
			return i
		}
	}
	return -1
}
