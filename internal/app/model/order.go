package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string   // estado do pedido
type PaymentStatus string // estado do pagamento (independente do pedido)

const (
	OrderStatusPending    OrderStatus = "pending"    // aguardando pagamento
	OrderStatusProcessing OrderStatus = "processing" // pagamento confirmado, em separação
	OrderStatusShipped    OrderStatus = "shipped"    // enviado
	OrderStatusDelivered  OrderStatus = "delivered"  // entregue
	OrderStatusCancelled  OrderStatus = "cancelled"  // cancelado

	PaymentStatusPending PaymentStatus = "pending" // aguardando confirmação
	PaymentStatusPaid    PaymentStatus = "paid"    // pago
	PaymentStatusFailed  PaymentStatus = "failed"  // recusado ou expirado
)

type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                     // ID do pedido
	OrderNumber     string         `gorm:"size:30;uniqueIndex;not null" json:"order_number"`         // número público (ex: NSR-20260115-A1B2C3)
	UserID          uint           `gorm:"not null;index" json:"user_id"`                            // comprador
	AddressID       uint           `gorm:"not null" json:"address_id"`                               // endereço de entrega
	Status          OrderStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`         // estado do pedido
	PaymentStatus   PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"payment_status"` // estado do pagamento
	Subtotal        float64        `gorm:"not null" json:"subtotal"`                                 // soma dos itens
	ShippingCost    float64        `gorm:"not null" json:"shipping_cost"`                            // frete
	Discount        float64        `gorm:"default:0" json:"discount"`                                // desconto de cupom
	Total           float64        `gorm:"not null" json:"total"`                                    // subtotal + frete - desconto
	ShippingName    string         `gorm:"size:100" json:"shipping_name"`                            // nome do método de frete (snapshot)
	ProviderOrderID string         `gorm:"size:100;index" json:"provider_order_id,omitempty"`        // ID do pedido no PSP
	CouponCode      string         `gorm:"size:50" json:"coupon_code,omitempty"`                     // cupom aplicado
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`                         // observações do comprador
	CreatedAt       time.Time      `json:"created_at"`                                               // criação
	UpdatedAt       time.Time      `json:"updated_at"`                                               // última atualização
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                           // exclusão lógica

	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`                                     // comprador
	Address    Address     `gorm:"foreignKey:AddressID" json:"address,omitempty"`                               // endereço de entrega
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"` // itens do pedido
	Payments   []Payment   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`    // tentativas de pagamento
}

func (Order) TableName() string {
	return "orders"
}

// ActivePayment returns the payment currently in effect for the order.
// Retries deactivate the previous record, so at most one is active.
func (o *Order) ActivePayment() *Payment {
	for i := range o.Payments {
		if o.Payments[i].Active {
			return &o.Payments[i]
		}
	}
	return nil
}

type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`              // ID do item
	OrderID   uint           `gorm:"not null;index" json:"order_id"`    // pedido
	ProductID uint           `gorm:"not null;index" json:"product_id"`  // produto
	VariantID *uint          `gorm:"index" json:"variant_id,omitempty"` // variante escolhida
	Quantity  int            `gorm:"not null" json:"quantity"`          // quantidade
	UnitPrice float64        `gorm:"not null" json:"unit_price"`        // preço unitário (snapshot)
	Size      string         `gorm:"size:10" json:"size,omitempty"`     // tamanho (snapshot)
	Color     string         `gorm:"size:50" json:"color,omitempty"`    // cor (snapshot)
	CreatedAt time.Time      `json:"created_at"`                        // criação
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                    // exclusão lógica

	Order   Order           `gorm:"foreignKey:OrderID" json:"-"`                   // pedido
	Product Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"` // produto
	Variant *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"` // variante
}

func (OrderItem) TableName() string {
	return "order_items"
}
