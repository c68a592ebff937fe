package model

import (
	"time"

	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent" // percentual sobre o subtotal
	DiscountFixed   DiscountType = "fixed"   // valor fixo em reais
)

type Coupon struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Code         string         `gorm:"size:50;uniqueIndex;not null" json:"code"`
	DiscountType DiscountType   `gorm:"type:varchar(10);not null" json:"discount_type"`
	Value        float64        `gorm:"not null" json:"value"`
	MinSubtotal  float64        `gorm:"default:0" json:"min_subtotal"` // subtotal mínimo para aplicar
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
	IsActive     bool           `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// DiscountFor returns the discount amount for a given subtotal, zero when the
// coupon does not apply.
func (c *Coupon) DiscountFor(subtotal float64, now time.Time) float64 {
	if !c.IsActive || subtotal < c.MinSubtotal {
		return 0
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return 0
	}
	var discount float64
	switch c.DiscountType {
	case DiscountPercent:
		discount = subtotal * c.Value / 100
	case DiscountFixed:
		discount = c.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}
