package model

import (
	"time"

	"gorm.io/gorm"
)

type ShippingMethod struct {
	ID          uint           `gorm:"primarykey" json:"id"`              // ID do método
	Name        string         `gorm:"size:100;not null" json:"name"`     // nome (ex: "Sedex", "PAC")
	Description string         `gorm:"size:200" json:"description"`       // descrição exibida no checkout
	BaseCost    float64        `gorm:"not null" json:"base_cost"`         // custo base até 1 kg
	CostPerKg   float64        `gorm:"default:0" json:"cost_per_kg"`      // custo por kg excedente
	FreeAbove   *float64       `json:"free_above,omitempty"`              // frete grátis a partir deste subtotal
	MinDays     int            `gorm:"not null" json:"min_days"`          // prazo mínimo (dias úteis)
	MaxDays     int            `gorm:"not null" json:"max_days"`          // prazo máximo (dias úteis)
	IsActive    bool           `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ShippingMethod) TableName() string {
	return "shipping_methods"
}
