package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductVariant struct {
	ID              uint           `gorm:"primarykey" json:"id"`              // ID da variante
	ProductID       uint           `gorm:"index;not null" json:"product_id"`  // produto pai
	Size            string         `gorm:"size:10;not null" json:"size"`      // tamanho (P, M, G, 38, 40...)
	Color           string         `gorm:"size:50" json:"color"`              // cor
	AdditionalPrice float64        `gorm:"default:0" json:"additional_price"` // acréscimo sobre o preço base
	StockQuantity   int            `gorm:"default:0" json:"stock_quantity"`   // estoque da variante
	SKU             string         `gorm:"size:50;index" json:"sku"`          // código interno
	CreatedAt       time.Time      `json:"created_at"`                        // criação
	UpdatedAt       time.Time      `json:"updated_at"`                        // última atualização
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                    // exclusão lógica

	Product Product `gorm:"foreignKey:ProductID" json:"-"` // produto pai
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
