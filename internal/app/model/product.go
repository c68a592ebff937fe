package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryClothing    ProductCategory = "clothing"
	CategoryAccessories ProductCategory = "accessories"
	CategoryFootwear    ProductCategory = "footwear"
)

type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         float64         `gorm:"not null" json:"price"`
	Weight        float64         `json:"weight"` // peso em kg, usado no cálculo de frete
	Category      ProductCategory `gorm:"type:varchar(50)" json:"category"`
	StockQuantity int             `gorm:"default:0" json:"stock_quantity"` // estoque para produtos sem variantes
	Images        pq.StringArray  `gorm:"type:text[]" json:"images"`
	IsActive      bool            `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Variants   []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	OrderItems []OrderItem      `gorm:"foreignKey:ProductID" json:"-"`
	CartItems  []CartItem       `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
