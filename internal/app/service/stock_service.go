package service

import (
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
)

// StockItem é uma linha do carrinho submetida à verificação de estoque.
type StockItem struct {
	ProductID uint  `json:"product_id"`
	VariantID *uint `json:"variant_id,omitempty"`
	Quantity  int   `json:"quantity"`
}

// UnavailableItem detalha a falta de estoque de uma linha.
type UnavailableItem struct {
	ProductID         uint   `json:"product_id"`
	ProductName       string `json:"product_name"`
	RequestedQuantity int    `json:"requested_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
}

// StockValidation é o resultado agregado da verificação.
type StockValidation struct {
	Available        bool              `json:"available"`
	UnavailableItems []UnavailableItem `json:"unavailable_items"`
}

// StockService faz a verificação prévia de estoque do carrinho.
// Nunca altera estoque: a baixa acontece atomicamente na criação do pedido.
type StockService interface {
	ValidateStock(items []StockItem) (*StockValidation, error)
}

type stockService struct {
	productRepo repository.ProductRepository
}

func NewStockService(productRepo repository.ProductRepository) StockService {
	return &stockService{productRepo: productRepo}
}

// ValidateStock compara cada linha com o estoque atual do produto ou da
// variante. Produto inexistente conta como disponibilidade zero, não como erro.
func (s *stockService) ValidateStock(items []StockItem) (*StockValidation, error) {
	logger.Debug("Validating stock for cart items", map[string]interface{}{
		"item_count": len(items),
	})

	ids := make([]uint, 0, len(items))
	seen := make(map[uint]bool)
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		logger.Error("Failed to fetch products for stock validation", err, map[string]interface{}{
			"product_ids": ids,
		})
		return nil, err
	}

	productByID := make(map[uint]*model.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}

	result := &StockValidation{Available: true}
	for _, item := range items {
		product, ok := productByID[item.ProductID]
		if !ok {
			result.Available = false
			result.UnavailableItems = append(result.UnavailableItems, UnavailableItem{
				ProductID:         item.ProductID,
				ProductName:       "",
				RequestedQuantity: item.Quantity,
				AvailableQuantity: 0,
			})
			continue
		}

		available := product.StockQuantity
		if item.VariantID != nil {
			available = 0
			for _, variant := range product.Variants {
				if variant.ID == *item.VariantID {
					available = variant.StockQuantity
					break
				}
			}
		}

		if item.Quantity > available {
			result.Available = false
			result.UnavailableItems = append(result.UnavailableItems, UnavailableItem{
				ProductID:         item.ProductID,
				ProductName:       product.Name,
				RequestedQuantity: item.Quantity,
				AvailableQuantity: available,
			})
		}
	}

	if !result.Available {
		logger.Warn("Stock validation found unavailable items", map[string]interface{}{
			"unavailable_count": len(result.UnavailableItems),
		})
	}
	return result, nil
}
