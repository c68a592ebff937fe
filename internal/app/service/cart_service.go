package service

import (
	"errors"
	"fmt"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound  = errors.New("item do carrinho não encontrado")
	ErrProductNotFound   = errors.New("produto não encontrado")
	ErrInvalidVariant    = errors.New("variação de produto inválida")
	ErrInsufficientStock = errors.New("estoque insuficiente")
)

// CheckoutCartItem é a linha de carrinho submetida à validação de checkout.
type CheckoutCartItem struct {
	ProductID uint   `json:"product_id"`
	VariantID *uint  `json:"variant_id,omitempty"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

type CartService interface {
	GetUserCart(userID uint) ([]model.CartItem, error)
	AddToCart(userID, productID uint, variantID *uint, quantity int) error
	UpdateCartItem(userID, cartItemID uint, quantity int) error
	RemoveFromCart(userID, cartItemID uint) error
	ClearCart(userID uint) error
	ValidateCartItemsForCheckout(items []CheckoutCartItem) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetUserCart(userID uint) ([]model.CartItem, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User cart fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(cartItems),
	})
	return cartItems, nil
}

func (s *cartService) AddToCart(userID, productID uint, variantID *uint, quantity int) error {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"variant_id": variantID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		return fmt.Errorf("quantidade inválida: %d", quantity)
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}

	available := product.StockQuantity
	if variantID != nil {
		variant, err := s.productRepo.FindVariantByID(*variantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product variant not found", map[string]interface{}{
					"variant_id": *variantID,
				})
				return ErrInvalidVariant
			}
			return err
		}
		if variant.ProductID != productID {
			logger.Warn("Product variant mismatch", map[string]interface{}{
				"product_id": productID,
				"variant_id": *variantID,
			})
			return ErrInvalidVariant
		}
		available = variant.StockQuantity
	}

	// soma com a quantidade já presente no carrinho
	existing, err := s.cartRepo.FindByUserProductVariant(userID, productID, variantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}

	newQuantity := quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if newQuantity > available {
		logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  newQuantity,
			"available":  available,
		})
		return ErrInsufficientStock
	}

	if existing != nil {
		existing.Quantity = newQuantity
		return s.cartRepo.Update(existing)
	}

	return s.cartRepo.Create(&model.CartItem{
		UserID:    userID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
	})
}

func (s *cartService) UpdateCartItem(userID, cartItemID uint, quantity int) error {
	logger.Info("Updating cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
		"quantity":     quantity,
	})

	if quantity <= 0 {
		return fmt.Errorf("quantidade inválida: %d", quantity)
	}

	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	if cartItem.UserID != userID {
		logger.Warn("Cart item ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
		})
		return ErrCartItemNotFound
	}

	available := cartItem.Product.StockQuantity
	if cartItem.Variant != nil {
		available = cartItem.Variant.StockQuantity
	}
	if quantity > available {
		logger.Warn("Cannot update cart item: insufficient stock", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
			"requested":    quantity,
			"available":    available,
		})
		return ErrInsufficientStock
	}

	cartItem.Quantity = quantity
	return s.cartRepo.Update(cartItem)
}

func (s *cartService) RemoveFromCart(userID, cartItemID uint) error {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
	})

	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	if cartItem.UserID != userID {
		return ErrCartItemNotFound
	}

	return s.cartRepo.Delete(cartItemID)
}

func (s *cartService) ClearCart(userID uint) error {
	logger.Info("Clearing user cart", map[string]interface{}{
		"user_id": userID,
	})
	return s.cartRepo.DeleteByUserID(userID)
}

// ValidateCartItemsForCheckout valida estruturalmente as linhas do carrinho
// antes de qualquer chamada ao gateway. Cada falha tem uma mensagem própria
// para o painel de erro do checkout.
func (s *cartService) ValidateCartItemsForCheckout(items []CheckoutCartItem) error {
	if len(items) == 0 {
		return errors.New("o carrinho está vazio")
	}

	for i, item := range items {
		if item.ProductID == 0 {
			return fmt.Errorf("item %d do carrinho sem produto", i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("quantidade inválida para o item %d", i+1)
		}

		product, err := s.productRepo.FindByID(item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("produto %d não encontrado", item.ProductID)
			}
			return err
		}

		// produto com variantes exige tamanho selecionado
		if len(product.Variants) > 0 {
			if item.Size == "" && item.VariantID == nil {
				return fmt.Errorf("selecione um tamanho para %s", product.Name)
			}

			variant := resolveVariant(product, item)
			if variant == nil {
				return fmt.Errorf("tamanho indisponível para %s", product.Name)
			}
			if variant.StockQuantity == 0 {
				return fmt.Errorf("%s está sem estoque no tamanho %s", product.Name, variant.Size)
			}
			if item.Quantity > variant.StockQuantity {
				return fmt.Errorf("quantidade de %s acima do estoque disponível (%d)", product.Name, variant.StockQuantity)
			}
			continue
		}

		if product.StockQuantity == 0 {
			return fmt.Errorf("%s está sem estoque", product.Name)
		}
		if item.Quantity > product.StockQuantity {
			return fmt.Errorf("quantidade de %s acima do estoque disponível (%d)", product.Name, product.StockQuantity)
		}
	}
	return nil
}

// resolveVariant localiza a variante pelo ID ou, na falta dele, pelo tamanho.
func resolveVariant(product *model.Product, item CheckoutCartItem) *model.ProductVariant {
	for i := range product.Variants {
		v := &product.Variants[i]
		if item.VariantID != nil && v.ID == *item.VariantID {
			return v
		}
		if item.VariantID == nil && item.Size != "" && v.Size == item.Size {
			return v
		}
	}
	return nil
}
