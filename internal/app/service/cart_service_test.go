package service

import (
	"testing"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := NewCartService(cartRepo, productRepo)

	user := &model.User{
		Email:        "ana@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Ana Souza",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)

	return cartService, testDB, user
}

func createTestProduct(t *testing.T, testDB *gorm.DB, name string, stock int) *model.Product {
	product := &model.Product{
		Name:          name,
		Price:         79.90,
		Category:      model.CategoryClothing,
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createTestVariant(t *testing.T, testDB *gorm.DB, productID uint, size string, stock int) *model.ProductVariant {
	variant := &model.ProductVariant{
		ProductID:     productID,
		Size:          size,
		StockQuantity: stock,
	}
	require.NoError(t, testDB.Create(variant).Error)
	return variant
}

func TestCartService_AddToCart(t *testing.T) {
	cartService, testDB, user := setupCartServiceTest(t)
	defer db.CleanupTestDB(testDB)

	product := createTestProduct(t, testDB, "Camiseta Básica", 10)

	err := cartService.AddToCart(user.ID, product.ID, nil, 2)
	require.NoError(t, err)

	// mesma linha: quantidades se somam
	err = cartService.AddToCart(user.ID, product.ID, nil, 3)
	require.NoError(t, err)

	items, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCartService_AddToCart_Errors(t *testing.T) {
	cartService, testDB, user := setupCartServiceTest(t)
	defer db.CleanupTestDB(testDB)

	product := createTestProduct(t, testDB, "Camiseta Básica", 2)
	other := createTestProduct(t, testDB, "Tênis Runner", 5)
	variant := createTestVariant(t, testDB, other.ID, "40", 3)

	tests := []struct {
		name      string
		productID uint
		variantID *uint
		quantity  int
		wantErr   error
	}{
		{
			name:      "Unknown product",
			productID: 9999,
			quantity:  1,
			wantErr:   ErrProductNotFound,
		},
		{
			name:      "Quantity above stock",
			productID: product.ID,
			quantity:  3,
			wantErr:   ErrInsufficientStock,
		},
		{
			name:      "Variant from another product",
			productID: product.ID,
			variantID: &variant.ID,
			quantity:  1,
			wantErr:   ErrInvalidVariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cartService.AddToCart(user.ID, tt.productID, tt.variantID, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCartService_UpdateCartItem(t *testing.T) {
	cartService, testDB, user := setupCartServiceTest(t)
	defer db.CleanupTestDB(testDB)

	product := createTestProduct(t, testDB, "Camiseta Básica", 10)
	require.NoError(t, cartService.AddToCart(user.ID, product.ID, nil, 1))

	items, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, cartService.UpdateCartItem(user.ID, items[0].ID, 4))

	items, err = cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, items[0].Quantity)

	// item de outro usuário é invisível
	err = cartService.UpdateCartItem(user.ID+1, items[0].ID, 2)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_RemoveFromCart(t *testing.T) {
	cartService, testDB, user := setupCartServiceTest(t)
	defer db.CleanupTestDB(testDB)

	product := createTestProduct(t, testDB, "Camiseta Básica", 10)
	require.NoError(t, cartService.AddToCart(user.ID, product.ID, nil, 1))

	items, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	err = cartService.RemoveFromCart(user.ID+1, items[0].ID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	require.NoError(t, cartService.RemoveFromCart(user.ID, items[0].ID))

	items, err = cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartService_ValidateCartItemsForCheckout(t *testing.T) {
	cartService, testDB, _ := setupCartServiceTest(t)
	defer db.CleanupTestDB(testDB)

	shirt := createTestProduct(t, testDB, "Camiseta Estampada", 0)
	createTestVariant(t, testDB, shirt.ID, "M", 2)

	plain := createTestProduct(t, testDB, "Boné Clássico", 4)
	soldOut := createTestProduct(t, testDB, "Tênis Esgotado", 0)

	tests := []struct {
		name    string
		items   []CheckoutCartItem
		wantMsg string
	}{
		{
			name:    "Empty cart",
			items:   nil,
			wantMsg: "o carrinho está vazio",
		},
		{
			name:    "Missing product reference",
			items:   []CheckoutCartItem{{Quantity: 1}},
			wantMsg: "item 1 do carrinho sem produto",
		},
		{
			name:    "Invalid quantity",
			items:   []CheckoutCartItem{{ProductID: plain.ID, Quantity: 0}},
			wantMsg: "quantidade inválida para o item 1",
		},
		{
			name:    "Unknown product",
			items:   []CheckoutCartItem{{ProductID: 9999, Quantity: 1}},
			wantMsg: "produto 9999 não encontrado",
		},
		{
			name:    "Variant product without size",
			items:   []CheckoutCartItem{{ProductID: shirt.ID, Quantity: 1}},
			wantMsg: "selecione um tamanho para Camiseta Estampada",
		},
		{
			name:    "Size not offered",
			items:   []CheckoutCartItem{{ProductID: shirt.ID, Size: "GG", Quantity: 1}},
			wantMsg: "tamanho indisponível para Camiseta Estampada",
		},
		{
			name:    "Quantity above variant stock",
			items:   []CheckoutCartItem{{ProductID: shirt.ID, Size: "M", Quantity: 3}},
			wantMsg: "quantidade de Camiseta Estampada acima do estoque disponível (2)",
		},
		{
			name:    "Product out of stock",
			items:   []CheckoutCartItem{{ProductID: soldOut.ID, Quantity: 1}},
			wantMsg: "Tênis Esgotado está sem estoque",
		},
		{
			name: "Valid cart",
			items: []CheckoutCartItem{
				{ProductID: shirt.ID, Size: "M", Quantity: 1},
				{ProductID: plain.ID, Quantity: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cartService.ValidateCartItemsForCheckout(tt.items)

			if tt.wantMsg == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}
