package repository

import (
	"testing"
	"time"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository, *model.User, *model.Address, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	user := &model.User{
		Email:        "ana@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Ana Souza",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)

	address := &model.Address{
		UserID:    user.ID,
		Recipient: "Ana Souza",
		ZipCode:   "01310100",
		Street:    "Av. Paulista",
		Number:    "1000",
		City:      "São Paulo",
		State:     "SP",
		IsDefault: true,
	}
	require.NoError(t, testDB.Create(address).Error)

	product := &model.Product{
		Name:          "Camiseta Básica",
		Price:         79.90,
		StockQuantity: 10,
		IsActive:      true,
	}
	require.NoError(t, testDB.Create(product).Error)

	return testDB, NewOrderRepository(testDB), user, address, product
}

func buildOrder(user *model.User, address *model.Address, product *model.Product, number string) *model.Order {
	return &model.Order{
		OrderNumber:   number,
		UserID:        user.ID,
		AddressID:     address.ID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Subtotal:      159.80,
		ShippingCost:  19.90,
		Total:         179.70,
		ShippingName:  "PAC",
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Quantity: 2, UnitPrice: 79.90},
		},
	}
}

func TestOrderRepository_CreateInTransaction(t *testing.T) {
	testDB, repo, user, address, product := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := buildOrder(user, address, product, "NSR-20260901-AAAAAA")

	tx := testDB.Begin()
	require.NoError(t, repo.Create(tx, order))
	require.NoError(t, tx.Commit().Error)

	assert.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.Len(t, found.OrderItems, 1)
	assert.Equal(t, product.ID, found.OrderItems[0].ProductID)
}

func TestOrderRepository_CreateRollback(t *testing.T) {
	testDB, repo, user, address, product := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := buildOrder(user, address, product, "NSR-20260901-BBBBBB")

	tx := testDB.Begin()
	require.NoError(t, repo.Create(tx, order))
	tx.Rollback()

	_, err := repo.FindByOrderNumber("NSR-20260901-BBBBBB")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByIDAndUser(t *testing.T) {
	testDB, repo, user, address, product := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := buildOrder(user, address, product, "NSR-20260901-CCCCCC")
	tx := testDB.Begin()
	require.NoError(t, repo.Create(tx, order))
	require.NoError(t, tx.Commit().Error)

	found, err := repo.FindByIDAndUser(order.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)

	// outro usuário não enxerga o pedido
	_, err = repo.FindByIDAndUser(order.ID, user.ID+1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByUserID_PreloadsPayments(t *testing.T) {
	testDB, repo, user, address, product := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := buildOrder(user, address, product, "NSR-20260901-DDDDDD")
	tx := testDB.Begin()
	require.NoError(t, repo.Create(tx, order))
	require.NoError(t, tx.Commit().Error)

	payment := &model.Payment{
		OrderID: order.ID,
		Method:  model.PaymentMethodPix,
		Status:  model.PaymentStatusPending,
		Amount:  order.Total,
		Active:  true,
	}
	require.NoError(t, testDB.Create(payment).Error)

	orders, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Payments, 1)
	assert.Equal(t, model.PaymentMethodPix, orders[0].Payments[0].Method)

	active := orders[0].ActivePayment()
	require.NotNil(t, active)
	assert.Equal(t, payment.ID, active.ID)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	testDB, repo, user, address, product := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := buildOrder(user, address, product, "NSR-20260901-EEEEEE")
	tx := testDB.Begin()
	require.NoError(t, repo.Create(tx, order))
	require.NoError(t, tx.Commit().Error)

	require.NoError(t, repo.UpdateStatus(order.ID, model.OrderStatusProcessing))
	require.NoError(t, repo.UpdatePaymentStatus(order.ID, model.PaymentStatusPaid))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, found.Status)
	assert.Equal(t, model.PaymentStatusPaid, found.PaymentStatus)
	assert.WithinDuration(t, time.Now(), found.UpdatedAt, 5*time.Second)
}
