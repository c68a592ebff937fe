package db

import (
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Product{},
		&model.ProductVariant{},
		&model.CartItem{},
		&model.Address{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.ShippingMethod{},
		&model.Coupon{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	// métodos de envio padrão (necessários para o cálculo de frete)
	if err := seedShippingMethods(); err != nil {
		logger.Error("Failed to seed shipping methods", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedShippingMethods cria os métodos de envio padrão
func seedShippingMethods() error {
	var count int64
	if err := DB.Model(&model.ShippingMethod{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Shipping methods already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding shipping method data...")

	freeAbove := 300.0
	methods := []model.ShippingMethod{
		{
			Name:      "PAC",
			BaseCost:  19.90,
			CostPerKg: 4.50,
			FreeAbove: &freeAbove,
			MinDays:   5,
			MaxDays:   12,
			IsActive:  true,
		},
		{
			Name:      "SEDEX",
			BaseCost:  34.90,
			CostPerKg: 7.90,
			MinDays:   1,
			MaxDays:   4,
			IsActive:  true,
		},
		{
			Name:      "Retirada na loja",
			BaseCost:  0,
			CostPerKg: 0,
			MinDays:   0,
			MaxDays:   1,
			IsActive:  true,
		},
	}

	totalInserted := 0
	for _, method := range methods {
		if err := DB.Create(&method).Error; err != nil {
			logger.Error("Failed to create shipping method", err, map[string]interface{}{
				"method": method.Name,
			})
			return err
		}
		totalInserted++
	}

	logger.Info("Shipping methods seeded successfully", map[string]interface{}{
		"total_methods": totalInserted,
	})

	return nil
}
