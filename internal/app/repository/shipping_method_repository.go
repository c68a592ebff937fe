package repository

import (
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

type ShippingMethodRepository interface {
	Create(method *model.ShippingMethod) error
	FindAllActive() ([]model.ShippingMethod, error)
	FindByID(id uint) (*model.ShippingMethod, error)
	FindActiveByID(id uint) (*model.ShippingMethod, error)
	Update(method *model.ShippingMethod) error
	Delete(id uint) error
}

type shippingMethodRepository struct {
	db *gorm.DB
}

func NewShippingMethodRepository(db *gorm.DB) ShippingMethodRepository {
	return &shippingMethodRepository{db: db}
}

func (r *shippingMethodRepository) Create(method *model.ShippingMethod) error {
	logger.Debug("Creating shipping method in database", map[string]interface{}{
		"name": method.Name,
	})

	if err := r.db.Create(method).Error; err != nil {
		logger.Error("Failed to create shipping method in database", err, map[string]interface{}{
			"name": method.Name,
		})
		return err
	}
	return nil
}

func (r *shippingMethodRepository) FindAllActive() ([]model.ShippingMethod, error) {
	var methods []model.ShippingMethod
	err := r.db.Where("is_active = ?", true).
		Order("base_cost ASC").
		Find(&methods).Error
	if err != nil {
		logger.Error("Failed to find active shipping methods in database", err)
		return nil, err
	}
	return methods, nil
}

func (r *shippingMethodRepository) FindByID(id uint) (*model.ShippingMethod, error) {
	var method model.ShippingMethod
	if err := r.db.First(&method, id).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *shippingMethodRepository) FindActiveByID(id uint) (*model.ShippingMethod, error) {
	var method model.ShippingMethod
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *shippingMethodRepository) Update(method *model.ShippingMethod) error {
	logger.Debug("Updating shipping method in database", map[string]interface{}{
		"shipping_method_id": method.ID,
		"name":               method.Name,
	})

	if err := r.db.Save(method).Error; err != nil {
		logger.Error("Failed to update shipping method in database", err, map[string]interface{}{
			"shipping_method_id": method.ID,
		})
		return err
	}
	return nil
}

func (r *shippingMethodRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.ShippingMethod{}, id).Error; err != nil {
		logger.Error("Failed to delete shipping method from database", err, map[string]interface{}{
			"shipping_method_id": id,
		})
		return err
	}
	return nil
}
