package repository

import (
	"strings"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

type CouponRepository interface {
	Create(coupon *model.Coupon) error
	FindByCode(code string) (*model.Coupon, error)
	FindAll() ([]model.Coupon, error)
	Update(coupon *model.Coupon) error
	Delete(id uint) error
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(coupon *model.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))

	logger.Debug("Creating coupon in database", map[string]interface{}{
		"code": coupon.Code,
	})

	if err := r.db.Create(coupon).Error; err != nil {
		logger.Error("Failed to create coupon in database", err, map[string]interface{}{
			"code": coupon.Code,
		})
		return err
	}
	return nil
}

// FindByCode busca pelo código normalizado (maiúsculas, sem espaços).
func (r *couponRepository) FindByCode(code string) (*model.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	var coupon model.Coupon
	err := r.db.Where("code = ?", normalized).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) FindAll() ([]model.Coupon, error) {
	var coupons []model.Coupon
	err := r.db.Order("created_at DESC").Find(&coupons).Error
	if err != nil {
		logger.Error("Failed to find coupons in database", err)
		return nil, err
	}
	return coupons, nil
}

func (r *couponRepository) Update(coupon *model.Coupon) error {
	logger.Debug("Updating coupon in database", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})

	if err := r.db.Save(coupon).Error; err != nil {
		logger.Error("Failed to update coupon in database", err, map[string]interface{}{
			"coupon_id": coupon.ID,
		})
		return err
	}
	return nil
}

func (r *couponRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Coupon{}, id).Error; err != nil {
		logger.Error("Failed to delete coupon from database", err, map[string]interface{}{
			"coupon_id": id,
		})
		return err
	}
	return nil
}
