package service

import (
	"errors"
	"time"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrCouponNotFound = errors.New("cupom não encontrado")

// CouponQuote é o resultado da simulação de um cupom sobre um subtotal.
type CouponQuote struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
	Valid    bool    `json:"valid"`
}

type CouponService interface {
	CreateCoupon(coupon *model.Coupon) error
	ListCoupons() ([]model.Coupon, error)
	DeleteCoupon(id uint) error
	QuoteCoupon(code string, subtotal float64) (*CouponQuote, error)
}

type couponService struct {
	couponRepo repository.CouponRepository
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponService{couponRepo: couponRepo}
}

func (s *couponService) CreateCoupon(coupon *model.Coupon) error {
	logger.Info("Creating coupon", map[string]interface{}{
		"code":          coupon.Code,
		"discount_type": coupon.DiscountType,
		"value":         coupon.Value,
	})
	return s.couponRepo.Create(coupon)
}

func (s *couponService) ListCoupons() ([]model.Coupon, error) {
	return s.couponRepo.FindAll()
}

func (s *couponService) DeleteCoupon(id uint) error {
	logger.Info("Deleting coupon", map[string]interface{}{
		"coupon_id": id,
	})
	return s.couponRepo.Delete(id)
}

// QuoteCoupon simula o desconto sem criar pedido, para o resumo do checkout.
func (s *couponService) QuoteCoupon(code string, subtotal float64) (*CouponQuote, error) {
	coupon, err := s.couponRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	discount := coupon.DiscountFor(subtotal, time.Now())
	return &CouponQuote{
		Code:     coupon.Code,
		Discount: discount,
		Valid:    discount > 0,
	}, nil
}
