package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	apperrors "github.com/lucaanasser/nsr-ecommerce-backend/internal/errors"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
)

type CouponController struct {
	couponService service.CouponService
}

func NewCouponController(couponService service.CouponService) *CouponController {
	return &CouponController{
		couponService: couponService,
	}
}

type CreateCouponRequest struct {
	Code         string     `json:"code" binding:"required"`
	DiscountType string     `json:"discount_type" binding:"required,oneof=percent fixed"`
	Value        float64    `json:"value" binding:"required,gt=0"`
	MinSubtotal  float64    `json:"min_subtotal"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

type QuoteCouponRequest struct {
	Code     string  `json:"code" binding:"required"`
	Subtotal float64 `json:"subtotal" binding:"required,gt=0"`
}

// CreateCoupon registers a discount coupon (admin)
// POST /api/v1/admin/coupons
func (ctrl *CouponController) CreateCoupon(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid coupon creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do cupom são inválidos")
		return
	}

	coupon := &model.Coupon{
		Code:         req.Code,
		DiscountType: model.DiscountType(req.DiscountType),
		Value:        req.Value,
		MinSubtotal:  req.MinSubtotal,
		ExpiresAt:    req.ExpiresAt,
		IsActive:     true,
	}

	if err := ctrl.couponService.CreateCoupon(coupon); err != nil {
		log.Error("Failed to create coupon", err, map[string]interface{}{
			"code": req.Code,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "coupon")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "cupom cadastrado com sucesso",
		"coupon":  coupon,
	})
}

// ListCoupons lists every coupon (admin)
// GET /api/v1/admin/coupons
func (ctrl *CouponController) ListCoupons(c *gin.Context) {
	coupons, err := ctrl.couponService.ListCoupons()
	if err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to list coupons", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coupons": coupons,
	})
}

// DeleteCoupon removes a coupon (admin)
// DELETE /api/v1/admin/coupons/:id
func (ctrl *CouponController) DeleteCoupon(c *gin.Context) {
	couponID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.couponService.DeleteCoupon(couponID); err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to delete coupon", err, map[string]interface{}{
			"coupon_id": couponID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "coupon")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "cupom removido com sucesso",
	})
}

// QuoteCoupon simulates a coupon over a subtotal for the checkout summary
// POST /api/v1/coupons/quote
func (ctrl *CouponController) QuoteCoupon(c *gin.Context) {
	var req QuoteCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "informe o código do cupom e o subtotal")
		return
	}

	quote, err := ctrl.couponService.QuoteCoupon(req.Code, req.Subtotal)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			apperrors.NotFound(c, apperrors.CouponNotFound, "cupom não encontrado")
			return
		}
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to quote coupon", err, map[string]interface{}{
			"code": req.Code,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quote": quote,
	})
}
