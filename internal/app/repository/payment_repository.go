package repository

import (
	"time"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(tx *gorm.DB, payment *model.Payment) error
	FindByID(id uint) (*model.Payment, error)
	FindActiveByOrderID(orderID uint) (*model.Payment, error)
	FindByProviderCharge(chargeID string) (*model.Payment, error)
	Update(payment *model.Payment) error
	DeactivateByOrderID(tx *gorm.DB, orderID uint) error
	FindExpiredPixPayments(now time.Time) ([]model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(tx *gorm.DB, payment *model.Payment) error {
	logger.Debug("Creating payment in database", map[string]interface{}{
		"order_id": payment.OrderID,
		"method":   payment.Method,
	})

	if err := tx.Create(payment).Error; err != nil {
		logger.Error("Failed to create payment in database", err, map[string]interface{}{
			"order_id": payment.OrderID,
			"method":   payment.Method,
		})
		return err
	}

	logger.Debug("Payment created in database", map[string]interface{}{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
		"method":     payment.Method,
	})
	return nil
}

func (r *paymentRepository) FindByID(id uint) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindActiveByOrderID(orderID uint) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("order_id = ? AND active = ?", orderID, true).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByProviderCharge(chargeID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("provider_charge = ?", chargeID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Update(payment *model.Payment) error {
	logger.Debug("Updating payment in database", map[string]interface{}{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
		"status":     payment.Status,
	})

	if err := r.db.Save(payment).Error; err != nil {
		logger.Error("Failed to update payment in database", err, map[string]interface{}{
			"payment_id": payment.ID,
			"order_id":   payment.OrderID,
		})
		return err
	}
	return nil
}

// DeactivateByOrderID desativa todos os pagamentos do pedido.
// Usado antes de registrar uma nova tentativa para manter
// no máximo um pagamento ativo por pedido.
func (r *paymentRepository) DeactivateByOrderID(tx *gorm.DB, orderID uint) error {
	return tx.Model(&model.Payment{}).
		Where("order_id = ?", orderID).
		Update("active", false).Error
}

// FindExpiredPixPayments retorna pagamentos PIX ativos e pendentes
// cujo QR code já passou da validade.
func (r *paymentRepository) FindExpiredPixPayments(now time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Where(
		"method = ? AND active = ? AND status = ? AND pix_expires_at IS NOT NULL AND pix_expires_at < ?",
		model.PaymentMethodPix, true, model.PaymentStatusPending, now,
	).Find(&payments).Error
	if err != nil {
		logger.Error("Failed to find expired PIX payments in database", err)
		return nil, err
	}
	return payments, nil
}
