package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
)

var (
	ErrCheckoutSessionNotFound = errors.New("sessão de checkout não encontrada ou expirada")
	ErrCheckoutStepIncomplete  = errors.New("complete a etapa anterior antes de avançar")
	ErrCheckoutInvalidStep     = errors.New("etapa de checkout inválida")
	ErrCheckoutFieldsMissing   = errors.New("preencha todos os campos obrigatórios da etapa")
)

// CheckoutService guia o assistente de quatro etapas do checkout:
// comprador → destinatário → pagamento → confirmação. Avanço é estritamente
// linear; voltar é sempre permitido. A validação aqui é só de presença,
// a validação de negócio acontece na criação do pedido.
type CheckoutService interface {
	StartSession(ctx context.Context, userID uint) (*model.CheckoutSession, error)
	GetSession(ctx context.Context, userID uint) (*model.CheckoutSession, error)
	SubmitBuyer(ctx context.Context, userID uint, buyer model.BuyerInfo) (*model.CheckoutSession, error)
	SubmitRecipient(ctx context.Context, userID uint, recipient model.RecipientInfo) (*model.CheckoutSession, error)
	SubmitPayment(ctx context.Context, userID uint, payment model.PaymentInfo) (*model.CheckoutSession, error)
	GoToStep(ctx context.Context, userID uint, step model.CheckoutStep) (*model.CheckoutSession, error)
	CancelSession(ctx context.Context, userID uint) error
}

type checkoutService struct {
	store repository.CheckoutSessionStore
}

func NewCheckoutService(store repository.CheckoutSessionStore) CheckoutService {
	return &checkoutService{store: store}
}

func (s *checkoutService) StartSession(ctx context.Context, userID uint) (*model.CheckoutSession, error) {
	logger.Info("Starting checkout session", map[string]interface{}{
		"user_id": userID,
	})

	now := time.Now()
	session := &model.CheckoutSession{
		UserID:    userID,
		Step:      model.StepBuyer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *checkoutService) GetSession(ctx context.Context, userID uint) (*model.CheckoutSession, error) {
	session, err := s.store.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrCheckoutSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// advance move a sessão para depois da etapa recém-concluída, sem nunca
// recuar uma sessão que já está adiante.
func advance(session *model.CheckoutSession, completed model.CheckoutStep) {
	next := model.StepIndex(completed) + 1
	if next >= len(model.CheckoutSteps) {
		return
	}
	if next > model.StepIndex(session.Step) {
		session.Step = model.CheckoutSteps[next]
	}
}

func (s *checkoutService) save(ctx context.Context, session *model.CheckoutSession) (*model.CheckoutSession, error) {
	session.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *checkoutService) SubmitBuyer(ctx context.Context, userID uint, buyer model.BuyerInfo) (*model.CheckoutSession, error) {
	session, err := s.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(buyer.Name) == "" ||
		strings.TrimSpace(buyer.Email) == "" ||
		strings.TrimSpace(buyer.CPF) == "" {
		return nil, ErrCheckoutFieldsMissing
	}

	session.Buyer = &buyer
	advance(session, model.StepBuyer)

	logger.Debug("Checkout buyer step submitted", map[string]interface{}{
		"user_id": userID,
		"step":    session.Step,
	})
	return s.save(ctx, session)
}

func (s *checkoutService) SubmitRecipient(ctx context.Context, userID uint, recipient model.RecipientInfo) (*model.CheckoutSession, error) {
	session, err := s.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	// sem dados do comprador não há como estar nesta etapa
	if session.Buyer == nil {
		return nil, ErrCheckoutStepIncomplete
	}
	if recipient.AddressID == 0 || recipient.ShippingMethodID == 0 {
		return nil, ErrCheckoutFieldsMissing
	}

	session.Recipient = &recipient
	advance(session, model.StepRecipient)

	logger.Debug("Checkout recipient step submitted", map[string]interface{}{
		"user_id":            userID,
		"address_id":         recipient.AddressID,
		"shipping_method_id": recipient.ShippingMethodID,
		"step":               session.Step,
	})
	return s.save(ctx, session)
}

func (s *checkoutService) SubmitPayment(ctx context.Context, userID uint, payment model.PaymentInfo) (*model.CheckoutSession, error) {
	session, err := s.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	if session.Buyer == nil || session.Recipient == nil {
		return nil, ErrCheckoutStepIncomplete
	}
	if !validPaymentMethod(payment.Method) {
		return nil, ErrInvalidPaymentMethod
	}

	session.Payment = &payment
	advance(session, model.StepPayment)

	logger.Debug("Checkout payment step submitted", map[string]interface{}{
		"user_id": userID,
		"method":  payment.Method,
		"step":    session.Step,
	})
	return s.save(ctx, session)
}

// GoToStep navega para uma etapa anterior. Pular adiante é rejeitado.
func (s *checkoutService) GoToStep(ctx context.Context, userID uint, step model.CheckoutStep) (*model.CheckoutSession, error) {
	session, err := s.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	target := model.StepIndex(step)
	if target < 0 {
		return nil, ErrCheckoutInvalidStep
	}
	if target > model.StepIndex(session.Step) {
		logger.Warn("Checkout forward skip rejected", map[string]interface{}{
			"user_id": userID,
			"current": session.Step,
			"target":  step,
		})
		return nil, ErrCheckoutInvalidStep
	}

	session.Step = step
	return s.save(ctx, session)
}

// CancelSession descarta o assistente. Nada fica no banco: o estado vive
// só no Redis e some aqui ou no TTL.
func (s *checkoutService) CancelSession(ctx context.Context, userID uint) error {
	logger.Info("Cancelling checkout session", map[string]interface{}{
		"user_id": userID,
	})
	return s.store.Delete(ctx, userID)
}
