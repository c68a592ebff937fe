package service

import (
	"errors"
	"strings"
	"unicode"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
)

var (
	ErrInvalidZipCode        = errors.New("CEP inválido: informe 8 dígitos")
	ErrEmptyShippingCart     = errors.New("o carrinho está vazio")
	ErrShippingMethodUnknown = errors.New("método de envio não encontrado ou inativo")
)

// peso assumido quando o produto não tem peso cadastrado (kg)
const defaultItemWeight = 0.5

// ShippingItem é uma linha do carrinho para o cálculo de frete.
type ShippingItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// ShippingOption é uma cotação calculada, nunca persistida.
type ShippingOption struct {
	ID            uint          `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Cost          float64       `json:"cost"`
	EstimatedDays EstimatedDays `json:"estimated_days"`
	IsFree        bool          `json:"is_free"`
}

type EstimatedDays struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ShippingService calcula as opções de frete para o carrinho.
// Modelo linear simples: custo = base + custo/kg sobre o peso acima de 1 kg.
type ShippingService interface {
	CalculateOptions(items []ShippingItem, zipCode string, cartSubtotal float64) ([]ShippingOption, error)
	QuoteMethod(methodID uint, items []ShippingItem, cartSubtotal float64) (*ShippingOption, error)
	ListMethods() ([]model.ShippingMethod, error)
}

type shippingService struct {
	shippingRepo repository.ShippingMethodRepository
	productRepo  repository.ProductRepository
}

func NewShippingService(
	shippingRepo repository.ShippingMethodRepository,
	productRepo repository.ProductRepository,
) ShippingService {
	return &shippingService{
		shippingRepo: shippingRepo,
		productRepo:  productRepo,
	}
}

// NormalizeZipCode remove tudo que não é dígito e exige exatamente 8 dígitos.
func NormalizeZipCode(zip string) (string, error) {
	var b strings.Builder
	for _, r := range zip {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 8 {
		return "", ErrInvalidZipCode
	}
	return digits, nil
}

func (s *shippingService) totalWeight(items []ShippingItem) (float64, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return 0, err
	}

	weightByID := make(map[uint]float64, len(products))
	for _, p := range products {
		weightByID[p.ID] = p.Weight
	}

	var total float64
	for _, item := range items {
		weight, ok := weightByID[item.ProductID]
		if !ok || weight <= 0 {
			weight = defaultItemWeight
		}
		total += weight * float64(item.Quantity)
	}
	return total, nil
}

// quote aplica a fórmula a um método: custo = base + custo/kg × max(0, peso − 1).
// Subtotal acima do limiar de frete grátis zera o custo.
func quote(method *model.ShippingMethod, totalWeight, cartSubtotal float64) ShippingOption {
	cost := method.BaseCost
	if totalWeight > 1 {
		cost += method.CostPerKg * (totalWeight - 1)
	}

	isFree := false
	if method.FreeAbove != nil && cartSubtotal >= *method.FreeAbove {
		cost = 0
		isFree = true
	}

	return ShippingOption{
		ID:          method.ID,
		Name:        method.Name,
		Description: method.Description,
		Cost:        cost,
		EstimatedDays: EstimatedDays{
			Min: method.MinDays,
			Max: method.MaxDays,
		},
		IsFree: isFree,
	}
}

// CalculateOptions retorna todos os métodos ativos cotados para o carrinho.
// Nenhum método é excluído por peso ou distância (modelo de tarifa fixa).
func (s *shippingService) CalculateOptions(items []ShippingItem, zipCode string, cartSubtotal float64) ([]ShippingOption, error) {
	if len(items) == 0 {
		return nil, ErrEmptyShippingCart
	}
	if _, err := NormalizeZipCode(zipCode); err != nil {
		return nil, err
	}

	weight, err := s.totalWeight(items)
	if err != nil {
		logger.Error("Failed to compute cart weight for shipping", err, map[string]interface{}{
			"item_count": len(items),
		})
		return nil, err
	}

	methods, err := s.shippingRepo.FindAllActive()
	if err != nil {
		return nil, err
	}

	options := make([]ShippingOption, 0, len(methods))
	for i := range methods {
		options = append(options, quote(&methods[i], weight, cartSubtotal))
	}

	logger.Debug("Shipping options calculated", map[string]interface{}{
		"zip_code":     zipCode,
		"total_weight": weight,
		"subtotal":     cartSubtotal,
		"option_count": len(options),
	})
	return options, nil
}

// QuoteMethod cota um único método, usado na criação do pedido para
// congelar o custo de frete do método escolhido.
func (s *shippingService) QuoteMethod(methodID uint, items []ShippingItem, cartSubtotal float64) (*ShippingOption, error) {
	method, err := s.shippingRepo.FindActiveByID(methodID)
	if err != nil {
		return nil, ErrShippingMethodUnknown
	}

	weight, err := s.totalWeight(items)
	if err != nil {
		return nil, err
	}

	option := quote(method, weight, cartSubtotal)
	return &option, nil
}

// ListMethods retorna os métodos de entrega ativos sem cotação.
func (s *shippingService) ListMethods() ([]model.ShippingMethod, error) {
	return s.shippingRepo.FindAllActive()
}
