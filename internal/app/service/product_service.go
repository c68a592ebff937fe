package service

import (
	"errors"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrInvalidProductData = errors.New("dados do produto inválidos")

// ProductListOptions são os filtros aceitos pela listagem do catálogo.
type ProductListOptions struct {
	Category      string
	Search        string
	SortBy        repository.ProductSort
	SortAscending bool
	Page          int
	PageSize      int
	IncludeHidden bool // painel admin enxerga produtos inativos
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(product *model.Product) error
	UpdateProduct(product *model.Product) error
	DeleteProduct(id uint) error
	AddVariant(productID uint, variant *model.ProductVariant) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"category": opts.Category,
		"search":   opts.Search,
		"page":     opts.Page,
	})

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := 0
	if opts.Page > 1 {
		offset = (opts.Page - 1) * pageSize
	}

	filter := repository.ProductFilter{
		Category:        opts.Category,
		Search:          opts.Search,
		OnlyActive:      !opts.IncludeHidden,
		SortBy:          opts.SortBy,
		SortAscending:   opts.SortAscending,
		Limit:           pageSize,
		Offset:          offset,
		IncludeVariants: true,
	}

	return s.productRepo.FindWithFilter(filter)
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(product *model.Product) error {
	if product.Name == "" || product.Price <= 0 {
		return ErrInvalidProductData
	}

	logger.Info("Creating product", map[string]interface{}{
		"name":     product.Name,
		"category": product.Category,
		"price":    product.Price,
	})
	return s.productRepo.Create(product)
}

func (s *productService) UpdateProduct(product *model.Product) error {
	if product.ID == 0 {
		return ErrProductNotFound
	}
	if product.Name == "" || product.Price <= 0 {
		return ErrInvalidProductData
	}

	existing, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	existing.Name = product.Name
	existing.Description = product.Description
	existing.Price = product.Price
	existing.Weight = product.Weight
	existing.Category = product.Category
	existing.StockQuantity = product.StockQuantity
	existing.Images = product.Images
	existing.IsActive = product.IsActive

	logger.Info("Updating product", map[string]interface{}{
		"product_id": existing.ID,
		"name":       existing.Name,
	})
	return s.productRepo.Update(existing)
}

func (s *productService) DeleteProduct(id uint) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})
	return s.productRepo.Delete(id)
}

func (s *productService) AddVariant(productID uint, variant *model.ProductVariant) error {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if variant.Size == "" {
		return ErrInvalidProductData
	}

	variant.ProductID = product.ID
	product.Variants = append(product.Variants, *variant)

	logger.Info("Adding product variant", map[string]interface{}{
		"product_id": productID,
		"size":       variant.Size,
		"color":      variant.Color,
	})
	return s.productRepo.Update(product)
}
