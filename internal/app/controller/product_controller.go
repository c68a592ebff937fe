package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	apperrors "github.com/lucaanasser/nsr-ecommerce-backend/internal/errors"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	Weight        float64  `json:"weight"`
	Category      string   `json:"category"`
	StockQuantity int      `json:"stock_quantity"`
	Images        []string `json:"images"`
	IsActive      *bool    `json:"is_active"`
}

type UpdateProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	Weight        float64  `json:"weight"`
	Category      string   `json:"category"`
	StockQuantity int      `json:"stock_quantity"`
	Images        []string `json:"images"`
	IsActive      *bool    `json:"is_active"`
}

type CreateVariantRequest struct {
	Size            string  `json:"size" binding:"required"`
	Color           string  `json:"color"`
	AdditionalPrice float64 `json:"additional_price"`
	StockQuantity   int     `json:"stock_quantity"`
	SKU             string  `json:"sku"`
}

// GetProducts lists the catalog with filter, sort and pagination
// GET /api/v1/products
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	opts := service.ProductListOptions{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	switch c.DefaultQuery("sort", "created_at") {
	case "price":
		opts.SortBy = repository.ProductSortPrice
	case "name":
		opts.SortBy = repository.ProductSortName
	default:
		opts.SortBy = repository.ProductSortCreatedAt
	}
	opts.SortAscending = c.Query("order") == "asc"

	opts.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	opts.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	// painel admin enxerga produtos inativos
	if role, ok := middleware.GetUserRole(c); ok && role == model.RoleAdmin {
		opts.IncludeHidden = c.Query("include_hidden") == "true"
	}

	products, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to list products", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"page":     opts.Page,
	})
}

// GetProduct returns one product with variants
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "produto não encontrado")
			return
		}
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct registers a catalog item (admin)
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do produto são inválidos")
		return
	}

	product := &model.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Weight:        req.Weight,
		Category:      model.ProductCategory(req.Category),
		StockQuantity: req.StockQuantity,
		Images:        pq.StringArray(req.Images),
		IsActive:      true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := ctrl.productService.CreateProduct(product); err != nil {
		if errors.Is(err, service.ErrInvalidProductData) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "dados do produto inválidos")
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "produto cadastrado com sucesso",
		"product": product,
	})
}

// UpdateProduct overwrites a catalog item (admin)
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do produto são inválidos")
		return
	}

	product := &model.Product{
		ID:            productID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Weight:        req.Weight,
		Category:      model.ProductCategory(req.Category),
		StockQuantity: req.StockQuantity,
		Images:        pq.StringArray(req.Images),
		IsActive:      true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := ctrl.productService.UpdateProduct(product); err != nil {
		ctrl.respondProductError(c, err, productID)
		return
	}

	log.Info("Product updated", map[string]interface{}{
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "produto atualizado com sucesso",
		"product": product,
	})
}

// DeleteProduct soft deletes a catalog item (admin)
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(productID); err != nil {
		ctrl.respondProductError(c, err, productID)
		return
	}

	log := middleware.GetLoggerFromContext(c)
	log.Info("Product deleted", map[string]interface{}{
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "produto removido com sucesso",
	})
}

// AddVariant appends a size/color variant to a product (admin)
// POST /api/v1/admin/products/:id/variants
func (ctrl *ProductController) AddVariant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados da variante são inválidos")
		return
	}

	variant := &model.ProductVariant{
		Size:            req.Size,
		Color:           req.Color,
		AdditionalPrice: req.AdditionalPrice,
		StockQuantity:   req.StockQuantity,
		SKU:             req.SKU,
	}

	if err := ctrl.productService.AddVariant(productID, variant); err != nil {
		ctrl.respondProductError(c, err, productID)
		return
	}

	log.Info("Variant added", map[string]interface{}{
		"product_id": productID,
		"variant_id": variant.ID,
		"size":       variant.Size,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "variante cadastrada com sucesso",
		"variant": variant,
	})
}

func (ctrl *ProductController) respondProductError(c *gin.Context, err error, productID uint) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "produto não encontrado")
	case errors.Is(err, service.ErrInvalidProductData):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "dados do produto inválidos")
	default:
		log := middleware.GetLoggerFromContext(c)
		log.Error("Product operation failed", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
	}
}
