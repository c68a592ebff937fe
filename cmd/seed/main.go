package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/lucaanasser/nsr-ecommerce-backend/config"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Importa o catálogo de produtos a partir de uma planilha XLSX.
//
// Aba "products": name | description | price | weight | category | stock | images
//   - images separadas por "|"
// Aba "variants" (opcional): product_name | size | color | additional_price | stock | sku
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("products")
	if err != nil {
		return nil, fmt.Errorf("failed to read products sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no product rows found")
	}

	byName := make(map[string]*model.Product)
	var order []string
	skipped := 0

	// primeira linha é cabeçalho
	for i, row := range rows[1:] {
		if len(row) < 3 {
			skipped++
			continue
		}

		name := strings.TrimSpace(cell(row, 0))
		price, err := strconv.ParseFloat(cell(row, 2), 64)
		if name == "" || err != nil || price <= 0 {
			fmt.Printf("Skipping invalid row %d (name=%q)\n", i+2, name)
			skipped++
			continue
		}
		if _, dup := byName[name]; dup {
			fmt.Printf("Skipping duplicate product %q (row %d)\n", name, i+2)
			skipped++
			continue
		}

		weight, _ := strconv.ParseFloat(cell(row, 3), 64)
		stock, _ := strconv.Atoi(cell(row, 5))

		var images []string
		for _, img := range strings.Split(cell(row, 6), "|") {
			if img = strings.TrimSpace(img); img != "" {
				images = append(images, img)
			}
		}

		byName[name] = &model.Product{
			Name:          name,
			Description:   cell(row, 1),
			Price:         price,
			Weight:        weight,
			Category:      model.ProductCategory(strings.ToLower(cell(row, 4))),
			StockQuantity: stock,
			Images:        pq.StringArray(images),
			IsActive:      true,
		}
		order = append(order, name)
	}

	if err := attachVariants(f, byName); err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(order))
	for _, name := range order {
		products = append(products, *byName[name])
	}

	if skipped > 0 {
		fmt.Printf("Skipped rows: %d\n", skipped)
	}
	return products, nil
}

func attachVariants(f *excelize.File, byName map[string]*model.Product) error {
	rows, err := f.GetRows("variants")
	if err != nil {
		// aba opcional
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	attached := 0
	for i, row := range rows[1:] {
		productName := strings.TrimSpace(cell(row, 0))
		size := strings.TrimSpace(cell(row, 1))
		if productName == "" || size == "" {
			continue
		}

		product, ok := byName[productName]
		if !ok {
			fmt.Printf("Variant row %d references unknown product %q\n", i+2, productName)
			continue
		}

		additional, _ := strconv.ParseFloat(cell(row, 3), 64)
		stock, _ := strconv.Atoi(cell(row, 4))

		product.Variants = append(product.Variants, model.ProductVariant{
			Size:            size,
			Color:           cell(row, 2),
			AdditionalPrice: additional,
			StockQuantity:   stock,
			SKU:             cell(row, 5),
		})
		attached++
	}

	fmt.Printf("Variants attached: %d\n", attached)
	return nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
