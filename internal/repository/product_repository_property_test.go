package repository

import (
	"context"
	"testing"
	"time"

	"smartshop/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	ctx := context.Background()
	productRepo := NewProductRepository(testDB)
	categoryRepo := NewCategoryRepository(testDB)
	brandRepo := NewBrandRepository(testDB)
	inventoryRepo := NewInventoryRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("a created product reads back with the same attributes", prop.ForAll(
		func(name string, description string, unitPrice int64, stock int, minStock int) bool {
			category := &domain.Category{
				ID:        uuid.New(),
				Name:      "category-" + uuid.New().String(),
				CreatedAt: time.Now(),
			}
			if err := categoryRepo.Create(ctx, category); err != nil {
				t.Logf("create category: %v", err)
				return false
			}

			brand := &domain.Brand{
				ID:        uuid.New(),
				Name:      "brand-" + uuid.New().String(),
				CreatedAt: time.Now(),
			}
			if err := brandRepo.Create(ctx, brand); err != nil {
				t.Logf("create brand: %v", err)
				return false
			}

			product := &domain.Product{
				ID:          uuid.New(),
				Name:        name,
				Description: description,
				UnitPrice:   unitPrice,
				CategoryID:  category.ID,
				BrandID:     brand.ID,
				ImageURL:    "https://img.example.com/" + uuid.New().String(),
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}
			if err := productRepo.Create(ctx, product); err != nil {
				t.Logf("create product: %v", err)
				return false
			}
			if err := inventoryRepo.Create(ctx, &domain.Inventory{
				ProductID:  product.ID,
				Stock:      stock,
				MinStock:   minStock,
				LastUpdate: time.Now(),
			}); err != nil {
				t.Logf("create inventory: %v", err)
				return false
			}

			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("find product: %v", err)
				return false
			}

			if retrieved.ID != product.ID || retrieved.Name != name || retrieved.Description != description {
				t.Logf("attributes differ: %+v", retrieved)
				return false
			}
			if retrieved.UnitPrice != unitPrice {
				t.Logf("unit price differs: %d vs %d", retrieved.UnitPrice, unitPrice)
				return false
			}
			if retrieved.CategoryID != category.ID || retrieved.BrandID != brand.ID {
				return false
			}
			if retrieved.Inventory == nil || retrieved.Inventory.Stock != stock || retrieved.Inventory.MinStock != minStock {
				t.Logf("inventory projection differs: %+v", retrieved.Inventory)
				return false
			}
			return true
		},
		gen.RegexMatch(`[A-Za-z][A-Za-z0-9 ]{2,40}`),
		gen.AlphaString(),
		gen.Int64Range(1, 10_000_000),
		gen.IntRange(0, 10_000),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ProductSearchFindsCreatedProducts(t *testing.T) {
	ctx := context.Background()
	productRepo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("listing by the exact name finds the product", prop.ForAll(
		func(stock int) bool {
			productID := seedTestProduct(t, stock)

			product, err := productRepo.FindByID(ctx, productID)
			if err != nil {
				t.Logf("find: %v", err)
				return false
			}

			results, total, err := productRepo.List(ctx, ProductFilter{
				Search:   product.Name,
				Page:     1,
				PageSize: 10,
			})
			if err != nil {
				t.Logf("list: %v", err)
				return false
			}
			if total < 1 {
				return false
			}
			for _, p := range results {
				if p.ID == productID {
					return true
				}
			}
			t.Logf("product %s not in search results", productID)
			return false
		},
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
