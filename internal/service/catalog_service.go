package service

import (
	"context"
	"fmt"
	"time"

	"smartshop/internal/domain"
	"smartshop/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductInput carries the writable fields of a product. New products start
// at stock zero; initial stock arrives through an import transaction so the
// ledger stays complete.
type ProductInput struct {
	Name        string
	Description string
	UnitPrice   int64
	CategoryID  uuid.UUID
	BrandID     uuid.UUID
	ImageURL    string
	MinStock    int
}

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name     string
	ParentID *uuid.UUID
	ImageURL string
}

// CatalogService defines the interface for catalog business logic: products,
// the category tree, brands and suppliers.
type CatalogService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductListFilter) ([]*domain.Product, int, error)

	CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)

	CreateBrand(ctx context.Context, name, description string) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, name, description string) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
	ListBrands(ctx context.Context) ([]*domain.Brand, error)

	CreateSupplier(ctx context.Context, name, phone, address string) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, name, phone, address string) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
	ListSuppliers(ctx context.Context) ([]*domain.Supplier, error)
}

// ProductListFilter is the catalog-facing product query. A CategoryID selects
// the whole subtree rooted at that category.
type ProductListFilter struct {
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	MinPrice   *int64
	MaxPrice   *int64
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  repository.SortOrder
}

type catalogService struct {
	tx     repository.TxRunner
	logger *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(tx repository.TxRunner, logger *zap.Logger) CatalogService {
	return &catalogService{tx: tx, logger: logger}
}

func validateProductInput(input ProductInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: product name is required", domain.ErrValidation)
	}
	if input.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price must not be negative", domain.ErrValidation)
	}
	if input.MinStock < 0 {
		return fmt.Errorf("%w: min stock must not be negative", domain.ErrValidation)
	}
	return nil
}

// CreateProduct inserts a product and its inventory row in one transaction.
func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		UnitPrice:   input.UnitPrice,
		CategoryID:  input.CategoryID,
		BrandID:     input.BrandID,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
		Inventory: &domain.Inventory{
			Stock:      0,
			MinStock:   input.MinStock,
			LastUpdate: now,
		},
	}
	product.Inventory.ProductID = product.ID

	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		if _, err := r.Categories.FindByID(ctx, input.CategoryID); err != nil {
			return err
		}
		if _, err := r.Brands.FindByID(ctx, input.BrandID); err != nil {
			return err
		}
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		return r.Inventory.Create(ctx, product.Inventory)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)

	return product, nil
}

// UpdateProduct changes a product's catalog fields. Stock is untouched; the
// threshold moves through SetMinStock on the stock service.
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	var product *domain.Product
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		existing, err := r.Products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if input.CategoryID != existing.CategoryID {
			if _, err := r.Categories.FindByID(ctx, input.CategoryID); err != nil {
				return err
			}
		}
		if input.BrandID != existing.BrandID {
			if _, err := r.Brands.FindByID(ctx, input.BrandID); err != nil {
				return err
			}
		}

		existing.Name = input.Name
		existing.Description = input.Description
		existing.UnitPrice = input.UnitPrice
		existing.CategoryID = input.CategoryID
		existing.BrandID = input.BrandID
		existing.ImageURL = input.ImageURL
		existing.UpdatedAt = time.Now()

		if err := r.Products.Update(ctx, existing); err != nil {
			return err
		}

		product = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct removes a product unless order or purchase-order lines still
// reference it.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		refs, err := r.Products.ReferenceCount(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: product is referenced by %d order or purchase order lines", domain.ErrInvalidState, refs)
		}
		return r.Products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// GetProduct retrieves a product with its inventory.
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product *domain.Product
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		product, err = r.Products.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// expandCategoryIDs returns the given category and all of its descendants.
// The whole adjacency is loaded once and walked breadth-first in memory; the
// tree is small and this keeps the SQL portable.
func expandCategoryIDs(categories []*domain.Category, root uuid.UUID) []uuid.UUID {
	children := map[uuid.UUID][]uuid.UUID{}
	for _, c := range categories {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	ids := []uuid.UUID{root}
	queue := []uuid.UUID{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			ids = append(ids, child)
			queue = append(queue, child)
		}
	}
	return ids
}

// ListProducts retrieves products with filtering, pagination and sorting.
// A category filter matches the category's whole subtree.
func (s *catalogService) ListProducts(ctx context.Context, filter ProductListFilter) ([]*domain.Product, int, error) {
	repoFilter := repository.ProductFilter{
		BrandID:   filter.BrandID,
		MinPrice:  filter.MinPrice,
		MaxPrice:  filter.MaxPrice,
		Search:    filter.Search,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	}
	if repoFilter.Page < 1 {
		repoFilter.Page = 1
	}
	if repoFilter.PageSize < 1 || repoFilter.PageSize > 100 {
		repoFilter.PageSize = 20
	}

	var (
		products []*domain.Product
		total    int
	)
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		if filter.CategoryID != nil {
			categories, err := r.Categories.List(ctx)
			if err != nil {
				return err
			}
			repoFilter.CategoryIDs = expandCategoryIDs(categories, *filter.CategoryID)
		}

		var err error
		products, total, err = r.Products.List(ctx, repoFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// CreateCategory inserts a category, optionally under a parent.
func (s *catalogService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      input.Name,
		ParentID:  input.ParentID,
		ImageURL:  input.ImageURL,
		CreatedAt: time.Now(),
	}

	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		if input.ParentID != nil {
			if _, err := r.Categories.FindByID(ctx, *input.ParentID); err != nil {
				return err
			}
		}
		return r.Categories.Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	return category, nil
}

// UpdateCategory changes a category's name, parent or image. A category may
// not become its own ancestor.
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*domain.Category, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	if input.ParentID != nil && *input.ParentID == id {
		return nil, fmt.Errorf("%w: category cannot be its own parent", domain.ErrValidation)
	}

	var category *domain.Category
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		existing, err := r.Categories.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if input.ParentID != nil {
			if _, err := r.Categories.FindByID(ctx, *input.ParentID); err != nil {
				return err
			}
			categories, err := r.Categories.List(ctx)
			if err != nil {
				return err
			}
			for _, descendant := range expandCategoryIDs(categories, id) {
				if descendant == *input.ParentID {
					return fmt.Errorf("%w: category cannot move under its own descendant", domain.ErrValidation)
				}
			}
		}

		existing.Name = input.Name
		existing.ParentID = input.ParentID
		existing.ImageURL = input.ImageURL

		if err := r.Categories.Update(ctx, existing); err != nil {
			return err
		}

		category = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory removes a leaf category.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		return r.Categories.Delete(ctx, id)
	})
}

// ListCategories retrieves the whole category tree as a flat list.
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		categories, err = r.Categories.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateBrand inserts a brand.
func (s *catalogService) CreateBrand(ctx context.Context, name, description string) (*domain.Brand, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: brand name is required", domain.ErrValidation)
	}

	brand := &domain.Brand{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		return r.Brands.Create(ctx, brand)
	})
	if err != nil {
		return nil, err
	}
	return brand, nil
}

// UpdateBrand changes a brand's name and description.
func (s *catalogService) UpdateBrand(ctx context.Context, id uuid.UUID, name, description string) (*domain.Brand, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: brand name is required", domain.ErrValidation)
	}

	var brand *domain.Brand
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		existing, err := r.Brands.FindByID(ctx, id)
		if err != nil {
			return err
		}
		existing.Name = name
		existing.Description = description
		if err := r.Brands.Update(ctx, existing); err != nil {
			return err
		}
		brand = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return brand, nil
}

// DeleteBrand removes a brand.
func (s *catalogService) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		return r.Brands.Delete(ctx, id)
	})
}

// ListBrands retrieves all brands.
func (s *catalogService) ListBrands(ctx context.Context) ([]*domain.Brand, error) {
	var brands []*domain.Brand
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		brands, err = r.Brands.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return brands, nil
}

// CreateSupplier inserts a supplier.
func (s *catalogService) CreateSupplier(ctx context.Context, name, phone, address string) (*domain.Supplier, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: supplier name is required", domain.ErrValidation)
	}

	supplier := &domain.Supplier{
		ID:        uuid.New(),
		Name:      name,
		Phone:     phone,
		Address:   address,
		CreatedAt: time.Now(),
	}

	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		return r.Suppliers.Create(ctx, supplier)
	})
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

// UpdateSupplier changes a supplier's contact details.
func (s *catalogService) UpdateSupplier(ctx context.Context, id uuid.UUID, name, phone, address string) (*domain.Supplier, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: supplier name is required", domain.ErrValidation)
	}

	var supplier *domain.Supplier
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		existing, err := r.Suppliers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		existing.Name = name
		existing.Phone = phone
		existing.Address = address
		if err := r.Suppliers.Update(ctx, existing); err != nil {
			return err
		}
		supplier = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

// DeleteSupplier removes a supplier.
func (s *catalogService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		return r.Suppliers.Delete(ctx, id)
	})
}

// ListSuppliers retrieves all suppliers.
func (s *catalogService) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	var suppliers []*domain.Supplier
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		suppliers, err = r.Suppliers.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}
