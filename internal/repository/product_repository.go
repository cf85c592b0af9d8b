package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"smartshop/internal/domain"

	"github.com/google/uuid"
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductFilter narrows catalog listings. CategoryIDs is the already-expanded
// set of category ids (a parent plus all of its descendants).
type ProductFilter struct {
	CategoryIDs []uuid.UUID
	BrandID     *uuid.UUID
	MinPrice    *int64
	MaxPrice    *int64
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   SortOrder
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error)
	ListLowStock(ctx context.Context) ([]*domain.Product, error)
	ReferenceCount(ctx context.Context, id uuid.UUID) (int, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	p.id, p.name, p.description, p.unit_price, p.category_id, p.brand_id, p.image_url,
	p.created_at, p.updated_at, i.stock, i.min_stock, i.last_update
`

func scanProduct(scan func(dest ...interface{}) error) (*domain.Product, error) {
	product := &domain.Product{}
	inv := &domain.Inventory{}
	err := scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.UnitPrice,
		&product.CategoryID,
		&product.BrandID,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
		&inv.Stock,
		&inv.MinStock,
		&inv.LastUpdate,
	)
	if err != nil {
		return nil, err
	}
	inv.ProductID = product.ID
	product.Inventory = inv
	return product, nil
}

// Create inserts a new product row. The matching inventory row is created by
// the catalog service in the same transaction.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, unit_price, category_id, brand_id, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.UnitPrice,
		product.CategoryID,
		product.BrandID,
		product.ImageURL,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, unit_price = $4, category_id = $5,
		    brand_id = $6, image_url = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.UnitPrice,
		product.CategoryID,
		product.BrandID,
		product.ImageURL,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product %s: %w", product.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a product. Callers must first check ReferenceCount; the
// inventory row, ledger entries and cart items cascade via foreign keys.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// FindByID retrieves a product together with its inventory row.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN inventory i ON i.product_id = p.id
		WHERE p.id = $1
	`, productColumns)

	row := r.db.QueryRowContext(ctx, query, id)
	product, err := scanProduct(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products with category/brand/price/text filtering,
// pagination, and sorting.
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]string{
		"name":       "p.name",
		"price":      "p.unit_price",
		"created_at": "p.created_at",
		"stock":      "i.stock",
	}

	sortBy, ok := validSortFields[filter.SortBy]
	if !ok {
		sortBy = "p.created_at"
	}

	sortOrder := filter.SortOrder
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if len(filter.CategoryIDs) > 0 {
		placeholders := make([]string, len(filter.CategoryIDs))
		for i, id := range filter.CategoryIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, id)
			argIndex++
		}
		whereClause += fmt.Sprintf(" AND p.category_id IN (%s)", strings.Join(placeholders, ", "))
	}

	if filter.BrandID != nil {
		whereClause += fmt.Sprintf(" AND p.brand_id = $%d", argIndex)
		args = append(args, *filter.BrandID)
		argIndex++
	}

	if filter.MinPrice != nil {
		whereClause += fmt.Sprintf(" AND p.unit_price >= $%d", argIndex)
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		whereClause += fmt.Sprintf(" AND p.unit_price <= $%d", argIndex)
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	if strings.TrimSpace(filter.Search) != "" {
		whereClause += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN inventory i ON i.product_id = p.id
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// ListLowStock retrieves products whose stock is at or below their threshold.
func (r *productRepository) ListLowStock(ctx context.Context) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN inventory i ON i.product_id = p.id
		WHERE i.stock <= i.min_stock
		ORDER BY i.stock ASC
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating low stock products: %w", err)
	}

	return products, nil
}

// ReferenceCount counts order and purchase-order lines referencing a product.
// A referenced product must not be deleted.
func (r *productRepository) ReferenceCount(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM order_lines WHERE product_id = $1) +
			(SELECT COUNT(*) FROM purchase_order_lines WHERE product_id = $1)
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count product references: %w", err)
	}

	return count, nil
}
