package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartshop/internal/domain"

	"github.com/google/uuid"
)

// InventoryRepository defines data access for per-product inventory rows.
// Stock writes happen only from inside stock-ledger transactions.
type InventoryRepository interface {
	Create(ctx context.Context, inv *domain.Inventory) error
	FindByProductID(ctx context.Context, productID uuid.UUID) (*domain.Inventory, error)
	UpdateStock(ctx context.Context, productID uuid.UUID, stock int) error
	UpdateMinStock(ctx context.Context, productID uuid.UUID, minStock int) error
}

type inventoryRepository struct {
	db DBTX
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db DBTX) InventoryRepository {
	return &inventoryRepository{db: db}
}

// Create inserts the inventory row for a new product.
func (r *inventoryRepository) Create(ctx context.Context, inv *domain.Inventory) error {
	query := `
		INSERT INTO inventory (product_id, stock, min_stock, last_update)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, inv.ProductID, inv.Stock, inv.MinStock, inv.LastUpdate)
	if err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}

	return nil
}

// FindByProductID retrieves the inventory row for a product.
func (r *inventoryRepository) FindByProductID(ctx context.Context, productID uuid.UUID) (*domain.Inventory, error) {
	query := `
		SELECT product_id, stock, min_stock, last_update
		FROM inventory
		WHERE product_id = $1
	`

	inv := &domain.Inventory{}
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&inv.ProductID,
		&inv.Stock,
		&inv.MinStock,
		&inv.LastUpdate,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("inventory for product %s: %w", productID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find inventory: %w", err)
	}

	return inv, nil
}

// UpdateStock sets the stock level and bumps the last-update timestamp.
func (r *inventoryRepository) UpdateStock(ctx context.Context, productID uuid.UUID, stock int) error {
	query := `
		UPDATE inventory
		SET stock = $2, last_update = NOW()
		WHERE product_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, productID, stock)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("inventory for product %s: %w", productID, domain.ErrNotFound)
	}

	return nil
}

// UpdateMinStock changes the low-stock reporting threshold.
func (r *inventoryRepository) UpdateMinStock(ctx context.Context, productID uuid.UUID, minStock int) error {
	query := `
		UPDATE inventory
		SET min_stock = $2
		WHERE product_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, productID, minStock)
	if err != nil {
		return fmt.Errorf("failed to update min stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("inventory for product %s: %w", productID, domain.ErrNotFound)
	}

	return nil
}
