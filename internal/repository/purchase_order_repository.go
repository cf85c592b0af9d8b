package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartshop/internal/domain"

	"github.com/google/uuid"
)

// PurchaseOrderFilter narrows purchase-order listings.
type PurchaseOrderFilter struct {
	SupplierID *uuid.UUID
	Status     string
	Page       int
	PageSize   int
}

// PurchaseOrderRepository defines the interface for purchase order data access
type PurchaseOrderRepository interface {
	Insert(ctx context.Context, po *domain.PurchaseOrder) error
	UpdateHeader(ctx context.Context, po *domain.PurchaseOrder) error
	ReplaceLines(ctx context.Context, poID uuid.UUID, lines []*domain.PurchaseOrderLine) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseOrderFilter) ([]*domain.PurchaseOrder, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type purchaseOrderRepository struct {
	db DBTX
}

// NewPurchaseOrderRepository creates a new instance of PurchaseOrderRepository
func NewPurchaseOrderRepository(db DBTX) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

// Insert writes the purchase order header and its lines.
func (r *purchaseOrderRepository) Insert(ctx context.Context, po *domain.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, supplier_id, status, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, po.ID, po.SupplierID, po.Status, po.TotalAmount, po.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert purchase order: %w", err)
	}

	return r.insertLines(ctx, po.ID, po.Lines)
}

func (r *purchaseOrderRepository) insertLines(ctx context.Context, poID uuid.UUID, lines []*domain.PurchaseOrderLine) error {
	query := `
		INSERT INTO purchase_order_lines (id, purchase_order_id, product_id, quantity, unit_cost)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, line := range lines {
		_, err := r.db.ExecContext(ctx, query, line.ID, poID, line.ProductID, line.Quantity, line.UnitCost)
		if err != nil {
			return fmt.Errorf("failed to insert purchase order line: %w", err)
		}
	}

	return nil
}

// UpdateHeader writes supplier, status and total on an existing purchase order.
func (r *purchaseOrderRepository) UpdateHeader(ctx context.Context, po *domain.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET supplier_id = $2, status = $3, total_amount = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, po.ID, po.SupplierID, po.Status, po.TotalAmount)
	if err != nil {
		return fmt.Errorf("failed to update purchase order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("purchase order %s: %w", po.ID, domain.ErrNotFound)
	}

	return nil
}

// ReplaceLines deletes all prior lines and reinserts the submitted ones.
func (r *purchaseOrderRepository) ReplaceLines(ctx context.Context, poID uuid.UUID, lines []*domain.PurchaseOrderLine) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM purchase_order_lines WHERE purchase_order_id = $1`, poID)
	if err != nil {
		return fmt.Errorf("failed to delete purchase order lines: %w", err)
	}

	return r.insertLines(ctx, poID, lines)
}

// FindByID retrieves a purchase order with its lines.
func (r *purchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	query := `
		SELECT id, supplier_id, status, total_amount, created_at
		FROM purchase_orders
		WHERE id = $1
	`

	po := &domain.PurchaseOrder{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&po.ID, &po.SupplierID, &po.Status, &po.TotalAmount, &po.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("purchase order %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find purchase order by ID: %w", err)
	}

	if err := r.attachLines(ctx, po); err != nil {
		return nil, err
	}

	return po, nil
}

func (r *purchaseOrderRepository) attachLines(ctx context.Context, po *domain.PurchaseOrder) error {
	query := `
		SELECT id, purchase_order_id, product_id, quantity, unit_cost
		FROM purchase_order_lines
		WHERE purchase_order_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, po.ID)
	if err != nil {
		return fmt.Errorf("failed to load purchase order lines: %w", err)
	}
	defer rows.Close()

	lines := []*domain.PurchaseOrderLine{}
	for rows.Next() {
		line := &domain.PurchaseOrderLine{}
		err := rows.Scan(&line.ID, &line.PurchaseOrderID, &line.ProductID, &line.Quantity, &line.UnitCost)
		if err != nil {
			return fmt.Errorf("failed to scan purchase order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating purchase order lines: %w", err)
	}

	po.Lines = lines
	return nil
}

// List retrieves purchase orders newest first with optional filters.
func (r *purchaseOrderRepository) List(ctx context.Context, filter PurchaseOrderFilter) ([]*domain.PurchaseOrder, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.SupplierID != nil {
		whereClause += fmt.Sprintf(" AND supplier_id = $%d", argIndex)
		args = append(args, *filter.SupplierID)
		argIndex++
	}

	if filter.Status != "" {
		whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM purchase_orders %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count purchase orders: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize

	query := fmt.Sprintf(`
		SELECT id, supplier_id, status, total_amount, created_at
		FROM purchase_orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer rows.Close()

	pos := []*domain.PurchaseOrder{}
	for rows.Next() {
		po := &domain.PurchaseOrder{}
		err := rows.Scan(&po.ID, &po.SupplierID, &po.Status, &po.TotalAmount, &po.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		pos = append(pos, po)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating purchase orders: %w", err)
	}

	for _, po := range pos {
		if err := r.attachLines(ctx, po); err != nil {
			return nil, 0, err
		}
	}

	return pos, total, nil
}

// Delete removes a purchase order and its lines.
func (r *purchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM purchase_order_lines WHERE purchase_order_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete purchase order lines: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("purchase order %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
