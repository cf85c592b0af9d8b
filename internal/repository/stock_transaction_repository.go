package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartshop/internal/domain"

	"github.com/google/uuid"
)

// TransactionFilter narrows stock-transaction listings.
type TransactionFilter struct {
	ProductID *uuid.UUID
	Type      *domain.TransactionType
	Page      int
	PageSize  int
}

// StockTransactionRepository defines data access for the stock ledger.
type StockTransactionRepository interface {
	Insert(ctx context.Context, txn *domain.StockTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.StockTransaction, error)
	Update(ctx context.Context, txn *domain.StockTransaction) error
	List(ctx context.Context, filter TransactionFilter) ([]*domain.StockTransaction, int, error)
}

type stockTransactionRepository struct {
	db DBTX
}

// NewStockTransactionRepository creates a new instance of StockTransactionRepository.
func NewStockTransactionRepository(db DBTX) StockTransactionRepository {
	return &stockTransactionRepository{db: db}
}

// Insert appends a ledger entry.
func (r *stockTransactionRepository) Insert(ctx context.Context, txn *domain.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (id, product_id, type, quantity, previous_stock, supplier_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		txn.ID,
		txn.ProductID,
		txn.Type,
		txn.Quantity,
		txn.PreviousStock,
		txn.SupplierID,
		txn.Note,
		txn.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert stock transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a single ledger entry.
func (r *stockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StockTransaction, error) {
	query := `
		SELECT id, product_id, type, quantity, previous_stock, supplier_id, note, created_at
		FROM stock_transactions
		WHERE id = $1
	`

	txn := &domain.StockTransaction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&txn.ID,
		&txn.ProductID,
		&txn.Type,
		&txn.Quantity,
		&txn.PreviousStock,
		&txn.SupplierID,
		&txn.Note,
		&txn.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("stock transaction %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find stock transaction: %w", err)
	}

	return txn, nil
}

// Update amends a ledger entry during a transaction correction.
func (r *stockTransactionRepository) Update(ctx context.Context, txn *domain.StockTransaction) error {
	query := `
		UPDATE stock_transactions
		SET type = $2, quantity = $3, previous_stock = $4, supplier_id = $5, note = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		txn.ID,
		txn.Type,
		txn.Quantity,
		txn.PreviousStock,
		txn.SupplierID,
		txn.Note,
	)

	if err != nil {
		return fmt.Errorf("failed to update stock transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("stock transaction %s: %w", txn.ID, domain.ErrNotFound)
	}

	return nil
}

// List retrieves ledger entries with optional product/type filters, newest first.
func (r *stockTransactionRepository) List(ctx context.Context, filter TransactionFilter) ([]*domain.StockTransaction, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.ProductID != nil {
		whereClause += fmt.Sprintf(" AND product_id = $%d", argIndex)
		args = append(args, *filter.ProductID)
		argIndex++
	}

	if filter.Type != nil {
		whereClause += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, *filter.Type)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM stock_transactions %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count stock transactions: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize

	query := fmt.Sprintf(`
		SELECT id, product_id, type, quantity, previous_stock, supplier_id, note, created_at
		FROM stock_transactions
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*domain.StockTransaction{}
	for rows.Next() {
		txn := &domain.StockTransaction{}
		err := rows.Scan(
			&txn.ID,
			&txn.ProductID,
			&txn.Type,
			&txn.Quantity,
			&txn.PreviousStock,
			&txn.SupplierID,
			&txn.Note,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan stock transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating stock transactions: %w", err)
	}

	return transactions, total, nil
}
