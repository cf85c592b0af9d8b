package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartshop/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// standalone or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Repos bundles repositories bound to a single transaction.
type Repos struct {
	Users             UserRepository
	Products          ProductRepository
	Categories        CategoryRepository
	Brands            BrandRepository
	Suppliers         SupplierRepository
	Inventory         InventoryRepository
	StockTransactions StockTransactionRepository
	Orders            OrderRepository
	Deliveries        DeliveryRepository
	PurchaseOrders    PurchaseOrderRepository
}

// TxRunner executes a callback inside one database transaction. All
// multi-step mutations (order creation/cancellation, stock transactions,
// purchase-order writes) go through it: begin, run, commit on success,
// roll back on any failure.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(r *Repos) error) error
}

// Transactions run at repeatable read; conflicting concurrent writes to the
// same inventory row surface as serialization failures, which are retried
// before being reported as a conflict.
const maxTxAttempts = 3

type txRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner over the given database handle.
func NewTxRunner(db *sql.DB) TxRunner {
	return &txRunner{db: db}
}

func (t *txRunner) RunInTx(ctx context.Context, fn func(r *Repos) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = t.runOnce(ctx, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, err)
}

func (t *txRunner) runOnce(ctx context.Context, fn func(r *Repos) error) error {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	repos := &Repos{
		Users:             NewUserRepository(tx),
		Products:          NewProductRepository(tx),
		Categories:        NewCategoryRepository(tx),
		Brands:            NewBrandRepository(tx),
		Suppliers:         NewSupplierRepository(tx),
		Inventory:         NewInventoryRepository(tx),
		StockTransactions: NewStockTransactionRepository(tx),
		Orders:            NewOrderRepository(tx),
		Deliveries:        NewDeliveryRepository(tx),
		PurchaseOrders:    NewPurchaseOrderRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
