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

// TransactionInput carries the fields of a stock ledger entry as submitted by
// an admin. Quantity is the absolute target level for adjustments and a
// positive magnitude for everything else.
type TransactionInput struct {
	ProductID  uuid.UUID
	Type       domain.TransactionType
	Quantity   int
	SupplierID *uuid.UUID
	Note       string
}

// StockService is the only write path to inventory. Every stock change runs
// through RecordTransaction so the ledger stays a complete audit trail.
type StockService interface {
	RecordTransaction(ctx context.Context, input TransactionInput) (*domain.StockTransaction, error)
	UpdateTransaction(ctx context.Context, id uuid.UUID, input TransactionInput) (*domain.StockTransaction, error)
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]*domain.StockTransaction, int, error)
	ProductHistory(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]*domain.StockTransaction, int, error)
	LowStock(ctx context.Context) ([]*domain.Product, error)
	SetMinStock(ctx context.Context, productID uuid.UUID, minStock int) error
}

type stockService struct {
	tx     repository.TxRunner
	logger *zap.Logger
}

// NewStockService creates a new instance of StockService
func NewStockService(tx repository.TxRunner, logger *zap.Logger) StockService {
	return &stockService{tx: tx, logger: logger}
}

func validateTransactionInput(input TransactionInput) error {
	if input.Type == domain.TransactionAdjustment {
		if input.Quantity < 0 {
			return fmt.Errorf("%w: adjustment target must not be negative", domain.ErrValidation)
		}
		return nil
	}
	if input.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	return nil
}

// RecordTransaction appends a ledger entry and moves the inventory level in
// one transaction. The entry snapshots the stock level it was applied to.
func (s *stockService) RecordTransaction(ctx context.Context, input TransactionInput) (*domain.StockTransaction, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	var txn *domain.StockTransaction
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		inv, err := r.Inventory.FindByProductID(ctx, input.ProductID)
		if err != nil {
			return err
		}

		newStock := input.Type.Apply(inv.Stock, input.Quantity)
		if newStock < 0 {
			return &domain.InsufficientStockError{
				ProductID: input.ProductID,
				Requested: input.Quantity,
				Available: inv.Stock,
			}
		}

		txn = &domain.StockTransaction{
			ID:            uuid.New(),
			ProductID:     input.ProductID,
			Type:          input.Type,
			Quantity:      input.Quantity,
			PreviousStock: inv.Stock,
			SupplierID:    input.SupplierID,
			Note:          input.Note,
			CreatedAt:     time.Now(),
		}

		if err := r.StockTransactions.Insert(ctx, txn); err != nil {
			return err
		}

		return r.Inventory.UpdateStock(ctx, input.ProductID, newStock)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock transaction recorded",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("product_id", input.ProductID.String()),
		zap.String("type", string(input.Type)),
		zap.Int("quantity", input.Quantity),
	)

	return txn, nil
}

// reverse undoes a ledger entry's effect on the given stock level. Delta
// types subtract their signed effect; adjustments restore the snapshotted
// previous level.
func reverse(stock int, txn *domain.StockTransaction) int {
	switch txn.Type {
	case domain.TransactionImport, domain.TransactionReturn, domain.TransactionOrderCancel:
		return stock - txn.Quantity
	case domain.TransactionExport, domain.TransactionOrder:
		return stock + txn.Quantity
	case domain.TransactionAdjustment:
		return stock - (txn.Quantity - txn.PreviousStock)
	}
	return stock
}

// UpdateTransaction corrects a ledger entry. The original effect is reversed
// first, then the corrected entry is applied; stock must stay non-negative at
// both steps. Product and entry identity never change.
func (s *stockService) UpdateTransaction(ctx context.Context, id uuid.UUID, input TransactionInput) (*domain.StockTransaction, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	var txn *domain.StockTransaction
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		existing, err := r.StockTransactions.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if input.ProductID != existing.ProductID {
			return fmt.Errorf("%w: a correction cannot move an entry to another product", domain.ErrValidation)
		}

		inv, err := r.Inventory.FindByProductID(ctx, existing.ProductID)
		if err != nil {
			return err
		}

		undone := reverse(inv.Stock, existing)
		if undone < 0 {
			return &domain.InsufficientStockError{
				ProductID: existing.ProductID,
				Requested: existing.Quantity,
				Available: inv.Stock,
			}
		}

		newStock := input.Type.Apply(undone, input.Quantity)
		if newStock < 0 {
			return &domain.InsufficientStockError{
				ProductID: existing.ProductID,
				Requested: input.Quantity,
				Available: undone,
			}
		}

		existing.Type = input.Type
		existing.Quantity = input.Quantity
		existing.PreviousStock = undone
		existing.SupplierID = input.SupplierID
		existing.Note = input.Note

		if err := r.StockTransactions.Update(ctx, existing); err != nil {
			return err
		}
		if err := r.Inventory.UpdateStock(ctx, existing.ProductID, newStock); err != nil {
			return err
		}

		txn = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock transaction corrected",
		zap.String("transaction_id", id.String()),
		zap.String("type", string(input.Type)),
		zap.Int("quantity", input.Quantity),
	)

	return txn, nil
}

// ListTransactions retrieves ledger entries with optional filters.
func (s *stockService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]*domain.StockTransaction, int, error) {
	var (
		transactions []*domain.StockTransaction
		total        int
	)
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		transactions, total, err = r.StockTransactions.List(ctx, normalizeTransactionFilter(filter))
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// ProductHistory retrieves the full ledger for one product, newest first.
func (s *stockService) ProductHistory(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]*domain.StockTransaction, int, error) {
	filter := repository.TransactionFilter{
		ProductID: &productID,
		Page:      page,
		PageSize:  pageSize,
	}
	return s.ListTransactions(ctx, filter)
}

// LowStock lists products at or below their reorder threshold.
func (s *stockService) LowStock(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		products, err = r.Products.ListLowStock(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// SetMinStock changes a product's low-stock threshold. The threshold is
// reporting metadata, not stock, so it does not go through the ledger.
func (s *stockService) SetMinStock(ctx context.Context, productID uuid.UUID, minStock int) error {
	if minStock < 0 {
		return fmt.Errorf("%w: min stock must not be negative", domain.ErrValidation)
	}
	return s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		return r.Inventory.UpdateMinStock(ctx, productID, minStock)
	})
}

func normalizeTransactionFilter(filter repository.TransactionFilter) repository.TransactionFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return filter
}
