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

// Purchase order statuses. They are informational; receiving a purchase order
// does not move stock, an operator records a matching import transaction.
const (
	PurchaseOrderPending   = "pending"
	PurchaseOrderReceived  = "received"
	PurchaseOrderCancelled = "cancelled"
)

var purchaseOrderStatuses = map[string]struct{}{
	PurchaseOrderPending:   {},
	PurchaseOrderReceived:  {},
	PurchaseOrderCancelled: {},
}

// PurchaseOrderLineInput is one requested product in a purchase order.
type PurchaseOrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitCost  int64
}

// PurchaseOrderInput carries a submitted purchase order. The total is never
// part of the input; it is always computed from the lines.
type PurchaseOrderInput struct {
	SupplierID uuid.UUID
	Status     string
	Lines      []PurchaseOrderLineInput
}

// PurchaseOrderService defines the interface for purchase order business logic
type PurchaseOrderService interface {
	Create(ctx context.Context, input PurchaseOrderInput) (*domain.PurchaseOrder, error)
	Update(ctx context.Context, id uuid.UUID, input PurchaseOrderInput) (*domain.PurchaseOrder, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error)
	List(ctx context.Context, filter repository.PurchaseOrderFilter) ([]*domain.PurchaseOrder, int, error)
}

type purchaseOrderService struct {
	tx     repository.TxRunner
	logger *zap.Logger
}

// NewPurchaseOrderService creates a new instance of PurchaseOrderService
func NewPurchaseOrderService(tx repository.TxRunner, logger *zap.Logger) PurchaseOrderService {
	return &purchaseOrderService{tx: tx, logger: logger}
}

func validatePurchaseOrderInput(input PurchaseOrderInput) error {
	if len(input.Lines) == 0 {
		return fmt.Errorf("%w: purchase order must contain at least one line", domain.ErrValidation)
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line quantity must be positive", domain.ErrValidation)
		}
		if line.UnitCost < 0 {
			return fmt.Errorf("%w: unit cost must not be negative", domain.ErrValidation)
		}
	}
	if input.Status != "" {
		if _, ok := purchaseOrderStatuses[input.Status]; !ok {
			return fmt.Errorf("%w: unknown purchase order status %q", domain.ErrValidation, input.Status)
		}
	}
	return nil
}

func buildPurchaseOrderLines(poID uuid.UUID, inputs []PurchaseOrderLineInput) []*domain.PurchaseOrderLine {
	lines := make([]*domain.PurchaseOrderLine, 0, len(inputs))
	for _, in := range inputs {
		lines = append(lines, &domain.PurchaseOrderLine{
			ID:              uuid.New(),
			PurchaseOrderID: poID,
			ProductID:       in.ProductID,
			Quantity:        in.Quantity,
			UnitCost:        in.UnitCost,
		})
	}
	return lines
}

// Create records a new purchase order with a server-computed total. The
// supplier and every referenced product must exist.
func (s *purchaseOrderService) Create(ctx context.Context, input PurchaseOrderInput) (*domain.PurchaseOrder, error) {
	if err := validatePurchaseOrderInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = PurchaseOrderPending
	}

	po := &domain.PurchaseOrder{
		ID:         uuid.New(),
		SupplierID: input.SupplierID,
		Status:     status,
		CreatedAt:  time.Now(),
	}
	po.Lines = buildPurchaseOrderLines(po.ID, input.Lines)
	po.TotalAmount = domain.ComputeTotal(po.Lines)

	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		if _, err := r.Suppliers.FindByID(ctx, input.SupplierID); err != nil {
			return err
		}
		for _, line := range po.Lines {
			if _, err := r.Products.FindByID(ctx, line.ProductID); err != nil {
				return err
			}
		}
		return r.PurchaseOrders.Insert(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order created",
		zap.String("purchase_order_id", po.ID.String()),
		zap.String("supplier_id", input.SupplierID.String()),
		zap.Int64("total_amount", po.TotalAmount),
	)

	return po, nil
}

// Update replaces a purchase order's header fields and its whole line set.
// Lines are deleted and reinserted rather than diffed, and the total is
// recomputed from the submitted lines.
func (s *purchaseOrderService) Update(ctx context.Context, id uuid.UUID, input PurchaseOrderInput) (*domain.PurchaseOrder, error) {
	if err := validatePurchaseOrderInput(input); err != nil {
		return nil, err
	}

	var po *domain.PurchaseOrder
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		existing, err := r.PurchaseOrders.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if input.SupplierID != existing.SupplierID {
			if _, err := r.Suppliers.FindByID(ctx, input.SupplierID); err != nil {
				return err
			}
		}
		for _, line := range input.Lines {
			if _, err := r.Products.FindByID(ctx, line.ProductID); err != nil {
				return err
			}
		}

		status := input.Status
		if status == "" {
			status = existing.Status
		}

		lines := buildPurchaseOrderLines(id, input.Lines)
		po = &domain.PurchaseOrder{
			ID:          id,
			SupplierID:  input.SupplierID,
			Status:      status,
			TotalAmount: domain.ComputeTotal(lines),
			CreatedAt:   existing.CreatedAt,
			Lines:       lines,
		}

		if err := r.PurchaseOrders.ReplaceLines(ctx, id, lines); err != nil {
			return err
		}
		return r.PurchaseOrders.UpdateHeader(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order updated",
		zap.String("purchase_order_id", id.String()),
		zap.Int64("total_amount", po.TotalAmount),
	)

	return po, nil
}

// Delete removes a purchase order and its lines.
func (s *purchaseOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		return r.PurchaseOrders.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Purchase order deleted", zap.String("purchase_order_id", id.String()))
	return nil
}

// Get retrieves a purchase order with its lines.
func (s *purchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	var po *domain.PurchaseOrder
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		po, err = r.PurchaseOrders.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// List retrieves purchase orders with optional supplier/status filters.
func (s *purchaseOrderService) List(ctx context.Context, filter repository.PurchaseOrderFilter) ([]*domain.PurchaseOrder, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	if filter.Status != "" {
		if _, ok := purchaseOrderStatuses[filter.Status]; !ok {
			return nil, 0, fmt.Errorf("%w: unknown purchase order status %q", domain.ErrValidation, filter.Status)
		}
	}

	var (
		pos   []*domain.PurchaseOrder
		total int
	)
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		pos, total, err = r.PurchaseOrders.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return pos, total, nil
}
