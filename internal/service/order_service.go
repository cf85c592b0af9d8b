package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartshop/internal/domain"
	"smartshop/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLineInput is one requested product in a new order.
type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	CustomerID      uuid.UUID
	Lines           []OrderLineInput
	ShippingAddress string
	ContactPhone    string
	PaymentMethod   string
	Notes           string
}

// AdminOrderUpdate is an admin-side order amendment. Either field may be nil.
type AdminOrderUpdate struct {
	Status    *domain.Status
	ShipperID *uuid.UUID
}

// OrderService defines the interface for order business logic. Placement and
// cancellation are single atomic units: the header, the lines and the
// per-line stock ledger entries commit or roll back together.
type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	Cancel(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*domain.Order, error)
	AdminUpdate(ctx context.Context, orderID uuid.UUID, update AdminOrderUpdate) (*domain.Order, error)
	Get(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*domain.Order, error)
	List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error)
	ListMine(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]*domain.Order, int, error)
}

type orderService struct {
	tx       repository.TxRunner
	cartRepo repository.CartRepository
	logger   *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(tx repository.TxRunner, cartRepo repository.CartRepository, logger *zap.Logger) OrderService {
	return &orderService{tx: tx, cartRepo: cartRepo, logger: logger}
}

// Create places an order: snapshots current prices, checks stock, records one
// `order` ledger entry per line and inserts the header and lines, all in one
// transaction. The customer's cart is cleared afterwards on a best-effort
// basis; a failed clear never fails the order.
func (s *orderService) Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one line", domain.ErrValidation)
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive", domain.ErrValidation)
		}
	}

	order := &domain.Order{
		ID:              uuid.New(),
		CustomerID:      input.CustomerID,
		Status:          domain.StatusPending,
		ShippingFee:     0,
		ShippingAddress: input.ShippingAddress,
		ContactPhone:    input.ContactPhone,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
		OrderedAt:       time.Now(),
	}

	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var total int64
		lines := make([]*domain.OrderLine, 0, len(input.Lines))

		for _, in := range input.Lines {
			product, err := r.Products.FindByID(ctx, in.ProductID)
			if err != nil {
				return err
			}

			if product.Inventory.Stock < in.Quantity {
				return &domain.InsufficientStockError{
					ProductID: in.ProductID,
					Requested: in.Quantity,
					Available: product.Inventory.Stock,
				}
			}

			txn := &domain.StockTransaction{
				ID:            uuid.New(),
				ProductID:     in.ProductID,
				Type:          domain.TransactionOrder,
				Quantity:      in.Quantity,
				PreviousStock: product.Inventory.Stock,
				Note:          fmt.Sprintf("order %s", order.ID),
				CreatedAt:     time.Now(),
			}
			if err := r.StockTransactions.Insert(ctx, txn); err != nil {
				return err
			}
			if err := r.Inventory.UpdateStock(ctx, in.ProductID, product.Inventory.Stock-in.Quantity); err != nil {
				return err
			}

			subtotal := product.UnitPrice * int64(in.Quantity)
			total += subtotal
			lines = append(lines, &domain.OrderLine{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitPrice: product.UnitPrice,
				Subtotal:  subtotal,
			})
		}

		order.Lines = lines
		order.TotalAmount = total + order.ShippingFee

		return r.Orders.Insert(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.Clear(ctx, input.CustomerID); err != nil {
		s.logger.Warn("Failed to clear cart after order placement",
			zap.String("customer_id", input.CustomerID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", input.CustomerID.String()),
		zap.Int64("total_amount", order.TotalAmount),
		zap.Int("lines", len(order.Lines)),
	)

	return order, nil
}

// Cancel cancels an order while it is still pending or confirmed. Stock taken
// by the order is restored through `order_cancel` ledger entries in the same
// transaction that flips the status.
func (s *orderService) Cancel(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		order, err = r.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if requesterRole != domain.RoleAdmin && order.CustomerID != requesterID {
			return fmt.Errorf("order %s: %w", orderID, domain.ErrForbidden)
		}
		if !order.Status.Cancellable() {
			return &domain.InvalidTransitionError{From: order.Status, To: domain.StatusCancelled}
		}

		for _, line := range order.Lines {
			inv, err := r.Inventory.FindByProductID(ctx, line.ProductID)
			if err != nil {
				return err
			}

			txn := &domain.StockTransaction{
				ID:            uuid.New(),
				ProductID:     line.ProductID,
				Type:          domain.TransactionOrderCancel,
				Quantity:      line.Quantity,
				PreviousStock: inv.Stock,
				Note:          fmt.Sprintf("cancel order %s", order.ID),
				CreatedAt:     time.Now(),
			}
			if err := r.StockTransactions.Insert(ctx, txn); err != nil {
				return err
			}
			if err := r.Inventory.UpdateStock(ctx, line.ProductID, inv.Stock+line.Quantity); err != nil {
				return err
			}
		}

		if err := r.Orders.UpdateStatus(ctx, orderID, domain.StatusCancelled); err != nil {
			return err
		}
		if order.Delivery != nil {
			if err := r.Deliveries.UpdateStatus(ctx, orderID, domain.StatusCancelled); err != nil {
				return err
			}
		}

		order.Status = domain.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled",
		zap.String("order_id", orderID.String()),
		zap.String("requester_id", requesterID.String()),
	)

	return order, nil
}

// AdminUpdate amends an order's status and/or shipper assignment. Cancellation
// is refused here because it must restore stock; admins cancel through Cancel.
func (s *orderService) AdminUpdate(ctx context.Context, orderID uuid.UUID, update AdminOrderUpdate) (*domain.Order, error) {
	if update.Status == nil && update.ShipperID == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if update.Status != nil && *update.Status == domain.StatusCancelled {
		return nil, fmt.Errorf("%w: cancellation must go through the cancel operation", domain.ErrValidation)
	}

	var order *domain.Order
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		order, err = r.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if update.ShipperID != nil {
			if err := assignShipperTx(ctx, r, order, *update.ShipperID); err != nil {
				return err
			}
		}

		if update.Status != nil && *update.Status != order.Status {
			if err := r.Orders.UpdateStatus(ctx, orderID, *update.Status); err != nil {
				return err
			}
			order.Status = *update.Status

			// Keep the delivery projection in step, if one exists.
			if err := r.Deliveries.UpdateStatus(ctx, orderID, *update.Status); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		order, err = r.Orders.FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order updated by admin", zap.String("order_id", orderID.String()))
	return order, nil
}

// Get retrieves an order. Customers see only their own orders; the assigned
// shipper and admins see it too.
func (s *orderService) Get(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		order, err = r.Orders.FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	switch {
	case requesterRole == domain.RoleAdmin:
	case order.CustomerID == requesterID:
	case order.Delivery != nil && order.Delivery.ShipperID == requesterID:
	default:
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrForbidden)
	}

	return order, nil
}

// List retrieves orders for the admin surface.
func (s *orderService) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	var (
		orders []*domain.Order
		total  int
	)
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		orders, total, err = r.Orders.List(ctx, normalizeOrderFilter(filter))
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListMine retrieves the requesting customer's own orders.
func (s *orderService) ListMine(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]*domain.Order, int, error) {
	filter := repository.OrderFilter{
		CustomerID: &customerID,
		Page:       page,
		PageSize:   pageSize,
	}
	return s.List(ctx, filter)
}

func normalizeOrderFilter(filter repository.OrderFilter) repository.OrderFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return filter
}
