package service

import (
	"context"
	"fmt"

	"smartshop/internal/domain"
	"smartshop/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeliveryService drives the delivery leg of an order's lifecycle: assigning
// a shipper and walking the status machine through to delivered.
type DeliveryService interface {
	AssignShipper(ctx context.Context, orderID, shipperID uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next domain.Status, requesterID uuid.UUID, requesterRole string) (*domain.Order, error)
	ListForShipper(ctx context.Context, shipperID uuid.UUID, page, pageSize int) ([]*domain.Order, int, error)
}

type deliveryService struct {
	tx     repository.TxRunner
	logger *zap.Logger
}

// NewDeliveryService creates a new instance of DeliveryService
func NewDeliveryService(tx repository.TxRunner, logger *zap.Logger) DeliveryService {
	return &deliveryService{tx: tx, logger: logger}
}

// assignShipperTx performs the shipper-assignment step inside an open
// transaction. Assignment is allowed only while the order is still pending or
// confirmed and the target user really is a shipper; it confirms the order
// and upserts the delivery row.
func assignShipperTx(ctx context.Context, r *repository.Repos, order *domain.Order, shipperID uuid.UUID) error {
	if !order.Status.Assignable() {
		return &domain.InvalidTransitionError{From: order.Status, To: domain.StatusConfirmed}
	}

	shipper, err := r.Users.FindByID(ctx, shipperID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return fmt.Errorf("shipper %s: %w", shipperID, domain.ErrNotFound)
		}
		return err
	}
	if shipper.Role != domain.RoleShipper {
		return fmt.Errorf("%w: user %s is not a shipper", domain.ErrValidation, shipperID)
	}

	if err := r.Deliveries.Upsert(ctx, order.ID, shipperID, domain.StatusConfirmed); err != nil {
		return err
	}
	if order.Status != domain.StatusConfirmed {
		if err := r.Orders.UpdateStatus(ctx, order.ID, domain.StatusConfirmed); err != nil {
			return err
		}
		order.Status = domain.StatusConfirmed
	}

	return nil
}

// AssignShipper hands an order to a shipper and confirms it.
func (s *deliveryService) AssignShipper(ctx context.Context, orderID, shipperID uuid.UUID) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		order, err = r.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := assignShipperTx(ctx, r, order, shipperID); err != nil {
			return err
		}
		order, err = r.Orders.FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Shipper assigned",
		zap.String("order_id", orderID.String()),
		zap.String("shipper_id", shipperID.String()),
	)

	return order, nil
}

// UpdateStatus advances the delivery along the transition table. Only the
// assigned shipper or an admin may move it, and the order header and the
// delivery row change together.
func (s *deliveryService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next domain.Status, requesterID uuid.UUID, requesterRole string) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		delivery, err := r.Deliveries.FindByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		if requesterRole != domain.RoleAdmin && delivery.ShipperID != requesterID {
			return fmt.Errorf("delivery for order %s: %w", orderID, domain.ErrForbidden)
		}
		if !delivery.Status.CanTransitionTo(next) {
			return &domain.InvalidTransitionError{From: delivery.Status, To: next}
		}

		if err := r.Deliveries.UpdateStatus(ctx, orderID, next); err != nil {
			return err
		}
		if err := r.Orders.UpdateStatus(ctx, orderID, next); err != nil {
			return err
		}

		order, err = r.Orders.FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delivery status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(next)),
	)

	return order, nil
}

// ListForShipper retrieves the orders assigned to the requesting shipper.
func (s *deliveryService) ListForShipper(ctx context.Context, shipperID uuid.UUID, page, pageSize int) ([]*domain.Order, int, error) {
	filter := repository.OrderFilter{
		ShipperID: &shipperID,
		Page:      page,
		PageSize:  pageSize,
	}

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
