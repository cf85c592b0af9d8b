package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartshop/internal/domain"

	"github.com/google/uuid"
)

// DeliveryRepository defines the interface for delivery data access
type DeliveryRepository interface {
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Delivery, error)
	Upsert(ctx context.Context, orderID, shipperID uuid.UUID, status domain.Status) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.Status) error
}

type deliveryRepository struct {
	db DBTX
}

// NewDeliveryRepository creates a new instance of DeliveryRepository
func NewDeliveryRepository(db DBTX) DeliveryRepository {
	return &deliveryRepository{db: db}
}

// FindByOrderID retrieves the delivery row for an order, if any.
func (r *deliveryRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Delivery, error) {
	query := `
		SELECT id, order_id, shipper_id, status, updated_at
		FROM deliveries
		WHERE order_id = $1
	`

	delivery := &domain.Delivery{}
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&delivery.ID,
		&delivery.OrderID,
		&delivery.ShipperID,
		&delivery.Status,
		&delivery.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("delivery for order %s: %w", orderID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find delivery: %w", err)
	}

	return delivery, nil
}

// Upsert creates the delivery row on first assignment, or re-points it at a
// new shipper and status on later ones. One delivery per order.
func (r *deliveryRepository) Upsert(ctx context.Context, orderID, shipperID uuid.UUID, status domain.Status) error {
	query := `
		INSERT INTO deliveries (id, order_id, shipper_id, status, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (order_id)
		DO UPDATE SET shipper_id = EXCLUDED.shipper_id, status = EXCLUDED.status, updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), orderID, shipperID, status)
	if err != nil {
		return fmt.Errorf("failed to upsert delivery: %w", err)
	}

	return nil
}

// UpdateStatus moves the delivery's own status, keeping it in step with the
// order header.
func (r *deliveryRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.Status) error {
	query := `
		UPDATE deliveries
		SET status = $2, updated_at = NOW()
		WHERE order_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to update delivery status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delivery for order %s: %w", orderID, domain.ErrNotFound)
	}

	return nil
}
