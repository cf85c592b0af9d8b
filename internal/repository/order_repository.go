package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"smartshop/internal/domain"

	"github.com/google/uuid"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status     *domain.Status
	CustomerID *uuid.UUID
	ShipperID  *uuid.UUID
	Page       int
	PageSize   int
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Insert(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
	SumRevenue(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
}

type orderRepository struct {
	db DBTX
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db DBTX) OrderRepository {
	return &orderRepository{db: db}
}

// Insert writes the order header and all of its lines. Callers run this
// inside a transaction together with the per-line stock ledger entries.
func (r *orderRepository) Insert(ctx context.Context, order *domain.Order) error {
	headerQuery := `
		INSERT INTO orders (id, customer_id, status, total_amount, shipping_fee, shipping_address,
			contact_phone, payment_method, notes, ordered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		headerQuery,
		order.ID,
		order.CustomerID,
		order.Status,
		order.TotalAmount,
		order.ShippingFee,
		order.ShippingAddress,
		order.ContactPhone,
		order.PaymentMethod,
		order.Notes,
		order.OrderedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	lineQuery := `
		INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, line := range order.Lines {
		_, err := r.db.ExecContext(
			ctx,
			lineQuery,
			line.ID,
			order.ID,
			line.ProductID,
			line.Quantity,
			line.UnitPrice,
			line.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	return nil
}

// FindByID retrieves an order with its lines and delivery projection.
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, customer_id, status, total_amount, shipping_fee, shipping_address,
			contact_phone, payment_method, notes, ordered_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.Status,
		&order.TotalAmount,
		&order.ShippingFee,
		&order.ShippingAddress,
		&order.ContactPhone,
		&order.PaymentMethod,
		&order.Notes,
		&order.OrderedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.attachLines(ctx, order); err != nil {
		return nil, err
	}
	if err := r.attachDelivery(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) attachLines(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	lines := []*domain.OrderLine{}
	for rows.Next() {
		line := &domain.OrderLine{}
		err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPrice, &line.Subtotal)
		if err != nil {
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating order lines: %w", err)
	}

	order.Lines = lines
	return nil
}

func (r *orderRepository) attachDelivery(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, order_id, shipper_id, status, updated_at
		FROM deliveries
		WHERE order_id = $1
	`

	delivery := &domain.Delivery{}
	err := r.db.QueryRowContext(ctx, query, order.ID).Scan(
		&delivery.ID,
		&delivery.OrderID,
		&delivery.ShipperID,
		&delivery.Status,
		&delivery.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("failed to load delivery: %w", err)
	}

	order.Delivery = delivery
	return nil
}

// List retrieves orders newest first with optional status/customer/shipper
// filters. Lines are loaded per order.
func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.CustomerID != nil {
		whereClause += fmt.Sprintf(" AND o.customer_id = $%d", argIndex)
		args = append(args, *filter.CustomerID)
		argIndex++
	}

	if filter.ShipperID != nil {
		whereClause += fmt.Sprintf(" AND d.shipper_id = $%d", argIndex)
		args = append(args, *filter.ShipperID)
		argIndex++
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM orders o
		LEFT JOIN deliveries d ON d.order_id = o.id
		%s
	`, whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize

	query := fmt.Sprintf(`
		SELECT o.id, o.customer_id, o.status, o.total_amount, o.shipping_fee, o.shipping_address,
			o.contact_phone, o.payment_method, o.notes, o.ordered_at
		FROM orders o
		LEFT JOIN deliveries d ON d.order_id = o.id
		%s
		ORDER BY o.ordered_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.Status,
			&order.TotalAmount,
			&order.ShippingFee,
			&order.ShippingAddress,
			&order.ContactPhone,
			&order.PaymentMethod,
			&order.Notes,
			&order.OrderedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		if err := r.attachLines(ctx, order); err != nil {
			return nil, 0, err
		}
		if err := r.attachDelivery(ctx, order); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

// SumRevenue totals the amounts of all orders in a revenue-counted status.
func (r *orderRepository) SumRevenue(ctx context.Context) (int64, error) {
	placeholders := make([]string, len(domain.RevenueStatuses))
	args := make([]interface{}, len(domain.RevenueStatuses))
	for i, status := range domain.RevenueStatuses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = status
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE status IN (%s)
	`, strings.Join(placeholders, ", "))

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return total, nil
}

// CountByStatus returns the number of orders in each status.
func (r *orderRepository) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()

	counts := map[domain.Status]int{}
	for rows.Next() {
		var status domain.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

// UpdateStatus sets the order header status.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
