package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is the order header. It owns its lines; the delivery projection is
// attached when a shipper has been assigned.
type Order struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	CustomerID      uuid.UUID    `json:"customer_id" db:"customer_id"`
	Status          Status       `json:"status" db:"status"`
	TotalAmount     int64        `json:"total_amount" db:"total_amount"`
	ShippingFee     int64        `json:"shipping_fee" db:"shipping_fee"`
	ShippingAddress string       `json:"shipping_address,omitempty" db:"shipping_address"`
	ContactPhone    string       `json:"contact_phone,omitempty" db:"contact_phone"`
	PaymentMethod   string       `json:"payment_method" db:"payment_method"`
	Notes           string       `json:"notes,omitempty" db:"notes"`
	OrderedAt       time.Time    `json:"ordered_at" db:"ordered_at"`
	Lines           []*OrderLine `json:"lines" db:"-"`
	Delivery        *Delivery    `json:"delivery,omitempty" db:"-"`
}

// OrderLine is one product entry within an order. UnitPrice snapshots the
// product's price at order time; Subtotal = UnitPrice * Quantity.
type OrderLine struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	Subtotal  int64     `json:"subtotal" db:"subtotal"`
}

// Delivery is the shipper-assignment projection of an order. Its status
// tracks the order's status; both are written together.
type Delivery struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ShipperID uuid.UUID `json:"shipper_id" db:"shipper_id"`
	Status    Status    `json:"status" db:"status"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
