package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog. Prices are stored in minor
// currency units. Stock lives in the product's Inventory row, not here.
type Product struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	UnitPrice   int64      `json:"unit_price" db:"unit_price"`
	CategoryID  uuid.UUID  `json:"category_id" db:"category_id"`
	BrandID     uuid.UUID  `json:"brand_id" db:"brand_id"`
	ImageURL    string     `json:"image_url" db:"image_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	Inventory   *Inventory `json:"inventory,omitempty" db:"-"`
}

// Category represents a product category. Categories form a tree through
// ParentID; catalog filters match a category and all of its descendants.
type Category struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	ImageURL  string     `json:"image_url,omitempty" db:"image_url"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Brand represents a product brand.
type Brand struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Supplier represents an inbound goods supplier.
type Supplier struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
