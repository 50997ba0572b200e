package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the model for the 'products' table. Nullable columns use
// pointers for clean JSON serialization.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Slug        string          `json:"slug" db:"slug"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	ImageURL    *string         `json:"imageUrl,omitempty" db:"image_url"`
	CategoryID  *int64          `json:"categoryId,omitempty" db:"category_id"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`

	// Joined/aggregated fields, populated by the listing query.
	CategoryName *string `json:"categoryName,omitempty" db:"-"`
	AvgRating    float64 `json:"avgRating" db:"-"`
	ReviewCount  int     `json:"reviewCount" db:"-"`
}
