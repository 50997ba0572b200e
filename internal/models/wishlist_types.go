package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistEntry is the model for the 'wishlist' table. (user_id, product_id)
// is unique; adds are idempotent.
type WishlistEntry struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Joined product fields for the wishlist view.
	ProductName  string          `json:"productName,omitempty" db:"-"`
	ProductPrice decimal.Decimal `json:"productPrice" db:"-"`
	ProductImage *string         `json:"productImage,omitempty" db:"-"`
}
