package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the model for the 'orders' table. Orders are immutable once
// created; there is no cancellation or refund flow.
type Order struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"userId" db:"user_id"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status          string          `json:"status" db:"status"`
	TransactionHash *string         `json:"transactionHash,omitempty" db:"transaction_hash"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`

	// Populated by the admin listing join.
	UserEmail string `json:"userEmail,omitempty" db:"-"`
}

// OrderItem is the model for the 'order_items' table. PriceAtPurchase is
// the snapshot taken at checkout; later catalog price changes never touch it.
type OrderItem struct {
	ID              int64           `json:"id" db:"id"`
	OrderID         int64           `json:"orderId" db:"order_id"`
	ProductID       int64           `json:"productId" db:"product_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price" db:"price_at_purchase"`

	// Joined product fields for order history views.
	ProductName  string  `json:"productName,omitempty" db:"-"`
	ProductImage *string `json:"productImage,omitempty" db:"-"`
}
