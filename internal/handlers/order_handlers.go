package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/amirulhm/storefront-golang/internal/middleware"
	"github.com/amirulhm/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// errOutOfStock aborts the checkout transaction when a guarded stock
// decrement matches no row.
var errOutOfStock = errors.New("insufficient stock")

type OrderItemInput struct {
	ProductID int64           `json:"productId" binding:"required"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderInput struct {
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	Items           []OrderItemInput `json:"items"`
	TransactionHash *string          `json:"transactionHash"`
}

// placeOrder executes checkout as a single transaction: one order row, one
// order_items row per cart line snapshotting the purchase price, and a
// guarded stock decrement per product. Either everything commits or nothing
// does.
//
// The decrement is conditional (stock >= quantity); zero affected rows
// means a concurrent checkout won the remaining stock, and the whole
// transaction is rolled back. Stock can therefore never go negative.
func placeOrder(ctx context.Context, db *sql.DB, userID int64, input CreateOrderInput) (*models.Order, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order := models.Order{
		UserID:          userID,
		TotalAmount:     input.TotalAmount,
		Status:          "pending",
		TransactionHash: input.TransactionHash,
		CreatedAt:       time.Now(),
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, total_amount, status, transaction_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.UserID, order.TotalAmount, order.Status, order.TransactionHash, order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
		VALUES (?, ?, ?, ?)`
	stockQuery := `
		UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`

	for _, item := range input.Items {
		if _, err := tx.ExecContext(ctx, itemQuery, order.ID, item.ProductID, item.Quantity, item.Price); err != nil {
			return nil, err
		}

		res, err := tx.ExecContext(ctx, stockQuery, item.Quantity, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, fmt.Errorf("%w for product %d", errOutOfStock, item.ProductID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder is the handler for POST /api/orders. The order owner always
// comes from the session identity, never from the request body.
func (h *Handlers) CreateOrder(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(input.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be positive"})
			return
		}
		if item.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
			return
		}
	}

	order, err := placeOrder(c.Request.Context(), h.DB, identity.UserID, input)
	if err != nil {
		if errors.Is(err, errOutOfStock) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		// No retry here: blindly re-running a payment-adjacent transaction
		// risks duplicate orders.
		serverError(c, "orders: checkout transaction failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created",
		"order":   order,
	})
}

// GetMyOrders is the handler for GET /api/orders/my-orders. Returns the
// caller's orders, newest first, each with its line items joined with the
// product name and image.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT id, user_id, total_amount, status, transaction_hash, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC`,
		identity.UserID,
	)
	if err != nil {
		serverError(c, "orders: listing query failed", err)
		return
	}
	defer rows.Close()

	type orderWithItems struct {
		models.Order
		Items []models.OrderItem `json:"items"`
	}

	orders := []orderWithItems{}
	for rows.Next() {
		var o orderWithItems
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.TransactionHash, &o.CreatedAt); err != nil {
			serverError(c, "orders: row scan failed", err)
			return
		}
		o.Items = []models.OrderItem{}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		serverError(c, "orders: row iteration failed", err)
		return
	}

	itemQuery := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_at_purchase,
		       p.name, p.image_url
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?`

	for i := range orders {
		itemRows, err := h.DB.Query(itemQuery, orders[i].ID)
		if err != nil {
			serverError(c, "orders: items query failed", err)
			return
		}
		for itemRows.Next() {
			var item models.OrderItem
			if err := itemRows.Scan(
				&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
				&item.PriceAtPurchase, &item.ProductName, &item.ProductImage,
			); err != nil {
				itemRows.Close()
				serverError(c, "orders: item scan failed", err)
				return
			}
			orders[i].Items = append(orders[i].Items, item)
		}
		if err := itemRows.Close(); err != nil {
			serverError(c, "orders: item rows close failed", err)
			return
		}
	}

	c.JSON(http.StatusOK, orders)
}

// GetAllOrders is the handler for GET /api/orders (admin only).
func (h *Handlers) GetAllOrders(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT o.id, o.user_id, o.total_amount, o.status, o.transaction_hash, o.created_at, u.email
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC`,
	)
	if err != nil {
		serverError(c, "orders: admin listing query failed", err)
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.TransactionHash, &o.CreatedAt, &o.UserEmail); err != nil {
			serverError(c, "orders: row scan failed", err)
			return
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		serverError(c, "orders: row iteration failed", err)
		return
	}

	c.JSON(http.StatusOK, orders)
}
