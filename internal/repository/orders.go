package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/bakeshop-system/internal/ids"
	"github.com/mmeshcher/bakeshop-system/internal/model"
)

// CreateOrderAndClearCart создаёт заказ-снимок и очищает корзину покупателя в
// одной транзакции. Очистка защищена версией корзины: если корзина изменилась
// после расчёта заказа, транзакция откатывается с ErrCartConflict и вызывающий
// пересчитывает заказ заново.
func (r *PostgresRepository) CreateOrderAndClearCart(ctx context.Context, order model.Order, cart CartRef) (*model.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx,
		`UPDATE carts SET version = version + 1 WHERE id = $1 AND version = $2`,
		cart.ID, cart.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("bump cart version: %w", asConflict(err))
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, ErrCartConflict
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return nil, fmt.Errorf("clear cart items: %w", err)
	}

	order.ID = ids.New()
	order.Status = model.OrderStatusPending

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, customer_id, total_cents, status) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		order.ID, order.CustomerID, order.TotalCents, string(order.Status),
	).Scan(&order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range order.Lines {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents) VALUES ($1, $2, $3, $4)`,
			order.ID, l.ProductID, l.Quantity, l.UnitPriceCents,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", asConflict(err))
	}

	return &order, nil
}

// GetOrderByID возвращает заказ с позициями.
func (r *PostgresRepository) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	var o model.Order
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_id, total_cents, status, created_at FROM orders WHERE id = $1`,
		orderID,
	).Scan(&o.ID, &o.CustomerID, &o.TotalCents, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.Status = model.OrderStatus(status)

	lines, err := r.orderLines(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]

	return &o, nil
}

// OrdersByCustomer возвращает заказы покупателя, новые первыми.
func (r *PostgresRepository) OrdersByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, customer_id, total_cents, status, created_at
		 FROM orders
		 WHERE customer_id = $1
		 ORDER BY created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	var orderIDs []string
	for rows.Next() {
		var o model.Order
		var status string
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.TotalCents, &status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = model.OrderStatus(status)
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	lines, err := r.orderLines(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}

	return orders, nil
}

func (r *PostgresRepository) orderLines(ctx context.Context, orderIDs []string) (map[string][]model.OrderLine, error) {
	res := make(map[string][]model.OrderLine, len(orderIDs))
	if len(orderIDs) == 0 {
		return res, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT order_id, product_id, quantity, unit_price_cents FROM order_items WHERE order_id = ANY($1)`,
		orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var l model.OrderLine
		if err := rows.Scan(&orderID, &l.ProductID, &l.Quantity, &l.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		res[orderID] = append(res[orderID], l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
