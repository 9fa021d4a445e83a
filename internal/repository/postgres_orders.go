package repository

import (
	"context"
	"fmt"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/lib/pq"
)

func (q *pgQueries) CreateOrder(ctx context.Context, o *domain.Order) error {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, status, total) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		o.UserID, o.Status, o.Total,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "insert order")
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.ID
		err := q.db.QueryRowContext(ctx,
			`INSERT INTO order_lines (order_id, product_id, product_name, quantity, unit_price)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			line.OrderID, line.ProductID, line.ProductName, line.Quantity, line.UnitPrice,
		).Scan(&line.ID)
		if err != nil {
			return mapWriteError(err, "insert order line")
		}
	}
	return nil
}

func (q *pgQueries) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return q.getOrder(ctx, id, "")
}

func (q *pgQueries) LockOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return q.getOrder(ctx, id, " FOR UPDATE")
}

func (q *pgQueries) getOrder(ctx context.Context, id int64, suffix string) (*domain.Order, error) {
	var o domain.Order
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, status, total, created_at, updated_at FROM orders WHERE id = $1`+suffix, id,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "order", id)
	}

	lines, err := q.orderLines(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

func (q *pgQueries) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return q.listOrders(ctx, `SELECT id, user_id, status, total, created_at, updated_at
	    FROM orders ORDER BY created_at DESC, id DESC`)
}

func (q *pgQueries) ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return q.listOrders(ctx, `SELECT id, user_id, status, total, created_at, updated_at
	    FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (q *pgQueries) listOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	var ids []int64
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	if len(ids) == 0 {
		return orders, nil
	}

	lines, err := q.orderLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Lines = lines[o.ID]
	}
	return orders, nil
}

func (q *pgQueries) orderLines(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderLine, error) {
	query := `SELECT id, order_id, COALESCE(product_id, 0), product_name, quantity, unit_price
	          FROM order_lines WHERE order_id = ANY($1) ORDER BY id`
	rows, err := q.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[int64][]domain.OrderLine, len(orderIDs))
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line row: %w", err)
		}
		lines[l.OrderID] = append(lines[l.OrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

func (q *pgQueries) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return expectAffected(res, "order", id)
}
