package repository

import (
	"context"
	"fmt"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

func (q *pgQueries) GetCartByUserID(ctx context.Context, userID int64) (*domain.Cart, error) {
	var c domain.Cart
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "cart for user", userID)
	}

	query := `SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, p.name, p.price
	          FROM cart_items ci JOIN products p ON p.id = ci.product_id
	          WHERE ci.cart_id = $1 ORDER BY ci.id`
	rows, err := q.db.QueryContext(ctx, query, c.ID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	c.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.ProductName, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan cart item row: %w", err)
		}
		c.Items = append(c.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return &c, nil
}

func (q *pgQueries) LockCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		return nil, notFound(err, "cart for user", userID)
	}
	return q.GetCartByUserID(ctx, userID)
}

func (q *pgQueries) EnsureCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	query := `INSERT INTO carts (user_id) VALUES ($1)
	          ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
	          RETURNING id, user_id, created_at, updated_at`
	var c domain.Cart
	err := q.db.QueryRowContext(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapWriteError(err, "ensure cart")
	}
	return q.GetCartByUserID(ctx, userID)
}

func (q *pgQueries) GetCartOwner(ctx context.Context, cartID int64) (int64, error) {
	var userID int64
	err := q.db.QueryRowContext(ctx, `SELECT user_id FROM carts WHERE id = $1`, cartID).Scan(&userID)
	if err != nil {
		return 0, notFound(err, "cart", cartID)
	}
	return userID, nil
}

func (q *pgQueries) GetCartItem(ctx context.Context, itemID int64) (*domain.CartItem, error) {
	var item domain.CartItem
	err := q.db.QueryRowContext(ctx,
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE id = $1`, itemID,
	).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity)
	if err != nil {
		return nil, notFound(err, "cart item", itemID)
	}
	return &item, nil
}

func (q *pgQueries) FindCartItem(ctx context.Context, cartID, productID int64) (*domain.CartItem, error) {
	var item domain.CartItem
	err := q.db.QueryRowContext(ctx,
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity)
	if err != nil {
		return nil, notFound(err, "cart item for product", productID)
	}
	return &item, nil
}

func (q *pgQueries) CreateCartItem(ctx context.Context, item *domain.CartItem) error {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3) RETURNING id`,
		item.CartID, item.ProductID, item.Quantity,
	).Scan(&item.ID)
	if err != nil {
		return mapWriteError(err, "insert cart item")
	}
	return q.touchCart(ctx, item.CartID)
}

func (q *pgQueries) UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	var cartID int64
	err := q.db.QueryRowContext(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1 RETURNING cart_id`, itemID, quantity,
	).Scan(&cartID)
	if err != nil {
		return notFound(err, "cart item", itemID)
	}
	return q.touchCart(ctx, cartID)
}

func (q *pgQueries) DeleteCartItem(ctx context.Context, itemID int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return expectAffected(res, "cart item", itemID)
}

func (q *pgQueries) DeleteCartItems(ctx context.Context, cartID int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	return q.touchCart(ctx, cartID)
}

func (q *pgQueries) DeleteCart(ctx context.Context, cartID int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return expectAffected(res, "cart", cartID)
}

func (q *pgQueries) touchCart(ctx context.Context, cartID int64) error {
	if _, err := q.db.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
