package repository

import (
	"context"
	"fmt"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

func (q *pgQueries) CreateReview(ctx context.Context, r *domain.Review) error {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO reviews (product_id, user_id, rating, comment) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		r.ProductID, r.UserID, r.Rating, r.Comment,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return mapWriteError(err, "insert review")
	}
	return nil
}

func (q *pgQueries) ListReviews(ctx context.Context) ([]*domain.Review, error) {
	return q.listReviews(ctx, `SELECT id, product_id, user_id, rating, comment, created_at
	    FROM reviews ORDER BY created_at DESC, id DESC`)
}

func (q *pgQueries) ListReviewsByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	return q.listReviews(ctx, `SELECT id, product_id, user_id, rating, comment, created_at
	    FROM reviews WHERE product_id = $1 ORDER BY created_at DESC, id DESC`, productID)
}

func (q *pgQueries) listReviews(ctx context.Context, query string, args ...any) ([]*domain.Review, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reviews, nil
}

func (q *pgQueries) DeleteReview(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return expectAffected(res, "review", id)
}

func (q *pgQueries) CreateFavorite(ctx context.Context, f *domain.Favorite) error {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO favorites (user_id, product_id) VALUES ($1, $2) RETURNING id, created_at`,
		f.UserID, f.ProductID,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return mapWriteError(err, "insert favorite")
	}
	return nil
}

func (q *pgQueries) ListFavoritesByUserID(ctx context.Context, userID int64) ([]*domain.Favorite, error) {
	query := `SELECT f.id, f.user_id, f.created_at, ` + prefixed("p", productColumns) + `
	          FROM favorites f JOIN products p ON p.id = f.product_id
	          WHERE f.user_id = $1 ORDER BY f.id`
	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*domain.Favorite
	for rows.Next() {
		var f domain.Favorite
		var p domain.Product
		err := rows.Scan(&f.ID, &f.UserID, &f.CreatedAt,
			&p.ID, &p.Name, &p.Description, &p.Brand, &p.Ingredients, &p.ExpirationDate, &p.ImagePath,
			&p.Price, &p.OriginalPrice, &p.Stock, &p.LowStockThreshold, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan favorite row: %w", err)
		}
		f.ProductID = p.ID
		f.Product = &p
		favorites = append(favorites, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return favorites, nil
}

func (q *pgQueries) DeleteFavorite(ctx context.Context, userID, productID int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return expectAffected(res, "favorite for product", productID)
}
