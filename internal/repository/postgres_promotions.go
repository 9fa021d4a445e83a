package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

const promotionColumns = `id, product_id, discount_percent, starts_at, ends_at, created_at`

func (q *pgQueries) CreatePromotion(ctx context.Context, p *domain.Promotion) error {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO promotions (product_id, discount_percent, starts_at, ends_at) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.ProductID, p.DiscountPercent, p.StartsAt, p.EndsAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return mapWriteError(err, "insert promotion")
	}
	return nil
}

func (q *pgQueries) GetPromotion(ctx context.Context, id int64) (*domain.Promotion, error) {
	var p domain.Promotion
	err := q.db.QueryRowContext(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE id = $1`, id).
		Scan(&p.ID, &p.ProductID, &p.DiscountPercent, &p.StartsAt, &p.EndsAt, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err, "promotion", id)
	}
	return &p, nil
}

func (q *pgQueries) ListPromotions(ctx context.Context) ([]*domain.Promotion, error) {
	return q.listPromotions(ctx, `SELECT `+promotionColumns+` FROM promotions ORDER BY id`)
}

func (q *pgQueries) ListActivePromotions(ctx context.Context, now time.Time) ([]*domain.Promotion, error) {
	return q.listPromotions(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE ends_at > $1 ORDER BY id`, now)
}

func (q *pgQueries) ListExpiredPromotions(ctx context.Context, now time.Time) ([]*domain.Promotion, error) {
	return q.listPromotions(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE ends_at <= $1 ORDER BY id`, now)
}

func (q *pgQueries) listPromotions(ctx context.Context, query string, args ...any) ([]*domain.Promotion, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var promotions []*domain.Promotion
	for rows.Next() {
		var p domain.Promotion
		if err := rows.Scan(&p.ID, &p.ProductID, &p.DiscountPercent, &p.StartsAt, &p.EndsAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan promotion row: %w", err)
		}
		promotions = append(promotions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return promotions, nil
}

func (q *pgQueries) DeletePromotion(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	return expectAffected(res, "promotion", id)
}
