package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/cache"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var maxDiscount = decimal.NewFromInt(100)

// PromotionService applies a discount to a product's live price and keeps
// the pre-promotion price so deleting the promotion can restore it.
type PromotionService struct {
	store    repository.Store
	products cache.ProductCache
	clock    func() time.Time
	log      zerolog.Logger
}

func NewPromotionService(store repository.Store, products cache.ProductCache, opts Options) *PromotionService {
	opts = opts.withDefaults()
	return &PromotionService{store: store, products: products, clock: opts.Clock, log: opts.Logger}
}

func (s *PromotionService) AddPromotion(ctx context.Context, productID int64, pct decimal.Decimal, start, end time.Time) (*domain.Promotion, error) {
	if !pct.IsPositive() || pct.GreaterThan(maxDiscount) {
		return nil, fmt.Errorf("discount must be in (0, 100], got %s: %w", pct, domain.ErrInvalidArgument)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("promotion must start before it ends: %w", domain.ErrInvalidArgument)
	}

	promo := &domain.Promotion{ProductID: productID, DiscountPercent: pct, StartsAt: start, EndsAt: end}
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		locked, err := q.LockProducts(ctx, productID)
		if err != nil {
			return err
		}
		p := locked[productID]
		if p.HasPromotionBaseline() {
			return fmt.Errorf("product %d already has a promotion applied: %w", productID, domain.ErrAlreadyExists)
		}

		p.OriginalPrice = decimal.NewNullDecimal(p.Price)
		p.Price = domain.DiscountedPrice(p.Price, pct)
		if err := q.UpdateProduct(ctx, p); err != nil {
			return err
		}
		return q.CreatePromotion(ctx, promo)
	})
	if err != nil {
		return nil, err
	}

	invalidateProducts(s.products, s.log, productID)
	return promo, nil
}

// DeletePromotion removes the promotion and puts the product back on its
// pre-promotion price.
func (s *PromotionService) DeletePromotion(ctx context.Context, id int64) error {
	var productID int64
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		promo, err := q.GetPromotion(ctx, id)
		if err != nil {
			return err
		}
		productID = promo.ProductID

		locked, err := q.LockProducts(ctx, promo.ProductID)
		if err != nil {
			return err
		}
		if p := locked[promo.ProductID]; p.HasPromotionBaseline() {
			p.Price = p.OriginalPrice.Decimal
			p.OriginalPrice = decimal.NullDecimal{}
			if err := q.UpdateProduct(ctx, p); err != nil {
				return err
			}
		}
		return q.DeletePromotion(ctx, id)
	})
	if err != nil {
		return err
	}

	invalidateProducts(s.products, s.log, productID)
	return nil
}

func (s *PromotionService) ListPromotions(ctx context.Context) ([]*domain.Promotion, error) {
	var promotions []*domain.Promotion
	err := s.store.View(ctx, func(q repository.Queries) error {
		p, err := q.ListPromotions(ctx)
		promotions = p
		return err
	})
	return promotions, err
}

// ListActivePromotions returns promotions that have not ended yet.
func (s *PromotionService) ListActivePromotions(ctx context.Context) ([]*domain.Promotion, error) {
	var promotions []*domain.Promotion
	err := s.store.View(ctx, func(q repository.Queries) error {
		p, err := q.ListActivePromotions(ctx, s.clock())
		promotions = p
		return err
	})
	return promotions, err
}

// ExpirePromotions deletes every ended promotion, restoring prices, and
// returns how many were removed.
func (s *PromotionService) ExpirePromotions(ctx context.Context) (int, error) {
	var expired []*domain.Promotion
	err := s.store.View(ctx, func(q repository.Queries) error {
		p, err := q.ListExpiredPromotions(ctx, s.clock())
		expired = p
		return err
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, promo := range expired {
		err := s.DeletePromotion(ctx, promo.ID)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, domain.ErrNotFound):
			// deleted concurrently
		default:
			s.log.Error().Err(err).Int64("promotion_id", promo.ID).Msg("failed to expire promotion")
		}
	}
	return removed, nil
}
