package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/cache"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ProductInput carries the admin-editable product fields.
type ProductInput struct {
	Name              string
	Description       string
	Brand             string
	Ingredients       string
	ExpirationDate    string
	ImagePath         string
	Price             decimal.Decimal
	Stock             int
	LowStockThreshold int
	CategoryID        *int64
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("product name is required: %w", domain.ErrInvalidArgument)
	case in.Price.IsNegative():
		return fmt.Errorf("price must not be negative: %w", domain.ErrInvalidArgument)
	case in.Stock < 0:
		return fmt.Errorf("stock must not be negative: %w", domain.ErrInvalidArgument)
	case in.LowStockThreshold < 0:
		return fmt.Errorf("low stock threshold must not be negative: %w", domain.ErrInvalidArgument)
	}
	return nil
}

func (in ProductInput) apply(p *domain.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Brand = in.Brand
	p.Ingredients = in.Ingredients
	p.ExpirationDate = in.ExpirationDate
	p.ImagePath = in.ImagePath
	p.Price = in.Price
	p.LowStockThreshold = in.LowStockThreshold
	p.CategoryID = in.CategoryID
}

type CatalogService struct {
	store repository.Store
	cache cache.ProductCache
	sfg   singleflight.Group // Prevents cache stampede
	log   zerolog.Logger
}

func NewCatalogService(store repository.Store, products cache.ProductCache, opts Options) *CatalogService {
	opts = opts.withDefaults()
	return &CatalogService{store: store, cache: products, log: opts.Logger}
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(fmt.Sprintf("product:%d", id), func() (interface{}, error) {
		p, err := s.cache.GetProduct(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Msg("cache get error")
		}

		gen, genErr := s.cache.Generation(ctx)
		err = s.store.View(ctx, func(q repository.Queries) error {
			p, err = q.GetProduct(ctx, id)
			return err
		})
		if err != nil {
			return nil, err
		}

		s.fill(genErr, func(c context.Context) error { return s.cache.SetProduct(c, gen, p) })
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryID *int64) ([]*domain.Product, error) {
	key := "products:all"
	if categoryID != nil {
		key = fmt.Sprintf("products:category:%d", *categoryID)
	}

	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		products, err := s.cache.GetProductList(ctx, categoryID)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Msg("cache get error")
		}

		gen, genErr := s.cache.Generation(ctx)
		err = s.store.View(ctx, func(q repository.Queries) error {
			if categoryID != nil {
				if _, err := q.GetCategory(ctx, *categoryID); err != nil {
					return err
				}
			}
			products, err = q.ListProducts(ctx, categoryID)
			return err
		})
		if err != nil {
			return nil, err
		}

		s.fill(genErr, func(c context.Context) error { return s.cache.SetProductList(c, gen, categoryID, products) })
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Product), nil
}

// CreateProduct stores the product together with its stock record and an
// opening ledger entry.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &domain.Product{Stock: in.Stock}
	in.apply(p)
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if err := q.CreateProduct(ctx, p); err != nil {
			return err
		}
		record := &domain.StockRecord{ProductID: p.ID, Quantity: p.Stock, LowThreshold: p.LowStockThreshold}
		if err := q.UpsertStockRecord(ctx, record); err != nil {
			return err
		}
		return q.AppendLedgerEntry(ctx, &domain.LedgerEntry{
			ProductID: p.ID,
			Action:    domain.ActionProductCreated,
			Delta:     p.Stock,
			Quantity:  p.Stock,
		})
	})
	if err != nil {
		return nil, err
	}

	invalidateProducts(s.cache, s.log)
	return p, nil
}

// UpdateProduct overwrites the product fields and syncs stock record and
// ledger with the new stock level.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var product *domain.Product
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		locked, err := q.LockProducts(ctx, id)
		if err != nil {
			return err
		}
		p := locked[id]
		livePrice := p.Price
		in.apply(p)
		if p.HasPromotionBaseline() && !in.Price.Equal(livePrice) {
			if err := rebasePromotion(ctx, q, p); err != nil {
				return err
			}
		}
		if err := adjustStock(ctx, q, p, in.Stock, domain.ActionProductUpdated); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateProducts(s.cache, s.log, id)
	return product, nil
}

// rebasePromotion treats a price edit on a discounted product as a new
// regular price: it becomes the baseline and the running discount is
// applied to it again.
func rebasePromotion(ctx context.Context, q repository.Queries, p *domain.Product) error {
	promotions, err := q.ListPromotions(ctx)
	if err != nil {
		return err
	}
	base := p.Price
	for _, promo := range promotions {
		if promo.ProductID == p.ID {
			p.OriginalPrice = decimal.NewNullDecimal(base)
			p.Price = domain.DiscountedPrice(base, promo.DiscountPercent)
			return nil
		}
	}
	// baseline without a promotion row: nothing left to restore
	p.OriginalPrice = decimal.NullDecimal{}
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}

	invalidateProducts(s.cache, s.log, id)
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := s.store.View(ctx, func(q repository.Queries) error {
		c, err := q.ListCategories(ctx)
		categories = c
		return err
	})
	return categories, err
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var category *domain.Category
	err := s.store.View(ctx, func(q repository.Queries) error {
		c, err := q.GetCategory(ctx, id)
		category = c
		return err
	})
	return category, err
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	c := &domain.Category{Name: strings.TrimSpace(name), Description: description}
	if c.Name == "" {
		return nil, fmt.Errorf("category name is required: %w", domain.ErrInvalidArgument)
	}
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.CreateCategory(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, name, description string) (*domain.Category, error) {
	c := &domain.Category{ID: id, Name: strings.TrimSpace(name), Description: description}
	if c.Name == "" {
		return nil, fmt.Errorf("category name is required: %w", domain.ErrInvalidArgument)
	}
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.UpdateCategory(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes the category; its products stay, uncategorised.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.DeleteCategory(ctx, id)
	})
	if err != nil {
		return err
	}

	invalidateProducts(s.cache, s.log)
	return nil
}

// fill writes a store read back to the cache before the caller returns. A
// generation that could not be read, or that moved while the store was
// read, leaves the cache untouched.
func (s *CatalogService) fill(genErr error, set func(context.Context) error) {
	if genErr != nil {
		s.log.Warn().Err(genErr).Msg("cache generation error")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := set(ctx)
	switch {
	case errors.Is(err, cache.ErrStaleGeneration):
		s.log.Debug().Msg("cache fill skipped, catalog changed meanwhile")
	case err != nil:
		s.log.Warn().Err(err).Msg("cache set error")
	}
}
