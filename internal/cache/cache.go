package cache

import (
	"context"
	"errors"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

// ProductCache holds catalog reads. A nil categoryID addresses the
// unfiltered product list.
//
// Writes carry the generation read before the value was loaded from the
// store; a write whose generation is no longer current is dropped with
// ErrStaleGeneration.
type ProductCache interface {
	Generation(ctx context.Context) (int64, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SetProduct(ctx context.Context, gen int64, p *domain.Product) error
	GetProductList(ctx context.Context, categoryID *int64) ([]*domain.Product, error)
	SetProductList(ctx context.Context, gen int64, categoryID *int64, products []*domain.Product) error
	// Invalidate drops the given products and every cached list, and
	// advances the generation.
	Invalidate(ctx context.Context, productIDs ...int64) error
}

var (
	ErrCacheMiss       = errors.New("cache miss")
	ErrStaleGeneration = errors.New("cache generation moved")
)

// Nop never stores anything; every Get is a miss.
type Nop struct{}

func (Nop) GetProduct(context.Context, int64) (*domain.Product, error) {
	return nil, ErrCacheMiss
}

func (Nop) Generation(context.Context) (int64, error) {
	return 0, nil
}

func (Nop) SetProduct(context.Context, int64, *domain.Product) error {
	return nil
}

func (Nop) GetProductList(context.Context, *int64) ([]*domain.Product, error) {
	return nil, ErrCacheMiss
}

func (Nop) SetProductList(context.Context, int64, *int64, []*domain.Product) error {
	return nil
}

func (Nop) Invalidate(context.Context, ...int64) error {
	return nil
}
