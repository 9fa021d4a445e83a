package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/cache"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/rs/zerolog"
)

// CartService keeps cart lines and product stock in step: units placed in a
// cart leave the shelf immediately.
type CartService struct {
	store    repository.Store
	products cache.ProductCache
	policy   RestockPolicy
	log      zerolog.Logger
}

func NewCartService(store repository.Store, products cache.ProductCache, opts Options) *CartService {
	opts = opts.withDefaults()
	return &CartService{
		store:    store,
		products: products,
		policy:   opts.RestockPolicy,
		log:      opts.Logger,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		c, err := cartForUser(ctx, q, userID)
		cart = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error) {
	if err := requirePositive("quantity", quantity); err != nil {
		return nil, err
	}

	var cart *domain.Cart
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if _, err := q.GetUser(ctx, userID); err != nil {
			return err
		}
		// cart row before product row, as everywhere else
		c, err := q.EnsureCart(ctx, userID)
		if err != nil {
			return err
		}
		locked, err := q.LockProducts(ctx, productID)
		if err != nil {
			return err
		}
		p := locked[productID]
		if p.Stock < quantity {
			return fmt.Errorf("product %d has %d in stock, %d requested: %w",
				p.ID, p.Stock, quantity, domain.ErrInsufficientStock)
		}

		item, err := q.FindCartItem(ctx, c.ID, productID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			err = q.CreateCartItem(ctx, &domain.CartItem{CartID: c.ID, ProductID: productID, Quantity: quantity})
		case err == nil:
			err = q.UpdateCartItemQuantity(ctx, item.ID, item.Quantity+quantity)
		}
		if err != nil {
			return err
		}

		if err := adjustStock(ctx, q, p, p.Stock-quantity, domain.ActionAddedToCart); err != nil {
			return err
		}
		cart, err = q.GetCartByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateProducts(s.products, s.log, productID)
	return cart, nil
}

func (s *CartService) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*domain.Cart, error) {
	if err := requirePositive("quantity", quantity); err != nil {
		return nil, err
	}

	var cart *domain.Cart
	var productID int64
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		item, p, err := lockCartItem(ctx, q, itemID)
		if err != nil {
			return err
		}
		productID = p.ID

		delta := quantity - item.Quantity
		if delta > 0 && p.Stock < delta {
			return fmt.Errorf("product %d has %d in stock, %d more requested: %w",
				p.ID, p.Stock, delta, domain.ErrInsufficientStock)
		}
		if delta != 0 {
			if err := q.UpdateCartItemQuantity(ctx, item.ID, quantity); err != nil {
				return err
			}
			if err := adjustStock(ctx, q, p, p.Stock-delta, domain.ActionModifiedInCart); err != nil {
				return err
			}
		}

		cart, err = cartByID(ctx, q, item.CartID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateProducts(s.products, s.log, productID)
	return cart, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, itemID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	var productID int64
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		item, p, err := lockCartItem(ctx, q, itemID)
		if err != nil {
			return err
		}
		productID = p.ID

		if err := q.DeleteCartItem(ctx, item.ID); err != nil {
			return err
		}
		if err := adjustStock(ctx, q, p, p.Stock+item.Quantity, domain.ActionRemovedFromCart); err != nil {
			return err
		}

		cart, err = cartByID(ctx, q, item.CartID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateProducts(s.products, s.log, productID)
	return cart, nil
}

// ClearCart deletes the user's cart. Under RestockConsistent every line goes
// back to stock first.
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	var restocked []int64
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if s.policy != RestockConsistent {
			cart, err := q.LockCart(ctx, userID)
			if err != nil {
				return err
			}
			return q.DeleteCart(ctx, cart.ID)
		}

		cart, locked, err := lockCart(ctx, q, userID)
		if err != nil {
			return err
		}
		for _, item := range cart.Items {
			p := locked[item.ProductID]
			if err := adjustStock(ctx, q, p, p.Stock+item.Quantity, domain.ActionCartCleared); err != nil {
				return err
			}
			restocked = append(restocked, p.ID)
		}
		return q.DeleteCart(ctx, cart.ID)
	})
	if err != nil {
		return err
	}

	if len(restocked) > 0 {
		invalidateProducts(s.products, s.log, restocked...)
	}
	return nil
}

// lockCartItem locks the item's cart and product and re-reads the item under
// those locks.
func lockCartItem(ctx context.Context, q repository.Queries, itemID int64) (*domain.CartItem, *domain.Product, error) {
	item, err := q.GetCartItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	owner, err := q.GetCartOwner(ctx, item.CartID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := q.LockCart(ctx, owner); err != nil {
		return nil, nil, err
	}
	locked, err := q.LockProducts(ctx, item.ProductID)
	if err != nil {
		return nil, nil, err
	}
	item, err = q.GetCartItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	return item, locked[item.ProductID], nil
}

func cartForUser(ctx context.Context, q repository.Queries, userID int64) (*domain.Cart, error) {
	if _, err := q.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return q.EnsureCart(ctx, userID)
}

func cartByID(ctx context.Context, q repository.Queries, cartID int64) (*domain.Cart, error) {
	owner, err := q.GetCartOwner(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return q.GetCartByUserID(ctx, owner)
}
