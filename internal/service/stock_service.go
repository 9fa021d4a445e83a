package service

import (
	"context"
	"fmt"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/cache"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/rs/zerolog"
)

type StockService struct {
	store    repository.Store
	products cache.ProductCache
	log      zerolog.Logger
}

func NewStockService(store repository.Store, products cache.ProductCache, opts Options) *StockService {
	opts = opts.withDefaults()
	return &StockService{store: store, products: products, log: opts.Logger}
}

// UpdateStock records a manual stock movement of quantity units in or out.
func (s *StockService) UpdateStock(ctx context.Context, productID int64, quantity int, isAddition bool) (*domain.StockRecord, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative, got %d: %w", quantity, domain.ErrInvalidArgument)
	}

	var record *domain.StockRecord
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		locked, err := q.LockProducts(ctx, productID)
		if err != nil {
			return err
		}
		current, err := q.GetStockRecord(ctx, productID)
		if err != nil {
			return err
		}

		next, action := current.Quantity+quantity, domain.ActionStockIn
		if !isAddition {
			next, action = current.Quantity-quantity, domain.ActionStockOut
		}
		if next < 0 {
			return fmt.Errorf("product %d has %d in stock, cannot remove %d: %w",
				productID, current.Quantity, quantity, domain.ErrNegativeStock)
		}

		if err := adjustStock(ctx, q, locked[productID], next, action); err != nil {
			return err
		}
		record, err = q.GetStockRecord(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateProducts(s.products, s.log, productID)
	return record, nil
}

// GetLowStockAlerts lists the records whose quantity is under their threshold.
func (s *StockService) GetLowStockAlerts(ctx context.Context) ([]*domain.StockRecord, error) {
	var records []*domain.StockRecord
	err := s.store.View(ctx, func(q repository.Queries) error {
		r, err := q.ListLowStockRecords(ctx)
		records = r
		return err
	})
	return records, err
}

func (s *StockService) ListStockRecords(ctx context.Context) ([]*domain.StockRecord, error) {
	var records []*domain.StockRecord
	err := s.store.View(ctx, func(q repository.Queries) error {
		r, err := q.ListStockRecords(ctx)
		records = r
		return err
	})
	return records, err
}

func (s *StockService) GetStockRecord(ctx context.Context, productID int64) (*domain.StockRecord, error) {
	var record *domain.StockRecord
	err := s.store.View(ctx, func(q repository.Queries) error {
		r, err := q.GetStockRecord(ctx, productID)
		record = r
		return err
	})
	return record, err
}

// ListLedger returns the stock history, oldest first, optionally for one product.
func (s *StockService) ListLedger(ctx context.Context, productID *int64) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	err := s.store.View(ctx, func(q repository.Queries) error {
		e, err := q.ListLedgerEntries(ctx, productID)
		entries = e
		return err
	})
	return entries, err
}
