package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/cache"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RestockPolicy decides which operations return units to stock.
type RestockPolicy string

const (
	// RestockConsistent returns stock on item removal, cart clear and order
	// cancellation, and lets order creation consume the cart.
	RestockConsistent RestockPolicy = "consistent"
	// RestockLegacy only returns stock on item removal and leaves the cart in
	// place after order creation.
	RestockLegacy RestockPolicy = "legacy"
)

type Options struct {
	RestockPolicy RestockPolicy
	Clock         func() time.Time
	Logger        zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.RestockPolicy == "" {
		o.RestockPolicy = RestockConsistent
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// adjustStock moves product p to newStock and keeps the stock record and the
// ledger in step with it. p must be locked by the current transaction.
func adjustStock(ctx context.Context, q repository.Queries, p *domain.Product, newStock int, action string) error {
	if newStock < 0 {
		return fmt.Errorf("product %d: stock would become %d: %w", p.ID, newStock, domain.ErrNegativeStock)
	}
	delta := newStock - p.Stock
	p.Stock = newStock

	if err := q.UpdateProduct(ctx, p); err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}

	record := &domain.StockRecord{ProductID: p.ID, Quantity: p.Stock, LowThreshold: p.LowStockThreshold}
	if err := q.UpsertStockRecord(ctx, record); err != nil {
		return fmt.Errorf("sync stock record: %w", err)
	}

	entry := &domain.LedgerEntry{ProductID: p.ID, Action: action, Delta: delta, Quantity: p.Stock}
	if err := q.AppendLedgerEntry(ctx, entry); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// lockCart locks the user's cart row, then every product it references, and
// returns the cart as read under those locks. Holding the cart row keeps
// concurrent adds out until the transaction ends.
func lockCart(ctx context.Context, q repository.Queries, userID int64) (*domain.Cart, map[int64]*domain.Product, error) {
	if _, err := q.LockCart(ctx, userID); err != nil {
		return nil, nil, err
	}
	locked := map[int64]*domain.Product{}
	for {
		cart, err := q.GetCartByUserID(ctx, userID)
		if err != nil {
			return nil, nil, err
		}

		var pending []int64
		for _, item := range cart.Items {
			if _, ok := locked[item.ProductID]; !ok {
				pending = append(pending, item.ProductID)
			}
		}
		if len(pending) == 0 {
			return cart, locked, nil
		}

		products, err := q.LockProducts(ctx, pending...)
		if err != nil {
			return nil, nil, err
		}
		for id, p := range products {
			locked[id] = p
		}
	}
}

func enqueueEvent(ctx context.Context, q repository.Queries, aggregateID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	event := &domain.OutboxEvent{AggregateID: aggregateID, EventType: eventType, Payload: data}
	if err := q.InsertOutboxEvent(ctx, event); err != nil {
		return fmt.Errorf("enqueue %s event: %w", eventType, err)
	}
	return nil
}

func newEventID() string {
	return uuid.NewString()
}

func invalidateProducts(c cache.ProductCache, log zerolog.Logger, ids ...int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Invalidate(ctx, ids...); err != nil {
		log.Warn().Err(err).Ints64("product_ids", ids).Msg("cache invalidate error")
	}
}

func requirePositive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d: %w", name, v, domain.ErrInvalidArgument)
	}
	return nil
}
