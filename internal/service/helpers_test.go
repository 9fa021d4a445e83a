package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/cache"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	store      repository.Store
	cache      *recordingCache
	carts      *CartService
	orders     *OrderService
	stock      *StockService
	promotions *PromotionService
	catalog    *CatalogService
	reviews    *ReviewService
	favorites  *FavoriteService
	users      *UserService
}

func newTestEnv(t *testing.T, policy RestockPolicy) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	store.SetClock(func() time.Time { return testNow })
	return newTestEnvWithStore(t, store, policy)
}

func newTestEnvWithStore(t *testing.T, store repository.Store, policy RestockPolicy) *testEnv {
	t.Helper()
	c := &recordingCache{}
	opts := Options{
		RestockPolicy: policy,
		Clock:         func() time.Time { return testNow },
		Logger:        zerolog.Nop(),
	}

	users := NewUserService(store, opts)
	users.bcryptCost = bcrypt.MinCost

	return &testEnv{
		store:      store,
		cache:      c,
		carts:      NewCartService(store, c, opts),
		orders:     NewOrderService(store, c, opts),
		stock:      NewStockService(store, c, opts),
		promotions: NewPromotionService(store, c, opts),
		catalog:    NewCatalogService(store, c, opts),
		reviews:    NewReviewService(store),
		favorites:  NewFavoriteService(store),
		users:      users,
	}
}

func (e *testEnv) seedUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), CreateUserInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "secret",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) seedProduct(t *testing.T, name, price string, stock int) *domain.Product {
	t.Helper()
	p, err := e.catalog.CreateProduct(context.Background(), ProductInput{
		Name:              name,
		Price:             decimal.RequireFromString(price),
		Stock:             stock,
		LowStockThreshold: 5,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) product(t *testing.T, id int64) *domain.Product {
	t.Helper()
	var p *domain.Product
	require.NoError(t, e.store.View(context.Background(), func(q repository.Queries) error {
		var err error
		p, err = q.GetProduct(context.Background(), id)
		return err
	}))
	return p
}

func (e *testEnv) ledger(t *testing.T, productID int64) []*domain.LedgerEntry {
	t.Helper()
	entries, err := e.stock.ListLedger(context.Background(), &productID)
	require.NoError(t, err)
	return entries
}

func (e *testEnv) outbox(t *testing.T) []*domain.OutboxEvent {
	t.Helper()
	var events []*domain.OutboxEvent
	require.NoError(t, e.store.View(context.Background(), func(q repository.Queries) error {
		var err error
		events, err = q.GetUnprocessedEvents(context.Background(), 100)
		return err
	}))
	return events
}

// requireStockInSync checks that the product and its stock record agree and
// returns the current stock.
func (e *testEnv) requireStockInSync(t *testing.T, productID int64) int {
	t.Helper()
	p := e.product(t, productID)
	record, err := e.stock.GetStockRecord(context.Background(), productID)
	require.NoError(t, err)
	require.Equal(t, p.Stock, record.Quantity, "product stock and stock record diverged")
	require.Equal(t, p.LowStockThreshold, record.LowThreshold)
	return p.Stock
}

// recordingCache is a ProductCache that never hits and remembers invalidations.
type recordingCache struct {
	cache.Nop
	mu          sync.Mutex
	invalidated [][]int64
}

func (c *recordingCache) Invalidate(_ context.Context, ids ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ids)
	return nil
}

func (c *recordingCache) invalidatedProduct(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, batch := range c.invalidated {
		for _, got := range batch {
			if got == id {
				return true
			}
		}
	}
	return false
}
