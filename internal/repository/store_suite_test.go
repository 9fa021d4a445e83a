package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite checks the behaviour every Store implementation must share.
// Subtests create their own rows so they can run against one database.
func runStoreSuite(t *testing.T, store Store) {
	t.Run("rollback on error", func(t *testing.T) { testRollback(t, store) })
	t.Run("unique violations", func(t *testing.T) { testUniqueViolations(t, store) })
	t.Run("lock products", func(t *testing.T) { testLockProducts(t, store) })
	t.Run("stock record and ledger", func(t *testing.T) { testStockRecordAndLedger(t, store) })
	t.Run("cart lifecycle", func(t *testing.T) { testCartLifecycle(t, store) })
	t.Run("order with lines", func(t *testing.T) { testOrderWithLines(t, store) })
	t.Run("product delete cascades", func(t *testing.T) { testProductDeleteCascades(t, store) })
	t.Run("promotion windows", func(t *testing.T) { testPromotionWindows(t, store) })
	t.Run("outbox", func(t *testing.T) { testOutbox(t, store) })
}

func seedUser(t *testing.T, store Store) *domain.User {
	t.Helper()
	u := &domain.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleClient,
	}
	require.NoError(t, store.WithTx(context.Background(), func(q Queries) error {
		return q.CreateUser(context.Background(), u)
	}))
	return u
}

func seedProduct(t *testing.T, store Store, price string, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:              "Product " + uuid.NewString()[:8],
		Price:             decimal.RequireFromString(price),
		Stock:             stock,
		LowStockThreshold: 5,
	}
	require.NoError(t, store.WithTx(context.Background(), func(q Queries) error {
		if err := q.CreateProduct(context.Background(), p); err != nil {
			return err
		}
		return q.UpsertStockRecord(context.Background(), &domain.StockRecord{
			ProductID: p.ID, Quantity: p.Stock, LowThreshold: p.LowStockThreshold,
		})
	}))
	return p
}

func getProduct(t *testing.T, store Store, id int64) (*domain.Product, error) {
	t.Helper()
	var p *domain.Product
	err := store.View(context.Background(), func(q Queries) error {
		var err error
		p, err = q.GetProduct(context.Background(), id)
		return err
	})
	return p, err
}

func testRollback(t *testing.T, store Store) {
	ctx := context.Background()
	p := seedProduct(t, store, "10.00", 3)
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(q Queries) error {
		p.Stock = 0
		if err := q.UpdateProduct(ctx, p); err != nil {
			return err
		}
		if err := q.CreateCategory(ctx, &domain.Category{Name: "Ghost"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := getProduct(t, store, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func testUniqueViolations(t *testing.T, store Store) {
	ctx := context.Background()
	u := seedUser(t, store)
	p := seedProduct(t, store, "10.00", 3)

	err := store.WithTx(ctx, func(q Queries) error {
		return q.CreateUser(ctx, &domain.User{Email: u.Email, PasswordHash: "x", Role: domain.RoleClient})
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		return q.CreateFavorite(ctx, &domain.Favorite{UserID: u.ID, ProductID: p.ID})
	}))
	err = store.WithTx(ctx, func(q Queries) error {
		return q.CreateFavorite(ctx, &domain.Favorite{UserID: u.ID, ProductID: p.ID})
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	err = store.WithTx(ctx, func(q Queries) error {
		return q.CreateFavorite(ctx, &domain.Favorite{UserID: u.ID, ProductID: -1})
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testLockProducts(t *testing.T, store Store) {
	ctx := context.Background()
	a := seedProduct(t, store, "10.00", 1)
	b := seedProduct(t, store, "20.00", 2)

	err := store.WithTx(ctx, func(q Queries) error {
		locked, err := q.LockProducts(ctx, b.ID, a.ID)
		if err != nil {
			return err
		}
		assert.Len(t, locked, 2)
		assert.Equal(t, 2, locked[b.ID].Stock)
		return nil
	})
	require.NoError(t, err)

	err = store.WithTx(ctx, func(q Queries) error {
		_, err := q.LockProducts(ctx, a.ID, -7)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testStockRecordAndLedger(t *testing.T, store Store) {
	ctx := context.Background()
	p := seedProduct(t, store, "10.00", 8)

	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		if err := q.UpsertStockRecord(ctx, &domain.StockRecord{ProductID: p.ID, Quantity: 2, LowThreshold: 5}); err != nil {
			return err
		}
		if err := q.AppendLedgerEntry(ctx, &domain.LedgerEntry{ProductID: p.ID, Action: domain.ActionStockOut, Delta: -6, Quantity: 2}); err != nil {
			return err
		}
		return q.AppendLedgerEntry(ctx, &domain.LedgerEntry{ProductID: p.ID, Action: domain.ActionStockIn, Delta: 1, Quantity: 3})
	}))

	require.NoError(t, store.View(ctx, func(q Queries) error {
		record, err := q.GetStockRecord(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, record.Quantity)
		assert.Equal(t, p.Name, record.ProductName)

		low, err := q.ListLowStockRecords(ctx)
		require.NoError(t, err)
		assert.True(t, containsRecord(low, p.ID))

		entries, err := q.ListLedgerEntries(ctx, &p.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.ActionStockOut, entries[0].Action)
		assert.Equal(t, 3, entries[1].Quantity)
		return nil
	}))
}

func containsRecord(records []*domain.StockRecord, productID int64) bool {
	for _, r := range records {
		if r.ProductID == productID {
			return true
		}
	}
	return false
}

func testCartLifecycle(t *testing.T, store Store) {
	ctx := context.Background()
	u := seedUser(t, store)
	p := seedProduct(t, store, "12.50", 10)

	var cartID, itemID int64
	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		cart, err := q.EnsureCart(ctx, u.ID)
		require.NoError(t, err)
		again, err := q.EnsureCart(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, cart.ID, again.ID)
		cartID = cart.ID

		item := &domain.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 2}
		require.NoError(t, q.CreateCartItem(ctx, item))
		itemID = item.ID
		return q.UpdateCartItemQuantity(ctx, item.ID, 3)
	}))

	require.NoError(t, store.View(ctx, func(q Queries) error {
		cart, err := q.GetCartByUserID(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
		assert.Equal(t, p.Name, cart.Items[0].ProductName)
		assert.True(t, cart.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))

		owner, err := q.GetCartOwner(ctx, cartID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, owner)

		found, err := q.FindCartItem(ctx, cartID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, itemID, found.ID)
		return nil
	}))

	err := store.WithTx(ctx, func(q Queries) error {
		return q.CreateCartItem(ctx, &domain.CartItem{CartID: cartID, ProductID: p.ID, Quantity: 1})
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		cart, err := q.LockCart(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, cartID, cart.ID)
		require.Len(t, cart.Items, 1)
		return q.DeleteCartItems(ctx, cartID)
	}))
	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		return q.DeleteCart(ctx, cartID)
	}))
	err = store.View(ctx, func(q Queries) error {
		_, err := q.GetCartByUserID(ctx, u.ID)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = store.WithTx(ctx, func(q Queries) error {
		_, err := q.LockCart(ctx, u.ID)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testOrderWithLines(t *testing.T, store Store) {
	ctx := context.Background()
	u := seedUser(t, store)
	p := seedProduct(t, store, "50.00", 10)

	order := &domain.Order{
		UserID: u.ID,
		Status: domain.OrderStatusPending,
		Total:  decimal.RequireFromString("100.00"),
		Lines: []domain.OrderLine{
			{ProductID: p.ID, ProductName: p.Name, Quantity: 2, UnitPrice: decimal.RequireFromString("50.00")},
		},
	}
	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		return q.CreateOrder(ctx, order)
	}))
	assert.NotZero(t, order.ID)
	assert.NotZero(t, order.Lines[0].ID)

	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		return q.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusShipped)
	}))

	require.NoError(t, store.View(ctx, func(q Queries) error {
		got, err := q.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusShipped, got.Status)
		assert.True(t, got.Total.Equal(decimal.NewFromInt(100)))
		require.Len(t, got.Lines, 1)
		assert.Equal(t, 2, got.Lines[0].Quantity)

		mine, err := q.ListOrdersByUserID(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, order.ID, mine[0].ID)
		return nil
	}))

	err := store.WithTx(ctx, func(q Queries) error {
		return q.UpdateOrderStatus(ctx, -1, domain.OrderStatusShipped)
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testProductDeleteCascades(t *testing.T, store Store) {
	ctx := context.Background()
	u := seedUser(t, store)
	p := seedProduct(t, store, "30.00", 4)

	order := &domain.Order{
		UserID: u.ID,
		Status: domain.OrderStatusPending,
		Total:  decimal.RequireFromString("30.00"),
		Lines:  []domain.OrderLine{{ProductID: p.ID, ProductName: p.Name, Quantity: 1, UnitPrice: p.Price}},
	}
	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		if err := q.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := q.CreateReview(ctx, &domain.Review{UserID: u.ID, ProductID: p.ID, Rating: 5}); err != nil {
			return err
		}
		return q.DeleteProduct(ctx, p.ID)
	}))

	require.NoError(t, store.View(ctx, func(q Queries) error {
		_, err := q.GetStockRecord(ctx, p.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		reviews, err := q.ListReviewsByProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, reviews)

		got, err := q.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, got.Lines, 1)
		assert.Zero(t, got.Lines[0].ProductID)
		assert.Equal(t, p.Name, got.Lines[0].ProductName)
		return nil
	}))
}

func testPromotionWindows(t *testing.T, store Store) {
	ctx := context.Background()
	p := seedProduct(t, store, "40.00", 4)
	now := time.Now().UTC().Truncate(time.Second)

	ended := &domain.Promotion{ProductID: p.ID, DiscountPercent: decimal.NewFromInt(10), StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-time.Hour)}
	running := &domain.Promotion{ProductID: p.ID, DiscountPercent: decimal.NewFromInt(20), StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)}
	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		if err := q.CreatePromotion(ctx, ended); err != nil {
			return err
		}
		return q.CreatePromotion(ctx, running)
	}))

	require.NoError(t, store.View(ctx, func(q Queries) error {
		active, err := q.ListActivePromotions(ctx, now)
		require.NoError(t, err)
		assert.True(t, containsPromotion(active, running.ID))
		assert.False(t, containsPromotion(active, ended.ID))

		expired, err := q.ListExpiredPromotions(ctx, now)
		require.NoError(t, err)
		assert.True(t, containsPromotion(expired, ended.ID))
		assert.False(t, containsPromotion(expired, running.ID))

		got, err := q.GetPromotion(ctx, running.ID)
		require.NoError(t, err)
		assert.True(t, got.DiscountPercent.Equal(decimal.NewFromInt(20)))
		return nil
	}))

	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		return q.DeletePromotion(ctx, ended.ID)
	}))
	err := store.WithTx(ctx, func(q Queries) error {
		return q.DeletePromotion(ctx, ended.ID)
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func containsPromotion(promotions []*domain.Promotion, id int64) bool {
	for _, p := range promotions {
		if p.ID == id {
			return true
		}
	}
	return false
}

func testOutbox(t *testing.T, store Store) {
	ctx := context.Background()
	aggregate := "order-" + uuid.NewString()

	event := &domain.OutboxEvent{
		AggregateID: aggregate,
		EventType:   domain.EventOrderPlaced,
		Payload:     []byte(`{"order_id":1}`),
	}
	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		return q.InsertOutboxEvent(ctx, event)
	}))

	var pending []*domain.OutboxEvent
	require.NoError(t, store.View(ctx, func(q Queries) error {
		var err error
		pending, err = q.GetUnprocessedEvents(ctx, 1000)
		return err
	}))
	var found *domain.OutboxEvent
	for _, e := range pending {
		if e.AggregateID == aggregate {
			found = e
		}
	}
	require.NotNil(t, found)
	assert.JSONEq(t, `{"order_id":1}`, string(found.Payload))

	require.NoError(t, store.WithTx(ctx, func(q Queries) error {
		return q.MarkEventAsProcessed(ctx, found.ID)
	}))
	require.NoError(t, store.View(ctx, func(q Queries) error {
		pending, err := q.GetUnprocessedEvents(ctx, 1000)
		require.NoError(t, err)
		for _, e := range pending {
			assert.NotEqual(t, found.ID, e.ID)
		}
		return nil
	}))
}
