package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) (*repository.Repository, func()) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &repository.Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../repository/migrations",
	}

	repo, err := repository.NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %s", err)
		}
	}

	return repo, cleanup
}

// unitsAccountedFor returns stock + units in the user's cart + units in the
// user's orders for the product.
func (e *testEnv) unitsAccountedFor(t *testing.T, userID, productID int64) int {
	t.Helper()
	ctx := context.Background()
	total := e.requireStockInSync(t, productID)

	cart, err := e.carts.GetCart(ctx, userID)
	require.NoError(t, err)
	for _, item := range cart.Items {
		if item.ProductID == productID {
			total += item.Quantity
		}
	}

	orders, err := e.orders.ListOrdersByUser(ctx, userID)
	require.NoError(t, err)
	for _, o := range orders {
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		for _, line := range o.Lines {
			if line.ProductID == productID {
				total += line.Quantity
			}
		}
	}
	return total
}

func TestPostgres_CartRowLocking(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()

	t.Run("concurrent buyers and stock movements never oversell", func(t *testing.T) {
		env := newTestEnvWithStore(t, repo, RestockConsistent)
		ctx := context.Background()
		p := env.seedProduct(t, "Rose serum", "24.90", 10)

		var buyers []*domain.User
		for range 15 {
			buyers = append(buyers, env.seedUser(t, uuid.NewString()+"@example.com"))
		}

		var mu sync.Mutex
		added, movedIn, movedOut := 0, 0, 0
		var unexpected []error
		record := func(counter *int, err error, allowed error) {
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				*counter++
			case !errors.Is(err, allowed):
				unexpected = append(unexpected, err)
			}
		}

		var wg sync.WaitGroup
		for _, u := range buyers {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				_, err := env.carts.AddToCart(ctx, userID, p.ID, 1)
				record(&added, err, domain.ErrInsufficientStock)
			}(u.ID)
		}
		for range 5 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := env.stock.UpdateStock(ctx, p.ID, 1, false)
				record(&movedOut, err, domain.ErrNegativeStock)
			}()
			go func() {
				defer wg.Done()
				_, err := env.stock.UpdateStock(ctx, p.ID, 1, true)
				record(&movedIn, err, domain.ErrNegativeStock)
			}()
		}
		wg.Wait()

		require.Empty(t, unexpected)
		stock := env.requireStockInSync(t, p.ID)
		assert.GreaterOrEqual(t, stock, 0)
		assert.Equal(t, 10+movedIn-movedOut-added, stock)

		entries := env.ledger(t, p.ID)
		require.NotEmpty(t, entries)
		assert.Equal(t, stock, entries[len(entries)-1].Quantity, "last ledger entry records the resulting stock")
	})

	t.Run("orders and clears racing adds on the same cart lose no units", func(t *testing.T) {
		env := newTestEnvWithStore(t, repo, RestockConsistent)
		ctx := context.Background()
		u := env.seedUser(t, uuid.NewString()+"@example.com")
		first := env.seedProduct(t, "Cleanser", "12.00", 100)
		second := env.seedProduct(t, "Toner", "9.50", 100)

		var mu sync.Mutex
		var unexpected []error
		check := func(err error, allowed ...error) {
			if err == nil {
				return
			}
			for _, a := range allowed {
				if errors.Is(err, a) {
					return
				}
			}
			mu.Lock()
			unexpected = append(unexpected, err)
			mu.Unlock()
		}

		for round := range 20 {
			_, err := env.carts.AddToCart(ctx, u.ID, first.ID, 1)
			require.NoError(t, err, "round %d", round)

			var wg sync.WaitGroup
			wg.Add(3)
			go func() {
				defer wg.Done()
				_, err := env.carts.AddToCart(ctx, u.ID, second.ID, 1)
				check(err)
			}()
			go func() {
				defer wg.Done()
				_, err := env.orders.CreateOrder(ctx, u.ID)
				check(err, domain.ErrEmptyCart, domain.ErrNotFound)
			}()
			go func() {
				defer wg.Done()
				if round%4 == 0 {
					check(env.carts.ClearCart(ctx, u.ID), domain.ErrNotFound)
				}
			}()
			wg.Wait()
		}

		require.Empty(t, unexpected, fmt.Sprint(unexpected))
		assert.Equal(t, 100, env.unitsAccountedFor(t, u.ID, first.ID))
		assert.Equal(t, 100, env.unitsAccountedFor(t, u.ID, second.ID))
	})
}
