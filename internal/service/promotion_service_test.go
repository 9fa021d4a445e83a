package service

import (
	"context"
	"testing"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPromotion_AppliesDiscount(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	p := env.seedProduct(t, "Argan oil", "100.00", 10)

	promo, err := env.promotions.AddPromotion(ctx, p.ID, decimal.NewFromInt(20), testNow, testNow.Add(48*time.Hour))
	require.NoError(t, err)
	assert.NotZero(t, promo.ID)

	got := env.product(t, p.ID)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("80.00")), "price was %s", got.Price)
	require.True(t, got.OriginalPrice.Valid)
	assert.True(t, got.OriginalPrice.Decimal.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, env.cache.invalidatedProduct(p.ID))
}

func TestDeletePromotion_RestoresExactPrice(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	p := env.seedProduct(t, "Argan oil", "19.99", 10)

	promo, err := env.promotions.AddPromotion(ctx, p.ID, decimal.RequireFromString("33.3"), testNow, testNow.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, env.promotions.DeletePromotion(ctx, promo.ID))

	got := env.product(t, p.ID)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("19.99")), "price was %s", got.Price)
	assert.False(t, got.OriginalPrice.Valid, "baseline cleared")

	_, err = env.promotions.AddPromotion(ctx, p.ID, decimal.NewFromInt(10), testNow, testNow.Add(time.Hour))
	assert.NoError(t, err, "a new promotion can follow once the baseline is cleared")
}

func TestUpdateProduct_PriceChangeDuringPromotionSurvivesDelete(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	p := env.seedProduct(t, "Argan oil", "100.00", 10)

	promo, err := env.promotions.AddPromotion(ctx, p.ID, decimal.NewFromInt(20), testNow, testNow.Add(time.Hour))
	require.NoError(t, err)

	_, err = env.catalog.UpdateProduct(ctx, p.ID, ProductInput{Name: "Argan oil", Price: decimal.NewFromInt(150), Stock: 10})
	require.NoError(t, err)

	got := env.product(t, p.ID)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("120.00")), "discount reapplied, price was %s", got.Price)
	require.True(t, got.OriginalPrice.Valid)
	assert.True(t, got.OriginalPrice.Decimal.Equal(decimal.NewFromInt(150)))

	require.NoError(t, env.promotions.DeletePromotion(ctx, promo.ID))
	got = env.product(t, p.ID)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(150)), "admin price kept, price was %s", got.Price)
	assert.False(t, got.OriginalPrice.Valid)
}

func TestUpdateProduct_UnchangedPriceKeepsPromotion(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	p := env.seedProduct(t, "Argan oil", "100.00", 10)
	_, err := env.promotions.AddPromotion(ctx, p.ID, decimal.NewFromInt(20), testNow, testNow.Add(time.Hour))
	require.NoError(t, err)

	// an edit that resubmits the live price only touches the other fields
	_, err = env.catalog.UpdateProduct(ctx, p.ID, ProductInput{Name: "Argan oil 50ml", Price: decimal.NewFromInt(80), Stock: 7})
	require.NoError(t, err)

	got := env.product(t, p.ID)
	assert.Equal(t, "Argan oil 50ml", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(80)))
	assert.True(t, got.OriginalPrice.Decimal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 7, env.requireStockInSync(t, p.ID))
}

func TestAddPromotion_RejectsStacking(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	p := env.seedProduct(t, "Argan oil", "100.00", 10)
	_, err := env.promotions.AddPromotion(ctx, p.ID, decimal.NewFromInt(20), testNow, testNow.Add(time.Hour))
	require.NoError(t, err)

	_, err = env.promotions.AddPromotion(ctx, p.ID, decimal.NewFromInt(50), testNow, testNow.Add(time.Hour))
	require.ErrorIs(t, err, domain.ErrAlreadyExists)

	got := env.product(t, p.ID)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(80)))
	promotions, err := env.promotions.ListPromotions(ctx)
	require.NoError(t, err)
	assert.Len(t, promotions, 1)
}

func TestAddPromotion_Validation(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	p := env.seedProduct(t, "Argan oil", "100.00", 10)

	tests := []struct {
		name      string
		productID int64
		pct       string
		start     time.Time
		end       time.Time
		want      error
	}{
		{"zero percent", p.ID, "0", testNow, testNow.Add(time.Hour), domain.ErrInvalidArgument},
		{"over hundred", p.ID, "100.5", testNow, testNow.Add(time.Hour), domain.ErrInvalidArgument},
		{"inverted window", p.ID, "10", testNow, testNow.Add(-time.Hour), domain.ErrInvalidArgument},
		{"unknown product", 999, "10", testNow, testNow.Add(time.Hour), domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.promotions.AddPromotion(ctx, tt.productID, decimal.RequireFromString(tt.pct), tt.start, tt.end)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.False(t, env.product(t, p.ID).OriginalPrice.Valid)
}

func TestAddPromotion_FullDiscountGivesFreeProduct(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	p := env.seedProduct(t, "Sample", "5.00", 10)

	promo, err := env.promotions.AddPromotion(ctx, p.ID, decimal.NewFromInt(100), testNow, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, env.product(t, p.ID).Price.IsZero())

	require.NoError(t, env.promotions.DeletePromotion(ctx, promo.ID))
	assert.True(t, env.product(t, p.ID).Price.Equal(decimal.NewFromInt(5)))
}

func TestDeletePromotion_NotFound(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)

	err := env.promotions.DeletePromotion(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListActivePromotions_AndExpire(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	ended := env.seedProduct(t, "Argan oil", "100.00", 10)
	running := env.seedProduct(t, "Lip balm", "10.00", 10)

	_, err := env.promotions.AddPromotion(ctx, ended.ID, decimal.NewFromInt(20), testNow.Add(-72*time.Hour), testNow.Add(-time.Hour))
	require.NoError(t, err)
	live, err := env.promotions.AddPromotion(ctx, running.ID, decimal.NewFromInt(50), testNow.Add(-time.Hour), testNow.Add(time.Hour))
	require.NoError(t, err)

	active, err := env.promotions.ListActivePromotions(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, live.ID, active[0].ID)

	removed, err := env.promotions.ExpirePromotions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.True(t, env.product(t, ended.ID).Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, env.product(t, running.ID).Price.Equal(decimal.NewFromInt(5)))

	all, err := env.promotions.ListPromotions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
