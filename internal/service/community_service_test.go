package service

import (
	"context"
	"testing"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReview(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com")
	p := env.seedProduct(t, "Rose serum", "24.90", 12)

	review, err := env.reviews.AddReview(ctx, u.ID, p.ID, 4, "  soft on the skin ")
	require.NoError(t, err)
	assert.Equal(t, "soft on the skin", review.Comment)

	reviews, err := env.reviews.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 4, reviews[0].Rating)

	require.NoError(t, env.reviews.DeleteReview(ctx, review.ID))
	reviews, err = env.reviews.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestAddReview_Errors(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com")
	p := env.seedProduct(t, "Rose serum", "24.90", 12)

	tests := []struct {
		name      string
		userID    int64
		productID int64
		rating    int
		want      error
	}{
		{"rating zero", u.ID, p.ID, 0, domain.ErrInvalidArgument},
		{"rating six", u.ID, p.ID, 6, domain.ErrInvalidArgument},
		{"unknown user", 99, p.ID, 3, domain.ErrNotFound},
		{"unknown product", u.ID, 99, 3, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reviews.AddReview(ctx, tt.userID, tt.productID, tt.rating, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := env.reviews.ListByProduct(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.reviews.DeleteReview(ctx, 99), domain.ErrNotFound)
}

func TestFavorites(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com")
	p := env.seedProduct(t, "Rose serum", "24.90", 12)

	favorite, err := env.favorites.AddFavorite(ctx, u.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, favorite.Product)
	assert.Equal(t, "Rose serum", favorite.Product.Name)

	_, err = env.favorites.AddFavorite(ctx, u.ID, p.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)

	favorites, err := env.favorites.ListFavorites(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, p.ID, favorites[0].ProductID)

	require.NoError(t, env.favorites.RemoveFavorite(ctx, u.ID, p.ID))
	assert.ErrorIs(t, env.favorites.RemoveFavorite(ctx, u.ID, p.ID), domain.ErrNotFound)

	_, err = env.favorites.ListFavorites(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
