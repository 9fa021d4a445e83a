package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
)

type ReviewService struct {
	store repository.Store
}

func NewReviewService(store repository.Store) *ReviewService {
	return &ReviewService{store: store}
}

func (s *ReviewService) AddReview(ctx context.Context, userID, productID int64, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d: %w", rating, domain.ErrInvalidArgument)
	}

	review := &domain.Review{UserID: userID, ProductID: productID, Rating: rating, Comment: strings.TrimSpace(comment)}
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if _, err := q.GetUser(ctx, userID); err != nil {
			return err
		}
		if _, err := q.GetProduct(ctx, productID); err != nil {
			return err
		}
		return q.CreateReview(ctx, review)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	var reviews []*domain.Review
	err := s.store.View(ctx, func(q repository.Queries) error {
		if _, err := q.GetProduct(ctx, productID); err != nil {
			return err
		}
		r, err := q.ListReviewsByProduct(ctx, productID)
		reviews = r
		return err
	})
	return reviews, err
}

func (s *ReviewService) ListAll(ctx context.Context) ([]*domain.Review, error) {
	var reviews []*domain.Review
	err := s.store.View(ctx, func(q repository.Queries) error {
		r, err := q.ListReviews(ctx)
		reviews = r
		return err
	})
	return reviews, err
}

func (s *ReviewService) DeleteReview(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.DeleteReview(ctx, id)
	})
}

type FavoriteService struct {
	store repository.Store
}

func NewFavoriteService(store repository.Store) *FavoriteService {
	return &FavoriteService{store: store}
}

// AddFavorite fails with domain.ErrAlreadyExists when the product is already
// in the user's favorites.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, productID int64) (*domain.Favorite, error) {
	favorite := &domain.Favorite{UserID: userID, ProductID: productID}
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if _, err := q.GetUser(ctx, userID); err != nil {
			return err
		}
		p, err := q.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := q.CreateFavorite(ctx, favorite); err != nil {
			return fmt.Errorf("product %d for user %d: %w", productID, userID, err)
		}
		favorite.Product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return favorite, nil
}

func (s *FavoriteService) ListFavorites(ctx context.Context, userID int64) ([]*domain.Favorite, error) {
	var favorites []*domain.Favorite
	err := s.store.View(ctx, func(q repository.Queries) error {
		if _, err := q.GetUser(ctx, userID); err != nil {
			return err
		}
		f, err := q.ListFavoritesByUserID(ctx, userID)
		favorites = f
		return err
	})
	return favorites, err
}

func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, productID int64) error {
	return s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.DeleteFavorite(ctx, userID, productID)
	})
}
