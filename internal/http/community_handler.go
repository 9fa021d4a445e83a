package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

type ReviewService interface {
	AddReview(ctx context.Context, userID, productID int64, rating int, comment string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
	ListAll(ctx context.Context) ([]*domain.Review, error)
	DeleteReview(ctx context.Context, id int64) error
}

type FavoriteService interface {
	AddFavorite(ctx context.Context, userID, productID int64) (*domain.Favorite, error)
	ListFavorites(ctx context.Context, userID int64) ([]*domain.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, productID int64) error
}

// CommunityHandler serves reviews and favorites.
type CommunityHandler struct {
	reviews   ReviewService
	favorites FavoriteService
	timeout   time.Duration
}

func NewCommunityHandler(reviews ReviewService, favorites FavoriteService, timeout time.Duration) *CommunityHandler {
	return &CommunityHandler{reviews: reviews, favorites: favorites, timeout: timeout}
}

type ReviewRequestDTO struct {
	UserID    int64  `json:"userId" validate:"required,gt=0"`
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Rating    int    `json:"note" validate:"required,min=1,max=5"`
	Comment   string `json:"commentaire" validate:"max=2000"`
}

type FavoriteRequestDTO struct {
	UserID    int64 `json:"userId" validate:"required,gt=0"`
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// POST /reviews
func (h *CommunityHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ReviewRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	review, err := h.reviews.AddReview(ctx, req.UserID, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, review)
}

// GET /reviews/{productId}
func (h *CommunityHandler) ProductReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	reviews, err := h.reviews.ListByProduct(ctx, productID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondReviews(w, r, reviews)
}

// GET /reviews
func (h *CommunityHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reviews, err := h.reviews.ListAll(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondReviews(w, r, reviews)
}

func respondReviews(w http.ResponseWriter, r *http.Request, reviews []*domain.Review) {
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	respondJSON(r.Context(), w, http.StatusOK, reviews)
}

// DELETE /reviews/{id}
func (h *CommunityHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.reviews.DeleteReview(ctx, id); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /favorites?userId=
func (h *CommunityHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := queryID(w, r, "userId", true)
	if !ok {
		return
	}
	favorites, err := h.favorites.ListFavorites(ctx, *userID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if favorites == nil {
		favorites = []*domain.Favorite{}
	}
	respondJSON(r.Context(), w, http.StatusOK, favorites)
}

// POST /favorites/add
func (h *CommunityHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req FavoriteRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}
	favorite, err := h.favorites.AddFavorite(ctx, req.UserID, req.ProductID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, favorite)
}

// DELETE /favorites/remove/{productId}?userId=
func (h *CommunityHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	userID, ok := queryID(w, r, "userId", true)
	if !ok {
		return
	}
	if err := h.favorites.RemoveFavorite(ctx, *userID, productID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
