package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

type CartService interface {
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
	AddToCart(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*domain.Cart, error)
	RemoveFromCart(ctx context.Context, itemID int64) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID int64) error
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	UserID    int64 `json:"userId" validate:"required,gt=0"`
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// GET /cart?userId=
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := queryID(w, r, "userId", true)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(ctx, *userID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, cartResponse(cart))
}

// POST /cart/add
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	cart, err := h.carts.AddToCart(ctx, req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, cartResponse(cart))
}

// PUT /cart/update/{itemId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	var req UpdateQuantityRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	cart, err := h.carts.UpdateCartItem(ctx, itemID, req.Quantity)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, cartResponse(cart))
}

// DELETE /cart/remove/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	cart, err := h.carts.RemoveFromCart(ctx, itemID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, cartResponse(cart))
}

// DELETE /cart/clear?userId=
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := queryID(w, r, "userId", true)
	if !ok {
		return
	}
	if err := h.carts.ClearCart(ctx, *userID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// cartResponse keeps the items array non-null in JSON.
func cartResponse(c *domain.Cart) *domain.Cart {
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return c
}
