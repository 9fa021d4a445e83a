package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
}

func NewOrdersHandler(orders OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status" validate:"required"`
}

// POST /orders?userId=
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := queryID(w, r, "userId", true)
	if !ok {
		return
	}

	order, err := h.orders.CreateOrder(ctx, *userID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, order)
}

// GET /orders, or the orders of one user when userId is given.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := queryID(w, r, "userId", false)
	if !ok {
		return
	}

	var orders []*domain.Order
	var err error
	if userID != nil {
		orders, err = h.orders.ListOrdersByUser(ctx, *userID)
	} else {
		orders, err = h.orders.ListOrders(ctx)
	}
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(r.Context(), w, http.StatusOK, orders)
}

// ListUserOrders serves the client surface, where userId is mandatory.
func (h *OrdersHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("userId") == "" {
		respondError(r.Context(), w, http.StatusBadRequest, "missing_userId", "userId is required")
		return
	}
	h.ListOrders(w, r)
}

// GET /orders/{id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, order)
}

// POST /orders/{id}/cancel
func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, order)
}

// PUT /orders/{id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.orders.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, order)
}
