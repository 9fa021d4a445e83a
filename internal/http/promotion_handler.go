package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/shopspring/decimal"
)

type PromotionService interface {
	AddPromotion(ctx context.Context, productID int64, pct decimal.Decimal, start, end time.Time) (*domain.Promotion, error)
	DeletePromotion(ctx context.Context, id int64) error
	ListPromotions(ctx context.Context) ([]*domain.Promotion, error)
	ListActivePromotions(ctx context.Context) ([]*domain.Promotion, error)
}

type PromotionHandler struct {
	promotions PromotionService
	timeout    time.Duration
}

func NewPromotionHandler(promotions PromotionService, timeout time.Duration) *PromotionHandler {
	return &PromotionHandler{promotions: promotions, timeout: timeout}
}

type PromotionRequestDTO struct {
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Percent   decimal.Decimal `json:"reductionPourcentage"`
	StartsAt  string          `json:"dateDebut" validate:"required"`
	EndsAt    string          `json:"dateFin" validate:"required"`
}

// Accepted timestamp layouts; zone-less values are read as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(field, raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: cannot parse %q as an ISO-8601 timestamp: %w", field, raw, domain.ErrInvalidArgument)
}

// GET /promotions (admin, all)
func (h *PromotionHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.promotions.ListPromotions)
}

// GET /promotions (client, not yet ended)
func (h *PromotionHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.promotions.ListActivePromotions)
}

func (h *PromotionHandler) list(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]*domain.Promotion, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	promotions, err := list(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if promotions == nil {
		promotions = []*domain.Promotion{}
	}
	respondJSON(r.Context(), w, http.StatusOK, promotions)
}

// POST /promotions
func (h *PromotionHandler) AddPromotion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PromotionRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}
	start, err := parseTimestamp("dateDebut", req.StartsAt)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	end, err := parseTimestamp("dateFin", req.EndsAt)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	promo, err := h.promotions.AddPromotion(ctx, req.ProductID, req.Percent, start, end)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, promo)
}

// DELETE /promotions/{id}
func (h *PromotionHandler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.promotions.DeletePromotion(ctx, id); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
