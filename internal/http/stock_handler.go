package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

type StockService interface {
	UpdateStock(ctx context.Context, productID int64, quantity int, isAddition bool) (*domain.StockRecord, error)
	GetLowStockAlerts(ctx context.Context) ([]*domain.StockRecord, error)
	ListStockRecords(ctx context.Context) ([]*domain.StockRecord, error)
	ListLedger(ctx context.Context, productID *int64) ([]*domain.LedgerEntry, error)
}

type StockHandler struct {
	stock   StockService
	timeout time.Duration
}

func NewStockHandler(stock StockService, timeout time.Duration) *StockHandler {
	return &StockHandler{stock: stock, timeout: timeout}
}

type UpdateStockRequestDTO struct {
	Quantity   int  `json:"quantity" validate:"gte=0"`
	IsAddition bool `json:"isAddition"`
}

// GET /stocks
func (h *StockHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	h.listRecords(w, r, h.stock.ListStockRecords)
}

// GET /stocks/low
func (h *StockHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	h.listRecords(w, r, h.stock.GetLowStockAlerts)
}

func (h *StockHandler) listRecords(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]*domain.StockRecord, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	records, err := list(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if records == nil {
		records = []*domain.StockRecord{}
	}
	respondJSON(r.Context(), w, http.StatusOK, records)
}

// PUT /stocks/{productId}
func (h *StockHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	var req UpdateStockRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	record, err := h.stock.UpdateStock(ctx, productID, req.Quantity, req.IsAddition)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, record)
}

// GET /stock-history?productId=
func (h *StockHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := queryID(w, r, "productId", false)
	if !ok {
		return
	}

	entries, err := h.stock.ListLedger(ctx, productID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if entries == nil {
		entries = []*domain.LedgerEntry{}
	}
	respondJSON(r.Context(), w, http.StatusOK, entries)
}
