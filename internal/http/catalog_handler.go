package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/service"
	"github.com/shopspring/decimal"
)

type CatalogService interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, categoryID *int64) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in service.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, name, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type CatalogHandler struct {
	catalog CatalogService
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogService, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, timeout: timeout}
}

type ProductRequestDTO struct {
	Name              string          `json:"name" validate:"required,max=255"`
	Description       string          `json:"description"`
	Brand             string          `json:"brand" validate:"max=255"`
	Ingredients       string          `json:"ingredients"`
	ExpirationDate    string          `json:"expirationDate"`
	ImagePath         string          `json:"imagePath"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock" validate:"gte=0"`
	LowStockThreshold int             `json:"lowStockThreshold" validate:"gte=0"`
	CategoryID        *int64          `json:"categoryId" validate:"omitempty,gt=0"`
}

func (d ProductRequestDTO) input() service.ProductInput {
	return service.ProductInput{
		Name:              d.Name,
		Description:       d.Description,
		Brand:             d.Brand,
		Ingredients:       d.Ingredients,
		ExpirationDate:    d.ExpirationDate,
		ImagePath:         d.ImagePath,
		Price:             d.Price,
		Stock:             d.Stock,
		LowStockThreshold: d.LowStockThreshold,
		CategoryID:        d.CategoryID,
	}
}

type CategoryRequestDTO struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// GET /products?categoryId=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categoryID, ok := queryID(w, r, "categoryId", false)
	if !ok {
		return
	}

	products, err := h.catalog.ListProducts(ctx, categoryID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	respondJSON(r.Context(), w, http.StatusOK, products)
}

// GET /products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, product)
}

// POST /products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.catalog.CreateProduct(ctx, req.input())
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, product)
}

// PUT /products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ProductRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.catalog.UpdateProduct(ctx, id, req.input())
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, product)
}

// DELETE /products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(ctx, id); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	respondJSON(r.Context(), w, http.StatusOK, categories)
}

// POST /categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CategoryRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.catalog.CreateCategory(ctx, req.Name, req.Description)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, category)
}

// PUT /categories/{id}
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CategoryRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.catalog.UpdateCategory(ctx, id, req.Name, req.Description)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, category)
}

// DELETE /categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(ctx, id); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
