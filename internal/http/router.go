package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Catalog    *CatalogHandler
	Carts      *CartHandler
	Orders     *OrdersHandler
	Stock      *StockHandler
	Promotions *PromotionHandler
	Community  *CommunityHandler
	Users      *UserHandler
}

// NewRouter mounts the admin surface under /api/admin and the storefront
// under /api/client.
func NewRouter(h Handlers, log zerolog.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestIDHeader)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Users.ListUsers)
			r.Post("/", h.Users.CreateUser)
			r.Put("/{id}", h.Users.UpdateUser)
			r.Delete("/{id}", h.Users.DeleteUser)
			r.Put("/{id}/block", h.Users.BlockUser)
			r.Put("/{id}/unblock", h.Users.UnblockUser)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Catalog.ListProducts)
			r.Post("/", h.Catalog.CreateProduct)
			r.Put("/{id}", h.Catalog.UpdateProduct)
			r.Delete("/{id}", h.Catalog.DeleteProduct)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Catalog.ListCategories)
			r.Post("/", h.Catalog.CreateCategory)
			r.Put("/{id}", h.Catalog.UpdateCategory)
			r.Delete("/{id}", h.Catalog.DeleteCategory)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Get("/{id}", h.Orders.GetOrder)
			r.Put("/{id}/status", h.Orders.UpdateStatus)
		})
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h.Community.ListReviews)
			r.Delete("/{id}", h.Community.DeleteReview)
		})
		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", h.Promotions.ListPromotions)
			r.Post("/", h.Promotions.AddPromotion)
			r.Delete("/{id}", h.Promotions.DeletePromotion)
		})
		r.Route("/stocks", func(r chi.Router) {
			r.Get("/", h.Stock.ListStocks)
			r.Get("/low", h.Stock.LowStock)
			r.Put("/{productId}", h.Stock.UpdateStock)
		})
		r.Get("/stock-history", h.Stock.History)
	})

	r.Route("/api/client", func(r chi.Router) {
		r.Get("/products", h.Catalog.ListProducts)
		r.Get("/products/{id}", h.Catalog.GetProduct)
		r.Get("/categories", h.Catalog.ListCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Carts.GetCart)
			r.Post("/add", h.Carts.AddItem)
			r.Put("/update/{itemId}", h.Carts.UpdateQuantity)
			r.Delete("/remove/{itemId}", h.Carts.RemoveItem)
			r.Delete("/clear", h.Carts.ClearCart)
		})
		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.Community.ListFavorites)
			r.Post("/add", h.Community.AddFavorite)
			r.Delete("/remove/{productId}", h.Community.RemoveFavorite)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Orders.CreateOrder)
			r.Get("/", h.Orders.ListUserOrders)
			r.Get("/{id}", h.Orders.GetOrder)
			r.Post("/{id}/cancel", h.Orders.CancelOrder)
		})
		r.Post("/reviews", h.Community.AddReview)
		r.Get("/reviews/{productId}", h.Community.ProductReviews)
		r.Get("/promotions", h.Promotions.ListActive)
		r.Get("/profile", h.Users.Profile)
		r.Post("/contact", h.Users.Contact)
	})

	return otelhttp.NewHandler(r, "shop-api")
}
