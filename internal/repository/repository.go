package repository

import (
	"context"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// Queries is the full set of data operations. Missing rows are reported as
// domain.ErrNotFound and unique violations as domain.ErrAlreadyExists.
type Queries interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	SetUserBlocked(ctx context.Context, id int64, blocked bool) error
	DeleteUser(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	// LockProducts loads the given products holding a row lock on each until
	// the surrounding transaction ends. Locks are taken in ascending id order.
	LockProducts(ctx context.Context, ids ...int64) (map[int64]*domain.Product, error)
	ListProducts(ctx context.Context, categoryID *int64) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	GetStockRecord(ctx context.Context, productID int64) (*domain.StockRecord, error)
	UpsertStockRecord(ctx context.Context, s *domain.StockRecord) error
	ListStockRecords(ctx context.Context) ([]*domain.StockRecord, error)
	ListLowStockRecords(ctx context.Context) ([]*domain.StockRecord, error)
	AppendLedgerEntry(ctx context.Context, e *domain.LedgerEntry) error
	ListLedgerEntries(ctx context.Context, productID *int64) ([]*domain.LedgerEntry, error)

	GetCartByUserID(ctx context.Context, userID int64) (*domain.Cart, error)
	// LockCart locks the user's cart row until the transaction ends. Cart
	// writers take it before any product lock.
	LockCart(ctx context.Context, userID int64) (*domain.Cart, error)
	// EnsureCart returns the user's cart, inserting an empty one if needed.
	EnsureCart(ctx context.Context, userID int64) (*domain.Cart, error)
	GetCartItem(ctx context.Context, itemID int64) (*domain.CartItem, error)
	FindCartItem(ctx context.Context, cartID, productID int64) (*domain.CartItem, error)
	CreateCartItem(ctx context.Context, item *domain.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteCartItem(ctx context.Context, itemID int64) error
	DeleteCartItems(ctx context.Context, cartID int64) error
	DeleteCart(ctx context.Context, cartID int64) error
	GetCartOwner(ctx context.Context, cartID int64) (int64, error)

	CreateOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	LockOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error

	CreatePromotion(ctx context.Context, p *domain.Promotion) error
	GetPromotion(ctx context.Context, id int64) (*domain.Promotion, error)
	ListPromotions(ctx context.Context) ([]*domain.Promotion, error)
	ListActivePromotions(ctx context.Context, now time.Time) ([]*domain.Promotion, error)
	ListExpiredPromotions(ctx context.Context, now time.Time) ([]*domain.Promotion, error)
	DeletePromotion(ctx context.Context, id int64) error

	CreateReview(ctx context.Context, r *domain.Review) error
	ListReviews(ctx context.Context) ([]*domain.Review, error)
	ListReviewsByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
	DeleteReview(ctx context.Context, id int64) error

	CreateFavorite(ctx context.Context, f *domain.Favorite) error
	ListFavoritesByUserID(ctx context.Context, userID int64) ([]*domain.Favorite, error)
	DeleteFavorite(ctx context.Context, userID, productID int64) error

	InsertOutboxEvent(ctx context.Context, e *domain.OutboxEvent) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

// Store runs Queries either inside a transaction (WithTx) or directly (View).
// A non-nil error returned from fn rolls the transaction back.
type Store interface {
	WithTx(ctx context.Context, fn func(q Queries) error) error
	View(ctx context.Context, fn func(q Queries) error) error
	Close() error
}
