package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

// MemoryStore keeps all state in process. Transactions are serialised by a
// single mutex and rolled back by restoring a snapshot taken at begin.
// fn must not start another transaction on the same store.
type MemoryStore struct {
	mu   sync.Mutex
	data *memData
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemData(), now: time.Now}
}

// SetClock overrides the time source used for timestamps.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) WithTx(_ context.Context, fn func(q Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&memQueries{d: s.data, now: s.now}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) View(_ context.Context, fn func(q Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memQueries{d: s.data, now: s.now})
}

func (s *MemoryStore) Close() error {
	return nil
}

type memData struct {
	seq        map[string]int64
	users      map[int64]domain.User
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	stock      map[int64]domain.StockRecord // keyed by product id
	ledger     []domain.LedgerEntry
	carts      map[int64]domain.Cart
	cartItems  map[int64]domain.CartItem
	orders     map[int64]domain.Order
	promotions map[int64]domain.Promotion
	reviews    map[int64]domain.Review
	favorites  map[int64]domain.Favorite
	outbox     []domain.OutboxEvent
}

func newMemData() *memData {
	return &memData{
		seq:        map[string]int64{},
		users:      map[int64]domain.User{},
		categories: map[int64]domain.Category{},
		products:   map[int64]domain.Product{},
		stock:      map[int64]domain.StockRecord{},
		carts:      map[int64]domain.Cart{},
		cartItems:  map[int64]domain.CartItem{},
		orders:     map[int64]domain.Order{},
		promotions: map[int64]domain.Promotion{},
		reviews:    map[int64]domain.Review{},
		favorites:  map[int64]domain.Favorite{},
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		seq:        maps.Clone(d.seq),
		users:      maps.Clone(d.users),
		categories: maps.Clone(d.categories),
		products:   maps.Clone(d.products),
		stock:      maps.Clone(d.stock),
		ledger:     slices.Clone(d.ledger),
		carts:      maps.Clone(d.carts),
		cartItems:  maps.Clone(d.cartItems),
		orders:     make(map[int64]domain.Order, len(d.orders)),
		promotions: maps.Clone(d.promotions),
		reviews:    maps.Clone(d.reviews),
		favorites:  maps.Clone(d.favorites),
		outbox:     slices.Clone(d.outbox),
	}
	for id, o := range d.orders {
		o.Lines = slices.Clone(o.Lines)
		c.orders[id] = o
	}
	return c
}

func (d *memData) next(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

type memQueries struct {
	d   *memData
	now func() time.Time
}

func missing(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
}

func sortedValues[V any](m map[int64]V) []V {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func copyInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// users

func (q *memQueries) CreateUser(_ context.Context, u *domain.User) error {
	for _, existing := range q.d.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("insert user: %w", domain.ErrAlreadyExists)
		}
	}
	u.ID = q.d.next("users")
	u.CreatedAt = q.now()
	q.d.users[u.ID] = *u
	return nil
}

func (q *memQueries) GetUser(_ context.Context, id int64) (*domain.User, error) {
	u, ok := q.d.users[id]
	if !ok {
		return nil, missing("user", id)
	}
	return &u, nil
}

func (q *memQueries) ListUsers(context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for _, u := range sortedValues(q.d.users) {
		users = append(users, &u)
	}
	return users, nil
}

func (q *memQueries) UpdateUser(_ context.Context, u *domain.User) error {
	existing, ok := q.d.users[u.ID]
	if !ok {
		return missing("user", u.ID)
	}
	for id, other := range q.d.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return fmt.Errorf("update user: %w", domain.ErrAlreadyExists)
		}
	}
	existing.FirstName, existing.LastName, existing.Email = u.FirstName, u.LastName, u.Email
	existing.Address, existing.Country, existing.Role = u.Address, u.Country, u.Role
	q.d.users[u.ID] = existing
	return nil
}

func (q *memQueries) SetUserBlocked(_ context.Context, id int64, blocked bool) error {
	u, ok := q.d.users[id]
	if !ok {
		return missing("user", id)
	}
	u.Blocked = blocked
	q.d.users[id] = u
	return nil
}

func (q *memQueries) DeleteUser(_ context.Context, id int64) error {
	if _, ok := q.d.users[id]; !ok {
		return missing("user", id)
	}
	delete(q.d.users, id)
	for cartID, c := range q.d.carts {
		if c.UserID == id {
			q.dropCart(cartID)
		}
	}
	maps.DeleteFunc(q.d.orders, func(_ int64, o domain.Order) bool { return o.UserID == id })
	maps.DeleteFunc(q.d.reviews, func(_ int64, r domain.Review) bool { return r.UserID == id })
	maps.DeleteFunc(q.d.favorites, func(_ int64, f domain.Favorite) bool { return f.UserID == id })
	return nil
}

// categories

func (q *memQueries) CreateCategory(_ context.Context, c *domain.Category) error {
	c.ID = q.d.next("categories")
	q.d.categories[c.ID] = *c
	return nil
}

func (q *memQueries) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	c, ok := q.d.categories[id]
	if !ok {
		return nil, missing("category", id)
	}
	return &c, nil
}

func (q *memQueries) ListCategories(context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, c := range sortedValues(q.d.categories) {
		categories = append(categories, &c)
	}
	slices.SortStableFunc(categories, func(a, b *domain.Category) int { return strings.Compare(a.Name, b.Name) })
	return categories, nil
}

func (q *memQueries) UpdateCategory(_ context.Context, c *domain.Category) error {
	if _, ok := q.d.categories[c.ID]; !ok {
		return missing("category", c.ID)
	}
	q.d.categories[c.ID] = *c
	return nil
}

func (q *memQueries) DeleteCategory(_ context.Context, id int64) error {
	if _, ok := q.d.categories[id]; !ok {
		return missing("category", id)
	}
	delete(q.d.categories, id)
	for pid, p := range q.d.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			q.d.products[pid] = p
		}
	}
	return nil
}

// products

func (q *memQueries) checkCategory(categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, ok := q.d.categories[*categoryID]; !ok {
		return missing("category", *categoryID)
	}
	return nil
}

func (q *memQueries) CreateProduct(_ context.Context, p *domain.Product) error {
	if err := q.checkCategory(p.CategoryID); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = q.d.next("products")
	p.CreatedAt = q.now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	stored.CategoryID = copyInt64(p.CategoryID)
	q.d.products[p.ID] = stored
	return nil
}

func (q *memQueries) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := q.d.products[id]
	if !ok {
		return nil, missing("product", id)
	}
	p.CategoryID = copyInt64(p.CategoryID)
	return &p, nil
}

func (q *memQueries) LockProducts(ctx context.Context, ids ...int64) (map[int64]*domain.Product, error) {
	locked := make(map[int64]*domain.Product, len(ids))
	for _, id := range ids {
		if p, err := q.GetProduct(ctx, id); err == nil {
			locked[id] = p
		}
	}
	return locked, missingProduct(locked, ids)
}

func (q *memQueries) ListProducts(_ context.Context, categoryID *int64) ([]*domain.Product, error) {
	var products []*domain.Product
	for _, p := range sortedValues(q.d.products) {
		if categoryID != nil && (p.CategoryID == nil || *p.CategoryID != *categoryID) {
			continue
		}
		p.CategoryID = copyInt64(p.CategoryID)
		products = append(products, &p)
	}
	return products, nil
}

func (q *memQueries) UpdateProduct(_ context.Context, p *domain.Product) error {
	existing, ok := q.d.products[p.ID]
	if !ok {
		return missing("product", p.ID)
	}
	if p.Stock < 0 {
		return fmt.Errorf("update product %d: negative stock", p.ID)
	}
	if err := q.checkCategory(p.CategoryID); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = q.now()
	stored := *p
	stored.CategoryID = copyInt64(p.CategoryID)
	q.d.products[p.ID] = stored
	return nil
}

func (q *memQueries) DeleteProduct(_ context.Context, id int64) error {
	if _, ok := q.d.products[id]; !ok {
		return missing("product", id)
	}
	delete(q.d.products, id)
	delete(q.d.stock, id)
	q.d.ledger = slices.DeleteFunc(q.d.ledger, func(e domain.LedgerEntry) bool { return e.ProductID == id })
	maps.DeleteFunc(q.d.cartItems, func(_ int64, i domain.CartItem) bool { return i.ProductID == id })
	maps.DeleteFunc(q.d.promotions, func(_ int64, p domain.Promotion) bool { return p.ProductID == id })
	maps.DeleteFunc(q.d.reviews, func(_ int64, r domain.Review) bool { return r.ProductID == id })
	maps.DeleteFunc(q.d.favorites, func(_ int64, f domain.Favorite) bool { return f.ProductID == id })
	for oid, o := range q.d.orders {
		for i := range o.Lines {
			if o.Lines[i].ProductID == id {
				o.Lines[i].ProductID = 0
			}
		}
		q.d.orders[oid] = o
	}
	return nil
}

// stock

func (q *memQueries) withProductName(s domain.StockRecord) *domain.StockRecord {
	s.ProductName = q.d.products[s.ProductID].Name
	return &s
}

func (q *memQueries) GetStockRecord(_ context.Context, productID int64) (*domain.StockRecord, error) {
	s, ok := q.d.stock[productID]
	if !ok {
		return nil, missing("stock record for product", productID)
	}
	return q.withProductName(s), nil
}

func (q *memQueries) UpsertStockRecord(_ context.Context, s *domain.StockRecord) error {
	if _, ok := q.d.products[s.ProductID]; !ok {
		return fmt.Errorf("upsert stock record: %w", missing("product", s.ProductID))
	}
	if s.Quantity < 0 {
		return fmt.Errorf("upsert stock record for product %d: negative quantity", s.ProductID)
	}
	existing, ok := q.d.stock[s.ProductID]
	if ok {
		s.ID = existing.ID
	} else {
		s.ID = q.d.next("stock_records")
	}
	s.UpdatedAt = q.now()
	stored := *s
	stored.ProductName = ""
	q.d.stock[s.ProductID] = stored
	return nil
}

func (q *memQueries) ListStockRecords(context.Context) ([]*domain.StockRecord, error) {
	var records []*domain.StockRecord
	for _, s := range sortedValues(q.d.stock) {
		records = append(records, q.withProductName(s))
	}
	return records, nil
}

func (q *memQueries) ListLowStockRecords(ctx context.Context) ([]*domain.StockRecord, error) {
	all, _ := q.ListStockRecords(ctx)
	low := slices.DeleteFunc(all, func(s *domain.StockRecord) bool { return !s.IsLow() })
	slices.SortStableFunc(low, func(a, b *domain.StockRecord) int { return a.Quantity - b.Quantity })
	return low, nil
}

func (q *memQueries) AppendLedgerEntry(_ context.Context, e *domain.LedgerEntry) error {
	if _, ok := q.d.products[e.ProductID]; !ok {
		return fmt.Errorf("insert ledger entry: %w", missing("product", e.ProductID))
	}
	e.ID = q.d.next("stock_ledger")
	e.CreatedAt = q.now()
	q.d.ledger = append(q.d.ledger, *e)
	return nil
}

func (q *memQueries) ListLedgerEntries(_ context.Context, productID *int64) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	for _, e := range q.d.ledger {
		if productID != nil && e.ProductID != *productID {
			continue
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

// carts

// LockCart is GetCartByUserID; transactions are already serialised.
func (q *memQueries) LockCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	return q.GetCartByUserID(ctx, userID)
}

func (q *memQueries) GetCartByUserID(_ context.Context, userID int64) (*domain.Cart, error) {
	for _, c := range q.d.carts {
		if c.UserID != userID {
			continue
		}
		c.Items = []domain.CartItem{}
		for _, item := range sortedValues(q.d.cartItems) {
			if item.CartID != c.ID {
				continue
			}
			p := q.d.products[item.ProductID]
			item.ProductName, item.UnitPrice = p.Name, p.Price
			c.Items = append(c.Items, item)
		}
		return &c, nil
	}
	return nil, missing("cart for user", userID)
}

func (q *memQueries) EnsureCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	if _, ok := q.d.users[userID]; !ok {
		return nil, fmt.Errorf("ensure cart: %w", missing("user", userID))
	}
	if c, err := q.GetCartByUserID(ctx, userID); err == nil {
		return c, nil
	}
	c := domain.Cart{ID: q.d.next("carts"), UserID: userID, CreatedAt: q.now()}
	c.UpdatedAt = c.CreatedAt
	q.d.carts[c.ID] = c
	return q.GetCartByUserID(ctx, userID)
}

func (q *memQueries) GetCartOwner(_ context.Context, cartID int64) (int64, error) {
	c, ok := q.d.carts[cartID]
	if !ok {
		return 0, missing("cart", cartID)
	}
	return c.UserID, nil
}

func (q *memQueries) GetCartItem(_ context.Context, itemID int64) (*domain.CartItem, error) {
	item, ok := q.d.cartItems[itemID]
	if !ok {
		return nil, missing("cart item", itemID)
	}
	return &item, nil
}

func (q *memQueries) FindCartItem(_ context.Context, cartID, productID int64) (*domain.CartItem, error) {
	for _, item := range q.d.cartItems {
		if item.CartID == cartID && item.ProductID == productID {
			return &item, nil
		}
	}
	return nil, missing("cart item for product", productID)
}

func (q *memQueries) CreateCartItem(ctx context.Context, item *domain.CartItem) error {
	if _, ok := q.d.carts[item.CartID]; !ok {
		return fmt.Errorf("insert cart item: %w", missing("cart", item.CartID))
	}
	if _, ok := q.d.products[item.ProductID]; !ok {
		return fmt.Errorf("insert cart item: %w", missing("product", item.ProductID))
	}
	if _, err := q.FindCartItem(ctx, item.CartID, item.ProductID); err == nil {
		return fmt.Errorf("insert cart item: %w", domain.ErrAlreadyExists)
	}
	if item.Quantity < 1 {
		return fmt.Errorf("insert cart item: quantity %d below 1", item.Quantity)
	}
	item.ID = q.d.next("cart_items")
	q.d.cartItems[item.ID] = domain.CartItem{ID: item.ID, CartID: item.CartID, ProductID: item.ProductID, Quantity: item.Quantity}
	q.touchCart(item.CartID)
	return nil
}

func (q *memQueries) UpdateCartItemQuantity(_ context.Context, itemID int64, quantity int) error {
	item, ok := q.d.cartItems[itemID]
	if !ok {
		return missing("cart item", itemID)
	}
	if quantity < 1 {
		return fmt.Errorf("update cart item: quantity %d below 1", quantity)
	}
	item.Quantity = quantity
	q.d.cartItems[itemID] = item
	q.touchCart(item.CartID)
	return nil
}

func (q *memQueries) DeleteCartItem(_ context.Context, itemID int64) error {
	item, ok := q.d.cartItems[itemID]
	if !ok {
		return missing("cart item", itemID)
	}
	delete(q.d.cartItems, itemID)
	q.touchCart(item.CartID)
	return nil
}

func (q *memQueries) DeleteCartItems(_ context.Context, cartID int64) error {
	maps.DeleteFunc(q.d.cartItems, func(_ int64, i domain.CartItem) bool { return i.CartID == cartID })
	q.touchCart(cartID)
	return nil
}

func (q *memQueries) DeleteCart(_ context.Context, cartID int64) error {
	if _, ok := q.d.carts[cartID]; !ok {
		return missing("cart", cartID)
	}
	q.dropCart(cartID)
	return nil
}

func (q *memQueries) dropCart(cartID int64) {
	delete(q.d.carts, cartID)
	maps.DeleteFunc(q.d.cartItems, func(_ int64, i domain.CartItem) bool { return i.CartID == cartID })
}

func (q *memQueries) touchCart(cartID int64) {
	if c, ok := q.d.carts[cartID]; ok {
		c.UpdatedAt = q.now()
		q.d.carts[cartID] = c
	}
}

// orders

func (q *memQueries) CreateOrder(_ context.Context, o *domain.Order) error {
	if _, ok := q.d.users[o.UserID]; !ok {
		return fmt.Errorf("insert order: %w", missing("user", o.UserID))
	}
	o.ID = q.d.next("orders")
	o.CreatedAt = q.now()
	o.UpdatedAt = o.CreatedAt
	for i := range o.Lines {
		o.Lines[i].ID = q.d.next("order_lines")
		o.Lines[i].OrderID = o.ID
	}
	stored := *o
	stored.Lines = slices.Clone(o.Lines)
	q.d.orders[o.ID] = stored
	return nil
}

func (q *memQueries) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := q.d.orders[id]
	if !ok {
		return nil, missing("order", id)
	}
	o.Lines = slices.Clone(o.Lines)
	return &o, nil
}

func (q *memQueries) LockOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return q.GetOrder(ctx, id)
}

func (q *memQueries) ListOrders(context.Context) ([]*domain.Order, error) {
	return q.listOrders(func(domain.Order) bool { return true }), nil
}

func (q *memQueries) ListOrdersByUserID(_ context.Context, userID int64) ([]*domain.Order, error) {
	return q.listOrders(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (q *memQueries) listOrders(keep func(domain.Order) bool) []*domain.Order {
	var orders []*domain.Order
	for _, o := range sortedValues(q.d.orders) {
		if !keep(o) {
			continue
		}
		o.Lines = slices.Clone(o.Lines)
		orders = append(orders, &o)
	}
	slices.Reverse(orders)
	return orders
}

func (q *memQueries) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	o, ok := q.d.orders[id]
	if !ok {
		return missing("order", id)
	}
	o.Status = status
	o.UpdatedAt = q.now()
	q.d.orders[id] = o
	return nil
}

// promotions

func (q *memQueries) CreatePromotion(_ context.Context, p *domain.Promotion) error {
	if _, ok := q.d.products[p.ProductID]; !ok {
		return fmt.Errorf("insert promotion: %w", missing("product", p.ProductID))
	}
	p.ID = q.d.next("promotions")
	p.CreatedAt = q.now()
	q.d.promotions[p.ID] = *p
	return nil
}

func (q *memQueries) GetPromotion(_ context.Context, id int64) (*domain.Promotion, error) {
	p, ok := q.d.promotions[id]
	if !ok {
		return nil, missing("promotion", id)
	}
	return &p, nil
}

func (q *memQueries) ListPromotions(context.Context) ([]*domain.Promotion, error) {
	return q.listPromotions(func(domain.Promotion) bool { return true }), nil
}

func (q *memQueries) ListActivePromotions(_ context.Context, now time.Time) ([]*domain.Promotion, error) {
	return q.listPromotions(func(p domain.Promotion) bool { return p.ActiveAt(now) }), nil
}

func (q *memQueries) ListExpiredPromotions(_ context.Context, now time.Time) ([]*domain.Promotion, error) {
	return q.listPromotions(func(p domain.Promotion) bool { return !p.ActiveAt(now) }), nil
}

func (q *memQueries) listPromotions(keep func(domain.Promotion) bool) []*domain.Promotion {
	var promotions []*domain.Promotion
	for _, p := range sortedValues(q.d.promotions) {
		if keep(p) {
			promotions = append(promotions, &p)
		}
	}
	return promotions
}

func (q *memQueries) DeletePromotion(_ context.Context, id int64) error {
	if _, ok := q.d.promotions[id]; !ok {
		return missing("promotion", id)
	}
	delete(q.d.promotions, id)
	return nil
}

// reviews and favorites

func (q *memQueries) CreateReview(_ context.Context, r *domain.Review) error {
	if _, ok := q.d.users[r.UserID]; !ok {
		return fmt.Errorf("insert review: %w", missing("user", r.UserID))
	}
	if _, ok := q.d.products[r.ProductID]; !ok {
		return fmt.Errorf("insert review: %w", missing("product", r.ProductID))
	}
	r.ID = q.d.next("reviews")
	r.CreatedAt = q.now()
	q.d.reviews[r.ID] = *r
	return nil
}

func (q *memQueries) ListReviews(context.Context) ([]*domain.Review, error) {
	return q.listReviews(func(domain.Review) bool { return true }), nil
}

func (q *memQueries) ListReviewsByProduct(_ context.Context, productID int64) ([]*domain.Review, error) {
	return q.listReviews(func(r domain.Review) bool { return r.ProductID == productID }), nil
}

func (q *memQueries) listReviews(keep func(domain.Review) bool) []*domain.Review {
	var reviews []*domain.Review
	for _, r := range sortedValues(q.d.reviews) {
		if keep(r) {
			reviews = append(reviews, &r)
		}
	}
	slices.Reverse(reviews)
	return reviews
}

func (q *memQueries) DeleteReview(_ context.Context, id int64) error {
	if _, ok := q.d.reviews[id]; !ok {
		return missing("review", id)
	}
	delete(q.d.reviews, id)
	return nil
}

func (q *memQueries) CreateFavorite(_ context.Context, f *domain.Favorite) error {
	if _, ok := q.d.users[f.UserID]; !ok {
		return fmt.Errorf("insert favorite: %w", missing("user", f.UserID))
	}
	if _, ok := q.d.products[f.ProductID]; !ok {
		return fmt.Errorf("insert favorite: %w", missing("product", f.ProductID))
	}
	for _, existing := range q.d.favorites {
		if existing.UserID == f.UserID && existing.ProductID == f.ProductID {
			return fmt.Errorf("insert favorite: %w", domain.ErrAlreadyExists)
		}
	}
	f.ID = q.d.next("favorites")
	f.CreatedAt = q.now()
	stored := *f
	stored.Product = nil
	q.d.favorites[f.ID] = stored
	return nil
}

func (q *memQueries) ListFavoritesByUserID(ctx context.Context, userID int64) ([]*domain.Favorite, error) {
	var favorites []*domain.Favorite
	for _, f := range sortedValues(q.d.favorites) {
		if f.UserID != userID {
			continue
		}
		p, err := q.GetProduct(ctx, f.ProductID)
		if err != nil {
			return nil, err
		}
		f.Product = p
		favorites = append(favorites, &f)
	}
	return favorites, nil
}

func (q *memQueries) DeleteFavorite(_ context.Context, userID, productID int64) error {
	for id, f := range q.d.favorites {
		if f.UserID == userID && f.ProductID == productID {
			delete(q.d.favorites, id)
			return nil
		}
	}
	return missing("favorite for product", productID)
}

// outbox

func (q *memQueries) InsertOutboxEvent(_ context.Context, e *domain.OutboxEvent) error {
	e.ID = q.d.next("outbox_events")
	e.CreatedAt = q.now()
	stored := *e
	stored.Payload = slices.Clone(e.Payload)
	q.d.outbox = append(q.d.outbox, stored)
	return nil
}

func (q *memQueries) GetUnprocessedEvents(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	for _, e := range q.d.outbox {
		if len(events) == limit {
			break
		}
		if e.ProcessedAt == nil {
			events = append(events, &e)
		}
	}
	return events, nil
}

func (q *memQueries) MarkEventAsProcessed(_ context.Context, id int64) error {
	for i := range q.d.outbox {
		if q.d.outbox[i].ID == id {
			now := q.now()
			q.d.outbox[i].ProcessedAt = &now
			return nil
		}
	}
	return missing("outbox event", id)
}
