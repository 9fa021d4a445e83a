package domain

import "time"

// Ledger action labels.
const (
	ActionAddedToCart     = "added to cart"
	ActionModifiedInCart  = "modified in cart"
	ActionRemovedFromCart = "removed from cart"
	ActionCartCleared     = "cart cleared"
	ActionOrderCancelled  = "order cancelled"
	ActionStockIn         = "in"
	ActionStockOut        = "out"
	ActionProductCreated  = "product created"
	ActionProductUpdated  = "product updated"
)

// StockRecord mirrors Product.Stock and Product.LowStockThreshold.
type StockRecord struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"productId"`
	ProductName  string    `json:"productName,omitempty"`
	Quantity     int       `json:"quantity"`
	LowThreshold int       `json:"lowThreshold"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (s *StockRecord) IsLow() bool {
	return s.Quantity < s.LowThreshold
}

// LedgerEntry is an immutable stock history line. Quantity is the product's
// stock after the action, Delta the signed movement that produced it.
type LedgerEntry struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	Action    string    `json:"action"`
	Delta     int       `json:"delta"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}
