package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventContactSubmitted   = "contact.submitted"
)

// OutboxEvent is a pending message written in the same transaction as the
// change it describes.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type EventLine struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type OrderPlacedEvent struct {
	EventID      string          `json:"event_id"`
	OrderID      int64           `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	Email        string          `json:"email"`
	Lines        []EventLine     `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	PlacedAt     time.Time       `json:"placed_at"`
}

type OrderStatusChangedEvent struct {
	EventID      string      `json:"event_id"`
	OrderID      int64       `json:"order_id"`
	CustomerName string      `json:"customer_name"`
	Email        string      `json:"email"`
	From         OrderStatus `json:"from"`
	To           OrderStatus `json:"to"`
}

type ContactSubmittedEvent struct {
	EventID string `json:"event_id"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
