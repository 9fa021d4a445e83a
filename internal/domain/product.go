package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Product is a catalog entry. OriginalPrice holds the pre-promotion price
// while a promotion is applied and is null otherwise.
type Product struct {
	ID                int64               `json:"id"`
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	Brand             string              `json:"brand"`
	Ingredients       string              `json:"ingredients"`
	ExpirationDate    string              `json:"expirationDate"`
	ImagePath         string              `json:"imagePath"`
	Price             decimal.Decimal     `json:"price"`
	OriginalPrice     decimal.NullDecimal `json:"originalPrice"`
	Stock             int                 `json:"stock"`
	LowStockThreshold int                 `json:"lowStockThreshold"`
	CategoryID        *int64              `json:"categoryId,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

func (p *Product) HasPromotionBaseline() bool {
	return p.OriginalPrice.Valid
}
