package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Promotion struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"productId"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartsAt        time.Time       `json:"startsAt"`
	EndsAt          time.Time       `json:"endsAt"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (p *Promotion) ActiveAt(t time.Time) bool {
	return p.EndsAt.After(t)
}

var hundred = decimal.NewFromInt(100)

// DiscountedPrice applies pct percent off price, rounded to cents.
func DiscountedPrice(price, pct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return price.Mul(factor).Round(2)
}
