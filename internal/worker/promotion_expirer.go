package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type PromotionExpirerService interface {
	ExpirePromotions(ctx context.Context) (int, error)
}

// PromotionExpirer periodically removes ended promotions so their products
// return to the baseline price.
type PromotionExpirer struct {
	interval time.Duration
	service  PromotionExpirerService
	log      zerolog.Logger
}

func NewPromotionExpirer(service PromotionExpirerService, interval time.Duration, log zerolog.Logger) *PromotionExpirer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PromotionExpirer{interval: interval, service: service, log: log}
}

func (e *PromotionExpirer) Run(ctx context.Context) {
	e.sweep(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (e *PromotionExpirer) sweep(ctx context.Context) {
	n, err := e.service.ExpirePromotions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			e.log.Error().Err(err).Msg("promotion sweep failed")
		}
		return
	}
	if n > 0 {
		e.log.Info().Int("expired", n).Msg("expired promotions removed")
	}
}
