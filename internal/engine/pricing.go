package engine

import (
	"context"
	"fmt"
)

// bytesPerMB matches the decimal megabyte the pricing document quotes.
const bytesPerMB = 1_000_000

// PriceFor is the pricing oracle consumed by the external payment
// collaborator: base price plus a per-megabyte charge, with a minimum
// of one megabyte. Unknown keys price at the configured fallback.
func (e *Engine) PriceFor(ctx context.Context, key string) (int64, error) {
	size, ok, err := e.store.ObjectSize(ctx, key)
	if err != nil {
		return 0, storageFailure(fmt.Errorf("price lookup for %s: %w", key, err))
	}
	if !ok {
		e.logger.Warn("pricing unknown object at fallback", "hash", key, "price", e.cfg.PriceFallback)
		return e.cfg.PriceFallback, nil
	}

	mb := size / bytesPerMB
	if mb == 0 {
		mb = 1
	}
	return e.cfg.PriceBase + mb*e.cfg.PricePerMB, nil
}
