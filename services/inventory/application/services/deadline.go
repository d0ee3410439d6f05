package services

import (
	"context"
	"time"
)

// DefaultStoreTimeout bounds a store call whose caller set no deadline.
const DefaultStoreTimeout = 5 * time.Second

// storeContext returns ctx unchanged when it already carries a deadline and
// otherwise bounds it by d.
func storeContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}
