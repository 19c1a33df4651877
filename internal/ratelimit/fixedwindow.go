package ratelimit

import (
	"context"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// FixedWindow counts requests per key in fixed periods using an in-process store.
// It is used when no Redis is configured.
type FixedWindow struct {
	limiter *limiter.Limiter
	max     int
}

// NewFixedWindow builds a limiter allowing max requests per window. A nil store
// selects the in-memory store.
func NewFixedWindow(store limiter.Store, window time.Duration, max int) *FixedWindow {
	if store == nil {
		store = memory.NewStore()
	}
	rate := limiter.Rate{Period: window, Limit: int64(max)}
	return &FixedWindow{limiter: limiter.New(store, rate), max: max}
}

// Allow increments the counter for key.
func (f *FixedWindow) Allow(ctx context.Context, key string) (Decision, error) {
	if f == nil || f.max <= 0 {
		return Decision{Allowed: true}, nil
	}
	lctx, err := f.limiter.Get(ctx, key)
	if err != nil {
		return Decision{Limit: f.max}, err
	}
	return Decision{
		Allowed:   !lctx.Reached,
		Limit:     int(lctx.Limit),
		Remaining: int(lctx.Remaining),
		ResetAt:   time.Unix(lctx.Reset, 0),
	}, nil
}
