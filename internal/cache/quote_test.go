package cache_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/cache"
	"github.com/noah-isme/toko-pricing/internal/pricing"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestQuoteCacheRoundTrip(t *testing.T) {
	mr, client := newClient(t)
	c := cache.NewQuoteCache(client, time.Minute)
	ctx := context.Background()

	req := pricing.Request{
		"user_id": json.Number("42"),
		"items":   []any{map[string]any{"price": json.Number("100"), "qty": json.Number("1")}},
	}
	key := cache.Key(req)
	require.NotEmpty(t, key)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	want, err := pricing.ProcessCheckout(req)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, key, want))
	require.Equal(t, time.Minute, mr.TTL(key))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)

	mr.FastForward(time.Minute)
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a := pricing.Request{"user_id": "u1", "coupon": "VIP", "items": []any{}}
	b := pricing.Request{"items": []any{}, "coupon": "VIP", "user_id": "u1"}
	require.Equal(t, cache.Key(a), cache.Key(b))

	c := pricing.Request{"user_id": 1, "items": []any{}}
	d := pricing.Request{"user_id": "1", "items": []any{}}
	require.NotEqual(t, cache.Key(c), cache.Key(d))
}

func TestKeyEmptyForUnencodableRequest(t *testing.T) {
	require.Empty(t, cache.Key(pricing.Request{"user_id": math.NaN()}))
}

func TestKeyEmptyForNonJSONValues(t *testing.T) {
	withDecimal := pricing.Request{"user_id": 1, "items": []any{map[string]any{"price": decimal.NewFromInt(10), "qty": 1}}}
	require.Empty(t, cache.Key(withDecimal))

	typed := pricing.Request{"user_id": 1, "items": []pricing.Request{{"price": 10, "qty": 1}}}
	require.NotEmpty(t, cache.Key(typed))
	require.NotEqual(t, cache.Key(typed), cache.Key(pricing.Request{"user_id": 1, "items": []any{map[string]any{"price": "10", "qty": 1}}}))
}

func TestQuoteCacheDisabled(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)

	for _, c := range []*cache.QuoteCache{
		nil,
		cache.NewQuoteCache(nil, time.Minute),
		cache.NewQuoteCache(client, 0),
	} {
		require.False(t, c.Enabled())
		require.NoError(t, c.Set(ctx, "quote:x", pricing.OrderResult{OrderID: "x"}))
		_, ok, err := c.Get(ctx, "quote:x")
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestQuoteCacheCorruptEntry(t *testing.T) {
	mr, client := newClient(t)
	require.NoError(t, mr.Set("quote:bad", "not-json"))
	c := cache.NewQuoteCache(client, time.Minute)
	_, ok, err := c.Get(context.Background(), "quote:bad")
	require.Error(t, err)
	require.False(t, ok)
}
