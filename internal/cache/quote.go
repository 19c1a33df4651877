package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-pricing/internal/pricing"
)

// QuotePrefix namespaces quote entries in Redis.
const QuotePrefix = "quote:"

// QuoteCache stores priced checkout results keyed by the canonical request body.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuoteCache constructs a cache helper. A nil client or non-positive ttl disables caching.
func NewQuoteCache(client *redis.Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{client: client, ttl: ttl}
}

// Enabled reports whether Get and Set reach Redis.
func (c *QuoteCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Key derives the cache key for req. Requests holding values other than plain
// JSON types, or that cannot be encoded, yield an empty key and are never cached.
func Key(req pricing.Request) string {
	if !plainJSON(map[string]any(req)) {
		return ""
	}
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return QuotePrefix + hex.EncodeToString(sum[:])
}

// plainJSON reports whether v encodes to JSON without custom marshalers, so two
// values share an encoding only when they share a type.
func plainJSON(v any) bool {
	switch n := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	case map[string]any:
		for _, elem := range n {
			if !plainJSON(elem) {
				return false
			}
		}
		return true
	case pricing.Request:
		return plainJSON(map[string]any(n))
	case []any:
		for _, elem := range n {
			if !plainJSON(elem) {
				return false
			}
		}
		return true
	case []map[string]any:
		for _, elem := range n {
			if !plainJSON(elem) {
				return false
			}
		}
		return true
	case []pricing.Request:
		for _, elem := range n {
			if !plainJSON(elem) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Get returns the cached result for key and whether it existed.
func (c *QuoteCache) Get(ctx context.Context, key string) (pricing.OrderResult, bool, error) {
	var out pricing.OrderResult
	if !c.Enabled() || key == "" {
		return out, false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return out, false, nil
		}
		return out, false, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return pricing.OrderResult{}, false, err
	}
	return out, true, nil
}

// Set stores result under key with the configured TTL.
func (c *QuoteCache) Set(ctx context.Context, key string, result pricing.OrderResult) error {
	if !c.Enabled() || key == "" {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
