package checkout

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/toko-pricing/internal/cache"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/resilience"
)

var tracer = otel.Tracer("checkout")

// Service prices checkout requests, consulting the quote cache when one is configured.
type Service struct {
	Cache *cache.QuoteCache
	// CacheBreaker stops cache traffic while Redis keeps failing. Optional.
	CacheBreaker *resilience.Breaker
	Logger       zerolog.Logger
}

// Quote validates and prices req. Cache failures are logged and never fail the quote.
func (s *Service) Quote(ctx context.Context, req pricing.Request) (pricing.OrderResult, error) {
	ctx, span := tracer.Start(ctx, "checkout.Quote")
	defer span.End()

	var key string
	if s.Cache.Enabled() {
		key = cache.Key(req)
	}
	if key != "" && !s.CacheBreaker.Allow(ctx) {
		obs.RecordQuoteCache("bypass")
		key = ""
	}
	if key != "" {
		cached, ok, err := s.Cache.Get(ctx, key)
		s.CacheBreaker.Report(ctx, err == nil)
		switch {
		case err != nil:
			obs.RecordQuoteCache("error")
			s.Logger.Warn().Err(err).Str("key", key).Msg("quote cache read failed")
		case ok:
			obs.RecordQuoteCache("hit")
			span.SetAttributes(attribute.Bool("checkout.cache_hit", true))
			s.record(span, req, cached, nil)
			return cached, nil
		default:
			obs.RecordQuoteCache("miss")
		}
	}

	result, err := pricing.ProcessCheckout(req)
	s.record(span, req, result, err)
	if err != nil {
		return pricing.OrderResult{}, err
	}
	if key != "" {
		err := s.Cache.Set(ctx, key, result)
		s.CacheBreaker.Report(ctx, err == nil)
		if err != nil {
			s.Logger.Warn().Err(err).Str("key", key).Msg("quote cache write failed")
		}
	}
	return result, nil
}

func (s *Service) record(span trace.Span, req pricing.Request, result pricing.OrderResult, err error) {
	label := ResultLabel(err)
	if err != nil {
		obs.RecordQuote(label, "")
		span.RecordError(err)
		span.SetStatus(codes.Error, label)
		return
	}
	coupon, _ := pricing.ParseCoupon(pricing.ParseRequest(req).Coupon)
	obs.RecordQuote(label, coupon.String())
	obs.ObserveQuoteTotal(result.Total)
	span.SetAttributes(
		attribute.String("checkout.coupon", coupon.String()),
		attribute.Int("checkout.items_count", result.ItemsCount),
		attribute.Int64("checkout.total", result.Total),
	)
}

// ResultLabel maps a quote outcome to its metric label.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, pricing.ErrMissingField):
		return "missing_field"
	case errors.Is(err, pricing.ErrInvalidItemsShape):
		return "invalid_items"
	case errors.Is(err, pricing.ErrInvalidItem):
		return "invalid_item"
	case errors.Is(err, pricing.ErrUnknownCoupon):
		return "unknown_coupon"
	default:
		return "error"
	}
}
