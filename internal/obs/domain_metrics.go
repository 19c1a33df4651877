package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutQuotesTotal counts priced checkouts by outcome and coupon.
	CheckoutQuotesTotal *prometheus.CounterVec
	// CheckoutQuoteCacheTotal counts quote cache lookups by outcome (hit, miss, error, bypass).
	CheckoutQuoteCacheTotal *prometheus.CounterVec
	// CheckoutQuoteAmount records computed totals in minor units.
	CheckoutQuoteAmount prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers checkout Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutQuotesTotal = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_quotes_total",
			Help:      "Count of checkout pricing outcomes.",
		}, []string{"result", "coupon"}))
		CheckoutQuoteCacheTotal = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_quote_cache_total",
			Help:      "Count of quote cache lookups by outcome.",
		}, []string{"outcome"}))
		CheckoutQuoteAmount = registerOrReuse(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_quote_total_minor",
			Help:      "Distribution of quoted totals in minor currency units.",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		}))
	})
}

// RecordQuote increments the outcome counter. It is a no-op until metrics are registered.
func RecordQuote(result, coupon string) {
	if CheckoutQuotesTotal == nil {
		return
	}
	if coupon == "" {
		coupon = "none"
	}
	CheckoutQuotesTotal.WithLabelValues(result, coupon).Inc()
}

// RecordQuoteCache increments the cache lookup counter.
func RecordQuoteCache(outcome string) {
	if CheckoutQuoteCacheTotal == nil {
		return
	}
	CheckoutQuoteCacheTotal.WithLabelValues(outcome).Inc()
}

// ObserveQuoteTotal records a successful quote amount.
func ObserveQuoteTotal(total int64) {
	if CheckoutQuoteAmount == nil {
		return
	}
	CheckoutQuoteAmount.Observe(float64(total))
}
