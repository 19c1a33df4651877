package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-pricing/internal/auth"
	"github.com/noah-isme/toko-pricing/internal/cache"
	"github.com/noah-isme/toko-pricing/internal/checkout"
	"github.com/noah-isme/toko-pricing/internal/config"
	"github.com/noah-isme/toko-pricing/internal/health"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/ratelimit"
	"github.com/noah-isme/toko-pricing/internal/resilience"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)
		resilience.MustRegisterMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), prometheus.DefaultRegisterer)
	}

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "toko-pricing",
			Endpoint:      cfg.OTLPEndpoint,
			SamplingRatio: cfg.TracingSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient = redis.NewClient(redisOpts)
		if tracingEnabled {
			if err := redisotel.InstrumentTracing(redisClient); err != nil {
				logger.Error().Err(err).Msg("instrument redis tracing")
			}
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("ping redis")
		}
	}

	checkoutSvc := &checkout.Service{
		Cache:  cache.NewQuoteCache(redisClient, cfg.QuoteCacheTTL),
		Logger: logger.With().Str("component", "checkout").Logger(),
	}
	if redisClient != nil {
		checkoutSvc.CacheBreaker = resilience.NewBreaker("quote_cache", 5, 0.5, 30*time.Second).WithLogger(logger)
	}

	var limiter ratelimit.Backend
	if cfg.RateLimitMax > 0 && cfg.RateLimitWindow > 0 {
		if redisClient != nil {
			limiter = ratelimit.SlidingWindow{Client: redisClient, Prefix: "ratelimit:quote:", Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax}
		} else {
			limiter = ratelimit.NewFixedWindow(nil, cfg.RateLimitWindow, cfg.RateLimitMax)
		}
	}

	var verifier *auth.Verifier
	if cfg.AuthEnabled() {
		verifier = auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTClockSkew)
	}

	healthHandler := health.Handler{RedisTimeout: cfg.ReadyRedisTimeout}
	if redisClient != nil {
		healthHandler.Checker = readinessChecker{redis: redisClient}
	}

	deps := routerDeps{
		Logger:      logger,
		Metrics:     httpMetrics,
		Tracing:     tracingEnabled,
		Health:      healthHandler,
		Quote:       &checkout.Handler{Svc: checkoutSvc, Logger: logger},
		Limiter:     limiter,
		Auth:        auth.Middleware{Verifier: verifier},
		BodyLimit:   cfg.BodyLimitBytes,
		Security:    cfg.SecurityHeaders,
		CORSOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.MetricsEnabled {
		deps.MetricsHandler = promhttp.Handler()
	}
	if cfg.PprofEnabled {
		deps.Pprof = newPprofHandler(cfg.PprofBasicAuthUser, cfg.PprofBasicAuthPass)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Bool("auth", verifier != nil).Bool("cache", checkoutSvc.Cache.Enabled()).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
		return
	case <-ctx.Done():
	}

	health.SetReady(false)
	logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

type readinessChecker struct {
	redis *redis.Client
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}
