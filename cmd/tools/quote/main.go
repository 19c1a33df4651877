package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/toko-pricing/internal/checkout"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/resilience"
)

// quote prices a batch of checkout requests, locally or against a running API.
// Exit code 0 = all priced, 1 = at least one request rejected, 2 = other error.
func main() {
	_ = godotenv.Load()
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the tool and returns its exit code so deferred cleanup always runs.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "-", "JSON array or newline-delimited objects; - reads stdin")
	remote := fs.String("remote", "", "base URL of a running pricing API; empty prices locally")
	token := fs.String("token", os.Getenv("QUOTE_TOKEN"), "bearer token for -remote")
	timeout := fs.Duration("timeout", 10*time.Second, "per-attempt timeout for -remote")
	attempts := fs.Int("attempts", 3, "attempts per request for -remote")
	level := fs.String("log-level", "info", "stderr log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := obs.NewLoggerTo(stderr, "console", *level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src, err := openInput(*in, stdin)
	if err != nil {
		logger.Error().Err(err).Str("in", *in).Msg("open input")
		return 2
	}
	defer func() { _ = src.Close() }()

	reqs, err := readRequests(src)
	if err != nil {
		logger.Error().Err(err).Msg("read requests")
		return 2
	}

	var q quoter = &checkout.Service{Logger: logger}
	if *remote != "" {
		q = &remoteQuoter{
			Client: resilience.HTTPClient{
				Client:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
				Breaker:     resilience.NewBreaker("pricing_api", 5, 0.5, 5*time.Second).WithLogger(logger),
				MaxAttempts: *attempts,
				BaseBackoff: 200 * time.Millisecond,
				Jitter:      0.2,
				Timeout:     *timeout,
			},
			BaseURL: *remote,
			Token:   *token,
		}
	}

	failed, err := run(ctx, q, reqs, stdout)
	if err != nil {
		logger.Error().Err(err).Msg("write results")
		return 2
	}
	logger.Info().Int("requests", len(reqs)).Int("failed", failed).Msg("done")
	if failed > 0 {
		return 1
	}
	return 0
}

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
