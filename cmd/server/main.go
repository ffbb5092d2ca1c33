package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"skyrate/internal/aggregate"
	"skyrate/internal/config"
	"skyrate/internal/httpapi"
	"skyrate/internal/httpx"
	"skyrate/internal/logger"
	"skyrate/internal/monitor"
	"skyrate/internal/pricing"
	"skyrate/internal/quote"
	"skyrate/internal/randx"
	"skyrate/internal/source"
	"skyrate/internal/source/cache"
	"skyrate/internal/source/ratelimit"
	"skyrate/internal/source/rest"
	"skyrate/internal/source/synthetic"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Get().WithError(err).Fatal("config")
	}
	logger.Configure(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	log := logger.Get().WithComponent("server")

	rnd := randx.New(cfg.Sources.Seed)
	table := pricing.DefaultTable()

	clients := buildClients(cfg, table, rnd)
	if len(clients) == 0 {
		log.Warn("no sources enabled; all requests will use the fallback quote set")
	}

	fallback := func(req quote.Request) []quote.Quote {
		return synthetic.Fallback(req, table, rnd, time.Now)
	}
	agg := aggregate.New(clients, fallback, time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	mon := monitor.New(table, rnd, time.Now)

	handler := httpapi.NewHandler(agg, mon, rnd, time.Now)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server")
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// buildClients assembles the enabled source fleet: synthetic carriers
// plus the optional REST provider wrapped with its rate limit and cache.
func buildClients(cfg config.Config, table pricing.RateTable, rnd *randx.Rand) []source.Client {
	log := logger.Get().WithComponent("server")

	var clients []source.Client
	for _, carrier := range cfg.Sources.Carriers {
		if !carrier.Enabled {
			continue
		}
		clients = append(clients, synthetic.New(synthetic.Config{
			Name:        carrier.Name,
			Category:    quote.Source(carrier.Category),
			PriceFactor: carrier.Factor,
			Table:       table,
		}, rnd, time.Now))
	}

	if cfg.Rest.Enabled {
		if cfg.Rest.Endpoint == "" {
			log.Warn("rest.enabled=true but endpoint not set; skipping")
			return clients
		}
		httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
		var c source.Client = rest.New(rest.Config{
			Name:     cfg.Rest.Name,
			Category: quote.Source(cfg.Rest.Category),
			URL:      cfg.Rest.Endpoint,
			APIKey:   cfg.Rest.APIKey,
		}, rest.WithHTTPClient(httpClient))
		if cfg.Rest.MaxRequestsPerMinute > 0 {
			burst := cfg.Rest.Burst
			if burst <= 0 {
				burst = 1
			}
			c = &ratelimit.TokenBucketClient{C: c, TB: ratelimit.NewTokenBucket(float64(cfg.Rest.MaxRequestsPerMinute)/60.0, burst)}
		} else if cfg.Rest.MinRequestIntervalSec > 0 {
			c = &ratelimit.MinInterval{C: c, Interval: time.Duration(cfg.Rest.MinRequestIntervalSec) * time.Second}
		}
		if cfg.Rest.CacheTTLSeconds > 0 {
			c = &cache.Client{C: c, TTL: time.Duration(cfg.Rest.CacheTTLSeconds) * time.Second, MaxRoutes: cfg.Rest.CacheMaxRoutes}
		}
		clients = append(clients, c)
	}
	return clients
}
