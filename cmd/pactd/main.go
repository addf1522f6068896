// Command pactd serves the trade escrow and royalty registry over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/bitfsorg/pact-go/api"
	"github.com/bitfsorg/pact-go/config"
	"github.com/bitfsorg/pact-go/contract"
	"github.com/bitfsorg/pact-go/events"
	"github.com/bitfsorg/pact-go/ledger"
	"github.com/bitfsorg/pact-go/logger"
	"github.com/bitfsorg/pact-go/metrics"
)

const serviceName = "pactd"

func main() {
	configPath := flag.String("config", "", "configuration file (default <datadir>/config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pactd: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Env, cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()
	logg := logger.S()
	logg.Infow("starting [pactd]...", "backend", cfg.Backend, "network", cfg.Network)

	// --- Store ---
	st, err := openStore(ctx, cfg)
	if err != nil {
		logg.Fatalw("failed to open store", "backend", cfg.Backend, "error", err)
	}
	defer st.Close()

	checks := map[string]api.HealthCheck{
		"store": func(ctx context.Context) error {
			return st.View(ctx, func(ledger.Tx) error { return nil })
		},
	}

	// --- Events ---
	var pub events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name(serviceName))
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}
		np, err := events.NewNATSPublisher(nc, cfg.NATSSubject, serviceName)
		if err != nil {
			logg.Fatalw("failed to init publisher", "error", err)
		}
		defer np.Close()
		pub = np
		checks["nats"] = func(context.Context) error {
			if !nc.IsConnected() {
				return errors.New("disconnected")
			}
			return nc.FlushTimeout(time.Second)
		}
	} else {
		logg.Warn("PACT_NATS_URL not configured; events are discarded")
	}

	// --- Contract host ---
	c := contract.New(st,
		contract.WithLogger(logger.L()),
		contract.WithPublisher(pub),
		contract.WithMainnet(cfg.Mainnet()),
	)

	// --- Metrics ---
	if cfg.MetricsAddr != "" {
		srv := metrics.StartServer(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logg.Infow("metrics listening", "addr", cfg.MetricsAddr)
	}

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})
	limiter := api.NewCallerLimiter(cfg.RateLimit, cfg.RateBurst, 0)
	api.RegisterRoutes(app, api.NewHandler(logger.L(), c, cfg.Mainnet()), limiter, checks)

	go func() {
		logg.Infow("HTTP API listening", "addr", cfg.ListenAddr)
		if err := app.Listen(cfg.ListenAddr); err != nil {
			logg.Errorw("fiber.listen_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down [pactd]...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logg.Warnw("fiber shutdown", "error", err)
	}
}

// loadConfig resolves defaults, then the config file, then PACT_* variables.
func loadConfig(path string) (config.Config, error) {
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if path == "" {
		path = config.ConfigPath(cfg.DataDir)
	}

	fileCfg, err := config.LoadConfig(path)
	switch {
	case err == nil:
		cfg = fileCfg
		if err := config.ApplyEnv(&cfg); err != nil {
			return cfg, err
		}
	case errors.Is(err, config.ErrConfigNotFound):
	default:
		return cfg, err
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (ledger.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return ledger.NewMemStore(), nil
	case config.BackendBolt:
		return ledger.OpenBoltStore(cfg.BoltPath())
	case config.BackendRedis:
		return ledger.OpenRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPassword)
	case config.BackendPostgres:
		return ledger.OpenPGStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidBackend, cfg.Backend)
	}
}

