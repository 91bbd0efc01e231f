package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/ttsvault/internal/adapter/driven/elevenlabs"
	"github.com/ericfisherdev/ttsvault/internal/adapter/driven/natsarchive"
	sqliteadapter "github.com/ericfisherdev/ttsvault/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/ttsvault/internal/adapter/driving/http"
	"github.com/ericfisherdev/ttsvault/internal/application"
	"github.com/ericfisherdev/ttsvault/internal/config"
	"github.com/ericfisherdev/ttsvault/internal/crypto"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on a missing or malformed secret key).
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"elevenlabs_base_url", cfg.ElevenLabsBaseURL,
		"upstream_timeout", cfg.UpstreamTimeout,
		"admin_guard", len(cfg.AdminTokenSecret) > 0,
		"archive", cfg.HasArchive(),
	)

	engine, err := crypto.NewEngine(cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("init crypto engine: %w", err)
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db)
	orgStore := sqliteadapter.NewOrgRepo(db)
	jobStore := sqliteadapter.NewJobRepo(db)

	provider, err := elevenlabs.NewClient(cfg.ElevenLabsBaseURL, cfg.UpstreamTimeout, slog.Default())
	if err != nil {
		return err
	}

	// 6. Connect the audio archive when configured.
	var archive driven.AudioArchive
	if cfg.HasArchive() {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("ttsvault"))
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		defer nc.Close()

		js, err := nc.JetStream()
		if err != nil {
			return fmt.Errorf("jetstream context: %w", err)
		}
		a, err := natsarchive.New(js, cfg.AudioBucket)
		if err != nil {
			return err
		}
		archive = a
		slog.Info("audio archive connected", "bucket", cfg.AudioBucket)
	}

	// 7. Create services.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := application.NewMetrics(registry)

	vault := application.NewCredentialVault(credentialStore, orgStore, engine, slog.Default())
	ledger := application.NewJobLedger(jobStore, metrics, slog.Default())
	proxy := application.NewProxyService(vault, provider, metrics, slog.Default())
	gen := application.NewGenerationService(proxy, ledger, application.NewTextNormalizer(), archive, metrics, slog.Default())

	// 8. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(db, orgStore, vault, proxy, gen, ledger, archive, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, httphandler.ServerOptions{
		AdminSecret: cfg.AdminTokenSecret,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, slog.Default())

	// WriteTimeout stays unset when the upstream timeout is unbounded so
	// long syntheses are not cut off mid-response.
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if cfg.UpstreamTimeout > 0 {
		srv.WriteTimeout = cfg.UpstreamTimeout + 10*time.Second
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("ttsvault started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
