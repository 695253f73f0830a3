package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Skotchmaster/retail_shop/internal/config"
	"github.com/Skotchmaster/retail_shop/internal/db"
	"github.com/Skotchmaster/retail_shop/internal/events"
	"github.com/Skotchmaster/retail_shop/internal/httpserver"
	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/repo"
	"github.com/Skotchmaster/retail_shop/internal/search"
	"github.com/Skotchmaster/retail_shop/internal/service"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.SessionSecret, "SESSION_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", "retail_shop")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}
	if err := db.Migrate(ctx, gdb); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers)
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	r := repo.New(gdb)
	catalog := &service.CatalogService{Repo: r, Events: publisher}
	if idx := openSearch(cfg, logger); idx != nil {
		catalog.Search = idx
	}
	auth := &service.AuthService{
		Repo:       r,
		Events:     publisher,
		Secret:     cfg.SessionSecret,
		SessionTTL: cfg.SessionTTL,
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := auth.EnsureAdmin(bootCtx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Error("bootstrap_admin_failed", "error", err)
	}
	bootCancel()

	e, err := httpserver.NewServer(httpserver.Deps{
		DB:            gdb,
		Logger:        logger,
		Auth:          auth,
		Catalog:       catalog,
		Cart:          &service.CartService{Repo: r, Events: publisher},
		SecureCookies: cfg.CookieSecure,
	})
	if err != nil {
		log.Fatalf("http server: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("server_stopped")
}

// openSearch returns nil when the index is not configured or unreachable;
// the catalog then searches the database.
func openSearch(cfg config.Config, logger *slog.Logger) *search.Client {
	if cfg.ESURL == "" {
		return nil
	}
	client, err := search.NewClient(search.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	if err != nil {
		logger.Warn("search_disabled", "reason", "client init failed", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		logger.Warn("search_disabled", "reason", "ping failed", "error", err)
		return nil
	}
	return client
}
