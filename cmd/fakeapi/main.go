package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolayk812/storefront/internal/commerce/fake"
	"github.com/nikolayk812/storefront/internal/logger"
	"go.uber.org/zap"
)

func main() {
	addr := flag.String("addr", getEnv("FAKEAPI_ADDR", ":8080"), "listen address")
	level := flag.String("log-level", getEnv("FAKEAPI_LOG_LEVEL", "debug"), "log level")
	flag.Parse()

	log, err := logger.New(logger.Options{Service: "fakeapi", Level: *level, Format: "json"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           fake.NewDemo(log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("fake commerce API starting",
		zap.String("addr", *addr),
		zap.String("store", fake.DemoStoreSlug),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("listen failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("fake commerce API stopped")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
