package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alright-hq/alright-client/internal/config"
	"github.com/alright-hq/alright-client/internal/logger"
	"github.com/alright-hq/alright-client/internal/mockserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "canteen mock failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", ":8085", "listen address")
	prefix := flag.String("prefix", "/api", "route prefix")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mockserver.New(mockserver.Options{Logger: logger.Std()}).Handler(*prefix),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoObj("canteen mock listening", "server", map[string]any{"addr": *addr, "prefix": *prefix})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.InfoObj("canteen mock shutting down", "reason", ctx.Err())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
