// SPDX-License-Identifier: MIT

// mockapi runs an in-memory Xordon backend for local development and
// integration testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	xlog "github.com/ronittamrakar/xordon-go/internal/log"
	"github.com/ronittamrakar/xordon-go/internal/mockapi"
)

var version = "dev"

func main() {
	listen := flag.String("listen", ":8080", "address to listen on")
	token := flag.String("token", "dev-token", "bearer token issued by /auth/dev-token")
	devTokenLimit := flag.Int("dev-token-limit", 30, "dev-token requests allowed per minute per IP")
	logLevel := flag.String("log-level", "info", "log level")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mockapi %s\n", version)
		os.Exit(0)
	}

	xlog.Configure(xlog.Config{
		Level:   *logLevel,
		Service: "mockapi",
		Version: version,
	})
	logger := xlog.WithComponent("mockapi")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := mockapi.New(mockapi.Config{
		DevTokenLimit: *devTokenLimit,
		Token:         *token,
	}, logger)

	server := &http.Server{
		Addr:              *listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", *listen).Msg("mock backend listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("stopped")
}
