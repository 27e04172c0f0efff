package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/me/uniportal/internal/logging"
	"github.com/me/uniportal/internal/mockapi"
)

func main() {
	addr := flag.String("addr", ":8000", "Listen address")
	prefix := flag.String("prefix", "/api", "Path prefix the API is served under")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "text", "Log format (text, json)")
	tokenTTL := flag.Duration("token-ttl", 8*time.Hour, "Lifetime of issued tokens")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	if *debug {
		*logLevel = "debug"
	}
	logger := logging.NewLogger(logging.ParseLevel(*logLevel), *logFormat)

	opts := []mockapi.Option{mockapi.WithTokenTTL(*tokenTTL)}
	if secret := os.Getenv("PORTAL_MOCK_SECRET"); secret != "" {
		opts = append(opts, mockapi.WithSecret([]byte(secret)))
	}
	backend := mockapi.New(logger, opts...)

	var handler http.Handler = backend
	if p := strings.TrimRight(*prefix, "/"); p != "" {
		handler = http.StripPrefix(p, backend)
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("mock portal starting", "addr", *addr, "prefix", *prefix,
			"student", mockapi.StudentUsername, "teacher", mockapi.TeacherUsername, "admin", mockapi.AdminUsername)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
