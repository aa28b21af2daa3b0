// Package main is the entry point for the racing API server.
package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	"racing-api/internal/app"
	"racing-api/internal/config"
)

var version = "dev"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("try", "curl", tryCommand(cfg.ListenAddr, cfg.Tables))
	if err := app.Serve(ctx, cfg, logger, version); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// tryCommand returns a curl command listing the first page of the first
// exposed table on a host:port a local client can dial.
func tryCommand(listenAddr string, tables []string) string {
	table := "drivers"
	if len(tables) > 0 {
		table = tables[0]
	}
	return "curl -i 'http://" + dialAddr(listenAddr) + "/" + table + "?range=%5B0,9%5D'"
}

// dialAddr maps wildcard and empty hosts to localhost.
func dialAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
