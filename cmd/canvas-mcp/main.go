// Command canvas-mcp serves one canvas as MCP tools on stdin/stdout.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Draichi/canvas-ui/internal/bookmark"
	"github.com/Draichi/canvas-ui/internal/config"
	"github.com/Draichi/canvas-ui/internal/engine"
	"github.com/Draichi/canvas-ui/internal/mcpserver"
	"github.com/Draichi/canvas-ui/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	// stdout carries the protocol.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.StorageDriver,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		slog.Error("open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := mcpserver.New(ctx, cfg.MCPCanvas, bookmark.ForCanvas(store, cfg.MCPCanvas),
		engine.WithScreenSize(cfg.ViewportWidth, cfg.ViewportHeight),
	)
	defer func() {
		if err := srv.Flush(context.Background()); err != nil {
			slog.Error("save working state", "error", err)
		}
	}()

	if err := srv.ServeStdio(); err != nil {
		slog.Error("mcp server error", "error", err)
	}
}
