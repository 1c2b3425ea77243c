package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"

	"github.com/Draichi/canvas-ui/internal/auth"
	"github.com/Draichi/canvas-ui/internal/bookmark"
	"github.com/Draichi/canvas-ui/internal/config"
	"github.com/Draichi/canvas-ui/internal/engine"
	"github.com/Draichi/canvas-ui/internal/live"
	mw "github.com/Draichi/canvas-ui/internal/middleware"
	"github.com/Draichi/canvas-ui/internal/storage"
)

// playgroundCanvasID accepts anonymous connections.
const playgroundCanvasID = "playground"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
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

	authService := auth.NewService(store, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)
	bookmarkHandler := bookmark.NewHandler(store)

	hub := live.NewHub(store, engine.WithScreenSize(cfg.ViewportWidth, cfg.ViewportHeight))
	go hub.Run()

	// Drag moves are only marked dirty; sync them on a schedule.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SyncSchedule, func() { hub.FlushAll(ctx) }); err != nil {
		slog.Error("schedule working state sync", "schedule", cfg.SyncSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/canvas/state", bookmarkHandler.GetWorkingState).Methods("GET")
	api.HandleFunc("/bookmarks", bookmarkHandler.List).Methods("GET")
	api.HandleFunc("/bookmarks", bookmarkHandler.Create).Methods("POST")
	api.HandleFunc("/bookmarks/{bookmarkId}", bookmarkHandler.Get).Methods("GET")
	api.HandleFunc("/bookmarks/{bookmarkId}", bookmarkHandler.Delete).Methods("DELETE")

	// WebSocket endpoint
	originPatterns := cfg.OriginPatterns()
	r.HandleFunc("/ws/canvas/{canvasId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, originPatterns)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Wait for a running sync, then save every live canvas.
		<-scheduler.Stop().Done()
		slog.Info("saving all canvases...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "storage", cfg.StorageDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// handleWebSocket attaches a renderer to a canvas. Each user owns the
// canvas named by their user id.
func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *live.Hub, authSvc *auth.Service, originPatterns []string) {
	canvasID := mux.Vars(r)["canvasId"]

	var userID string
	if canvasID == playgroundCanvasID {
		userID = "anon-" + uuid.New().String()[:8]
	} else {
		var err error
		userID, err = authSvc.UserFromQuery(r)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if canvasID != auth.CanvasID(userID) {
			http.Error(w, "not your canvas", http.StatusForbidden)
			return
		}
	}

	hub.ServeCanvas(w, r, canvasID, userID, originPatterns)
}
