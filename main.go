package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"cabot-server/api"
	"cabot-server/config"
	"cabot-server/loghandler"
	"cabot-server/matchmaking"
	"cabot-server/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found; using environment variables.")
	}

	cfg := config.Load()
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, cfg.SlogLevel())))

	slog.Info("configuration loaded", "tag", "main",
		"ws_port", cfg.WSPort, "reveal_ms", cfg.RevealDurationMS, "max_name", cfg.MaxNameLength,
		"ai_profiles", len(cfg.AIProfiles), "log_level", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mm := matchmaking.NewMatchmaker(cfg, time.Now().UnixNano())

	hub := ws.NewHub(cfg, mm)
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WSPort),
		Handler: newRouter(hub, api.NewHandler(mm)),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "tag", "main", "error", err)
		}
	}()

	slog.Info("Cabot server listening", "tag", "main", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// newRouter mounts the WebSocket endpoint and the read-only API.
func newRouter(hub *ws.Hub, h *api.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", hub.ServeWS)
	r.Route("/api", h.Routes)
	return r
}
