package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/rmagtibay/paluwagan/internal/api"
	"github.com/rmagtibay/paluwagan/internal/config"
	"github.com/rmagtibay/paluwagan/internal/service"
	"github.com/rmagtibay/paluwagan/internal/storage/sqlite"
	"github.com/rmagtibay/paluwagan/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	handler := api.NewHandler(
		service.NewClientService(store, cfg.CascadeClientDelete),
		service.NewGroupService(store, cfg.MemberCapacity),
		service.NewRosterService(store, cfg.MemberCapacity, cfg.AllowRepeatMembers),
		service.NewCycleService(store),
		service.NewContributionService(store),
		service.NewPayoutService(store),
		service.NewDashboardService(store),
	)

	// h2c allows HTTP/2 clients without TLS termination in front.
	h2cHandler := h2c.NewHandler(corsMiddleware(handler.Router()), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	slog.Info("Server starting", "address", addr, "member_capacity", cfg.MemberCapacity)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
