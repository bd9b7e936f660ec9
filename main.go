package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"challengeTrackerAPI/handlers"
	"challengeTrackerAPI/internal/config"
	"challengeTrackerAPI/internal/metrics"
	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/middleware"
	"challengeTrackerAPI/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dataStore, closeStore, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	defer func() {
		log.Println("Closing store...")
		closeStore()
	}()

	if cfg.Seed {
		if err := store.Seed(context.Background(), dataStore); err != nil {
			log.Fatal("Failed to seed store:", err)
		}
	}

	middleware.InitPrometheus()
	metrics.Register()

	challengeHandler := handlers.NewChallengeHandler(services.NewChallengeService(dataStore, cfg.InviteBaseURL))
	progressHandler := handlers.NewProgressHandler(services.NewProgressService(dataStore))
	leaderboardHandler := handlers.NewLeaderboardHandler(services.NewLeaderboardService(dataStore))
	userHandler := handlers.NewUserHandler(services.NewUserService(dataStore))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go rateLimiter.CleanupVisitors(cleanupCtx)

	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(rateLimiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := dataStore.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "store unavailable"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "challenge-tracker-api"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	handlers.RegisterAPIRoutes(api, challengeHandler, progressHandler, leaderboardHandler, userHandler)

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "X-Request-ID"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length", "X-Request-ID"}),
	)

	server := http.Server{
		Addr:         cfg.Addr(),
		Handler:      gorillaHandlers.CombinedLoggingHandler(os.Stdout, corsHandler(r)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// openStore picks Postgres when DATABASE_URL is set and the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}

	pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}

	log.Println("Successfully connected to Postgres")
	return pg, pg.Close, nil
}
