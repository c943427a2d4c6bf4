package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"comprules/internal/api"
	"comprules/internal/audit"
	"comprules/internal/auth"
	"comprules/internal/config"
	"comprules/internal/snapshot"
	"comprules/internal/store"
	"comprules/internal/telemetry"
	"comprules/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	telemetry.Init()

	ctx := context.Background()
	st, err := store.NewStore(ctx, cfg.StoreType, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	if pg, ok := st.(*store.PostgresStore); ok {
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("schema: %v", err)
		}
	}

	// initial snapshot
	rules, err := st.GetAllRules(ctx, cfg.Env)
	if err != nil {
		log.Fatalf("load rules: %v", err)
	}
	s := snapshot.BuildFromRules(rules)
	snapshot.Update(s)
	telemetry.SnapshotRules.Set(float64(len(s.Rules)))
	log.Printf("snapshot: %d rules, etag=%s", len(s.Rules), s.ETag)

	// webhook dispatcher
	endpoints, err := webhook.LoadEndpoints(cfg.WebhookConfigPath)
	if err != nil {
		log.Fatalf("webhooks: %v", err)
	}
	var dispatcher *webhook.Dispatcher
	if len(endpoints) > 0 {
		dispatcher = webhook.NewDispatcher(endpoints)
		dispatcher.Start()
		defer dispatcher.Close()
		log.Printf("[webhook] dispatching to %d endpoint(s)", len(endpoints))
	}

	authenticator := auth.NewAuthenticator(st, cfg.AdminAPIKey)
	auditService := audit.NewService(audit.LogSink{})

	// API server with deps
	srvAPI := api.NewServer(st, cfg.Env, authenticator, dispatcher, auditService, cfg.RateLimitPerIP)

	// metrics endpoint on its own listener
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Printf("metrics on %s", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	log.Println("stopped")
}
