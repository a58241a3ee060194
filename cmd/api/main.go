package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"example.com/healthreport/internal/api"
	"example.com/healthreport/internal/auth"
	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/outbox"
	persistence "example.com/healthreport/internal/persistence/postgres"
	"example.com/healthreport/internal/report"
	httptransport "example.com/healthreport/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log.Printf("healthreport api starting")

	defaults, err := config.LoadSettingsFile(cfg.SettingsFile)
	if err != nil {
		log.Fatalf("failed to load settings file: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool, cfg.ReportTopic, persistence.WithDefaultSettings(defaults))
	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(outbox.NewPostgresStore(pool), producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize,
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts))

	go dispatcher.Start(ctx)

	service := report.NewService(report.WithRunRepository(repo))

	handler := api.NewHandler(service, repo, cfg.MaxUploadBytes)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	// Simple CORS middleware for local dev
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Expose-Headers", "X-Report-Run-Id")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			next.ServeHTTP(w, r)
			log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(started))
		})
	}

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, cfg.AuthPublicPaths...)

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), authMiddleware.Wrap(logger(cors(mux))))

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.MetricsAddress), metricsMux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httptransport.Serve(gctx, server, 15*time.Second) })
	g.Go(func() error { return httptransport.Serve(gctx, metricsServer, 5*time.Second) })

	if err := g.Wait(); err != nil {
		log.Printf("server error: %v", err)
	}
	stop()

	dispatcher.Wait()
}
