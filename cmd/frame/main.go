package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unfollowframe/internal/config"
	"unfollowframe/internal/consul"
	"unfollowframe/internal/database"
	"unfollowframe/internal/kafka"
	"unfollowframe/internal/logger"
	"unfollowframe/internal/neynar"
	"unfollowframe/internal/report"
	"unfollowframe/internal/server"
	"unfollowframe/internal/session"
	"unfollowframe/internal/unfollowers"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	log := logger.New()
	logger.SetDefault(log)

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting unfollower frame service",
		"port", cfg.Port,
		"neynar_base_url", cfg.Neynar.BaseURL,
		"redis_addr", cfg.Redis.Addr,
		"kafka_brokers", cfg.Kafka.Brokers,
		"consul_addr", cfg.Consul.Addr,
	)

	graph, err := neynar.NewClient(cfg.Neynar.BaseURL, cfg.Neynar.APIKey,
		neynar.WithTimeout(cfg.Neynar.Timeout),
		neynar.WithLogger(log),
	)
	if err != nil {
		slog.Error("Failed to create Neynar client", "error", err)
		os.Exit(1)
	}
	fetcher := unfollowers.NewFetcher(graph, log)

	checks := map[string]server.HealthCheck{}

	// Session store: Redis when configured, otherwise in-process memory
	var store session.Store
	if cfg.Redis.Addr != "" {
		store = session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := store.Ping(ctx); err != nil {
			slog.Error("Failed to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		checks["redis"] = store.Ping
		slog.Info("Connected to Redis")
	} else {
		store = session.NewMemoryStore()
		slog.Warn("REDIS_ADDR not set, sessions are kept in memory")
	}

	reporters := report.Multi{report.NewLogReporter(log)}

	if cfg.Kafka.Brokers != "" {
		kcfg, err := kafka.NewConfig(cfg.Kafka.Brokers, cfg.Kafka.ReportsTopic)
		if err != nil {
			slog.Error("Invalid Kafka configuration", "error", err)
			os.Exit(1)
		}
		producer, err := kafka.NewProducer(kcfg, log)
		if err != nil {
			slog.Error("Failed to create Kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		reporters = append(reporters, report.NewKafkaReporter(producer, kcfg.ReportsTopic))
		slog.Info("Publishing reports to Kafka", "topic", kcfg.ReportsTopic)
	}

	if cfg.DatabaseURL != "" {
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		repo := report.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Error("Failed to prepare report schema", "error", err)
			os.Exit(1)
		}
		reporters = append(reporters, repo)
		checks["postgres"] = db.Ping
		slog.Info("Storing reports in Postgres")
	}

	srv := server.New(server.Deps{
		Source:         fetcher,
		Sessions:       session.NewManager(store),
		Guard:          session.NewGuard(store, "frame:add-prompt:", cfg.SessionMaxAge),
		Reporter:       reporters,
		Logger:         log,
		ServiceName:    cfg.ServiceName,
		SessionMaxAge:  cfg.SessionMaxAge,
		AllowedOrigins: cfg.AllowedOrigins,
		HealthChecks:   checks,
	})
	httpServer := server.NewHTTPServer(cfg, srv.RegisterRoutes())

	var registry *consul.Client
	var serviceID string
	if cfg.Consul.Addr != "" {
		registry, err = consul.NewClientWithToken(cfg.Consul.Addr, cfg.Consul.Token)
		if err != nil {
			slog.Error("Failed to create Consul client", "error", err)
			os.Exit(1)
		}
		svc := consul.NewServiceConfig(cfg.ServiceName, cfg.ServiceHost, cfg.Port, "frame", "http")
		if err := registry.Register(svc); err != nil {
			slog.Error("Failed to register with Consul", "error", err)
			os.Exit(1)
		}
		serviceID = svc.ID
		slog.Info("Registered with Consul", "service_id", serviceID)
	}

	go func() {
		slog.Info("Frame service listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down frame service")

	if registry != nil {
		if err := registry.Deregister(serviceID); err != nil {
			slog.Warn("Failed to deregister from Consul", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	srv.Shutdown()

	slog.Info("Frame service stopped")
}
