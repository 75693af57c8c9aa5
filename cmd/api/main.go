package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/justsurfingit/hiring-board/internal/config"
	"github.com/justsurfingit/hiring-board/internal/database"
	"github.com/justsurfingit/hiring-board/internal/handlers"
	"github.com/justsurfingit/hiring-board/internal/metrics"
	"github.com/justsurfingit/hiring-board/internal/ratelimit"
	"github.com/justsurfingit/hiring-board/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// 2. Database Connection
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// 3. Metrics & Notifications
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hub := services.NewNotificationHub(cfg.Notifications.Backlog)
	hub.OnSubscribersChanged = m.SetSubscribers

	// 4. LLM is optional; without a key extraction and scoring answer 503
	var llm services.Completer
	llmService, err := services.NewLLMService(context.Background(), cfg.LLM.APIKey, cfg.LLM.Model)
	switch {
	case errors.Is(err, services.ErrLLMUnavailable):
		log.Println("⚠️  No LLM API key configured, extraction and scoring disabled")
	case err != nil:
		log.Printf("⚠️  Failed to initialize LLM client: %v", err)
	default:
		llm = llmService
		log.Printf("✅ LLM client ready (%s)", cfg.LLM.Model)
	}

	// 5. Core Services
	jobService := services.NewJobService(db)
	applicationService := services.NewApplicationService(db, hub, m, logger)
	matchingService := services.NewMatchingService(db, llm, hub, logger)

	// 6. Router
	r := handlers.NewRouter(handlers.Deps{
		Jobs:         jobService,
		Applications: applicationService,
		Matching:     matchingService,
		LLM:          llm,
		Hub:          hub,
		Metrics:      m,
		Gatherer:     reg,
		Limiter:      ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL),
		AllowOrigins: cfg.Server.AllowOrigins,
		Log:          logger,
	})

	log.Printf("🚀 Server starting on %s...", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal("Server failed to start: ", err)
	}
}
