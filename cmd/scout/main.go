package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"OpportunityScout/internal/cache"
	"OpportunityScout/internal/config"
	"OpportunityScout/internal/executor"
	"OpportunityScout/internal/model"
	"OpportunityScout/internal/notifier"
	"OpportunityScout/internal/research"
	"OpportunityScout/internal/scheduler"
	"OpportunityScout/internal/store"
	"OpportunityScout/internal/synthesizer"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] OpportunityScout starting...")

	_ = godotenv.Load(".env", ".env.local")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init synthesizer
	w := cfg.Synthesis.ActionabilityWeights
	synth := synthesizer.New(synthesizer.Config{
		SimilarityThreshold: cfg.Synthesis.SimilarityThreshold,
		MinConfidence:       cfg.Synthesis.MinConfidence,
		Weights: synthesizer.Weights{
			Specificity: w.Specificity,
			Urgency:     w.Urgency,
			Impact:      w.Impact,
			Feasibility: w.Feasibility,
		},
	})

	// Init research producers
	var producers []research.Producer
	for _, pc := range cfg.Research.Producers {
		producers = append(producers, research.NewHTTPProducer(
			pc.Name, model.Category(pc.Category), pc.BaseURL, pc.APIKey, cfg.Proxy))
		log.Printf("[INFO] research producer: %s (%s)", pc.Name, pc.Category)
	}
	coord := research.NewCoordinator(producers, synth,
		time.Duration(cfg.Research.TimeoutSeconds)*time.Second)

	// Init executor
	exec := executor.New(cfg.Matching.Workers, cfg.Matching.MinMatchScore)

	// Init scenario cache
	scenarioCache := cache.New(cfg.Redis.URL)

	// Init store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			st = store.NewNoopStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewNoopStore()
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, cfg, coord, exec, scenarioCache, st, tn)
	if err := sched.RegisterAll(cfg.Schedule.ResearchCron, cfg.Schedule.ExecutionCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()
	log.Printf("[INFO] research categories: %v", sched.Categories())

	// Start Telegram polling
	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	} else {
		log.Println("[INFO] Telegram not configured, command polling disabled")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing research and matching now")
		go func() {
			sched.RunResearchNow()
			sched.RunExecutionNow()
		}()
	}

	log.Println("[INFO] OpportunityScout is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] OpportunityScout stopped")
}
