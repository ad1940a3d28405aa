package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"OpportunityScout/internal/cache"
	"OpportunityScout/internal/clientdata"
	"OpportunityScout/internal/config"
	"OpportunityScout/internal/executor"
	"OpportunityScout/internal/model"
	"OpportunityScout/internal/notifier"
	"OpportunityScout/internal/research"
	"OpportunityScout/internal/store"
)

// Scheduler drives the pipeline on a cron cadence: research runs discover and
// cache scenarios, execution runs match them against clients.
type Scheduler struct {
	Cron        *cron.Cron
	Coordinator *research.Coordinator
	Executor    *executor.Executor
	Cache       cache.Cache
	Store       store.Store
	Notifier    *notifier.TelegramNotifier
	Cfg         *config.Config
	Ctx         context.Context

	mu               sync.Mutex
	lastResearch     time.Time
	lastScenarios    int
	lastExecution    time.Time
	lastOpportunities int
}

// NewScheduler creates a Scheduler wired to the pipeline components.
func NewScheduler(ctx context.Context, cfg *config.Config, coord *research.Coordinator, exec *executor.Executor, c cache.Cache, st store.Store, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Coordinator: coord,
		Executor:    exec,
		Cache:       c,
		Store:       st,
		Notifier:    tn,
		Cfg:         cfg,
		Ctx:         ctx,
	}
}

// RegisterAll registers the research and execution tasks.
func (s *Scheduler) RegisterAll(researchCron, executionCron string) error {
	if _, err := s.Cron.AddFunc(researchCron, s.researchTask); err != nil {
		return fmt.Errorf("register research task: %w", err)
	}
	if _, err := s.Cron.AddFunc(executionCron, s.executionTask); err != nil {
		return fmt.Errorf("register execution task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunResearchNow executes the research task immediately (manual trigger /
// RUN_ON_START).
func (s *Scheduler) RunResearchNow() {
	s.researchTask()
}

// RunExecutionNow executes the execution task immediately.
func (s *Scheduler) RunExecutionNow() {
	s.executionTask()
}

func (s *Scheduler) researchTask() {
	runID := uuid.NewString()
	log.Printf("[INFO] running research task %s", runID)
	started := time.Now()

	res, err := s.Coordinator.Run(s.Ctx, s.Cfg.Research.TimeWindowDays, s.Cfg.FocusCategories())
	if err != nil {
		log.Printf("[ERROR] research run %s: %v", runID, err)
		return
	}
	log.Printf("[INFO] research run %s: %d scenarios, %d producer failures",
		runID, len(res.Scenarios), len(res.Failures))

	ttl := time.Duration(s.Cfg.Redis.TTLSeconds) * time.Second
	if err := cache.SaveScenarios(s.Ctx, s.Cache, res.Scenarios, ttl); err != nil {
		log.Printf("[ERROR] cache scenarios: %v", err)
	}

	if err := s.Store.RecordResearchRun(&store.ResearchRunRecord{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Scenarios:  res.Scenarios,
		Failures:   res.Failures,
	}); err != nil {
		log.Printf("[ERROR] record research run: %v", err)
	}

	s.mu.Lock()
	s.lastResearch = time.Now()
	s.lastScenarios = len(res.Scenarios)
	s.mu.Unlock()

	s.trySend(notifier.FormatScenarioDigest(res.Scenarios, res.Failures))
}

func (s *Scheduler) executionTask() {
	runID := uuid.NewString()
	log.Printf("[INFO] running execution task %s", runID)
	started := time.Now()

	scenarios, ok, err := cache.LoadScenarios(s.Ctx, s.Cache)
	if err != nil {
		log.Printf("[WARN] load cached scenarios: %v", err)
	}
	if !ok || len(scenarios) == 0 {
		log.Println("[INFO] no cached scenarios, running research first")
		s.researchTask()
		scenarios, _, err = cache.LoadScenarios(s.Ctx, s.Cache)
		if err != nil {
			log.Printf("[ERROR] load scenarios after research: %v", err)
			return
		}
	}

	clients, err := clientdata.Load(s.Cfg.Clients.File)
	if err != nil {
		// Fatal to this run: nothing to match against.
		log.Printf("[ERROR] execution run %s aborted, client load: %v", runID, err)
		s.trySend(fmt.Sprintf("❌ Execution run aborted: %v", err))
		return
	}

	opportunities, err := s.Executor.Run(s.Ctx, clients, scenarios)
	if err != nil {
		log.Printf("[ERROR] execution run %s: %v", runID, err)
		return
	}
	log.Printf("[INFO] execution run %s: %d opportunities from %d clients × %d scenarios",
		runID, len(opportunities), len(clients), len(scenarios))

	if err := s.Store.RecordExecutionRun(&store.ExecutionRunRecord{
		RunID:         runID,
		StartedAt:     started,
		FinishedAt:    time.Now(),
		ClientCount:   len(clients),
		ScenarioCount: len(scenarios),
		MinMatchScore: s.Cfg.Matching.MinMatchScore,
		Opportunities: opportunities,
	}); err != nil {
		log.Printf("[ERROR] record execution run: %v", err)
	}

	s.mu.Lock()
	s.lastExecution = time.Now()
	s.lastOpportunities = len(opportunities)
	s.mu.Unlock()

	s.trySend(notifier.FormatExecutionReport(runID, opportunities, len(clients), len(scenarios)))
}

// HandleCommand processes an advisor command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		s.executionTask()
		return ""
	case "/research":
		s.researchTask()
		return ""
	case "/scenarios":
		scenarios, ok, err := cache.LoadScenarios(s.Ctx, s.Cache)
		if err != nil || !ok {
			return "No cached scenario set. Send /research to run discovery."
		}
		return notifier.FormatScenarioDigest(scenarios, nil)
	case "/status":
		s.mu.Lock()
		defer s.mu.Unlock()
		return notifier.FormatStatus(s.lastResearch, s.lastExecution, s.lastScenarios, s.lastOpportunities)
	default:
		return "Commands:\n• /run — match clients now\n• /research — refresh scenarios\n• /scenarios — show cached scenarios\n• /status — last run summary"
	}
}

// Categories returns the categories the scheduler researches, for logging.
func (s *Scheduler) Categories() []model.Category {
	focus := s.Cfg.FocusCategories()
	if len(focus) == 0 {
		return model.AllCategories
	}
	return focus
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil || !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
