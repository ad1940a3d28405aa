package store

import (
	"time"

	"OpportunityScout/internal/model"
)

// ResearchRunRecord holds everything worth keeping from one research run.
type ResearchRunRecord struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Scenarios  []model.EnrichedScenario
	Failures   []model.ProducerFailure
}

// ExecutionRunRecord holds everything worth keeping from one execution run.
type ExecutionRunRecord struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	ClientCount   int
	ScenarioCount int
	MinMatchScore float64
	Opportunities []model.Opportunity
}

// Store persists pipeline runs for later inspection and audit.
type Store interface {
	RecordResearchRun(rec *ResearchRunRecord) error
	RecordExecutionRun(rec *ExecutionRunRecord) error
	Close() error
}
