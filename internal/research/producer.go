// Package research fans out scenario discovery across independent producers
// and feeds the surviving candidates to the synthesizer.
package research

import (
	"context"

	"OpportunityScout/internal/model"
)

// Producer is an external research source. It is opaque to the pipeline: given
// a time window it returns raw candidate scenarios for its category, or an
// error. Implementations must honor ctx cancellation.
type Producer interface {
	Produce(ctx context.Context, timeWindowDays int) ([]model.RawScenario, error)
	Name() string
	Category() model.Category
}

// StaticProducer returns a fixed scenario set. Used for development fixtures
// and tests; Err and Panic make failure modes controllable.
type StaticProducer struct {
	ProducerName     string
	ScenarioCategory model.Category
	Scenarios        []model.RawScenario
	Err              error
	Panic            bool
}

func (p *StaticProducer) Name() string             { return p.ProducerName }
func (p *StaticProducer) Category() model.Category { return p.ScenarioCategory }

func (p *StaticProducer) Produce(ctx context.Context, _ int) ([]model.RawScenario, error) {
	if p.Panic {
		panic("static producer panic")
	}
	if p.Err != nil {
		return nil, p.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Scenarios, nil
}
