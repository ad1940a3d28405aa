package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"OpportunityScout/internal/model"
	"OpportunityScout/internal/synthesizer"
)

func fixtureScenario(name string, category model.Category) model.RawScenario {
	return model.RawScenario{
		Name:     name,
		Category: category,
		Criteria: []model.MatchCriterion{
			{Field: "age", Operator: model.OpGte, Value: 60, Weight: 1.0},
		},
		RevenueFormula: model.RevenueFormula{Kind: model.FormulaFlatFee, Amount: 1000},
		ConfidenceHint: 0.8,
		Actionability:  model.ActionabilityMetrics{Specificity: 0.7, Urgency: 0.7, Impact: 0.7, Feasibility: 0.7},
	}
}

func newTestCoordinator(timeout time.Duration, producers ...Producer) *Coordinator {
	return NewCoordinator(producers, synthesizer.New(synthesizer.Config{}), timeout)
}

func TestRun_FanOutIsolation(t *testing.T) {
	annuity := &StaticProducer{
		ProducerName:     "annuity",
		ScenarioCategory: model.CategoryAnnuityEvent,
		Scenarios:        []model.RawScenario{fixtureScenario("annuity surrender window", model.CategoryAnnuityEvent)},
	}
	life := &StaticProducer{
		ProducerName:     "life_event",
		ScenarioCategory: model.CategoryLifeEvent,
		Scenarios:        []model.RawScenario{fixtureScenario("college tuition funding", model.CategoryLifeEvent)},
	}
	broken := &StaticProducer{
		ProducerName:     "revenue",
		ScenarioCategory: model.CategoryRevenueOpportunity,
		Err:              errors.New("research service unavailable"),
	}

	res, err := newTestCoordinator(0, annuity, life, broken).Run(context.Background(), 30, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Scenarios) != 2 {
		t.Errorf("expected 2 scenarios from healthy producers, got %d", len(res.Scenarios))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(res.Failures))
	}
	if res.Failures[0].Producer != "revenue" {
		t.Errorf("expected revenue producer failure, got %q", res.Failures[0].Producer)
	}
}

func TestRun_PanicCapturedAsFailure(t *testing.T) {
	healthy := &StaticProducer{
		ProducerName:     "annuity",
		ScenarioCategory: model.CategoryAnnuityEvent,
		Scenarios:        []model.RawScenario{fixtureScenario("annuity surrender window", model.CategoryAnnuityEvent)},
	}
	panicky := &StaticProducer{
		ProducerName:     "life_event",
		ScenarioCategory: model.CategoryLifeEvent,
		Panic:            true,
	}

	res, err := newTestCoordinator(0, healthy, panicky).Run(context.Background(), 30, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Scenarios) != 1 {
		t.Errorf("expected surviving producer's scenario, got %d", len(res.Scenarios))
	}
	if len(res.Failures) != 1 || res.Failures[0].Producer != "life_event" {
		t.Fatalf("expected life_event panic captured as failure, got %+v", res.Failures)
	}
}

func TestRun_AllProducersFailIsNotFatal(t *testing.T) {
	a := &StaticProducer{ProducerName: "a", ScenarioCategory: model.CategoryAnnuityEvent, Err: errors.New("down")}
	b := &StaticProducer{ProducerName: "b", ScenarioCategory: model.CategoryLifeEvent, Err: errors.New("down")}

	res, err := newTestCoordinator(0, a, b).Run(context.Background(), 30, nil)
	if err != nil {
		t.Fatalf("zero successful producers should not be an error: %v", err)
	}
	if len(res.Scenarios) != 0 {
		t.Errorf("expected empty scenario list, got %d", len(res.Scenarios))
	}
	if len(res.Failures) != 2 {
		t.Errorf("expected full failure list, got %d", len(res.Failures))
	}
}

func TestRun_FocusCategoriesFilterProducers(t *testing.T) {
	annuity := &StaticProducer{
		ProducerName:     "annuity",
		ScenarioCategory: model.CategoryAnnuityEvent,
		Scenarios:        []model.RawScenario{fixtureScenario("annuity surrender window", model.CategoryAnnuityEvent)},
	}
	life := &StaticProducer{
		ProducerName:     "life_event",
		ScenarioCategory: model.CategoryLifeEvent,
		Scenarios:        []model.RawScenario{fixtureScenario("college tuition funding", model.CategoryLifeEvent)},
	}

	res, err := newTestCoordinator(0, annuity, life).Run(context.Background(), 30, []model.Category{model.CategoryLifeEvent})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Scenarios) != 1 || res.Scenarios[0].Category != model.CategoryLifeEvent {
		t.Errorf("expected only life_event scenarios, got %+v", res.Scenarios)
	}
}

// slowProducer blocks until its context is cancelled.
type slowProducer struct {
	name     string
	category model.Category
}

func (p *slowProducer) Name() string             { return p.name }
func (p *slowProducer) Category() model.Category { return p.category }

func (p *slowProducer) Produce(ctx context.Context, _ int) ([]model.RawScenario, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRun_TimeoutKeepsCompletedResults(t *testing.T) {
	fast := &StaticProducer{
		ProducerName:     "annuity",
		ScenarioCategory: model.CategoryAnnuityEvent,
		Scenarios:        []model.RawScenario{fixtureScenario("annuity surrender window", model.CategoryAnnuityEvent)},
	}
	slow := &slowProducer{name: "life_event", category: model.CategoryLifeEvent}

	res, err := newTestCoordinator(50*time.Millisecond, fast, slow).Run(context.Background(), 30, nil)
	if err != nil {
		t.Fatalf("timeout should not abort the run: %v", err)
	}
	if len(res.Scenarios) != 1 {
		t.Errorf("expected completed producer's results kept, got %d scenarios", len(res.Scenarios))
	}
	if len(res.Failures) != 1 || res.Failures[0].Producer != "life_event" {
		t.Fatalf("expected timed-out producer recorded as failure, got %+v", res.Failures)
	}
}

func TestRun_CallerCancellationAborts(t *testing.T) {
	slow := &slowProducer{name: "annuity", category: model.CategoryAnnuityEvent}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := newTestCoordinator(time.Minute, slow).Run(ctx, 30, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
