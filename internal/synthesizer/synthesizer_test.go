package synthesizer

import (
	"math"
	"testing"

	"OpportunityScout/internal/model"
)

func validRaw(name string, category model.Category, hint float64) model.RawScenario {
	return model.RawScenario{
		Name:     name,
		Category: category,
		Criteria: []model.MatchCriterion{
			{Field: "age", Operator: model.OpGte, Value: 60, Weight: 0.5},
		},
		RevenueFormula: model.RevenueFormula{Kind: model.FormulaAUMBased, Bps: 75},
		ConfidenceHint: hint,
		Actionability:  model.ActionabilityMetrics{Specificity: 0.8, Urgency: 0.7, Impact: 0.9, Feasibility: 0.8},
	}
}

func TestSynthesize_CrossReferenceBoost(t *testing.T) {
	s := New(Config{})
	batches := []SourceBatch{
		{Producer: "annuity", Scenarios: []model.RawScenario{validRaw("annuity surrender window opening", model.CategoryAnnuityEvent, 0.7)}},
		{Producer: "life_event", Scenarios: []model.RawScenario{validRaw("annuity surrender window opening", model.CategoryAnnuityEvent, 0.65)}},
	}
	out := s.Synthesize(batches)
	if len(out) != 1 {
		t.Fatalf("expected 1 deduplicated scenario, got %d", len(out))
	}
	sc := out[0]
	if sc.Confidence.SourceCount != 2 {
		t.Errorf("expected source count 2, got %d", sc.Confidence.SourceCount)
	}
	if !sc.Confidence.CrossReferenced {
		t.Error("expected cross_referenced to be true")
	}
	// highest declared confidence survives, plus one corroboration boost
	if math.Abs(sc.Confidence.Value-0.8) > 1e-9 {
		t.Errorf("expected confidence 0.8, got %v", sc.Confidence.Value)
	}
	if len(sc.Sources) != 2 {
		t.Errorf("expected 2 sources, got %v", sc.Sources)
	}
}

func TestSynthesize_ConfidenceCapsAtOne(t *testing.T) {
	s := New(Config{})
	raw := validRaw("required minimum distribution deadline", model.CategoryRevenueOpportunity, 0.95)
	batches := []SourceBatch{
		{Producer: "a", Scenarios: []model.RawScenario{raw}},
		{Producer: "b", Scenarios: []model.RawScenario{raw}},
		{Producer: "c", Scenarios: []model.RawScenario{raw}},
	}
	out := s.Synthesize(batches)
	if len(out) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(out))
	}
	if out[0].Confidence.Value != 1.0 {
		t.Errorf("expected confidence capped at 1.0, got %v", out[0].Confidence.Value)
	}
}

func TestSynthesize_DifferentCategoriesNotDeduplicated(t *testing.T) {
	s := New(Config{})
	batches := []SourceBatch{
		{Producer: "a", Scenarios: []model.RawScenario{validRaw("retirement income gap", model.CategoryAnnuityEvent, 0.7)}},
		{Producer: "b", Scenarios: []model.RawScenario{validRaw("retirement income gap", model.CategoryLifeEvent, 0.7)}},
	}
	out := s.Synthesize(batches)
	if len(out) != 2 {
		t.Fatalf("expected 2 scenarios across categories, got %d", len(out))
	}
}

func TestSynthesize_DropsInvalidCandidates(t *testing.T) {
	noCriteria := validRaw("no criteria scenario", model.CategoryLifeEvent, 0.9)
	noCriteria.Criteria = nil
	badFormula := validRaw("bad formula scenario", model.CategoryLifeEvent, 0.9)
	badFormula.RevenueFormula = model.RevenueFormula{Kind: "commission"}
	badWeight := validRaw("bad weight scenario", model.CategoryLifeEvent, 0.9)
	badWeight.Criteria = []model.MatchCriterion{{Field: "age", Operator: model.OpGte, Value: 60, Weight: 0}}

	s := New(Config{})
	out := s.Synthesize([]SourceBatch{{
		Producer:  "a",
		Scenarios: []model.RawScenario{noCriteria, badFormula, badWeight, validRaw("kept scenario", model.CategoryLifeEvent, 0.9)},
	}})
	if len(out) != 1 {
		t.Fatalf("expected only the valid scenario to survive, got %d", len(out))
	}
	if out[0].Name != "kept scenario" {
		t.Errorf("unexpected survivor %q", out[0].Name)
	}
}

func TestSynthesize_MinConfidenceFilter(t *testing.T) {
	s := New(Config{MinConfidence: 1.0})
	out := s.Synthesize([]SourceBatch{{
		Producer:  "a",
		Scenarios: []model.RawScenario{validRaw("almost certain scenario", model.CategoryLifeEvent, 0.99)},
	}})
	if len(out) != 0 {
		t.Fatalf("min_confidence=1.0 should filter confidence 0.99, got %d scenarios", len(out))
	}
}

func TestSynthesize_DeterministicSort(t *testing.T) {
	low := validRaw("low composite scenario", model.CategoryLifeEvent, 0.9)
	low.Actionability = model.ActionabilityMetrics{Specificity: 0.2, Urgency: 0.2, Impact: 0.2, Feasibility: 0.2}
	high := validRaw("high composite scenario", model.CategoryLifeEvent, 0.7)
	high.Actionability = model.ActionabilityMetrics{Specificity: 0.9, Urgency: 0.9, Impact: 0.9, Feasibility: 0.9}

	s := New(Config{})
	out := s.Synthesize([]SourceBatch{{Producer: "a", Scenarios: []model.RawScenario{low, high}}})
	if len(out) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(out))
	}
	if out[0].Name != "high composite scenario" {
		t.Errorf("expected composite-descending order, got %q first", out[0].Name)
	}
}

func TestSynthesize_TieBreakByScenarioID(t *testing.T) {
	a := validRaw("beta opportunity", model.CategoryLifeEvent, 0.8)
	b := validRaw("alpha opportunity", model.CategoryLifeEvent, 0.8)

	s := New(Config{SimilarityThreshold: 0.9})
	out := s.Synthesize([]SourceBatch{{Producer: "p", Scenarios: []model.RawScenario{a, b}}})
	if len(out) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(out))
	}
	if out[0].ScenarioID >= out[1].ScenarioID {
		t.Errorf("equal composite and confidence should tie-break by scenario_id ascending: %q vs %q",
			out[0].ScenarioID, out[1].ScenarioID)
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	s := New(Config{})
	candidates := []candidate{
		{raw: validRaw("annuity surrender window opening", model.CategoryAnnuityEvent, 0.7), sources: []string{"a"}},
		{raw: validRaw("annuity surrender window now opening", model.CategoryAnnuityEvent, 0.6), sources: []string{"b"}},
		{raw: validRaw("college tuition funding need", model.CategoryLifeEvent, 0.8), sources: []string{"a"}},
	}
	once := s.deduplicate(candidates)
	twice := s.deduplicate(once)
	if len(once) != len(twice) {
		t.Fatalf("deduplicate not idempotent: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].raw.Name != twice[i].raw.Name {
			t.Errorf("entry %d changed on second pass: %q vs %q", i, once[i].raw.Name, twice[i].raw.Name)
		}
	}
}

func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"annuity surrender window", "annuity surrender window", 1.0},
		{"Annuity Surrender Window", "annuity surrender window", 1.0},
		{"annuity surrender window", "annuity surrender period", 2.0 / 3.0},
		{"annuity surrender window", "college tuition funding", 0},
		{"", "annuity", 0},
	}
	for _, tt := range tests {
		if got := tokenOverlap(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("tokenOverlap(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSynthesize_ActionabilityWeightsOverride(t *testing.T) {
	raw := validRaw("weighted scenario", model.CategoryLifeEvent, 0.9)
	raw.Actionability = model.ActionabilityMetrics{Specificity: 1.0, Urgency: 0, Impact: 0, Feasibility: 0}

	s := New(Config{Weights: Weights{Specificity: 1, Urgency: 0, Impact: 0, Feasibility: 0}})
	out := s.Synthesize([]SourceBatch{{Producer: "a", Scenarios: []model.RawScenario{raw}}})
	if len(out) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(out))
	}
	if out[0].Actionability.Composite != 1.0 {
		t.Errorf("specificity-only weighting should give composite 1.0, got %v", out[0].Actionability.Composite)
	}
}
