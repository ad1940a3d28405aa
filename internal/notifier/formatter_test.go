package notifier

import (
	"strings"
	"testing"

	"OpportunityScout/internal/model"
)

func TestFormatExecutionReport(t *testing.T) {
	opps := []model.Opportunity{{
		ClientID:     "C-001",
		ScenarioID:   "annuity_event:surrender-window",
		ScenarioName: "surrender window",
		Category:     model.CategoryAnnuityEvent,
		MatchScore:   100,
		MatchDetails: []model.MatchDetail{
			{Criterion: model.MatchCriterion{Field: "age", Operator: model.OpGte, Value: 60, Weight: 0.5}, Satisfied: true, ActualValue: 62, Contribution: 50},
			{Criterion: model.MatchCriterion{Field: "risk_tolerance", Operator: model.OpEq, Value: "conservative", Weight: 0.5}, Satisfied: true, ActualValue: "conservative", Contribution: 50},
		},
		EstimatedRevenue: 5625,
	}}

	report := FormatExecutionReport("run-1", opps, 10, 3)
	for _, want := range []string{"C-001", "surrender window", "5,625", "score 100", "age"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestFormatExecutionReport_Empty(t *testing.T) {
	report := FormatExecutionReport("run-2", nil, 5, 0)
	if !strings.Contains(report, "No opportunities") {
		t.Errorf("expected empty-run message, got:\n%s", report)
	}
}

func TestFormatScenarioDigest_IncludesFailures(t *testing.T) {
	scenarios := []model.EnrichedScenario{{
		Scenario:      model.Scenario{Name: "surrender window", Category: model.CategoryAnnuityEvent},
		Confidence:    model.ConfidenceScore{Value: 0.8, SourceCount: 2, CrossReferenced: true},
		Actionability: model.ActionabilityMetrics{Composite: 0.75},
		Temporal:      model.TemporalContext{Urgency: model.UrgencyShortTerm},
	}}
	failures := []model.ProducerFailure{{Producer: "revenue", Message: "service unavailable"}}

	digest := FormatScenarioDigest(scenarios, failures)
	for _, want := range []string{"surrender window", "corroborated by 2", "revenue", "service unavailable"} {
		if !strings.Contains(digest, want) {
			t.Errorf("digest missing %q:\n%s", want, digest)
		}
	}
}
