package model

import (
	"fmt"
	"time"
)

// Operator is a closed set of comparison operators for match criteria.
type Operator string

const (
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpEq       Operator = "eq"
	OpContains Operator = "contains"
	OpIn       Operator = "in"
)

// ParseOperator validates an operator string. Unknown operators are a
// construction-time error, never a runtime one.
func ParseOperator(s string) (Operator, error) {
	switch Operator(s) {
	case OpGt, OpLt, OpGte, OpLte, OpEq, OpContains, OpIn:
		return Operator(s), nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Category classifies a scenario by the kind of opportunity it represents.
type Category string

const (
	CategoryAnnuityEvent       Category = "annuity_event"
	CategoryLifeEvent          Category = "life_event"
	CategoryRevenueOpportunity Category = "revenue_opportunity"
)

// AllCategories lists every known scenario category.
var AllCategories = []Category{CategoryAnnuityEvent, CategoryLifeEvent, CategoryRevenueOpportunity}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryAnnuityEvent, CategoryLifeEvent, CategoryRevenueOpportunity:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Urgency indicates how soon a scenario should be acted on.
type Urgency string

const (
	UrgencyImmediate  Urgency = "immediate"
	UrgencyShortTerm  Urgency = "short_term"
	UrgencyMediumTerm Urgency = "medium_term"
	UrgencyLongTerm   Urgency = "long_term"
)

// MatchCriterion is a single weighted comparison rule against a client attribute.
type MatchCriterion struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
	Weight   float64  `json:"weight"`
}

// NewMatchCriterion builds a validated criterion. Zero or negative weights and
// unknown operators are rejected here so they can never reach evaluation.
func NewMatchCriterion(field string, op string, value any, weight float64) (MatchCriterion, error) {
	operator, err := ParseOperator(op)
	if err != nil {
		return MatchCriterion{}, err
	}
	if field == "" {
		return MatchCriterion{}, fmt.Errorf("criterion field must not be empty")
	}
	if weight <= 0 || weight > 1 {
		return MatchCriterion{}, fmt.Errorf("criterion weight must be in (0,1], got %v", weight)
	}
	return MatchCriterion{Field: field, Operator: operator, Value: value, Weight: weight}, nil
}

// Validate checks the criterion invariants on an already-constructed value
// (e.g. one decoded from JSON).
func (c MatchCriterion) Validate() error {
	if _, err := ParseOperator(string(c.Operator)); err != nil {
		return err
	}
	if c.Field == "" {
		return fmt.Errorf("criterion field must not be empty")
	}
	if c.Weight <= 0 || c.Weight > 1 {
		return fmt.Errorf("criterion weight must be in (0,1], got %v", c.Weight)
	}
	return nil
}

// FormulaKind tags the revenue formula variant.
type FormulaKind string

const (
	FormulaPercentage FormulaKind = "percentage"
	FormulaFlatFee    FormulaKind = "flat_fee"
	FormulaTiered     FormulaKind = "tiered"
	FormulaAUMBased   FormulaKind = "aum_based"
)

// Breakpoint maps a portfolio-value threshold to a flat revenue amount.
type Breakpoint struct {
	Threshold float64 `json:"threshold"`
	Amount    float64 `json:"amount"`
}

// RevenueFormula is a tagged variant describing how estimated revenue is
// computed from a client's portfolio value. Only the fields relevant to Kind
// are populated.
type RevenueFormula struct {
	Kind        FormulaKind  `json:"kind"`
	Rate        float64      `json:"rate,omitempty"`
	Amount      float64      `json:"amount,omitempty"`
	Bps         float64      `json:"bps,omitempty"`
	Breakpoints []Breakpoint `json:"breakpoints,omitempty"`
}

// Validate checks the formula invariants: rate in [0,1], bps in [0,10000],
// tiered breakpoints non-empty and strictly increasing by threshold.
func (f RevenueFormula) Validate() error {
	switch f.Kind {
	case FormulaPercentage:
		if f.Rate < 0 || f.Rate > 1 {
			return fmt.Errorf("percentage rate must be in [0,1], got %v", f.Rate)
		}
	case FormulaFlatFee:
		if f.Amount < 0 {
			return fmt.Errorf("flat fee amount must be non-negative, got %v", f.Amount)
		}
	case FormulaTiered:
		if len(f.Breakpoints) == 0 {
			return fmt.Errorf("tiered formula requires at least one breakpoint")
		}
		for i := 1; i < len(f.Breakpoints); i++ {
			if f.Breakpoints[i].Threshold <= f.Breakpoints[i-1].Threshold {
				return fmt.Errorf("breakpoint thresholds must be strictly increasing (index %d)", i)
			}
		}
	case FormulaAUMBased:
		if f.Bps < 0 || f.Bps > 10000 {
			return fmt.Errorf("aum_based bps must be in [0,10000], got %v", f.Bps)
		}
	default:
		return fmt.Errorf("unknown formula kind %q", f.Kind)
	}
	return nil
}

// Scenario is a categorized opportunity template with matchable criteria and a
// revenue formula. Immutable once synthesized.
type Scenario struct {
	ScenarioID     string           `json:"scenario_id"`
	Name           string           `json:"name"`
	Category       Category         `json:"category"`
	Criteria       []MatchCriterion `json:"criteria"`
	RevenueFormula RevenueFormula   `json:"revenue_formula"`
}

// TemporalContext describes when a scenario is relevant.
type TemporalContext struct {
	Urgency          Urgency    `json:"urgency"`
	TriggerDate      *time.Time `json:"trigger_date,omitempty"`
	ActionWindowDays int        `json:"action_window_days"`
}

// ConfidenceScore carries the synthesizer's confidence in a scenario.
// Value rises monotonically with corroborating sources.
type ConfidenceScore struct {
	Value           float64 `json:"value"`
	SourceCount     int     `json:"source_count"`
	CrossReferenced bool    `json:"cross_referenced"`
}

// ActionabilityMetrics rates how actionable a scenario is on four axes in
// [0,1], plus the derived composite.
type ActionabilityMetrics struct {
	Specificity float64 `json:"specificity"`
	Urgency     float64 `json:"urgency"`
	Impact      float64 `json:"impact"`
	Feasibility float64 `json:"feasibility"`
	Composite   float64 `json:"composite"`
}

// RawScenario is a candidate emitted by a research producer. Raw candidates
// are ephemeral: they exist only between the producer and the synthesizer.
type RawScenario struct {
	Name             string               `json:"name"`
	Category         Category             `json:"category"`
	Criteria         []MatchCriterion     `json:"criteria"`
	RevenueFormula   RevenueFormula       `json:"revenue_formula"`
	ConfidenceHint   float64              `json:"confidence_hint"`
	Urgency          Urgency              `json:"urgency,omitempty"`
	ActionWindowDays int                  `json:"action_window_days,omitempty"`
	Actionability    ActionabilityMetrics `json:"actionability"`
	TalkingPoints    []string             `json:"talking_points,omitempty"`
}

// EnrichedScenario is a Scenario augmented with temporal, confidence, and
// actionability metadata. Created only by the synthesizer; immutable after.
type EnrichedScenario struct {
	Scenario
	Temporal      TemporalContext      `json:"temporal"`
	Confidence    ConfidenceScore      `json:"confidence"`
	Actionability ActionabilityMetrics `json:"actionability"`
	TalkingPoints []string             `json:"advisor_talking_points"`
	Sources       []string             `json:"sources"`
}
