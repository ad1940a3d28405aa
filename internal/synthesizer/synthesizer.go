// Package synthesizer merges raw candidate scenarios from multiple research
// producers into a deduplicated, confidence- and actionability-scored set.
package synthesizer

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"OpportunityScout/internal/model"
)

// crossReferenceBoost is the confidence increment per corroborating source
// beyond the first.
const crossReferenceBoost = 0.1

// Weights are the per-axis actionability weights used for the composite.
type Weights struct {
	Specificity float64 `yaml:"specificity"`
	Urgency     float64 `yaml:"urgency"`
	Impact      float64 `yaml:"impact"`
	Feasibility float64 `yaml:"feasibility"`
}

// DefaultWeights weighs all four axes equally.
func DefaultWeights() Weights {
	return Weights{Specificity: 1, Urgency: 1, Impact: 1, Feasibility: 1}
}

func (w Weights) total() float64 {
	return w.Specificity + w.Urgency + w.Impact + w.Feasibility
}

// Config tunes the synthesis pipeline. Zero values fall back to defaults.
type Config struct {
	// SimilarityThreshold is the name token-overlap ratio at or above which two
	// same-category candidates are considered duplicates. Tunable; 0.8 default.
	SimilarityThreshold float64
	// MinConfidence drops scenarios whose boosted confidence falls below it.
	MinConfidence float64
	Weights       Weights
}

// SourceBatch groups the raw candidates returned by one producer.
type SourceBatch struct {
	Producer  string
	Scenarios []model.RawScenario
}

// Synthesizer turns raw candidate batches into enriched scenarios.
type Synthesizer struct {
	cfg Config
}

// New creates a Synthesizer, applying defaults for unset config fields.
func New(cfg Config) *Synthesizer {
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 0.8
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = 0.6
	}
	if cfg.Weights.total() == 0 {
		cfg.Weights = DefaultWeights()
	}
	return &Synthesizer{cfg: cfg}
}

// candidate is a raw scenario plus the producers that vouch for it.
type candidate struct {
	raw     model.RawScenario
	sources []string
}

// Synthesize runs the full pipeline: deduplicate, boost, validate, score,
// filter, sort. Candidates failing validation are dropped and logged, never
// surfaced as errors.
func (s *Synthesizer) Synthesize(batches []SourceBatch) []model.EnrichedScenario {
	var candidates []candidate
	for _, b := range batches {
		for _, raw := range b.Scenarios {
			candidates = append(candidates, candidate{raw: raw, sources: []string{b.Producer}})
		}
	}

	retained := s.deduplicate(candidates)

	enriched := make([]model.EnrichedScenario, 0, len(retained))
	for _, c := range retained {
		if err := validate(c.raw); err != nil {
			log.Printf("[WARN] dropping candidate %q: %v", c.raw.Name, err)
			continue
		}
		es := s.enrich(c)
		if es.Confidence.Value < s.cfg.MinConfidence {
			log.Printf("[INFO] filtering scenario %q: confidence %.2f below %.2f",
				es.Name, es.Confidence.Value, s.cfg.MinConfidence)
			continue
		}
		enriched = append(enriched, es)
	}

	sort.Slice(enriched, func(i, j int) bool {
		a, b := enriched[i], enriched[j]
		if a.Actionability.Composite != b.Actionability.Composite {
			return a.Actionability.Composite > b.Actionability.Composite
		}
		if a.Confidence.Value != b.Confidence.Value {
			return a.Confidence.Value > b.Confidence.Value
		}
		return a.ScenarioID < b.ScenarioID
	})
	return enriched
}

// deduplicate collapses candidates whose normalized names overlap at or above
// the similarity threshold within the same category. The candidate with the
// highest declared confidence survives; discarded ones contribute their
// producer as a corroborating source. Idempotent: re-running over its own
// output removes nothing further.
func (s *Synthesizer) deduplicate(candidates []candidate) []candidate {
	var retained []candidate
	for _, c := range candidates {
		merged := false
		for i := range retained {
			r := &retained[i]
			if r.raw.Category != c.raw.Category {
				continue
			}
			if tokenOverlap(r.raw.Name, c.raw.Name) < s.cfg.SimilarityThreshold {
				continue
			}
			if c.raw.ConfidenceHint > r.raw.ConfidenceHint {
				c.sources = mergeSources(r.sources, c.sources)
				*r = c
			} else {
				r.sources = mergeSources(r.sources, c.sources)
			}
			merged = true
			break
		}
		if !merged {
			retained = append(retained, c)
		}
	}
	return retained
}

func (s *Synthesizer) enrich(c candidate) model.EnrichedScenario {
	raw := c.raw
	sourceCount := len(c.sources)

	confidence := raw.ConfidenceHint + crossReferenceBoost*float64(sourceCount-1)
	if confidence > 1 {
		confidence = 1
	}

	urgency := raw.Urgency
	if urgency == "" {
		urgency = model.UrgencyMediumTerm
	}

	act := raw.Actionability
	act.Specificity = clamp01(act.Specificity)
	act.Urgency = clamp01(act.Urgency)
	act.Impact = clamp01(act.Impact)
	act.Feasibility = clamp01(act.Feasibility)
	w := s.cfg.Weights
	act.Composite = (act.Specificity*w.Specificity + act.Urgency*w.Urgency +
		act.Impact*w.Impact + act.Feasibility*w.Feasibility) / w.total()

	return model.EnrichedScenario{
		Scenario: model.Scenario{
			ScenarioID:     scenarioID(raw.Category, raw.Name),
			Name:           raw.Name,
			Category:       raw.Category,
			Criteria:       raw.Criteria,
			RevenueFormula: raw.RevenueFormula,
		},
		Temporal: model.TemporalContext{
			Urgency:          urgency,
			ActionWindowDays: raw.ActionWindowDays,
		},
		Confidence: model.ConfidenceScore{
			Value:           confidence,
			SourceCount:     sourceCount,
			CrossReferenced: sourceCount > 1,
		},
		Actionability: act,
		TalkingPoints: raw.TalkingPoints,
		Sources:       c.sources,
	}
}

func validate(raw model.RawScenario) error {
	if strings.TrimSpace(raw.Name) == "" {
		return fmt.Errorf("empty name")
	}
	if _, err := model.ParseCategory(string(raw.Category)); err != nil {
		return err
	}
	if len(raw.Criteria) == 0 {
		return fmt.Errorf("scenario has no criteria")
	}
	for i, c := range raw.Criteria {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("criterion %d: %w", i, err)
		}
	}
	if err := raw.RevenueFormula.Validate(); err != nil {
		return err
	}
	if raw.ConfidenceHint < 0 || raw.ConfidenceHint > 1 {
		return fmt.Errorf("confidence hint must be in [0,1], got %v", raw.ConfidenceHint)
	}
	return nil
}

// scenarioID derives a stable, human-readable identifier from category and
// name so repeated research runs produce the same IDs for the same scenario.
func scenarioID(category model.Category, name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return string(category) + ":" + b.String()
}

// tokenOverlap returns the ratio of shared normalized name tokens to the
// larger token set.
func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(strings.ToLower(a))
	tb := strings.Fields(strings.ToLower(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, tok := range ta {
		set[tok] = true
	}
	shared := 0
	seen := make(map[string]bool, len(tb))
	for _, tok := range tb {
		if set[tok] && !seen[tok] {
			shared++
			seen[tok] = true
		}
	}
	larger := len(ta)
	if len(tb) > larger {
		larger = len(tb)
	}
	return float64(shared) / float64(larger)
}

func mergeSources(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
