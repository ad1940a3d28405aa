package model

// MatchDetail explains the outcome of one criterion evaluation for one
// (client, scenario) pair.
type MatchDetail struct {
	Criterion    MatchCriterion `json:"criterion"`
	Satisfied    bool           `json:"satisfied"`
	ActualValue  any            `json:"actual_value"`
	Contribution float64        `json:"contribution_to_score"`
}

// Opportunity is the terminal output of an execution run: one client paired
// with one scenario that cleared the match threshold. Never mutated after
// creation; self-contained so report generators need no further lookups.
type Opportunity struct {
	ClientID         string        `json:"client_id"`
	ScenarioID       string        `json:"scenario_id"`
	ScenarioName     string        `json:"scenario_name"`
	Category         Category      `json:"category"`
	MatchScore       float64       `json:"match_score"`
	MatchDetails     []MatchDetail `json:"match_details"`
	EstimatedRevenue float64       `json:"estimated_revenue"`
	TalkingPoints    []string      `json:"talking_points,omitempty"`
}

// ProducerFailure records one research producer that errored or timed out.
// Failures are reported alongside successful results, never in place of them.
type ProducerFailure struct {
	Producer string `json:"producer"`
	Message  string `json:"error"`
}
