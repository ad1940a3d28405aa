// Package matching scores a client against a scenario's weighted criteria.
// The engine is pure and stateless: identical input yields identical output.
package matching

import (
	"OpportunityScout/internal/criterion"
	"OpportunityScout/internal/model"
)

// Match evaluates every criterion of the scenario against the client and
// returns the aggregate score in [0,100] plus one MatchDetail per criterion.
// A missing client field means the criterion is not satisfied, never an error.
// A scenario with no criteria can never match.
func Match(client *model.ClientProfile, scenario *model.EnrichedScenario) (float64, []model.MatchDetail) {
	details := make([]model.MatchDetail, 0, len(scenario.Criteria))
	var earnedWeight, totalWeight float64

	for _, c := range scenario.Criteria {
		actual, present := client.Attribute(c.Field)
		satisfied := present && criterion.Evaluate(c, actual)

		totalWeight += c.Weight
		if satisfied {
			earnedWeight += c.Weight
		}
		details = append(details, model.MatchDetail{
			Criterion:   c,
			Satisfied:   satisfied,
			ActualValue: actual,
		})
	}

	if totalWeight == 0 {
		return 0, details
	}

	score := 100 * earnedWeight / totalWeight
	for i := range details {
		if details[i].Satisfied {
			details[i].Contribution = 100 * details[i].Criterion.Weight / totalWeight
		}
	}
	return score, details
}
