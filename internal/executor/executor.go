// Package executor orchestrates a full execution run: the cross product of
// clients and scenarios through the matching engine and revenue estimator,
// producing ranked opportunities.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"OpportunityScout/internal/matching"
	"OpportunityScout/internal/model"
	"OpportunityScout/internal/revenue"
)

// ErrNoClients is fatal to an execution run: there is nothing to match
// against.
var ErrNoClients = errors.New("no usable client profiles")

// Executor runs matching across the client x scenario cross product with a
// bounded worker pool. No pruning is applied; every pair is evaluated and the
// final sort alone determines order.
type Executor struct {
	workers       int
	minMatchScore float64
}

// New creates an Executor. Workers below 1 fall back to 4.
func New(workers int, minMatchScore float64) *Executor {
	if workers < 1 {
		workers = 4
	}
	return &Executor{workers: workers, minMatchScore: minMatchScore}
}

type pair struct {
	client   *model.ClientProfile
	scenario *model.EnrichedScenario
}

// Run evaluates every (client, scenario) pair and returns the opportunities
// clearing the match threshold, sorted by match_score descending, then
// estimated_revenue descending, then client_id ascending. Cancellation aborts
// the run with an error; a partial list is never returned as complete.
func (e *Executor) Run(ctx context.Context, clients []model.ClientProfile, scenarios []model.EnrichedScenario) ([]model.Opportunity, error) {
	if len(clients) == 0 {
		return nil, ErrNoClients
	}
	if len(scenarios) == 0 {
		return []model.Opportunity{}, nil
	}

	jobs := make(chan pair)
	results := make(chan model.Opportunity, e.workers)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if opp, ok := e.evaluate(p); ok {
					results <- opp
				}
			}
		}()
	}

	// Feed the cross product; stop feeding on cancellation so workers drain.
	go func() {
		defer close(jobs)
		for ci := range clients {
			for si := range scenarios {
				select {
				case jobs <- pair{client: &clients[ci], scenario: &scenarios[si]}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var opportunities []model.Opportunity
	for opp := range results {
		opportunities = append(opportunities, opp)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("execution run cancelled: %w", err)
	}

	sort.Slice(opportunities, func(i, j int) bool {
		a, b := opportunities[i], opportunities[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.EstimatedRevenue != b.EstimatedRevenue {
			return a.EstimatedRevenue > b.EstimatedRevenue
		}
		if a.ClientID != b.ClientID {
			return a.ClientID < b.ClientID
		}
		return a.ScenarioID < b.ScenarioID
	})
	return opportunities, nil
}

// evaluate runs one pair through matching and, if it clears the threshold,
// revenue estimation. A revenue input error skips only this pair.
func (e *Executor) evaluate(p pair) (model.Opportunity, bool) {
	score, details := matching.Match(p.client, p.scenario)
	if score < e.minMatchScore {
		return model.Opportunity{}, false
	}

	amount, err := revenue.Estimate(p.scenario.RevenueFormula, p.client.Portfolio.TotalValue)
	if err != nil {
		log.Printf("[WARN] revenue estimate for client %s scenario %s: %v",
			p.client.ClientID, p.scenario.ScenarioID, err)
		return model.Opportunity{}, false
	}

	return model.Opportunity{
		ClientID:         p.client.ClientID,
		ScenarioID:       p.scenario.ScenarioID,
		ScenarioName:     p.scenario.Name,
		Category:         p.scenario.Category,
		MatchScore:       score,
		MatchDetails:     details,
		EstimatedRevenue: amount,
		TalkingPoints:    p.scenario.TalkingPoints,
	}, true
}
