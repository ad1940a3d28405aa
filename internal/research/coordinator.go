package research

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"OpportunityScout/internal/model"
	"OpportunityScout/internal/synthesizer"
)

// Result is the outcome of one research run: the enriched scenario set plus
// every producer failure. Zero successful producers is a valid empty result,
// not an error.
type Result struct {
	Scenarios []model.EnrichedScenario `json:"scenarios"`
	Failures  []model.ProducerFailure  `json:"failures"`
}

// Coordinator runs producers concurrently, isolates per-producer failure, and
// hands the surviving raw candidates to the synthesizer.
type Coordinator struct {
	producers []Producer
	synth     *synthesizer.Synthesizer
	timeout   time.Duration
}

// NewCoordinator creates a Coordinator. A zero timeout means no per-run limit.
func NewCoordinator(producers []Producer, synth *synthesizer.Synthesizer, timeout time.Duration) *Coordinator {
	return &Coordinator{producers: producers, synth: synth, timeout: timeout}
}

// outcome carries one producer's settled result across the join point.
type outcome struct {
	index int
	batch synthesizer.SourceBatch
	err   error
}

// Run launches one goroutine per producer matching the focus categories and
// joins once all settle or the per-run timeout fires. A producer error, panic,
// or timeout is captured as a failure and never cancels siblings. Caller
// cancellation aborts the whole run.
func (c *Coordinator) Run(ctx context.Context, timeWindowDays int, focus []model.Category) (*Result, error) {
	selected := c.selectProducers(focus)
	if len(selected) == 0 {
		return &Result{}, nil
	}

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	defer cancel()

	results := make(chan outcome, len(selected))
	for i, p := range selected {
		go func(idx int, prod Producer) {
			defer func() {
				if r := recover(); r != nil {
					results <- outcome{index: idx, err: fmt.Errorf("producer panic: %v", r)}
				}
			}()
			scenarios, err := prod.Produce(runCtx, timeWindowDays)
			if err != nil {
				results <- outcome{index: idx, err: err}
				return
			}
			results <- outcome{index: idx, batch: synthesizer.SourceBatch{
				Producer:  prod.Name(),
				Scenarios: scenarios,
			}}
		}(i, p)
	}

	settled := make(map[int]outcome, len(selected))
	for len(settled) < len(selected) {
		select {
		case o := <-results:
			settled[o.index] = o
		case <-runCtx.Done():
			if err := ctx.Err(); err != nil {
				// Caller cancelled the run itself.
				return nil, fmt.Errorf("research run cancelled: %w", err)
			}
			// Per-run timeout: keep what completed, fail the rest.
			for len(settled) < len(selected) {
				select {
				case o := <-results:
					settled[o.index] = o
				default:
					for i := range selected {
						if _, ok := settled[i]; !ok {
							settled[i] = outcome{index: i, err: runCtx.Err()}
						}
					}
				}
			}
		}
	}

	var batches []synthesizer.SourceBatch
	var failures []model.ProducerFailure
	for i, p := range selected {
		o := settled[i]
		if o.err != nil {
			log.Printf("[WARN] producer %q failed: %v", p.Name(), o.err)
			failures = append(failures, model.ProducerFailure{Producer: p.Name(), Message: o.err.Error()})
			continue
		}
		log.Printf("[INFO] producer %q returned %d candidates", p.Name(), len(o.batch.Scenarios))
		batches = append(batches, o.batch)
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Producer < failures[j].Producer })

	return &Result{
		Scenarios: c.synth.Synthesize(batches),
		Failures:  failures,
	}, nil
}

func (c *Coordinator) selectProducers(focus []model.Category) []Producer {
	if len(focus) == 0 {
		return c.producers
	}
	wanted := make(map[model.Category]bool, len(focus))
	for _, cat := range focus {
		wanted[cat] = true
	}
	var selected []Producer
	for _, p := range c.producers {
		if wanted[p.Category()] {
			selected = append(selected, p)
		}
	}
	return selected
}
