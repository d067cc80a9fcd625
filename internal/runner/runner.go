// Package runner executes scenarios: batches of independent model trials that
// differ only by seed. Trials share no mutable state, so they run on a
// bounded worker pool, one model per worker.
package runner

import (
	"context"
	"fmt"
	"sync"

	"schoolsim/internal/model"
	"schoolsim/internal/sim"
)

// Scenario names one parameterization of the model. The scenario's Seed is
// the base of the trial seed sequence: trial t runs with Seed+t-1.
type Scenario struct {
	Name   string
	Params sim.Params
}

// Config controls how a scenario is executed.
type Config struct {
	Trials  int
	Steps   int
	Workers int
}

// ScenarioResult bundles every trial series of one scenario, ordered by
// trial number.
type ScenarioResult struct {
	Scenario string
	Trials   []model.TrialSeries
}

func (c Config) validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("%w: trials must be > 0, got %d", sim.ErrInvalidParameter, c.Trials)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be > 0, got %d", sim.ErrInvalidParameter, c.Steps)
	}
	return nil
}

// Run executes cfg.Trials independent models of the scenario for cfg.Steps
// steps each. Results are deterministic for a given scenario seed regardless
// of worker count.
func Run(ctx context.Context, scenario Scenario, cfg Config) (ScenarioResult, error) {
	if err := cfg.validate(); err != nil {
		return ScenarioResult{}, err
	}

	type job struct {
		trial int
	}
	type result struct {
		trial  int
		series model.TrialSeries
		err    error
	}

	workerCount := cfg.Workers
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > cfg.Trials {
		workerCount = cfg.Trials
	}

	jobs := make(chan job)
	results := make(chan result, cfg.Trials)

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{trial: j.trial, err: err}
					continue
				}
				series, err := runTrial(ctx, scenario, cfg.Steps, j.trial)
				results <- result{trial: j.trial, series: series, err: err}
			}
		}()
	}

	for trial := 1; trial <= cfg.Trials; trial++ {
		jobs <- job{trial: trial}
	}
	close(jobs)

	wg.Wait()
	close(results)

	trials := make([]model.TrialSeries, cfg.Trials)
	for res := range results {
		if res.err != nil {
			return ScenarioResult{}, fmt.Errorf("scenario %s trial %d: %w", scenario.Name, res.trial, res.err)
		}
		trials[res.trial-1] = res.series
	}

	return ScenarioResult{Scenario: scenario.Name, Trials: trials}, nil
}

// RunSuite executes the scenarios in order with one shared config.
func RunSuite(ctx context.Context, scenarios []Scenario, cfg Config) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := Run(ctx, scenario, cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func runTrial(ctx context.Context, scenario Scenario, steps, trial int) (model.TrialSeries, error) {
	params := scenario.Params
	params.Seed += int64(trial - 1)

	m, err := sim.New(params)
	if err != nil {
		return model.TrialSeries{}, err
	}
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return model.TrialSeries{}, err
		}
		if err := m.Step(); err != nil {
			return model.TrialSeries{}, err
		}
	}
	// Close the history with the post-run state so the final record describes
	// the population after the last pass.
	m.Collect()

	return model.TrialSeries{
		Scenario:  scenario.Name,
		Trial:     trial,
		Seed:      params.Seed,
		Records:   m.History(),
		AgentRows: m.AgentHistory(),
	}, nil
}
