// Package stats aggregates trial results across a scenario and writes run
// artifacts to disk.
package stats

import (
	"fmt"

	"schoolsim/internal/model"
)

// ScenarioSummary condenses a scenario's trials into final-step statistics.
// Rates are percentages; Steps is the number of completed update passes.
type ScenarioSummary struct {
	Scenario             string  `json:"scenario"`
	Trials               int     `json:"trials"`
	Steps                int     `json:"steps"`
	MeanTotalDropout     float64 `json:"mean_total_dropout_rate"`
	MeanLowSESDropout    float64 `json:"mean_low_ses_dropout_rate"`
	MeanMediumSESDropout float64 `json:"mean_medium_ses_dropout_rate"`
	MeanHighSESDropout   float64 `json:"mean_high_ses_dropout_rate"`
	MinTotalDropout      float64 `json:"min_total_dropout_rate"`
	MaxTotalDropout      float64 `json:"max_total_dropout_rate"`
}

// SummarizeScenario averages the final-step record of every trial.
func SummarizeScenario(scenario string, trials []model.TrialSeries) (ScenarioSummary, error) {
	if len(trials) == 0 {
		return ScenarioSummary{}, fmt.Errorf("scenario %s has no trials", scenario)
	}

	summary := ScenarioSummary{Scenario: scenario, Trials: len(trials)}
	for i, series := range trials {
		if len(series.Records) == 0 {
			return ScenarioSummary{}, fmt.Errorf("scenario %s trial %d has no records", scenario, series.Trial)
		}
		final := series.Records[len(series.Records)-1]
		summary.Steps = final.StepIndex
		summary.MeanTotalDropout += final.TotalDropoutRate
		summary.MeanLowSESDropout += final.LowSESDropoutRate
		summary.MeanMediumSESDropout += final.MediumSESDropoutRate
		summary.MeanHighSESDropout += final.HighSESDropoutRate
		if i == 0 || final.TotalDropoutRate < summary.MinTotalDropout {
			summary.MinTotalDropout = final.TotalDropoutRate
		}
		if i == 0 || final.TotalDropoutRate > summary.MaxTotalDropout {
			summary.MaxTotalDropout = final.TotalDropoutRate
		}
	}

	n := float64(len(trials))
	summary.MeanTotalDropout /= n
	summary.MeanLowSESDropout /= n
	summary.MeanMediumSESDropout /= n
	summary.MeanHighSESDropout /= n
	return summary, nil
}

// SummarizeSuite summarizes each scenario of a suite in order.
func SummarizeSuite(results map[string][]model.TrialSeries, order []string) ([]ScenarioSummary, error) {
	summaries := make([]ScenarioSummary, 0, len(order))
	for _, scenario := range order {
		summary, err := SummarizeScenario(scenario, results[scenario])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
