package runner

import (
	"context"
	"errors"
	"testing"

	"schoolsim/internal/sim"
)

func smallScenario(seed int64) Scenario {
	return Scenario{
		Name: "test",
		Params: sim.Params{
			N:                     30,
			KDegree:               4,
			RewiringProb:          0.2,
			BaseDropoutRate:       0.02,
			PeerInfluenceWeight:   0.5,
			PerformanceVolatility: 1.5,
			Seed:                  seed,
		},
	}
}

func TestRunProducesOrderedLabeledTrials(t *testing.T) {
	result, err := Run(context.Background(), smallScenario(7), Config{Trials: 5, Steps: 8, Workers: 3})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Scenario != "test" {
		t.Fatalf("scenario label = %q", result.Scenario)
	}
	if len(result.Trials) != 5 {
		t.Fatalf("expected 5 trials, got %d", len(result.Trials))
	}
	for i, series := range result.Trials {
		if series.Trial != i+1 {
			t.Fatalf("trial %d labeled %d", i, series.Trial)
		}
		if series.Seed != 7+int64(i) {
			t.Fatalf("trial %d seed = %d, want %d", series.Trial, series.Seed, 7+int64(i))
		}
		if series.Scenario != "test" {
			t.Fatalf("trial %d scenario label = %q", series.Trial, series.Scenario)
		}
		if len(series.Records) != 9 {
			t.Fatalf("trial %d has %d records, want 9", series.Trial, len(series.Records))
		}
		final := series.Records[len(series.Records)-1]
		if final.StepIndex != 8 {
			t.Fatalf("trial %d final record index = %d, want 8", series.Trial, final.StepIndex)
		}
	}
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	sequential, err := Run(context.Background(), smallScenario(3), Config{Trials: 6, Steps: 10, Workers: 1})
	if err != nil {
		t.Fatalf("run sequential: %v", err)
	}
	parallel, err := Run(context.Background(), smallScenario(3), Config{Trials: 6, Steps: 10, Workers: 4})
	if err != nil {
		t.Fatalf("run parallel: %v", err)
	}

	for i := range sequential.Trials {
		a, b := sequential.Trials[i], parallel.Trials[i]
		if len(a.Records) != len(b.Records) {
			t.Fatalf("trial %d record counts differ", i+1)
		}
		for j := range a.Records {
			if a.Records[j] != b.Records[j] {
				t.Fatalf("trial %d step %d differs across worker counts: %+v vs %+v",
					i+1, j, a.Records[j], b.Records[j])
			}
		}
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	if _, err := Run(context.Background(), smallScenario(1), Config{Trials: 0, Steps: 5}); !errors.Is(err, sim.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for zero trials, got %v", err)
	}
	if _, err := Run(context.Background(), smallScenario(1), Config{Trials: 3, Steps: 0}); !errors.Is(err, sim.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for zero steps, got %v", err)
	}
}

func TestRunSurfacesModelConstructionError(t *testing.T) {
	scenario := smallScenario(1)
	scenario.Params.KDegree = 3

	_, err := Run(context.Background(), scenario, Config{Trials: 2, Steps: 5})
	if !errors.Is(err, sim.ErrInvalidParameter) {
		t.Fatalf("expected wrapped ErrInvalidParameter, got %v", err)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, smallScenario(1), Config{Trials: 4, Steps: 50})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunSuiteKeepsScenarioOrder(t *testing.T) {
	results, err := RunSuite(context.Background(), DefaultSuite(11), Config{Trials: 2, Steps: 3, Workers: 2})
	if err != nil {
		t.Fatalf("run suite: %v", err)
	}

	want := []string{"1_Baseline", "2_Intervention_FinancialAid", "3_Contagion_Check_HighPI"}
	if len(results) != len(want) {
		t.Fatalf("expected %d scenario results, got %d", len(want), len(results))
	}
	for i, result := range results {
		if result.Scenario != want[i] {
			t.Fatalf("result %d is %q, want %q", i, result.Scenario, want[i])
		}
	}
}
