// Package schoolsim is the public entry point: it wires the simulation
// engine, the trial runner, the result store and the artifact writer behind
// one client.
package schoolsim

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolsim/internal/model"
	"schoolsim/internal/runner"
	"schoolsim/internal/sim"
	"schoolsim/internal/stats"
	"schoolsim/internal/storage"
)

const (
	defaultDBPath     = "schoolsim.db"
	defaultExportsDir = "exports"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
}

type Client struct {
	store      storage.Store
	exportsDir string
}

// ScenarioConfig is one model parameterization. Seed is the base of the
// trial seed sequence.
type ScenarioConfig struct {
	Name                  string
	Agents                int
	KDegree               int
	RewiringProb          float64
	BaseDropoutRate       float64
	PeerInfluenceWeight   float64
	PerformanceVolatility float64
	FinancialAidPolicy    bool
	OrderedActivation     bool
	CollectAgents         bool
	Seed                  int64
}

// RunRequest runs a single scenario for Trials independent trials of Steps
// steps each.
type RunRequest struct {
	RunID    string
	Scenario ScenarioConfig
	Steps    int
	Trials   int
	Workers  int
}

// SuiteRequest runs several scenarios under one run id. An empty Scenarios
// list selects the built-in three-scenario experiment seeded with Seed.
type SuiteRequest struct {
	RunID     string
	Scenarios []ScenarioConfig
	Seed      int64
	Steps     int
	Trials    int
	Workers   int
}

type RunResult struct {
	Summary      model.RunSummary
	Scenarios    []stats.ScenarioSummary
	ArtifactsDir string
}

type MetricsRequest struct {
	RunID  string
	Latest bool
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}

	return &Client{store: store, exportsDir: exportsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Run executes a single-scenario run, persists it and writes its artifacts.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	scenario := req.Scenario
	if scenario.Name == "" {
		scenario.Name = "custom"
	}
	return c.runScenarios(ctx, req.RunID, []ScenarioConfig{scenario}, runner.Config{
		Trials:  req.Trials,
		Steps:   req.Steps,
		Workers: req.Workers,
	})
}

// RunSuite executes a scenario suite under one run id.
func (c *Client) RunSuite(ctx context.Context, req SuiteRequest) (RunResult, error) {
	scenarios := req.Scenarios
	if len(scenarios) == 0 {
		for _, s := range runner.DefaultSuite(req.Seed) {
			scenarios = append(scenarios, fromParams(s.Name, s.Params))
		}
	}
	return c.runScenarios(ctx, req.RunID, scenarios, runner.Config{
		Trials:  req.Trials,
		Steps:   req.Steps,
		Workers: req.Workers,
	})
}

func (c *Client) runScenarios(ctx context.Context, runID string, scenarios []ScenarioConfig, cfg runner.Config) (RunResult, error) {
	if len(scenarios) == 0 {
		return RunResult{}, fmt.Errorf("at least one scenario is required")
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	names := make([]string, 0, len(scenarios))
	scenarioParams := make([]model.ScenarioParams, 0, len(scenarios))
	var allTrials []model.TrialSeries
	var summaries []stats.ScenarioSummary
	meanTotal := 0.0

	for _, config := range scenarios {
		result, err := runner.Run(ctx, runner.Scenario{Name: config.Name, Params: toParams(config)}, cfg)
		if err != nil {
			return RunResult{}, err
		}
		for i := range result.Trials {
			result.Trials[i].VersionedRecord = storage.Stamp()
		}
		summary, err := stats.SummarizeScenario(result.Scenario, result.Trials)
		if err != nil {
			return RunResult{}, err
		}
		names = append(names, result.Scenario)
		scenarioParams = append(scenarioParams, scenarioRecord(config))
		allTrials = append(allTrials, result.Trials...)
		summaries = append(summaries, summary)
		meanTotal += summary.MeanTotalDropout
	}
	meanTotal /= float64(len(scenarios))

	// The flat fields mirror the first scenario; Scenarios keeps the full
	// parameterization of every scenario in the run.
	first := scenarios[0]
	runSummary := model.RunSummary{
		VersionedRecord:       storage.Stamp(),
		RunID:                 runID,
		CreatedAtUTC:          time.Now().UTC().Format(time.RFC3339),
		Scenario:              strings.Join(names, ","),
		Agents:                first.Agents,
		KDegree:               first.KDegree,
		RewiringProb:          first.RewiringProb,
		BaseDropoutRate:       first.BaseDropoutRate,
		PeerInfluenceWeight:   first.PeerInfluenceWeight,
		PerformanceVolatility: first.PerformanceVolatility,
		FinancialAidPolicy:    first.FinancialAidPolicy,
		Seed:                  first.Seed,
		Trials:                cfg.Trials,
		Steps:                 cfg.Steps,
		FinalMeanDropoutRate:  meanTotal,
		Scenarios:             scenarioParams,
	}

	if err := c.store.SaveRunSummary(ctx, runSummary); err != nil {
		return RunResult{}, err
	}
	if err := c.store.SaveTrialSeries(ctx, runID, allTrials); err != nil {
		return RunResult{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.exportsDir, stats.RunArtifacts{
		Summary:   runSummary,
		Trials:    allTrials,
		Scenarios: summaries,
	})
	if err != nil {
		return RunResult{}, err
	}
	if err := stats.AppendRunIndex(c.exportsDir, indexEntry(runSummary)); err != nil {
		return RunResult{}, err
	}

	return RunResult{Summary: runSummary, Scenarios: summaries, ArtifactsDir: runDir}, nil
}

// Runs lists stored run summaries, newest first.
func (c *Client) Runs(ctx context.Context) ([]model.RunSummary, error) {
	return c.store.ListRunSummaries(ctx)
}

// Metrics returns the stored per-trial metrics of a run.
func (c *Client) Metrics(ctx context.Context, req MetricsRequest) ([]model.TrialSeries, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	trials, ok, err := c.store.GetTrialSeries(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no metrics stored for run %s", runID)
	}
	return trials, nil
}

// Export rebuilds a run's artifacts directory from the store.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}

	summary, ok, err := c.store.GetRunSummary(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("unknown run %s", runID)
	}
	trials, ok, err := c.store.GetTrialSeries(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("no metrics stored for run %s", runID)
	}

	grouped, order := groupTrialsByScenario(trials)
	summaries, err := stats.SummarizeSuite(grouped, order)
	if err != nil {
		return ExportSummary{}, err
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}
	dir, err := stats.WriteRunArtifacts(outDir, stats.RunArtifacts{
		Summary:   summary,
		Trials:    trials,
		Scenarios: summaries,
	})
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: dir}, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", fmt.Errorf("run id or latest is required")
	}
	summaries, err := c.store.ListRunSummaries(ctx)
	if err != nil {
		return "", err
	}
	if len(summaries) == 0 {
		return "", fmt.Errorf("no runs stored")
	}
	return summaries[0].RunID, nil
}

func toParams(config ScenarioConfig) sim.Params {
	activation := sim.RandomActivation
	if config.OrderedActivation {
		activation = sim.OrderedActivation
	}
	return sim.Params{
		N:                     config.Agents,
		KDegree:               config.KDegree,
		RewiringProb:          config.RewiringProb,
		BaseDropoutRate:       config.BaseDropoutRate,
		PeerInfluenceWeight:   config.PeerInfluenceWeight,
		PerformanceVolatility: config.PerformanceVolatility,
		FinancialAidPolicy:    config.FinancialAidPolicy,
		Seed:                  config.Seed,
		Activation:            activation,
		CollectAgents:         config.CollectAgents,
	}
}

func scenarioRecord(config ScenarioConfig) model.ScenarioParams {
	return model.ScenarioParams{
		Name:                  config.Name,
		Agents:                config.Agents,
		KDegree:               config.KDegree,
		RewiringProb:          config.RewiringProb,
		BaseDropoutRate:       config.BaseDropoutRate,
		PeerInfluenceWeight:   config.PeerInfluenceWeight,
		PerformanceVolatility: config.PerformanceVolatility,
		FinancialAidPolicy:    config.FinancialAidPolicy,
		OrderedActivation:     config.OrderedActivation,
		Seed:                  config.Seed,
	}
}

func fromParams(name string, params sim.Params) ScenarioConfig {
	return ScenarioConfig{
		Name:                  name,
		Agents:                params.N,
		KDegree:               params.KDegree,
		RewiringProb:          params.RewiringProb,
		BaseDropoutRate:       params.BaseDropoutRate,
		PeerInfluenceWeight:   params.PeerInfluenceWeight,
		PerformanceVolatility: params.PerformanceVolatility,
		FinancialAidPolicy:    params.FinancialAidPolicy,
		OrderedActivation:     params.Activation == sim.OrderedActivation,
		CollectAgents:         params.CollectAgents,
		Seed:                  params.Seed,
	}
}

func groupTrialsByScenario(trials []model.TrialSeries) (map[string][]model.TrialSeries, []string) {
	grouped := map[string][]model.TrialSeries{}
	order := []string{}
	for _, series := range trials {
		if _, ok := grouped[series.Scenario]; !ok {
			order = append(order, series.Scenario)
		}
		grouped[series.Scenario] = append(grouped[series.Scenario], series)
	}
	return grouped, order
}

func indexEntry(summary model.RunSummary) stats.RunIndexEntry {
	return stats.RunIndexEntry{
		RunID:                summary.RunID,
		Scenario:             summary.Scenario,
		Agents:               summary.Agents,
		Trials:               summary.Trials,
		Steps:                summary.Steps,
		Seed:                 summary.Seed,
		FinancialAidPolicy:   summary.FinancialAidPolicy,
		FinalMeanDropoutRate: summary.FinalMeanDropoutRate,
		CreatedAtUTC:         summary.CreatedAtUTC,
	}
}
