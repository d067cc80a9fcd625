package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"schoolsim/internal/runner"
	"schoolsim/internal/stats"
	"schoolsim/internal/storage"
	simapi "schoolsim/pkg/schoolsim"
)

const (
	exportsDir    = "exports"
	defaultDBPath = "schoolsim.db"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "suite":
		return runSuite(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "metrics":
		return runMetrics(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: schoolsimctl <init|reset|run|suite|runs|metrics|export> [flags]", msg)
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}
	if err := store.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	scenarioName := fs.String("scenario", "custom", "scenario label")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	agents := fs.Int("agents", runner.DefaultAgents, "number of student agents")
	kDegree := fs.Int("k", runner.DefaultKDegree, "ring lattice degree (even)")
	rewiringProb := fs.Float64("rewire", runner.DefaultRewiringProb, "edge rewiring probability")
	baseRate := fs.Float64("base-rate", runner.DefaultBaseDropoutRate, "baseline dropout probability per step")
	piWeight := fs.Float64("pi-weight", runner.DefaultPeerInfluenceWeight, "peer influence weight in [0,1]")
	volatility := fs.Float64("volatility", runner.DefaultPerformanceVolatility, "per-step performance volatility")
	financialAid := fs.Bool("aid", false, "enable the financial aid policy")
	ordered := fs.Bool("ordered", false, "use ordered activation instead of random")
	collectAgents := fs.Bool("collect-agents", false, "record per-agent snapshots each step")
	seed := fs.Int64("seed", 42, "base rng seed; trial t uses seed+t-1")
	steps := fs.Int("steps", runner.DefaultSteps, "steps per trial")
	trials := fs.Int("trials", runner.DefaultTrials, "independent trials")
	workers := fs.Int("workers", 4, "worker count")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit the run result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := simapi.New(ctx, simapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.Run(ctx, simapi.RunRequest{
		RunID: *runID,
		Scenario: simapi.ScenarioConfig{
			Name:                  *scenarioName,
			Agents:                *agents,
			KDegree:               *kDegree,
			RewiringProb:          *rewiringProb,
			BaseDropoutRate:       *baseRate,
			PeerInfluenceWeight:   *piWeight,
			PerformanceVolatility: *volatility,
			FinancialAidPolicy:    *financialAid,
			OrderedActivation:     *ordered,
			CollectAgents:         *collectAgents,
			Seed:                  *seed,
		},
		Steps:   *steps,
		Trials:  *trials,
		Workers: *workers,
	})
	if err != nil {
		return err
	}

	return printRunResult(result, *jsonOut)
}

func runSuite(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("suite", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional suite config YAML path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	seed := fs.Int64("seed", 42, "base rng seed for the built-in suite")
	steps := fs.Int("steps", runner.DefaultSteps, "steps per trial")
	trials := fs.Int("trials", runner.DefaultTrials, "independent trials per scenario")
	workers := fs.Int("workers", 4, "worker count")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit the run result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := simapi.SuiteRequest{
		Seed:    *seed,
		Steps:   *steps,
		Trials:  *trials,
		Workers: *workers,
	}
	if *configPath != "" {
		loaded, err := loadSuiteRequest(*configPath, *seed)
		if err != nil {
			return err
		}
		req = loaded
		if req.Workers == 0 {
			req.Workers = *workers
		}
	}
	req.RunID = *runID

	client, err := simapi.New(ctx, simapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.RunSuite(ctx, req)
	if err != nil {
		return err
	}

	return printRunResult(result, *jsonOut)
}

func printRunResult(result simapi.RunResult, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("run completed run_id=%s scenario=%s trials=%d steps=%d seed=%d\n",
		result.Summary.RunID,
		result.Summary.Scenario,
		result.Summary.Trials,
		result.Summary.Steps,
		result.Summary.Seed,
	)
	for _, scenario := range result.Scenarios {
		fmt.Printf("scenario=%s mean_total=%.4f mean_low=%.4f mean_medium=%.4f mean_high=%.4f min_total=%.4f max_total=%.4f\n",
			scenario.Scenario,
			scenario.MeanTotalDropout,
			scenario.MeanLowSESDropout,
			scenario.MeanMediumSESDropout,
			scenario.MeanHighSESDropout,
			scenario.MinTotalDropout,
			scenario.MaxTotalDropout,
		)
	}
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(result.ArtifactsDir))
	return nil
}

func runRuns(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	entries, err := stats.ListRunIndex(exportsDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if len(entries) > *limit {
		entries = entries[:*limit]
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("run_id=%s created_at=%s scenario=%s agents=%d trials=%d steps=%d seed=%d aid=%t final_mean_dropout_rate=%.4f\n",
			e.RunID,
			e.CreatedAtUTC,
			e.Scenario,
			e.Agents,
			e.Trials,
			e.Steps,
			e.Seed,
			e.FinancialAidPolicy,
			e.FinalMeanDropoutRate,
		)
	}
	return nil
}

func runMetrics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("metrics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show metrics for the most recent stored run")
	jsonOut := fs.Bool("json", false, "emit metrics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("metrics requires --run-id or --latest")
	}

	client, err := simapi.New(ctx, simapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	trials, err := client.Metrics(ctx, simapi.MetricsRequest{
		RunID:  *runID,
		Latest: *latest,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(trials)
	}

	for _, series := range trials {
		for _, record := range series.Records {
			fmt.Printf("scenario=%s trial=%d step=%d total=%.4f low=%.4f medium=%.4f high=%.4f\n",
				series.Scenario,
				series.Trial,
				record.StepIndex,
				record.TotalDropoutRate,
				record.LowSESDropoutRate,
				record.MediumSESDropoutRate,
				record.HighSESDropoutRate,
			)
		}
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent stored run")
	outDir := fs.String("out", exportsDir, "output directory")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}

	client, err := simapi.New(ctx, simapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	export, err := client.Export(ctx, simapi.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s dir=%s\n", export.RunID, filepath.Clean(export.Directory))
	return nil
}
