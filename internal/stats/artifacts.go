package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"schoolsim/internal/model"
)

const runIndexFile = "run_index.json"

// RunArtifacts is everything written to a run's artifacts directory.
type RunArtifacts struct {
	Summary   model.RunSummary
	Trials    []model.TrialSeries
	Scenarios []ScenarioSummary
}

// RunIndexEntry is one row of the per-directory run index.
type RunIndexEntry struct {
	RunID                string  `json:"run_id"`
	Scenario             string  `json:"scenario"`
	Agents               int     `json:"agents"`
	Trials               int     `json:"trials"`
	Steps                int     `json:"steps"`
	Seed                 int64   `json:"seed"`
	FinancialAidPolicy   bool    `json:"financial_aid_policy"`
	FinalMeanDropoutRate float64 `json:"final_mean_dropout_rate"`
	CreatedAtUTC         string  `json:"created_at_utc"`
}

// WriteRunArtifacts writes config.json, summary.json and metrics.csv under
// baseDir/<run id> and returns the run directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Summary.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Summary.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Summary); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), artifacts.Scenarios); err != nil {
		return "", err
	}
	if err := writeMetricsCSV(filepath.Join(runDir, "metrics.csv"), artifacts.Trials); err != nil {
		return "", err
	}

	return runDir, nil
}

// AppendRunIndex upserts the entry into baseDir's run index.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}
	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}
	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index entries newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
	return entries, nil
}

// writeMetricsCSV flattens every trial series into one row per step, the
// shape downstream analysis expects: scenario and trial labels followed by
// the rate columns.
func writeMetricsCSV(path string, trials []model.TrialSeries) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{
		"scenario", "trial", "step",
		"total_dropout_rate", "low_ses_dropout_rate", "medium_ses_dropout_rate", "high_ses_dropout_rate",
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, series := range trials {
		for _, record := range series.Records {
			row := []string{
				series.Scenario,
				strconv.Itoa(series.Trial),
				strconv.Itoa(record.StepIndex),
				formatRate(record.TotalDropoutRate),
				formatRate(record.LowSESDropoutRate),
				formatRate(record.MediumSESDropoutRate),
				formatRate(record.HighSESDropoutRate),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
