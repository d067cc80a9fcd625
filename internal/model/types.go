package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// StepRecord is one row of the metrics history. Rates are percentages in
// [0,100]. StepIndex counts completed update passes, so index 0 describes the
// initial population before any agent has acted.
type StepRecord struct {
	StepIndex            int     `json:"step_index"`
	TotalDropoutRate     float64 `json:"total_dropout_rate"`
	LowSESDropoutRate    float64 `json:"low_ses_dropout_rate"`
	MediumSESDropoutRate float64 `json:"medium_ses_dropout_rate"`
	HighSESDropoutRate   float64 `json:"high_ses_dropout_rate"`
}

// AgentSnapshot is an optional per-agent row matching one StepRecord.
type AgentSnapshot struct {
	AgentID     int     `json:"agent_id"`
	Performance float64 `json:"performance"`
	Status      string  `json:"status"`
	SES         string  `json:"ses"`
}

// TrialSeries holds the full metrics history of one independent model run.
type TrialSeries struct {
	VersionedRecord
	Scenario  string            `json:"scenario"`
	Trial     int               `json:"trial"`
	Seed      int64             `json:"seed"`
	Records   []StepRecord      `json:"records"`
	AgentRows [][]AgentSnapshot `json:"agent_rows,omitempty"`
}

// ScenarioParams records one scenario's full parameterization inside a
// RunSummary.
type ScenarioParams struct {
	Name                  string  `json:"name"`
	Agents                int     `json:"agents"`
	KDegree               int     `json:"k_degree"`
	RewiringProb          float64 `json:"rewiring_prob"`
	BaseDropoutRate       float64 `json:"base_dropout_rate"`
	PeerInfluenceWeight   float64 `json:"peer_influence_weight"`
	PerformanceVolatility float64 `json:"performance_volatility"`
	FinancialAidPolicy    bool    `json:"financial_aid_policy"`
	OrderedActivation     bool    `json:"ordered_activation"`
	Seed                  int64   `json:"seed"`
}

// RunSummary describes a completed run: the scenario parameters it was
// launched with and the headline result. Scenarios carries the full
// parameterization of every scenario in the run; the flat parameter fields
// mirror the first scenario as a convenience for listings.
type RunSummary struct {
	VersionedRecord
	RunID                 string           `json:"run_id"`
	CreatedAtUTC          string           `json:"created_at_utc"`
	Scenario              string           `json:"scenario"`
	Agents                int              `json:"agents"`
	KDegree               int              `json:"k_degree"`
	RewiringProb          float64          `json:"rewiring_prob"`
	BaseDropoutRate       float64          `json:"base_dropout_rate"`
	PeerInfluenceWeight   float64          `json:"peer_influence_weight"`
	PerformanceVolatility float64          `json:"performance_volatility"`
	FinancialAidPolicy    bool             `json:"financial_aid_policy"`
	Seed                  int64            `json:"seed"`
	Trials                int              `json:"trials"`
	Steps                 int              `json:"steps"`
	FinalMeanDropoutRate  float64          `json:"final_mean_dropout_rate"`
	Scenarios             []ScenarioParams `json:"scenarios,omitempty"`
}
