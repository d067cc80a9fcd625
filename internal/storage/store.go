package storage

import (
	"context"

	"schoolsim/internal/model"
)

// Store persists completed runs: the run summary and the full per-trial
// metrics series. Reset drops every stored run and leaves the store
// initialized and empty.
type Store interface {
	Init(ctx context.Context) error
	Reset(ctx context.Context) error
	SaveRunSummary(ctx context.Context, summary model.RunSummary) error
	GetRunSummary(ctx context.Context, runID string) (model.RunSummary, bool, error)
	ListRunSummaries(ctx context.Context) ([]model.RunSummary, error)
	SaveTrialSeries(ctx context.Context, runID string, trials []model.TrialSeries) error
	GetTrialSeries(ctx context.Context, runID string) ([]model.TrialSeries, bool, error)
}
