package storage

import (
	"context"
	"sort"
	"sync"

	"schoolsim/internal/model"
)

type MemoryStore struct {
	mu        sync.RWMutex
	summaries map[string]model.RunSummary
	trials    map[string][]model.TrialSeries
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries = make(map[string]model.RunSummary)
	s.trials = make(map[string][]model.TrialSeries)
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries = make(map[string]model.RunSummary)
	s.trials = make(map[string][]model.TrialSeries)
	return nil
}

func (s *MemoryStore) SaveRunSummary(_ context.Context, summary model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries[summary.RunID] = summary
	return nil
}

func (s *MemoryStore) GetRunSummary(_ context.Context, runID string) (model.RunSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[runID]
	return summary, ok, nil
}

func (s *MemoryStore) ListRunSummaries(_ context.Context) ([]model.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.RunSummary, 0, len(s.summaries))
	for _, summary := range s.summaries {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAtUTC == summaries[j].CreatedAtUTC {
			return summaries[i].RunID < summaries[j].RunID
		}
		return summaries[i].CreatedAtUTC > summaries[j].CreatedAtUTC
	})
	return summaries, nil
}

func (s *MemoryStore) SaveTrialSeries(_ context.Context, runID string, trials []model.TrialSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.TrialSeries, len(trials))
	copy(copied, trials)
	s.trials[runID] = copied
	return nil
}

func (s *MemoryStore) GetTrialSeries(_ context.Context, runID string) ([]model.TrialSeries, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trials, ok := s.trials[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.TrialSeries, len(trials))
	copy(copied, trials)
	return copied, true, nil
}
