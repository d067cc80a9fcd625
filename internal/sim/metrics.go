package sim

import "schoolsim/internal/model"

// Collector samples aggregate and (optionally) per-agent state into an
// append-only, step-ordered history. It only reads the model state.
type Collector struct {
	collectAgents bool
	records       []model.StepRecord
	agentRows     [][]model.AgentSnapshot
}

func NewCollector(collectAgents bool) *Collector {
	return &Collector{collectAgents: collectAgents}
}

// Collect appends one record of the model's current state, labeled with the
// number of completed passes. Memory grows O(steps), plus O(steps*agents)
// when per-agent snapshots are enabled.
func (c *Collector) Collect(m *Model) {
	c.records = append(c.records, model.StepRecord{
		StepIndex:            m.StepCount(),
		TotalDropoutRate:     m.DropoutRate(),
		LowSESDropoutRate:    m.DropoutRateBySES(LowSES),
		MediumSESDropoutRate: m.DropoutRateBySES(MediumSES),
		HighSESDropoutRate:   m.DropoutRateBySES(HighSES),
	})
	if c.collectAgents {
		c.agentRows = append(c.agentRows, m.AgentSnapshots())
	}
}

// Records returns a copy of the collected history.
func (c *Collector) Records() []model.StepRecord {
	out := make([]model.StepRecord, len(c.records))
	copy(out, c.records)
	return out
}

// AgentRows returns a copy of the per-agent snapshot history, nil unless
// per-agent collection was enabled.
func (c *Collector) AgentRows() [][]model.AgentSnapshot {
	if c.agentRows == nil {
		return nil
	}
	out := make([][]model.AgentSnapshot, 0, len(c.agentRows))
	for _, row := range c.agentRows {
		copied := make([]model.AgentSnapshot, len(row))
		copy(copied, row)
		out = append(out, copied)
	}
	return out
}
