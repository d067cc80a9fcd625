package sim

import (
	"fmt"
	"math"
	"math/rand"

	"schoolsim/internal/model"
	"schoolsim/internal/network"
)

// SES distribution over the population: 40% Low, 40% Medium, 20% High.
var sesShares = map[SESTier]float64{
	LowSES:    0.4,
	MediumSES: 0.4,
	HighSES:   0.2,
}

// Params are the scenario parameters of one model instance. All fields are
// fixed for the run's lifetime. There are no defaults here; defaults belong
// to the orchestration layer.
type Params struct {
	N                     int
	KDegree               int
	RewiringProb          float64
	BaseDropoutRate       float64
	PeerInfluenceWeight   float64
	PerformanceVolatility float64
	FinancialAidPolicy    bool
	Seed                  int64
	Activation            Activation
	CollectAgents         bool
}

func (p Params) validate() error {
	if p.N <= 0 {
		return fmt.Errorf("%w: agent count must be > 0, got %d", ErrInvalidParameter, p.N)
	}
	if p.BaseDropoutRate < 0 {
		return fmt.Errorf("%w: base dropout rate must be >= 0, got %g", ErrInvalidParameter, p.BaseDropoutRate)
	}
	if p.PeerInfluenceWeight < 0 || p.PeerInfluenceWeight > 1 {
		return fmt.Errorf("%w: peer influence weight must be in [0,1], got %g", ErrInvalidParameter, p.PeerInfluenceWeight)
	}
	if p.PerformanceVolatility < 0 {
		return fmt.Errorf("%w: performance volatility must be >= 0, got %g", ErrInvalidParameter, p.PerformanceVolatility)
	}
	switch p.Activation {
	case RandomActivation, OrderedActivation:
	default:
		return fmt.Errorf("%w: unknown activation order %d", ErrInvalidParameter, p.Activation)
	}
	return nil
}

// Model owns the graph, the population, the scheduler, the collector and a
// single seeded random stream. The stream is consumed in a fixed order:
// graph generation, SES shuffle, initial performance draws, then per step the
// activation shuffle followed by each agent's draws. Two models with
// identical parameters and seed produce identical histories.
type Model struct {
	params     Params
	rng        *rand.Rand
	graph      *network.Graph
	population *Population
	scheduler  *Scheduler
	collector  *Collector
}

func New(params Params) (*Model, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(params.Seed))
	graph, err := network.Generate(params.N, params.KDegree, params.RewiringProb, rng)
	if err != nil {
		return nil, fmt.Errorf("generate network: %w", err)
	}

	tiers := sesTiers(params.N)
	rng.Shuffle(len(tiers), func(i, j int) {
		tiers[i], tiers[j] = tiers[j], tiers[i]
	})

	agents := make([]*Agent, params.N)
	for i := range agents {
		performance := clamp(
			InitialPerformanceMean+rng.NormFloat64()*InitialPerformanceStd,
			initialPerformanceMin, initialPerformanceMax,
		)
		agents[i] = &Agent{ID: i, Performance: performance, SES: tiers[i], Status: Attending}
	}

	population, err := NewPopulation(agents, graph)
	if err != nil {
		return nil, err
	}
	scheduler := NewScheduler(params.Activation)
	for _, agent := range agents {
		scheduler.Add(agent)
	}

	return &Model{
		params:     params,
		rng:        rng,
		graph:      graph,
		population: population,
		scheduler:  scheduler,
		collector:  NewCollector(params.CollectAgents),
	}, nil
}

// sesTiers allocates the 40/40/20 split by the largest-remainder method so
// the tier counts always sum to n exactly, in tier order on ties.
func sesTiers(n int) []SESTier {
	type share struct {
		tier      SESTier
		count     int
		remainder float64
	}
	shares := make([]share, 0, len(sesShares))
	assigned := 0
	for _, tier := range Tiers() {
		exact := float64(n) * sesShares[tier]
		base := int(math.Floor(exact))
		shares = append(shares, share{tier: tier, count: base, remainder: exact - float64(base)})
		assigned += base
	}
	for left := n - assigned; left > 0; {
		best := 0
		for i := 1; i < len(shares); i++ {
			if shares[i].remainder > shares[best].remainder {
				best = i
			}
		}
		shares[best].count++
		shares[best].remainder = 0
		left--
	}

	tiers := make([]SESTier, 0, n)
	for _, s := range shares {
		for i := 0; i < s.count; i++ {
			tiers = append(tiers, s.tier)
		}
	}
	return tiers
}

// Step advances simulated time by one unit: it records a snapshot of the
// current state, then runs one full activation pass. Record i therefore
// describes the population after i completed passes, with record 0 being the
// initial state.
func (m *Model) Step() error {
	m.collector.Collect(m)
	return m.scheduler.Step(m, m.rng)
}

// Collect records a snapshot of the current state without advancing time.
// Callers that want the post-run state in the history invoke it once after
// the last Step.
func (m *Model) Collect() {
	m.collector.Collect(m)
}

// Params implements World.
func (m *Model) Params() Params {
	return m.params
}

// Neighbors implements World by delegating to the population container.
func (m *Model) Neighbors(agentID int) ([]*Agent, error) {
	return m.population.Neighbors(agentID)
}

// StepCount is the number of completed passes.
func (m *Model) StepCount() int {
	return m.scheduler.Steps()
}

// DropoutRate is the percentage of all agents that have dropped out.
func (m *Model) DropoutRate() float64 {
	return float64(m.population.DroppedOutCount()) / float64(m.population.Size()) * 100
}

// DropoutRateBySES is the percentage of the tier's agents that have dropped
// out, zero for an empty tier.
func (m *Model) DropoutRateBySES(tier SESTier) float64 {
	size, dropped := m.population.TierCounts(tier)
	if size == 0 {
		return 0
	}
	return float64(dropped) / float64(size) * 100
}

// History returns a copy of the collected metrics records.
func (m *Model) History() []model.StepRecord {
	return m.collector.Records()
}

// AgentHistory returns the per-step agent snapshots when enabled.
func (m *Model) AgentHistory() [][]model.AgentSnapshot {
	return m.collector.AgentRows()
}

// AgentSnapshots captures the current per-agent state.
func (m *Model) AgentSnapshots() []model.AgentSnapshot {
	snapshots := make([]model.AgentSnapshot, 0, m.population.Size())
	for _, agent := range m.population.Agents() {
		snapshots = append(snapshots, model.AgentSnapshot{
			AgentID:     agent.ID,
			Performance: agent.Performance,
			Status:      agent.Status.String(),
			SES:         agent.SES.String(),
		})
	}
	return snapshots
}

// Population exposes the container for read-only inspection.
func (m *Model) Population() *Population {
	return m.population
}

// Graph exposes the contact graph for read-only inspection.
func (m *Model) Graph() *network.Graph {
	return m.graph
}
