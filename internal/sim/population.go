package sim

import (
	"fmt"

	"schoolsim/internal/network"
)

// Population binds each agent to exactly one graph node. Placement is fixed
// at construction; the population owns the agents for the model's lifetime.
type Population struct {
	agents []*Agent
	graph  *network.Graph
}

func NewPopulation(agents []*Agent, graph *network.Graph) (*Population, error) {
	if graph.NodeCount() != len(agents) {
		return nil, fmt.Errorf("%w: node count %d does not match agent count %d",
			ErrInvalidParameter, graph.NodeCount(), len(agents))
	}
	for i, agent := range agents {
		if agent == nil {
			return nil, fmt.Errorf("%w: nil agent at node %d", ErrInvalidParameter, i)
		}
		if agent.ID != i {
			return nil, fmt.Errorf("%w: agent id %d placed at node %d", ErrInvalidParameter, agent.ID, i)
		}
	}
	return &Population{agents: agents, graph: graph}, nil
}

func (p *Population) Size() int {
	return len(p.agents)
}

// Agent returns the agent placed at the given node index.
func (p *Population) Agent(id int) (*Agent, error) {
	if id < 0 || id >= len(p.agents) {
		return nil, fmt.Errorf("agent %d: %w", id, ErrUnknownAgent)
	}
	return p.agents[id], nil
}

// Neighbors returns the agents adjacent to agentID on the graph, excluding
// the agent itself, in O(degree) time.
func (p *Population) Neighbors(agentID int) ([]*Agent, error) {
	if agentID < 0 || agentID >= len(p.agents) {
		return nil, fmt.Errorf("agent %d: %w", agentID, ErrUnknownAgent)
	}
	nodes := p.graph.Neighbors(agentID)
	neighbors := make([]*Agent, 0, len(nodes))
	for _, node := range nodes {
		neighbors = append(neighbors, p.agents[node])
	}
	return neighbors, nil
}

// Agents returns the agents in creation order. The slice is owned by the
// population; callers must treat it as read-only.
func (p *Population) Agents() []*Agent {
	return p.agents
}

// DroppedOutCount counts agents whose status is DroppedOut.
func (p *Population) DroppedOutCount() int {
	dropped := 0
	for _, agent := range p.agents {
		if agent.Status == DroppedOut {
			dropped++
		}
	}
	return dropped
}

// TierCounts returns the population size and dropped-out count of one tier.
func (p *Population) TierCounts(tier SESTier) (size, dropped int) {
	for _, agent := range p.agents {
		if agent.SES != tier {
			continue
		}
		size++
		if agent.Status == DroppedOut {
			dropped++
		}
	}
	return size, dropped
}
