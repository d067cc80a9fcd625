package sim

import (
	"errors"
	"math/rand"
	"testing"

	"schoolsim/internal/network"
)

func ringPopulation(t *testing.T, n, k int) (*Population, *network.Graph) {
	t.Helper()
	graph, err := network.Generate(n, k, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	agents := make([]*Agent, n)
	for i := range agents {
		agents[i] = &Agent{ID: i, Performance: 75, SES: MediumSES, Status: Attending}
	}
	population, err := NewPopulation(agents, graph)
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	return population, graph
}

func TestPopulationNeighborsMatchGraph(t *testing.T) {
	population, graph := ringPopulation(t, 10, 4)

	for id := 0; id < 10; id++ {
		neighbors, err := population.Neighbors(id)
		if err != nil {
			t.Fatalf("neighbors(%d): %v", id, err)
		}
		want := graph.Neighbors(id)
		if len(neighbors) != len(want) {
			t.Fatalf("agent %d: %d neighbors, want %d", id, len(neighbors), len(want))
		}
		for i, neighbor := range neighbors {
			if neighbor.ID != want[i] {
				t.Fatalf("agent %d: neighbor %d is %d, want %d", id, i, neighbor.ID, want[i])
			}
			if neighbor.ID == id {
				t.Fatalf("agent %d returned itself as neighbor", id)
			}
		}
	}
}

func TestPopulationUnknownAgent(t *testing.T) {
	population, _ := ringPopulation(t, 6, 2)

	for _, id := range []int{-1, 6, 100} {
		if _, err := population.Neighbors(id); !errors.Is(err, ErrUnknownAgent) {
			t.Fatalf("neighbors(%d): expected ErrUnknownAgent, got %v", id, err)
		}
		if _, err := population.Agent(id); !errors.Is(err, ErrUnknownAgent) {
			t.Fatalf("agent(%d): expected ErrUnknownAgent, got %v", id, err)
		}
	}
}

func TestPopulationRejectsMismatchedPlacement(t *testing.T) {
	graph, err := network.Generate(5, 2, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewPopulation(make([]*Agent, 3), graph); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for count mismatch, got %v", err)
	}

	agents := make([]*Agent, 5)
	for i := range agents {
		agents[i] = &Agent{ID: i}
	}
	agents[2].ID = 4
	if _, err := NewPopulation(agents, graph); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for id mismatch, got %v", err)
	}
}

func TestPopulationTierCounts(t *testing.T) {
	population, _ := ringPopulation(t, 8, 2)
	agents := population.Agents()
	agents[0].SES = LowSES
	agents[1].SES = LowSES
	agents[1].Status = DroppedOut
	agents[2].SES = HighSES

	size, dropped := population.TierCounts(LowSES)
	if size != 2 || dropped != 1 {
		t.Fatalf("low tier: size=%d dropped=%d, want 2/1", size, dropped)
	}
	size, dropped = population.TierCounts(HighSES)
	if size != 1 || dropped != 0 {
		t.Fatalf("high tier: size=%d dropped=%d, want 1/0", size, dropped)
	}
	if got := population.DroppedOutCount(); got != 1 {
		t.Fatalf("dropped out count = %d, want 1", got)
	}
}
