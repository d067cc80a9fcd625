package sim

import (
	"fmt"
	"math/rand"
)

// Activation selects the order agents are activated within one pass. The
// order matters: neighbor statuses are read live, so an agent activated late
// in a pass sees dropouts that happened earlier in the same pass.
type Activation int

const (
	// RandomActivation reshuffles the order every pass using the model rng,
	// reproducible for a given seed. This is the default.
	RandomActivation Activation = iota
	// OrderedActivation always activates in creation order and consumes no
	// randomness for ordering.
	OrderedActivation
)

func (a Activation) String() string {
	if a == OrderedActivation {
		return "ordered"
	}
	return "random"
}

// Scheduler advances simulated time one generational pass at a time,
// activating every registered agent exactly once per pass. It never
// self-terminates; the caller decides how many passes to run.
type Scheduler struct {
	activation Activation
	agents     []Steppable
	order      []int
	steps      int
}

func NewScheduler(activation Activation) *Scheduler {
	return &Scheduler{activation: activation}
}

func (s *Scheduler) Add(agent Steppable) {
	s.agents = append(s.agents, agent)
	s.order = append(s.order, len(s.order))
}

// Step runs one full pass and increments the step counter.
func (s *Scheduler) Step(w World, rng *rand.Rand) error {
	if s.activation == RandomActivation {
		rng.Shuffle(len(s.order), func(i, j int) {
			s.order[i], s.order[j] = s.order[j], s.order[i]
		})
	}
	for _, idx := range s.order {
		if err := s.agents[idx].Step(w, rng); err != nil {
			return fmt.Errorf("step agent %d: %w", idx, err)
		}
	}
	s.steps++
	return nil
}

// Steps is the number of completed passes.
func (s *Scheduler) Steps() int {
	return s.steps
}
