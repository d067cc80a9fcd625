package sim

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

type stubWorld struct {
	params    Params
	neighbors map[int][]*Agent
	err       error
}

func (w stubWorld) Neighbors(agentID int) ([]*Agent, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.neighbors[agentID], nil
}

func (w stubWorld) Params() Params {
	return w.params
}

func TestDroppedOutAgentIsNoOp(t *testing.T) {
	agent := &Agent{ID: 0, Performance: 42.5, SES: LowSES, Status: DroppedOut}
	world := stubWorld{params: Params{PerformanceVolatility: 10, BaseDropoutRate: 1}}

	for i := 0; i < 5; i++ {
		if err := agent.Step(world, rand.New(rand.NewSource(int64(i)))); err != nil {
			t.Fatalf("step: %v", err)
		}
	}

	if agent.Performance != 42.5 {
		t.Fatalf("dropped-out agent performance changed: %g", agent.Performance)
	}
	if agent.Status != DroppedOut {
		t.Fatalf("dropped-out agent status changed: %v", agent.Status)
	}
}

func TestAgentDropsWhenProbabilityExceedsOne(t *testing.T) {
	agent := &Agent{ID: 0, Performance: 80, SES: HighSES, Status: Attending}
	world := stubWorld{params: Params{BaseDropoutRate: 1.5}}

	if err := agent.Step(world, rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("step: %v", err)
	}
	if agent.Status != DroppedOut {
		t.Fatalf("expected certain dropout for probability > 1, got %v", agent.Status)
	}
}

func TestAgentPerformanceStaysBounded(t *testing.T) {
	world := stubWorld{params: Params{PerformanceVolatility: 500}}
	rng := rand.New(rand.NewSource(3))

	agent := &Agent{ID: 0, Performance: 50, SES: MediumSES, Status: Attending}
	for i := 0; i < 200; i++ {
		agent.Status = Attending
		if err := agent.Step(world, rng); err != nil {
			t.Fatalf("step: %v", err)
		}
		if agent.Performance < 0 || agent.Performance > 100 {
			t.Fatalf("performance out of [0,100]: %g", agent.Performance)
		}
	}
}

func TestAgentPerformanceUpdatesEvenWithoutDropout(t *testing.T) {
	agent := &Agent{ID: 0, Performance: 90, SES: HighSES, Status: Attending}
	world := stubWorld{params: Params{PerformanceVolatility: 2}}

	if err := agent.Step(world, rand.New(rand.NewSource(4))); err != nil {
		t.Fatalf("step: %v", err)
	}
	if agent.Status != Attending {
		t.Fatalf("no risk terms set, agent must not drop: %v", agent.Status)
	}
	if agent.Performance == 90 {
		t.Fatalf("performance perturbation was not applied")
	}
}

func TestAgentStepPropagatesNeighborError(t *testing.T) {
	agent := &Agent{ID: 7, Performance: 70, SES: LowSES, Status: Attending}
	world := stubWorld{err: ErrUnknownAgent}

	err := agent.Step(world, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestDropProbabilityComposition(t *testing.T) {
	agent := &Agent{Performance: 30, SES: MediumSES}
	params := Params{BaseDropoutRate: 0.001, PeerInfluenceWeight: 0.5}

	// risk = (60-30)/60 = 0.5, contribution 0.25; influence contribution 0.25.
	got := agent.dropProbability(0.5, params)
	want := 0.001 + 0.25 + 0.25
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("drop probability = %g, want %g", got, want)
	}
}

func TestDropProbabilityNotClamped(t *testing.T) {
	agent := &Agent{Performance: 0, SES: HighSES}
	params := Params{BaseDropoutRate: 0.5, PeerInfluenceWeight: 0}

	if got := agent.dropProbability(1, params); got <= 1 {
		t.Fatalf("expected probability above 1, got %g", got)
	}
}

func TestFinancialAidOnlyDiscountsLowSES(t *testing.T) {
	params := Params{BaseDropoutRate: 0.01, PeerInfluenceWeight: 0.5}
	aided := params
	aided.FinancialAidPolicy = true

	for _, tier := range Tiers() {
		agent := &Agent{Performance: 40, SES: tier}
		without := agent.dropProbability(0.3, params)
		with := agent.dropProbability(0.3, aided)

		if tier == LowSES {
			want := without * (1 - FinancialAidEffectiveness)
			if math.Abs(with-want) > 1e-12 {
				t.Fatalf("low SES aided probability = %g, want %g", with, want)
			}
			if with >= without {
				t.Fatalf("financial aid must lower low SES probability: %g >= %g", with, without)
			}
		} else if with != without {
			t.Fatalf("%s SES probability changed under financial aid: %g != %g", tier, with, without)
		}
	}
}

func TestPeerInfluenceScore(t *testing.T) {
	if got := peerInfluence(nil); got != 0 {
		t.Fatalf("isolated agent influence = %g, want 0", got)
	}

	neighbors := []*Agent{
		{Status: DroppedOut},
		{Status: Attending},
		{Status: DroppedOut},
		{Status: Attending},
	}
	if got := peerInfluence(neighbors); got != 0.5 {
		t.Fatalf("influence = %g, want 0.5", got)
	}
}
