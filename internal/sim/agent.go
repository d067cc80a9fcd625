package sim

import (
	"math"
	"math/rand"
)

// Agent is one student. Its ID doubles as its node index on the contact
// graph. Performance stays in [0,100]; SES never changes; Status only moves
// from Attending to DroppedOut.
type Agent struct {
	ID          int
	Performance float64
	SES         SESTier
	Status      Status
}

// Step runs the per-semester decision rule. Dropped-out agents are no-ops.
// The performance perturbation is applied before the dropout decision and
// happens even when the agent survives the step. Neighbor statuses are read
// live, so agents activated earlier in the same pass are already visible;
// the activation order policy controls that sensitivity.
func (a *Agent) Step(w World, rng *rand.Rand) error {
	if a.Status == DroppedOut {
		return nil
	}

	p := w.Params()
	a.Performance = clamp(a.Performance+rng.NormFloat64()*p.PerformanceVolatility, 0, 100)

	neighbors, err := w.Neighbors(a.ID)
	if err != nil {
		return err
	}
	influence := peerInfluence(neighbors)

	if rng.Float64() < a.dropProbability(influence, p) {
		a.Status = DroppedOut
	}
	return nil
}

// dropProbability combines academic risk and peer contagion. The result is
// deliberately not clamped to [0,1]; values above 1 mean certain dropout.
func (a *Agent) dropProbability(peerInfluence float64, p Params) float64 {
	risk := math.Max(0, PerformanceThreshold-a.Performance) / PerformanceThreshold
	pDrop := p.BaseDropoutRate +
		risk*(1-p.PeerInfluenceWeight) +
		peerInfluence*p.PeerInfluenceWeight
	if p.FinancialAidPolicy && a.SES == LowSES {
		pDrop *= 1 - FinancialAidEffectiveness
	}
	return pDrop
}

// peerInfluence is the dropped-out fraction of the neighbor set, zero for an
// isolated agent.
func peerInfluence(neighbors []*Agent) float64 {
	if len(neighbors) == 0 {
		return 0
	}
	dropped := 0
	for _, n := range neighbors {
		if n.Status == DroppedOut {
			dropped++
		}
	}
	return float64(dropped) / float64(len(neighbors))
}
