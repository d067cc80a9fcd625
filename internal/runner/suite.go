package runner

import "schoolsim/internal/sim"

// Experiment defaults matching the study design: 200 students, ring degree 4,
// 20% rewiring, near-zero inherent risk, balanced academic/peer weighting.
const (
	DefaultAgents                = 200
	DefaultKDegree               = 4
	DefaultRewiringProb          = 0.2
	DefaultBaseDropoutRate       = 0.001
	DefaultPeerInfluenceWeight   = 0.5
	DefaultPerformanceVolatility = 1.5
	DefaultSteps                 = 20
	DefaultTrials                = 30
)

// BaselineParams returns the default scenario parameters with the given seed.
func BaselineParams(seed int64) sim.Params {
	return sim.Params{
		N:                     DefaultAgents,
		KDegree:               DefaultKDegree,
		RewiringProb:          DefaultRewiringProb,
		BaseDropoutRate:       DefaultBaseDropoutRate,
		PeerInfluenceWeight:   DefaultPeerInfluenceWeight,
		PerformanceVolatility: DefaultPerformanceVolatility,
		Seed:                  seed,
	}
}

// DefaultSuite is the three-scenario experiment: a baseline, the financial
// aid intervention, and a high peer-contagion check.
func DefaultSuite(seed int64) []Scenario {
	baseline := BaselineParams(seed)

	intervention := baseline
	intervention.FinancialAidPolicy = true

	contagion := baseline
	contagion.PeerInfluenceWeight = 0.8

	return []Scenario{
		{Name: "1_Baseline", Params: baseline},
		{Name: "2_Intervention_FinancialAid", Params: intervention},
		{Name: "3_Contagion_Check_HighPI", Params: contagion},
	}
}
