// Package sim implements the dropout simulation engine: students placed on a
// small-world contact graph, a per-step dropout decision rule, and step-wise
// metrics collection. A Model is single-threaded; independent models may run
// concurrently as long as each owns its seed.
package sim

import (
	"errors"
	"math/rand"

	"schoolsim/internal/network"
)

// ErrInvalidParameter aliases the network sentinel so construction failures
// from either layer satisfy the same errors.Is check.
var ErrInvalidParameter = network.ErrInvalidParameter

// ErrUnknownAgent marks a neighbor query for an agent that was never placed.
// It indicates an internal consistency bug, not a user error.
var ErrUnknownAgent = errors.New("unknown agent")

// SESTier is the socioeconomic tier of a student, fixed at creation.
type SESTier int

const (
	LowSES SESTier = iota
	MediumSES
	HighSES
)

var sesNames = [...]string{"Low", "Medium", "High"}

func (t SESTier) String() string {
	if t < LowSES || t > HighSES {
		return "Unknown"
	}
	return sesNames[t]
}

// Tiers lists all SES tiers in their canonical order.
func Tiers() []SESTier {
	return []SESTier{LowSES, MediumSES, HighSES}
}

// Status is the enrollment state of a student. The only transition is
// Attending -> DroppedOut; it never reverses.
type Status int

const (
	Attending Status = iota
	DroppedOut
)

func (s Status) String() string {
	if s == DroppedOut {
		return "Dropped Out"
	}
	return "Attending"
}

// Fixed model constants shared by every scenario.
const (
	PerformanceThreshold      = 60.0
	FinancialAidEffectiveness = 0.4
	InitialPerformanceMean    = 75.0
	InitialPerformanceStd     = 10.0

	initialPerformanceMin = 50.0
	initialPerformanceMax = 95.0
)

// World is the read view an agent consumes during its step: its neighbor set
// and the scenario parameters.
type World interface {
	Neighbors(agentID int) ([]*Agent, error)
	Params() Params
}

// Steppable is anything the scheduler can activate once per pass.
type Steppable interface {
	Step(w World, rng *rand.Rand) error
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
