package models

// FlightPhase is one of fifteen ordered phase labels
type FlightPhase string

const (
	PhaseGround        FlightPhase = "ground"
	PhaseTaxi          FlightPhase = "taxi"
	PhaseLineUp        FlightPhase = "line_up"
	PhaseTakeoff       FlightPhase = "takeoff"
	PhaseInitialClimb  FlightPhase = "initial_climb"
	PhaseDeparture     FlightPhase = "departure"
	PhaseClimb         FlightPhase = "climb"
	PhaseCruise        FlightPhase = "cruise"
	PhaseDescent       FlightPhase = "descent"
	PhaseArrival       FlightPhase = "arrival"
	PhaseApproach      FlightPhase = "approach"
	PhaseFinalApproach FlightPhase = "final_approach"
	PhaseGoAround      FlightPhase = "go_around"
	PhaseLanding       FlightPhase = "landing"
	PhaseRollout       FlightPhase = "rollout"
)

// AllPhases lists the phases in flight order
var AllPhases = []FlightPhase{
	PhaseGround, PhaseTaxi, PhaseLineUp, PhaseTakeoff, PhaseInitialClimb,
	PhaseDeparture, PhaseClimb, PhaseCruise, PhaseDescent, PhaseArrival,
	PhaseApproach, PhaseFinalApproach, PhaseGoAround, PhaseLanding, PhaseRollout,
}

// Index returns the position of p in flight order, or -1
func (p FlightPhase) Index() int {
	for i, known := range AllPhases {
		if p == known {
			return i
		}
	}
	return -1
}

// IsDeparture reports whether the departure detector applies to p
func (p FlightPhase) IsDeparture() bool {
	switch p {
	case PhaseLineUp, PhaseTakeoff, PhaseInitialClimb, PhaseDeparture, PhaseClimb:
		return true
	}
	return false
}

// IsApproach reports whether the approach detector applies to p
func (p FlightPhase) IsApproach() bool {
	switch p {
	case PhaseArrival, PhaseApproach, PhaseFinalApproach, PhaseGoAround, PhaseLanding:
		return true
	}
	return false
}

// IsSafetyCritical marks the phases where phase-specific compliance weighs more
func (p FlightPhase) IsSafetyCritical() bool {
	switch p {
	case PhaseTakeoff, PhaseInitialClimb, PhaseFinalApproach, PhaseGoAround, PhaseLanding:
		return true
	}
	return false
}

// CoarsePhase groups the fifteen phases for severity lookups
type CoarsePhase string

const (
	CoarseGround    CoarsePhase = "ground"
	CoarseDeparture CoarsePhase = "departure"
	CoarseEnroute   CoarsePhase = "enroute"
	CoarseApproach  CoarsePhase = "approach"
	CoarseLanding   CoarsePhase = "landing"
)

// Coarse maps p onto its coarse group
func (p FlightPhase) Coarse() CoarsePhase {
	switch p {
	case PhaseGround, PhaseTaxi, PhaseRollout:
		return CoarseGround
	case PhaseLineUp, PhaseTakeoff, PhaseInitialClimb, PhaseDeparture, PhaseClimb:
		return CoarseDeparture
	case PhaseArrival, PhaseApproach, PhaseGoAround:
		return CoarseApproach
	case PhaseFinalApproach, PhaseLanding:
		return CoarseLanding
	default:
		return CoarseEnroute
	}
}
