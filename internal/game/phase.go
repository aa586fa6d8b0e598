package game

// Phase represents where a session is in its lifecycle. Transitions
// only ever move forward.
type Phase int

const (
	PhaseJoining Phase = iota
	PhaseBetting
	PhaseDealing
	PhasePlayerTurns
	PhaseHouseTurn
	PhaseSettlement
	PhaseClosed
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseJoining:
		return "joining"
	case PhaseBetting:
		return "betting"
	case PhaseDealing:
		return "dealing"
	case PhasePlayerTurns:
		return "player-turns"
	case PhaseHouseTurn:
		return "house-turn"
	case PhaseSettlement:
		return "settlement"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}
