package game

import "errors"

var (
	// ErrNoSession indicates the room has no active session.
	ErrNoSession = errors.New("game: no active session for room")

	// ErrSessionActive indicates the room already has a session.
	ErrSessionActive = errors.New("game: session already active for room")

	// ErrWrongPhase indicates the action doesn't apply to the current phase.
	ErrWrongPhase = errors.New("game: action not valid in current phase")

	// ErrNotYourTurn indicates a turn action from someone other than
	// the current player.
	ErrNotYourTurn = errors.New("game: not your turn")

	// ErrNotPlaying indicates an action from a player who isn't in the
	// session.
	ErrNotPlaying = errors.New("game: player not in session")

	// ErrInvalidBet indicates an unparseable bet choice. Amounts that
	// merely exceed the player's balance are clamped, not rejected.
	ErrInvalidBet = errors.New("game: invalid bet choice")
)
