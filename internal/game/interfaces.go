package game

import "context"

// Button is one pressable option attached to a chat message. Action is
// the command the transport sends back when it is pressed.
type Button struct {
	Label  string
	Action string
}

// Messenger is the chat transport the engine talks through. Message
// ids let later events edit or delete earlier messages in place.
// Implementations must tolerate edits/deletes of ids they no longer
// know about.
type Messenger interface {
	Send(room, text string, buttons [][]Button) (int64, error)
	Edit(room string, msgID int64, text string, buttons [][]Button) error
	Delete(room string, msgID int64) error
}

// Advisor supplies the house's decisions. Implementations retry
// internally; an error means the advisory service is unavailable and
// the engine falls back (stand, full-balance bet).
type Advisor interface {
	// HitOrStand decides the house's move given the session transcript
	// and the house's hand description. True means hit.
	HitOrStand(ctx context.Context, transcript, handDesc string) (bool, error)

	// OpeningBet sizes the house's bet for the round.
	OpeningBet(ctx context.Context, balance int) (int, error)

	// RefillAmount grants a broke player a fresh balance.
	RefillAmount(ctx context.Context, name string) (int, error)
}
