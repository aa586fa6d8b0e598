package game

import "time"

const (
	defaultPhaseTimeout = 20 * time.Second
	defaultBet          = 50
	defaultDealerStand  = 17
)

// Config parameterizes a session. Timer durations and the bet menu are
// configuration, not code paths.
type Config struct {
	// JoinTimeout bounds the open-for-join phase.
	JoinTimeout time.Duration

	// BetTimeout bounds the betting phase.
	BetTimeout time.Duration

	// TurnTimeout bounds each individual player turn; expiry is an
	// implicit stand.
	TurnTimeout time.Duration

	// DefaultBet is seeded for every player when betting opens (or the
	// player's full balance when it is lower).
	DefaultBet int

	// ChipButtons are the chip amounts offered in the bet menu. Pressing
	// one adds that amount to the player's current bet.
	ChipButtons []int

	// Multipliers are the bet multiplier options (2x, 3x, ...).
	Multipliers []int

	// DealerStand is the total the dealer hand draws to at settlement.
	DealerStand int

	// KickBrokePlayers removes players whose resolved bet is 0 before
	// dealing.
	KickBrokePlayers bool
}

// DefaultConfig returns the stock table configuration.
func DefaultConfig() Config {
	return Config{
		JoinTimeout:      defaultPhaseTimeout,
		BetTimeout:       defaultPhaseTimeout,
		TurnTimeout:      defaultPhaseTimeout,
		DefaultBet:       defaultBet,
		ChipButtons:      []int{50, 100, 500},
		Multipliers:      []int{2, 3, 5},
		DealerStand:      defaultDealerStand,
		KickBrokePlayers: true,
	}
}
