// Package advisor drives the house's play through a generative-language
// API. A Client returns short free-text replies; Policy wraps one with
// the fixed blackjack prompts and the parsing rules the game relies on.
package advisor

import (
	"context"
	"errors"
)

// Client produces a short text reply given a system prompt and a
// context block. Implementations own their retry policy; a reply is
// either usable text or an error after retries are exhausted.
type Client interface {
	Advise(ctx context.Context, system, contextText string) (string, error)
}

// ErrAdvisoryUnavailable is returned once a Client has exhausted its
// retries. Callers fall back to a safe default (stand, full-balance
// bet) rather than stalling the room.
var ErrAdvisoryUnavailable = errors.New("advisor: unavailable after retries")

// ErrNotANumber is returned when a reply that must be a bare
// non-negative integer is anything else.
var ErrNotANumber = errors.New("advisor: reply is not a number")
