package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/dealerd/dealerd/internal/deck"
	"github.com/dealerd/dealerd/internal/ledger"
)

// Registry tracks the active session per room and routes player
// actions to it. At most one session exists per room at a time; a
// session removes itself when it closes, releasing the room.
type Registry struct {
	cfg       Config
	messenger Messenger
	advisor   Advisor
	ledger    *ledger.Ledger
	logger    *log.Logger
	clock     quartz.Clock
	newDeck   func() *deck.Deck

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option customizes a Registry, mainly for tests.
type Option func(*Registry)

// WithClock substitutes the clock used for all session timers.
func WithClock(clock quartz.Clock) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithDeckFunc substitutes the deck factory, letting tests stack known
// cards.
func WithDeckFunc(fn func() *deck.Deck) Option {
	return func(r *Registry) { r.newDeck = fn }
}

// NewRegistry creates a session registry.
func NewRegistry(cfg Config, messenger Messenger, advisor Advisor, bal *ledger.Ledger, logger *log.Logger, opts ...Option) *Registry {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	r := &Registry{
		cfg:       cfg,
		messenger: messenger,
		advisor:   advisor,
		ledger:    bal,
		logger:    logger.WithPrefix("game"),
		clock:     quartz.NewReal(),
		newDeck:   func() *deck.Deck { return deck.New(rng) },
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartGame opens a new session for the room. Fails with
// ErrSessionActive while a previous session is still running.
func (r *Registry) StartGame(room string) error {
	r.mu.Lock()
	if _, ok := r.sessions[room]; ok {
		r.mu.Unlock()
		return ErrSessionActive
	}

	s := newSession(room, r)
	r.sessions[room] = s
	r.mu.Unlock()

	r.logger.Info("New blackjack game starting", "room", room)
	return s.open()
}

// Session returns the active session for a room, or nil.
func (r *Registry) Session(room string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[room]
}

// ActiveSessions returns the number of rooms with a running session.
func (r *Registry) ActiveSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) remove(room string) {
	r.mu.Lock()
	delete(r.sessions, room)
	r.mu.Unlock()
	r.logger.Info("Blackjack game ends", "room", room)
}

// Join adds a player to the room's session during the join phase.
func (r *Registry) Join(room, playerID, name string) error {
	s := r.Session(room)
	if s == nil {
		return ErrNoSession
	}
	return s.Join(playerID, name)
}

// PlaceBet applies a bet menu choice for a player.
func (r *Registry) PlaceBet(room, playerID, choice string) error {
	s := r.Session(room)
	if s == nil {
		return ErrNoSession
	}
	return s.PlaceBet(playerID, choice)
}

// MarkDone records that a player has finished betting.
func (r *Registry) MarkDone(room, playerID string) error {
	s := r.Session(room)
	if s == nil {
		return ErrNoSession
	}
	return s.MarkDone(playerID)
}

// Hit deals the current player one more card.
func (r *Registry) Hit(room, playerID string) error {
	s := r.Session(room)
	if s == nil {
		return ErrNoSession
	}
	return s.Hit(playerID)
}

// Stand ends the current player's turn.
func (r *Registry) Stand(room, playerID string) error {
	s := r.Session(room)
	if s == nil {
		return ErrNoSession
	}
	return s.Stand(playerID)
}

// RequestRefill handles an add_balance request. Only players whose
// balance has hit exactly zero get a house-granted refill; everyone
// else gets told where they stand.
func (r *Registry) RequestRefill(room, playerID, name string) error {
	bal, seen := r.ledger.Lookup(playerID)

	switch {
	case !seen:
		_, err := r.messenger.Send(room, fmt.Sprintf(
			"%s, you haven't played yet. Each new player receives a starting balance of %d.",
			name, ledger.DefaultBalance), nil)
		return err

	case bal > 0:
		_, err := r.messenger.Send(room, fmt.Sprintf("%s, you still have %d left.", name, bal), nil)
		return err

	default:
		amount, err := r.advisor.RefillAmount(context.Background(), name)
		if err != nil {
			r.logger.Warn("Refill request failed", "player", playerID, "error", err)
			_, sendErr := r.messenger.Send(room,
				"The house could not decide on a refill. Please try again later.", nil)
			return sendErr
		}

		r.ledger.Set(playerID, amount)
		if err := r.ledger.Save(); err != nil {
			r.logger.Error("Failed to save balances after refill", "error", err)
		}
		_, err = r.messenger.Send(room, fmt.Sprintf(
			"%s, you've been given %d points by the house to continue playing!", name, amount), nil)
		return err
	}
}
