package game

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/dealerd/dealerd/internal/deck"
	"github.com/dealerd/dealerd/internal/ledger"
)

// House display name used in chat messages and the transcript.
const houseName = "House"

// Timer keys for the phase-wide timers; player turns key on player id.
const (
	timerJoin = "join"
	timerBet  = "bet"
)

// Session is one blackjack game in one room. All exported methods and
// timer callbacks lock the session mutex for their whole duration,
// advisory calls included: events for a room queue behind the pending
// call, which is the intended single-thread-per-room model.
type Session struct {
	mu       sync.Mutex
	room     string
	phase    Phase
	cfg      Config
	registry *Registry

	messenger Messenger
	advisor   Advisor
	ledger    *ledger.Ledger
	clock     quartz.Clock
	logger    *log.Logger

	players     []string // join order = turn order = settlement order
	names       map[string]string
	hands       map[string]deck.Hand
	bets        map[string]int
	bettingDone map[string]struct{}
	current     int

	deck         *deck.Deck
	dealer       deck.Hand
	house        deck.Hand
	houseBet     int
	housePlaying bool

	// transcript collects turn outcomes; it is fed to the advisor as
	// conversational context for the house's decisions.
	transcript strings.Builder

	timers    map[string]*quartz.Timer
	joinMsgID int64
	betMsgID  int64
	turnMsgID int64
}

func newSession(room string, r *Registry) *Session {
	s := &Session{
		room:        room,
		phase:       PhaseJoining,
		cfg:         r.cfg,
		registry:    r,
		messenger:   r.messenger,
		advisor:     r.advisor,
		ledger:      r.ledger,
		clock:       r.clock,
		logger:      r.logger.With("room", room),
		names:       make(map[string]string),
		hands:       make(map[string]deck.Hand),
		bets:        make(map[string]int),
		bettingDone: make(map[string]struct{}),
		timers:      make(map[string]*quartz.Timer),
	}
	s.transcript.WriteString("Current player's cards and total:\n\n")
	return s
}

// Phase returns the session's current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Players returns the current player list in join order.
func (s *Session) Players() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.players))
	copy(out, s.players)
	return out
}

// Bet returns the current bet for a player.
func (s *Session) Bet(playerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bets[playerID]
}

// Hand returns a copy of a participant's hand.
func (s *Session) Hand(playerID string) deck.Hand {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(deck.Hand, len(s.hands[playerID]))
	copy(out, s.hands[playerID])
	return out
}

// open posts the join invitation and arms the join timer.
func (s *Session) open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := fmt.Sprintf("Blackjack game starting in %d seconds! Press Join:",
		int(s.cfg.JoinTimeout.Seconds()))
	msgID, err := s.messenger.Send(s.room, text, joinButtons())
	if err != nil {
		s.closeLocked()
		return fmt.Errorf("send join message: %w", err)
	}
	s.joinMsgID = msgID

	s.armTimer(timerJoin, s.cfg.JoinTimeout, s.onJoinTimeout)
	return nil
}

// Join adds a player during the join phase. Re-joining is a no-op.
func (s *Session) Join(playerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseJoining {
		return ErrWrongPhase
	}
	for _, p := range s.players {
		if p == playerID {
			return nil
		}
	}

	s.players = append(s.players, playerID)
	s.names[playerID] = name
	s.logger.Info("Player joined", "player", playerID, "name", name)

	var roster strings.Builder
	fmt.Fprintf(&roster, "Blackjack game starting in %d seconds!\n", int(s.cfg.JoinTimeout.Seconds()))
	for _, p := range s.players {
		fmt.Fprintf(&roster, "%s joined the game.\n", s.names[p])
	}
	if err := s.messenger.Edit(s.room, s.joinMsgID, roster.String(), joinButtons()); err != nil {
		s.logger.Warn("Failed to update join roster", "error", err)
	}
	return nil
}

func (s *Session) onJoinTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseJoining {
		return
	}
	s.openBetting()
}

// openBetting moves Joining → Betting: house bet via the advisor,
// default player bets, bet menu posted, bet timer armed. An empty room
// discards the session instead; there is no house-only game.
func (s *Session) openBetting() {
	s.cancelTimer(timerJoin)

	if len(s.players) == 0 {
		s.logger.Info("Nobody joined, discarding session")
		if err := s.messenger.Edit(s.room, s.joinMsgID, "Nobody joined. Game cancelled.", nil); err != nil {
			s.logger.Warn("Failed to edit join message", "error", err)
		}
		s.closeLocked()
		return
	}

	if err := s.messenger.Delete(s.room, s.joinMsgID); err != nil {
		s.logger.Warn("Error deleting join message", "error", err)
	}

	s.phase = PhaseBetting

	var text strings.Builder
	fmt.Fprintf(&text, "%ds to make your bet (default is %d). Current bets:\n\n",
		int(s.cfg.BetTimeout.Seconds()), s.cfg.DefaultBet)

	// The house commits its bet up front; players may still adjust
	// theirs until the timer fires.
	houseBalance := s.ledger.Get(ledger.HouseID)
	if houseBalance > 0 {
		bet, err := s.advisor.OpeningBet(context.Background(), houseBalance)
		if err != nil {
			s.logger.Warn("House opening bet unavailable, betting full balance", "error", err)
			bet = houseBalance
		}
		if bet > houseBalance {
			bet = houseBalance
		}
		s.houseBet = bet
		s.housePlaying = true
		remaining := s.ledger.Adjust(ledger.HouseID, -bet)
		fmt.Fprintf(&text, "%s has bet %d (Balance: %d)\n", houseName, bet, remaining)
	} else {
		fmt.Fprintf(&text, "%s has lost all its points and cannot play this round.\n", houseName)
	}

	var broke []string
	for _, p := range s.players {
		balance := s.ledger.Get(p)
		bet := s.cfg.DefaultBet
		if balance < bet {
			bet = balance
		}
		s.bets[p] = bet

		if bet == 0 && s.cfg.KickBrokePlayers {
			fmt.Fprintf(&text, "%s has no balance left. Will be kicked out.\n", s.names[p])
			broke = append(broke, p)
		} else {
			fmt.Fprintf(&text, "%s has bet %d (Balance: %d)\n", s.names[p], bet, balance-bet)
		}
	}
	for _, p := range broke {
		s.removePlayer(p)
	}

	msgID, err := s.messenger.Send(s.room, text.String(), s.betButtons())
	if err != nil {
		s.logger.Error("Failed to send bet menu", "error", err)
	}
	s.betMsgID = msgID

	s.armTimer(timerBet, s.cfg.BetTimeout, s.onBetTimeout)
}

// PlaceBet applies a bet menu choice: a chip amount adds to the
// current bet, a multiplier scales it, all-in takes the full balance.
// The result is clamped to what the player can cover.
func (s *Session) PlaceBet(playerID, choice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseBetting {
		return ErrWrongPhase
	}
	if !s.isPlayer(playerID) {
		return ErrNotPlaying
	}
	if _, done := s.bettingDone[playerID]; done {
		return nil
	}

	current := s.bets[playerID]
	// Bets are not deducted until the phase ends, so the ledger
	// balance is the most a player can cover.
	balance := s.ledger.Get(playerID)

	bet, err := s.resolveBetChoice(playerID, choice, current)
	if err != nil {
		return err
	}
	if bet > balance {
		bet = balance
	}
	if bet == current {
		return nil
	}

	s.bets[playerID] = bet
	s.broadcastBets()
	return nil
}

// resolveBetChoice maps a menu action or typed amount to a new bet.
// Chip buttons add to the current bet, multipliers scale it, anything
// typed that does not parse as a number means the full balance.
func (s *Session) resolveBetChoice(playerID, choice string, current int) (int, error) {
	if choice == "" {
		return 0, ErrInvalidBet
	}
	if choice == "allin" {
		return s.ledger.Get(playerID), nil
	}
	if rest, ok := strings.CutSuffix(choice, "x"); ok {
		if m, err := strconv.Atoi(rest); err == nil {
			for _, allowed := range s.cfg.Multipliers {
				if m == allowed {
					return current * m, nil
				}
			}
			return 0, ErrInvalidBet
		}
	}
	n, err := strconv.Atoi(choice)
	if err != nil {
		return s.ledger.Get(playerID), nil
	}
	if n < 0 {
		return 0, ErrInvalidBet
	}
	for _, chip := range s.cfg.ChipButtons {
		if n == chip {
			return current + n, nil
		}
	}
	return n, nil
}

// MarkDone records a player as finished betting. Betting closes early
// once every player is done; the batch deduction still happens
// uniformly at phase exit.
func (s *Session) MarkDone(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseBetting {
		return ErrWrongPhase
	}
	if !s.isPlayer(playerID) {
		return ErrNotPlaying
	}

	s.bettingDone[playerID] = struct{}{}
	if len(s.bettingDone) == len(s.players) {
		s.closeBetting()
	}
	return nil
}

func (s *Session) onBetTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseBetting {
		return
	}
	s.closeBetting()
}

// closeBetting deducts all bets as a batch, drops broke players, and
// deals the round.
func (s *Session) closeBetting() {
	s.cancelTimer(timerBet)

	for _, p := range s.players {
		s.ledger.Adjust(p, -s.bets[p])
	}

	if s.cfg.KickBrokePlayers {
		remaining := s.players[:0]
		for _, p := range s.players {
			if s.bets[p] == 0 {
				s.logger.Info("Removing broke player before dealing", "player", p)
				continue
			}
			remaining = append(remaining, p)
		}
		s.players = remaining
	}

	if err := s.messenger.Delete(s.room, s.betMsgID); err != nil {
		s.logger.Warn("Error deleting bet message", "error", err)
	}

	s.deal()
}

// deal shuffles a fresh deck and gives two cards to every player (join
// order), the dealer, and the house, then starts the first turn.
func (s *Session) deal() {
	s.phase = PhaseDealing
	s.deck = s.registry.newDeck()

	for _, p := range s.players {
		c1, ok1 := s.dealCard()
		c2, ok2 := s.dealCard()
		if !ok1 || !ok2 {
			return
		}
		s.hands[p] = deck.Hand{c1, c2}
	}

	d1, ok1 := s.dealCard()
	d2, ok2 := s.dealCard()
	if !ok1 || !ok2 {
		return
	}
	s.dealer = deck.Hand{d1, d2}

	if s.housePlaying {
		h1, ok1 := s.dealCard()
		h2, ok2 := s.dealCard()
		if !ok1 || !ok2 {
			return
		}
		s.house = deck.Hand{h1, h2}
	}

	// Only the dealer's first card is public until settlement.
	if _, err := s.messenger.Send(s.room, fmt.Sprintf("Dealer's visible card: %s", s.dealer[0]), nil); err != nil {
		s.logger.Warn("Failed to announce dealer card", "error", err)
	}

	s.phase = PhasePlayerTurns
	s.current = 0
	s.turnMsgID = 0
	s.nextTurn()
}

// dealCard draws one card, failing the session on an exhausted deck.
// With a fresh 52-card deck per round this is unreachable in practice.
func (s *Session) dealCard() (deck.Card, bool) {
	card, err := s.deck.Deal()
	if err != nil {
		s.logger.Error("Deck exhausted mid-session, aborting game", "error", err)
		if _, sendErr := s.messenger.Send(s.room, "The deck ran out. Game aborted.", nil); sendErr != nil {
			s.logger.Warn("Failed to announce aborted game", "error", sendErr)
		}
		s.closeLocked()
		return deck.Card{}, false
	}
	return card, true
}

// nextTurn presents the current player's hand with Hit/Stand buttons
// and arms that player's turn timer, or hands over to the house once
// every player has resolved. A zero turnMsgID means a fresh message;
// otherwise the previous prompt is edited in place (same-player hit).
func (s *Session) nextTurn() {
	if s.current >= len(s.players) {
		s.houseTurn()
		return
	}

	playerID := s.players[s.current]
	hand := s.hands[playerID]
	text := fmt.Sprintf("%s's turn\nHand: %s (Total: %d)\nYou have %d seconds to choose.",
		s.names[playerID], hand, hand.Value(), int(s.cfg.TurnTimeout.Seconds()))

	if s.turnMsgID == 0 {
		msgID, err := s.messenger.Send(s.room, text, turnButtons())
		if err != nil {
			s.logger.Error("Failed to send turn prompt", "error", err)
		}
		s.turnMsgID = msgID
	} else {
		if err := s.messenger.Edit(s.room, s.turnMsgID, text, turnButtons()); err != nil {
			s.logger.Warn("Failed to edit turn prompt", "error", err)
		}
	}

	msgID := s.turnMsgID
	s.armTimer(playerID, s.cfg.TurnTimeout, func() {
		s.onTurnTimeout(playerID, msgID)
	})
}

// onTurnTimeout is the implicit stand. The callback can race a
// just-arrived action, so it re-checks whose turn it is before acting.
func (s *Session) onTurnTimeout(playerID string, msgID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlayerTurns || s.current >= len(s.players) || s.players[s.current] != playerID {
		return
	}
	delete(s.timers, playerID)

	hand := s.hands[playerID]
	text := fmt.Sprintf("%s did not respond in time.\nStands with: %s (Total: %d)",
		s.names[playerID], hand, hand.Value())
	if err := s.messenger.Edit(s.room, msgID, text, nil); err != nil {
		s.logger.Warn("Failed to edit timeout message", "error", err)
	}

	fmt.Fprintf(&s.transcript, "%s stands with: %s (Total: %d)\n\n", s.names[playerID], hand, hand.Value())
	s.advanceTurn()
}

// Hit deals the current player one more card. Busting ends the turn;
// otherwise the same player chooses again with a fresh timer.
func (s *Session) Hit(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTurn(playerID); err != nil {
		return err
	}
	s.cancelTimer(playerID)

	card, ok := s.dealCard()
	if !ok {
		return deck.ErrEmptyDeck
	}
	s.hands[playerID] = append(s.hands[playerID], card)

	hand := s.hands[playerID]
	if hand.Bust() {
		text := fmt.Sprintf("%s busted with: %s (Total: %d)", s.names[playerID], hand, hand.Value())
		if err := s.messenger.Edit(s.room, s.turnMsgID, text, nil); err != nil {
			s.logger.Warn("Failed to edit bust message", "error", err)
		}
		s.transcript.WriteString(text)
		s.transcript.WriteString("\n\n")
		s.advanceTurn()
		return nil
	}

	s.nextTurn()
	return nil
}

// Stand ends the current player's turn.
func (s *Session) Stand(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTurn(playerID); err != nil {
		return err
	}
	s.cancelTimer(playerID)

	hand := s.hands[playerID]
	text := fmt.Sprintf("%s stands with: %s (Total: %d)", s.names[playerID], hand, hand.Value())
	if err := s.messenger.Edit(s.room, s.turnMsgID, text, nil); err != nil {
		s.logger.Warn("Failed to edit stand message", "error", err)
	}
	s.transcript.WriteString(text)
	s.transcript.WriteString("\n\n")

	s.advanceTurn()
	return nil
}

func (s *Session) checkTurn(playerID string) error {
	if s.phase != PhasePlayerTurns {
		return ErrWrongPhase
	}
	if s.current >= len(s.players) || s.players[s.current] != playerID {
		return ErrNotYourTurn
	}
	return nil
}

// advanceTurn moves to the next player on a new message.
func (s *Session) advanceTurn() {
	s.current++
	s.turnMsgID = 0
	s.nextTurn()
}

func (s *Session) isPlayer(playerID string) bool {
	for _, p := range s.players {
		if p == playerID {
			return true
		}
	}
	return false
}

func (s *Session) removePlayer(playerID string) {
	for i, p := range s.players {
		if p == playerID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			return
		}
	}
}

// broadcastBets re-renders the bet table after a change.
func (s *Session) broadcastBets() {
	var text strings.Builder
	fmt.Fprintf(&text, "%ds to make your bet (default is %d). Current bets:\n\n",
		int(s.cfg.BetTimeout.Seconds()), s.cfg.DefaultBet)

	if s.housePlaying {
		fmt.Fprintf(&text, "%s has bet %d (Balance: %d)\n", houseName, s.houseBet, s.ledger.Get(ledger.HouseID))
	}
	for _, p := range s.players {
		fmt.Fprintf(&text, "%s has bet %d (Balance: %d)\n",
			s.names[p], s.bets[p], s.ledger.Get(p)-s.bets[p])
	}

	if err := s.messenger.Edit(s.room, s.betMsgID, text.String(), s.betButtons()); err != nil {
		s.logger.Warn("Failed to update bet table", "error", err)
	}
}

// armTimer stores at most one outstanding timer per key,
// cancel-then-replace.
func (s *Session) armTimer(key string, d time.Duration, fn func()) {
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = s.clock.AfterFunc(d, fn)
}

func (s *Session) cancelTimer(key string) {
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// closeLocked tears the session down and releases the room slot. The
// caller holds the session lock.
func (s *Session) closeLocked() {
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.phase = PhaseClosed
	s.registry.remove(s.room)
}

func joinButtons() [][]Button {
	return [][]Button{{{Label: "Join", Action: "join"}}}
}

func turnButtons() [][]Button {
	return [][]Button{{
		{Label: "Hit", Action: "hit"},
		{Label: "Stand", Action: "stand"},
	}}
}

func (s *Session) betButtons() [][]Button {
	var chips []Button
	for _, amount := range s.cfg.ChipButtons {
		chips = append(chips, Button{Label: strconv.Itoa(amount), Action: fmt.Sprintf("bet_%d", amount)})
	}
	var mults []Button
	for _, m := range s.cfg.Multipliers {
		mults = append(mults, Button{Label: fmt.Sprintf("%dx", m), Action: fmt.Sprintf("bet_%dx", m)})
	}
	return [][]Button{
		chips,
		mults,
		{{Label: "All In", Action: "bet_allin"}},
		{{Label: "Done", Action: "done"}},
	}
}
