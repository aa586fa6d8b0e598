package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/dealerd/dealerd/internal/deck"
	"github.com/dealerd/dealerd/internal/ledger"
)

// houseTurn plays the house hand by consulting the advisor once per
// decision, with the round transcript as context. Advisory failures
// degrade to standing so the round always settles. The caller holds
// the session lock; events for this room queue behind the calls.
func (s *Session) houseTurn() {
	s.phase = PhaseHouseTurn

	if !s.housePlaying {
		s.settle()
		return
	}

	msgID, err := s.messenger.Send(s.room, s.houseTurnText("is thinking..."), nil)
	if err != nil {
		s.logger.Warn("Failed to send house turn message", "error", err)
	}

	for !s.house.Bust() {
		hit, err := s.advisor.HitOrStand(context.Background(), s.transcript.String(), s.houseHandDesc())
		if err != nil {
			s.logger.Warn("House advisory unavailable, standing", "error", err)
			hit = false
		}
		if !hit {
			break
		}
		card, ok := s.dealCard()
		if !ok {
			return
		}
		s.house = append(s.house, card)
		if editErr := s.messenger.Edit(s.room, msgID, s.houseTurnText(fmt.Sprintf("hits and draws %s", card)), nil); editErr != nil {
			s.logger.Warn("Failed to edit house turn message", "error", editErr)
		}
	}

	var outcome string
	if s.house.Bust() {
		outcome = "busted"
	} else {
		outcome = "stands"
	}
	text := fmt.Sprintf("%s %s with: %s (Total: %d)", houseName, outcome, s.house, s.house.Value())
	if err := s.messenger.Edit(s.room, msgID, text, nil); err != nil {
		s.logger.Warn("Failed to edit house turn message", "error", err)
	}
	s.transcript.WriteString(text)
	s.transcript.WriteString("\n\n")

	s.settle()
}

func (s *Session) houseTurnText(status string) string {
	return fmt.Sprintf("%s's turn\nHand: %s (Total: %d)\n%s %s",
		houseName, s.house, s.house.Value(), houseName, status)
}

func (s *Session) houseHandDesc() string {
	return fmt.Sprintf("Your cards: %s (Total: %d). The dealer's visible card is %s.",
		s.house, s.house.Value(), s.dealer[0])
}

// settle finishes the dealer hand and pays out. A winning hand returns
// the bet twice over, a push returns it once, and everything else was
// already deducted when betting closed. One ledger save covers the
// whole round.
func (s *Session) settle() {
	s.phase = PhaseSettlement

	for s.dealer.Value() < s.cfg.DealerStand {
		card, ok := s.dealCard()
		if !ok {
			return
		}
		s.dealer = append(s.dealer, card)
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Dealer's hand: %s (Total: %d)\n\n", s.dealer, s.dealer.Value())

	if s.housePlaying {
		result.WriteString(s.settleHand(houseName, ledger.HouseID, s.house, s.houseBet))
	}
	for _, p := range s.players {
		result.WriteString(s.settleHand(s.names[p], p, s.hands[p], s.bets[p]))
	}

	if err := s.ledger.Save(); err != nil {
		s.logger.Error("Failed to save balances", "error", err)
	}

	if _, err := s.messenger.Send(s.room, result.String(), nil); err != nil {
		s.logger.Warn("Failed to send results", "error", err)
	}

	s.logger.Info("Round settled", "players", len(s.players))
	s.closeLocked()
}

// settleHand applies one hand's payout and returns its result line.
func (s *Session) settleHand(name, id string, hand deck.Hand, bet int) string {
	value := hand.Value()
	switch {
	case hand.Bust():
		return fmt.Sprintf("%s busted with %d and lost %d.\n", name, value, bet)
	case s.dealer.Bust() || value > s.dealer.Value():
		s.ledger.Adjust(id, 2*bet)
		return fmt.Sprintf("%s won with %d and gained %d.\n", name, value, bet)
	case value == s.dealer.Value():
		s.ledger.Adjust(id, bet)
		return fmt.Sprintf("%s tied with %d and kept their bet of %d.\n", name, value, bet)
	default:
		return fmt.Sprintf("%s lost with %d against the dealer's %d, losing %d.\n", name, value, s.dealer.Value(), bet)
	}
}
