package advisor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const hitStandPrompt = `You are a Blackjack master. ` +
	`Given a hand of cards, your only task is to decide whether to "hit" or ` +
	`"stand" based on standard Blackjack strategy. Must only reply with a single word: either "hit" or ` +
	`"stand". Do not explain your reasoning or include any other text. ` +
	"\nExample input: \"Hand: 9♠ 7♦ (Total: 16), " +
	"Dealer shows: 10♥\" \nExpected output: hit\n\n"

const openingBetPrompt = `You are a Blackjack master with a balance of %d. ` +
	`Initial bet is 50 or all your balance if it is less than 50. ` +
	`The betting options are any positive whole number which is divisible by 50, ` +
	`but don't bet more than your current balance. ` +
	`Decide how much you want to bet for this round. Respond only with the number of your bet. ` +
	`(e.g., 100, 200). Betting can be more aggressive.`

const refillPrompt = `You are a blackjack game assistant. A player named %s currently has a balance of 0. ` +
	`Please decide a fair amount of in-game currency to give them so they can continue playing. ` +
	`The amount should be reasonable for someone restarting the game.` +
	"\n\nOnly respond with the number (e.g., 100, 200). The amount can be more aggressive."

var bareNumber = regexp.MustCompile(`^\d+$`)

// Policy issues the house's decisions through an advisory Client. The
// contract with the game is narrow: a decision reply containing "hit"
// means hit, anything else means stand; sizing replies must be a bare
// non-negative integer or the documented fallback applies.
type Policy struct {
	client Client
	logger *log.Logger
}

// NewPolicy creates a Policy over the given client.
func NewPolicy(client Client, logger *log.Logger) *Policy {
	return &Policy{client: client, logger: logger.WithPrefix("policy")}
}

// HitOrStand decides the house's move. transcript carries the turn
// outcomes seen so far, handDesc the house's current hand.
func (p *Policy) HitOrStand(ctx context.Context, transcript, handDesc string) (bool, error) {
	reply, err := p.client.Advise(ctx, hitStandPrompt, transcript+handDesc)
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(reply), "hit"), nil
}

// OpeningBet sizes the house's bet for a round. A reply that is not a
// bare integer falls back to the full balance; only transport-level
// failure is surfaced as an error.
func (p *Policy) OpeningBet(ctx context.Context, balance int) (int, error) {
	prompt := fmt.Sprintf(openingBetPrompt, balance)
	reply, err := p.client.Advise(ctx, prompt, "")
	if err != nil {
		return 0, err
	}

	reply = strings.TrimSpace(reply)
	if !bareNumber.MatchString(reply) {
		p.logger.Warn("Opening bet reply is not a number, betting full balance", "reply", reply)
		return balance, nil
	}

	bet, err := strconv.Atoi(reply)
	if err != nil {
		return balance, nil
	}
	return bet, nil
}

// RefillAmount asks for a fresh balance for a broke player.
func (p *Policy) RefillAmount(ctx context.Context, name string) (int, error) {
	prompt := fmt.Sprintf(refillPrompt, name)
	contextText := fmt.Sprintf("Player: %s\nCurrent balance: 0\n", name)
	reply, err := p.client.Advise(ctx, prompt, contextText)
	if err != nil {
		return 0, err
	}

	reply = strings.TrimSpace(reply)
	if !bareNumber.MatchString(reply) {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, reply)
	}
	return strconv.Atoi(reply)
}
