package deck

import (
	"errors"
	"math/rand"
)

// ErrEmptyDeck is returned when dealing from an exhausted deck. A
// single blackjack round never draws anywhere near 52 cards, so hitting
// this is a session-fatal bug rather than a recoverable condition.
var ErrEmptyDeck = errors.New("deck: no cards remaining")

// Deck represents a shuffled deck of playing cards
type Deck struct {
	cards []Card
}

// New creates a standard 52-card deck shuffled with the given rng.
func New(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}

	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Ace; rank <= King; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}

	d.shuffle(rng)
	return d
}

// Stacked creates a deck that deals the given cards in order. Used by
// tests that need a known layout.
func Stacked(cards ...Card) *Deck {
	// Deal pops from the tail, so reverse into dealing order.
	stacked := make([]Card, len(cards))
	for i, c := range cards {
		stacked[len(cards)-1-i] = c
	}
	return &Deck{cards: stacked}
}

// shuffle randomizes the order of cards in the deck
func (d *Deck) shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top card from the deck
func (d *Deck) Deal() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}

	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}
