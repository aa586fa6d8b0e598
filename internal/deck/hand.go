package deck

import "strings"

// Hand is the ordered set of cards held by one participant.
type Hand []Card

// Value computes the blackjack total: face cards count 10, Aces count
// 11 and drop to 1 one at a time while the total exceeds 21.
func (h Hand) Value() int {
	value := 0
	aces := 0
	for _, c := range h {
		value += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}
	return value
}

// Bust reports whether the hand's value exceeds 21.
func (h Hand) Bust() bool {
	return h.Value() > 21
}

// String returns the hand as space-separated cards (e.g. "A♠ 10♥").
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
