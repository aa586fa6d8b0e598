package deck

import (
	"math/rand"
	"testing"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	d := New(rand.New(rand.NewSource(1)))

	if d.Remaining() != 52 {
		t.Fatalf("expected 52 cards, got %d", d.Remaining())
	}

	seen := make(map[Card]bool)
	for i := 0; i < 52; i++ {
		card, err := d.Deal()
		if err != nil {
			t.Fatalf("deal %d: unexpected error %v", i+1, err)
		}
		if seen[card] {
			t.Fatalf("card %s dealt twice", card)
		}
		seen[card] = true
	}
	if len(seen) != 52 {
		t.Fatalf("expected 52 unique cards, got %d", len(seen))
	}
}

func TestDealFromEmptyDeck(t *testing.T) {
	d := New(rand.New(rand.NewSource(1)))
	for i := 0; i < 52; i++ {
		if _, err := d.Deal(); err != nil {
			t.Fatalf("deal %d: unexpected error %v", i+1, err)
		}
	}

	if _, err := d.Deal(); err != ErrEmptyDeck {
		t.Fatalf("expected ErrEmptyDeck on 53rd deal, got %v", err)
	}
}

func TestStackedDealsInOrder(t *testing.T) {
	d := Stacked(
		NewCard(Ace, Spades),
		NewCard(King, Hearts),
		NewCard(Five, Clubs),
	)

	want := []Card{
		NewCard(Ace, Spades),
		NewCard(King, Hearts),
		NewCard(Five, Clubs),
	}
	for i, w := range want {
		got, err := d.Deal()
		if err != nil {
			t.Fatalf("deal %d: unexpected error %v", i+1, err)
		}
		if got != w {
			t.Errorf("deal %d: got %s, want %s", i+1, got, w)
		}
	}
}
