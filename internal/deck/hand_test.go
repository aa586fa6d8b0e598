package deck

import "testing"

func TestHandValue(t *testing.T) {
	tests := []struct {
		name string
		hand Hand
		want int
		bust bool
	}{
		{
			name: "blackjack",
			hand: Hand{NewCard(Ace, Spades), NewCard(King, Hearts)},
			want: 21,
		},
		{
			name: "ace and ten",
			hand: Hand{NewCard(Ace, Clubs), NewCard(Ten, Diamonds)},
			want: 21,
		},
		{
			name: "four aces reduce to 14",
			hand: Hand{NewCard(Ace, Spades), NewCard(Ace, Hearts), NewCard(Ace, Diamonds), NewCard(Ace, Clubs)},
			want: 14,
		},
		{
			name: "two faces and a five busts",
			hand: Hand{NewCard(King, Spades), NewCard(King, Hearts), NewCard(Five, Clubs)},
			want: 25,
			bust: true,
		},
		{
			name: "soft seventeen",
			hand: Hand{NewCard(Ace, Spades), NewCard(Six, Hearts)},
			want: 17,
		},
		{
			name: "soft hand hardens after a hit",
			hand: Hand{NewCard(Ace, Spades), NewCard(Six, Hearts), NewCard(Nine, Clubs)},
			want: 16,
		},
		{
			name: "pip cards",
			hand: Hand{NewCard(Two, Spades), NewCard(Seven, Hearts), NewCard(Nine, Clubs)},
			want: 18,
		},
		{
			name: "empty hand",
			hand: Hand{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hand.Value(); got != tt.want {
				t.Errorf("Value() = %d, want %d", got, tt.want)
			}
			if got := tt.hand.Bust(); got != tt.bust {
				t.Errorf("Bust() = %v, want %v", got, tt.bust)
			}
		})
	}
}

func TestHandString(t *testing.T) {
	h := Hand{NewCard(Ace, Spades), NewCard(Ten, Hearts), NewCard(Queen, Clubs)}
	if got, want := h.String(), "A♠ 10♥ Q♣"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
