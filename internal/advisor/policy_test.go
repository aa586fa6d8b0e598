package advisor

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	replies []string
	err     error
	calls   int
	lastSys string
	lastCtx string
}

func (f *fakeClient) Advise(_ context.Context, system, contextText string) (string, error) {
	f.calls++
	f.lastSys = system
	f.lastCtx = contextText
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func testLogger() *log.Logger {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)
	return logger
}

func TestHitOrStand(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		hit   bool
	}{
		{"bare hit", "hit", true},
		{"uppercase", "HIT", true},
		{"embedded", "I would hit here", true},
		{"stand", "stand", false},
		{"chatty stand", "Standing is correct.", false},
		{"garbage", "‽", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{replies: []string{tt.reply}}
			policy := NewPolicy(client, testLogger())

			hit, err := policy.HitOrStand(context.Background(), "transcript\n\n", "Your current cards: A♠ 6♥ (Total: 17)")
			require.NoError(t, err)
			require.Equal(t, tt.hit, hit)
		})
	}
}

func TestHitOrStandPropagatesUnavailable(t *testing.T) {
	client := &fakeClient{err: ErrAdvisoryUnavailable}
	policy := NewPolicy(client, testLogger())

	_, err := policy.HitOrStand(context.Background(), "", "")
	require.ErrorIs(t, err, ErrAdvisoryUnavailable)
}

func TestOpeningBet(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{"bare number", "150", 150},
		{"with whitespace", " 200\n", 200},
		{"not a number falls back to balance", "I bet fifty", 800},
		{"negative falls back", "-50", 800},
		{"empty falls back", "", 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{replies: []string{tt.reply}}
			policy := NewPolicy(client, testLogger())

			bet, err := policy.OpeningBet(context.Background(), 800)
			require.NoError(t, err)
			require.Equal(t, tt.want, bet)
		})
	}
}

func TestOpeningBetPromptEmbedsBalance(t *testing.T) {
	client := &fakeClient{replies: []string{"50"}}
	policy := NewPolicy(client, testLogger())

	_, err := policy.OpeningBet(context.Background(), 1234)
	require.NoError(t, err)
	require.Contains(t, client.lastSys, "balance of 1234")
}

func TestOpeningBetSurfacesClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	policy := NewPolicy(client, testLogger())

	_, err := policy.OpeningBet(context.Background(), 800)
	require.Error(t, err)
}

func TestRefillAmount(t *testing.T) {
	client := &fakeClient{replies: []string{"300"}}
	policy := NewPolicy(client, testLogger())

	amount, err := policy.RefillAmount(context.Background(), "Alice")
	require.NoError(t, err)
	require.Equal(t, 300, amount)
	require.Contains(t, client.lastSys, "Alice")
	require.Contains(t, client.lastCtx, "Current balance: 0")
}

func TestRefillAmountRejectsNonNumeric(t *testing.T) {
	client := &fakeClient{replies: []string{"have 300 chips, friend"}}
	policy := NewPolicy(client, testLogger())

	_, err := policy.RefillAmount(context.Background(), "Alice")
	require.ErrorIs(t, err, ErrNotANumber)
}
