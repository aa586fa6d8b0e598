package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)
	return logger
}

func TestDefaultsForUnseenIDs(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "balances.txt"), 2000, testLogger())

	require.Equal(t, DefaultBalance, l.Get("12345"))
	require.Equal(t, 2000, l.Get(HouseID))

	_, seen := l.Lookup("12345")
	require.False(t, seen, "Get must not materialize an entry")
}

func TestAdjust(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "balances.txt"), 1000, testLogger())

	require.Equal(t, 950, l.Adjust("7", -50))
	require.Equal(t, 1050, l.Adjust("7", 100))
	require.Equal(t, 1050, l.Get("7"))

	// No floor: Adjust trusts callers to clamp at wager time.
	require.Equal(t, -450, l.Adjust("8", -1450))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balances.txt")

	l := New(path, 1000, testLogger())
	l.Set("1001", 850)
	l.Set("1002", 0)
	l.Set(HouseID, 3200)
	require.NoError(t, l.Save())

	reloaded := New(path, 1000, testLogger())
	require.NoError(t, reloaded.Load())
	require.Equal(t, 850, reloaded.Get("1001"))
	require.Equal(t, 0, reloaded.Get("1002"))
	require.Equal(t, 3200, reloaded.Get(HouseID))
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balances.txt")
	content := "1001:500\nnot a line\n1002:abc\n\nAI:900\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := New(path, 1000, testLogger())
	require.NoError(t, l.Load())

	require.Equal(t, 500, l.Get("1001"))
	require.Equal(t, 900, l.Get(HouseID))
	_, seen := l.Lookup("1002")
	require.False(t, seen)
}

func TestLoadMissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "missing.txt"), 1000, testLogger())
	require.NoError(t, l.Load())
	require.Equal(t, 1000, l.Get(HouseID))
}

func TestLoadSeedsHouseWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balances.txt")
	require.NoError(t, os.WriteFile(path, []byte("1001:500\n"), 0o644))

	l := New(path, 750, testLogger())
	require.NoError(t, l.Load())

	bal, seen := l.Lookup(HouseID)
	require.True(t, seen)
	require.Equal(t, 750, bal)
}
