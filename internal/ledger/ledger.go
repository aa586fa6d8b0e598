// Package ledger persists chip balances across sessions as a flat
// id:amount table. Player ids map to balances; the house plays from
// the reserved HouseID entry.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// HouseID is the reserved ledger key for the house participant.
const HouseID = "AI"

// DefaultBalance is granted to a player on first reference.
const DefaultBalance = 1000

// Ledger maps participant ids to chip balances. All methods are safe
// for concurrent use; sessions in different rooms share one Ledger.
type Ledger struct {
	mu           sync.Mutex
	balances     map[string]int
	path         string
	houseBalance int
	logger       *log.Logger
}

// New creates a ledger backed by the file at path. houseBalance seeds
// the house entry when the file doesn't carry one.
func New(path string, houseBalance int, logger *log.Logger) *Ledger {
	return &Ledger{
		balances:     make(map[string]int),
		path:         path,
		houseBalance: houseBalance,
		logger:       logger.WithPrefix("ledger"),
	}
}

// Get returns the stored balance, or the default for an unseen id
// (players get DefaultBalance, the house its configured start).
func (l *Ledger) Get(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.get(id)
}

func (l *Ledger) get(id string) int {
	if bal, ok := l.balances[id]; ok {
		return bal
	}
	if id == HouseID {
		return l.houseBalance
	}
	return DefaultBalance
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

// Lookup returns the stored balance and whether the id has been seen.
// The refill flow needs to distinguish a new player from a broke one.
func (l *Ledger) Lookup(id string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[id]
	return bal, ok
}

// Set overwrites the balance for id.
func (l *Ledger) Set(id string, amount int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[id] = amount
}

// Adjust applies delta to the balance for id, materializing the
// default first for an unseen id. No floor is enforced here; bet
// amounts are clamped at wager time.
func (l *Ledger) Adjust(id string, delta int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.get(id) + delta
	l.balances[id] = next
	return next
}

// Load reads the id:amount table from disk. A missing file is a clean
// first run; malformed lines are logged and skipped.
func (l *Ledger) Load() error {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Info("No ledger file yet, starting fresh", "path", l.path)
			return nil
		}
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	l.mu.Lock()
	defer l.mu.Unlock()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		id, amountStr, ok := strings.Cut(line, ":")
		if !ok {
			l.logger.Warn("Skipping malformed ledger line", "line", lineNo)
			continue
		}
		amount, err := strconv.Atoi(strings.TrimSpace(amountStr))
		if err != nil {
			l.logger.Warn("Skipping ledger line with bad amount", "line", lineNo, "id", id)
			continue
		}
		l.balances[strings.TrimSpace(id)] = amount
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	if _, ok := l.balances[HouseID]; !ok {
		l.balances[HouseID] = l.houseBalance
	}

	l.logger.Info("Loaded balances", "entries", len(l.balances))
	return nil
}

// Save writes the full table back to disk. Entries are sorted so the
// file diffs cleanly; order is not significant on load.
func (l *Ledger) Save() error {
	l.mu.Lock()
	ids := make([]string, 0, len(l.balances))
	for id := range l.balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&sb, "%s:%d\n", id, l.balances[id])
	}
	l.mu.Unlock()

	if err := os.WriteFile(l.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
