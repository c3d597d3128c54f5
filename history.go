package ptb

import (
	"time"
)

// HistoryEntry records one execution attempt for later inspection.
type HistoryEntry struct {
	Network  string
	Commands []*Command
	Outcome  OutcomeKind
	Digest   string
	GasUsed  uint64
	When     time.Time
}

// HistoryStore persists execution records. Recording is fire-and-forget:
// a failing store never affects the user-visible outcome.
type HistoryStore interface {
	Record(entry HistoryEntry) error
}
