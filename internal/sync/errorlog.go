package sync

import (
	"sync"
	"time"
)

const errorLogLimit = 100

// ErrorEntry is one recorded failure: which collection, which strategy,
// what went wrong, when.
type ErrorEntry struct {
	Collection string    `json:"collection"`
	Strategy   string    `json:"strategy"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// ErrorLog is a small rolling log of caught errors. It is a diagnostic
// aid for distinguishing "no data" from "fetch failed", not part of the
// functional contract.
type ErrorLog struct {
	mu      sync.RWMutex
	entries []ErrorEntry
}

// NewErrorLog creates an empty rolling log.
func NewErrorLog() *ErrorLog {
	return &ErrorLog{entries: make([]ErrorEntry, 0, errorLogLimit)}
}

// Record appends a failure, trimming to the last 100 entries.
func (l *ErrorLog) Record(collection string, strategy StrategyName, err error) {
	if err == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, ErrorEntry{
		Collection: collection,
		Strategy:   string(strategy),
		Message:    err.Error(),
		Timestamp:  time.Now(),
	})
	if len(l.entries) > errorLogLimit {
		l.entries = l.entries[len(l.entries)-errorLogLimit:]
	}
}

// Entries returns a copy of the recorded failures, oldest first.
func (l *ErrorLog) Entries() []ErrorEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ErrorEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// LastFor returns the most recent failure for a collection, if any.
func (l *ErrorLog) LastFor(collection string) (ErrorEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Collection == collection {
			return l.entries[i], true
		}
	}
	return ErrorEntry{}, false
}
