package dirsize

import "sync"

// ErrorLog is an append-only list of enumeration failures, safe for concurrent use.
type ErrorLog struct {
	mu      sync.Mutex
	entries []ErrorEntry
}

// Record appends a failure for path.
func (l *ErrorLog) Record(path string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, ErrorEntry{Path: path, Description: err.Error()})
}

// Len returns the number of recorded failures.
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

// Snapshot returns a copy of the recorded failures in the order they were recorded.
func (l *ErrorLog) Snapshot() []ErrorEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ErrorEntry, len(l.entries))
	copy(out, l.entries)

	return out
}
