package dirsize

import (
	"io"
	"sync"
	"time"
)

// DefaultWorkers is the default number of subdirectories measured concurrently.
const DefaultWorkers = 20

// Walker backends.
const (
	// WalkerFastwalk measures subtrees with fastwalk.
	WalkerFastwalk = "fastwalk"
	// WalkerStack measures subtrees with an explicit directory stack.
	WalkerStack = "stack"
)

// Walkers lists the supported walker backends.
//
//nolint:gochecknoglobals // Config constant
var Walkers = []string{WalkerFastwalk, WalkerStack}

// Entry holds the measurement of one directory.
type Entry struct {
	// Path is the absolute directory path.
	Path string `json:"path"`
	// Size is the cumulative size in bytes of all regular files counted.
	Size int64 `json:"size"`
	// FileCount is the number of regular files counted.
	FileCount int64 `json:"file_count"`
	// ModTime is the modification time of the directory itself.
	ModTime time.Time `json:"mod_time"`
}

// ErrorEntry records a directory that could not be fully enumerated.
type ErrorEntry struct {
	// Path is the directory that failed.
	Path string `json:"path"`
	// Description is the cause of the failure.
	Description string `json:"description"`
}

// Totals holds the aggregated values of a run.
type Totals struct {
	// Size is the sum of all entry sizes.
	Size int64 `json:"size"`
	// FileCount is the sum of all entry file counts.
	FileCount int64 `json:"file_count"`
	// Elapsed is the wall-clock duration of the traversal.
	Elapsed time.Duration `json:"elapsed"`
}

// Result is the final snapshot of a run.
type Result struct {
	// Root is the absolute path of the measured directory.
	Root string `json:"root"`
	// Entries holds the root (first) followed by one entry per immediate
	// subdirectory, in the order they completed.
	Entries []Entry `json:"entries"`
	// Totals holds the aggregated size, file count and elapsed time.
	Totals Totals `json:"totals"`
	// Errors holds every directory that could not be read.
	Errors []ErrorEntry `json:"errors"`
	// Workers is the worker bound used for the run.
	Workers int `json:"workers"`
	// Walker is the walker backend used for the run.
	Walker string `json:"walker"`
	// StartedAt is the time the traversal began.
	StartedAt time.Time `json:"started_at"`
}

// Options configures a run.
type Options struct {
	// Path is the directory to measure.
	Path string
	// Workers bounds the number of subdirectories measured at once.
	Workers int
	// Walker selects the walker backend (fastwalk or stack).
	Walker string
	// Progress, if set, is called after each subdirectory is merged.
	// It runs while the collector lock is held.
	Progress func(completed, total int)
	// Debug enables debug output.
	Debug bool
	// DebugWriter receives debug output. Defaults to stderr.
	DebugWriter io.Writer
}

// collector merges worker results under a mutex.
type collector struct {
	mu        sync.Mutex // Protect concurrent access
	entries   []Entry
	totals    Totals
	completed int
	total     int
	progress  func(completed, total int)
}

// newCollector creates a collector seeded with the root entry.
func newCollector(root Entry, total int, progress func(int, int)) *collector {
	entries := make([]Entry, 0, total+1)
	entries = append(entries, root)

	return &collector{
		entries:  entries,
		totals:   Totals{Size: root.Size, FileCount: root.FileCount},
		total:    total,
		progress: progress,
	}
}

// add merges a finished subdirectory. This operation is protected by a mutex
// since workers finish concurrently.
func (c *collector) add(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, entry)
	c.totals.Size += entry.Size
	c.totals.FileCount += entry.FileCount
	c.completed++

	if c.progress != nil {
		c.progress(c.completed, c.total)
	}
}

// finalize returns the merged entries and totals.
func (c *collector) finalize() ([]Entry, Totals) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)

	return entries, c.totals
}
