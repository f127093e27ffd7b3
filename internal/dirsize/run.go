package dirsize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// ErrRootNotFound is returned by Run when the root path does not exist or is not a directory.
var ErrRootNotFound = errors.New("root directory not found")

// logger provides conditional debug output.
type logger struct {
	enabled bool
	w       io.Writer
}

// printf prints debug output if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if l.enabled && l.w != nil {
		fmt.Fprintf(l.w, format, args...)
	}
}

// Run measures opt.Path and each of its immediate subdirectories.
//
// The root's own files are measured first, without descending. Each immediate
// subdirectory is then measured recursively, at most opt.Workers at a time,
// and merged into the result as it completes. Unreadable directories are
// reported in Result.Errors and do not stop the run.
//
// Run fails with ErrRootNotFound before any traversal if opt.Path is missing or
// not a directory, and with the context error if ctx is cancelled.
func Run(ctx context.Context, opt Options) (*Result, error) {
	return run(ctx, opt, nil)
}

// run is Run with an optional wrapper around the per-subdirectory measurement.
//
//nolint:funlen // Linear orchestration
func run(ctx context.Context, opt Options, wrap func(measureFunc) measureFunc) (*Result, error) {
	writer := opt.DebugWriter
	if writer == nil {
		writer = os.Stderr
	}

	log := logger{enabled: opt.Debug, w: writer}

	if opt.Path == "" {
		opt.Path = "."
	}

	root, err := filepath.Abs(filepath.Clean(opt.Path))
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	// validate path exists and is a directory
	if statInfo, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: accessing path %q: %w", ErrRootNotFound, root, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("%w: path %q is not a directory", ErrRootNotFound, root)
	}

	if opt.Workers <= 0 {
		opt.Workers = DefaultWorkers
	}

	if opt.Walker == "" {
		opt.Walker = WalkerFastwalk
	}

	if !slices.Contains(Walkers, opt.Walker) {
		return nil, fmt.Errorf("invalid walker %q: must be one of %v", opt.Walker, Walkers)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("measuring %q: %w", root, err)
	}

	log.printf("[debug]: root: %s\n", root)
	log.printf("[debug]: workers: %d\n", opt.Workers)
	log.printf("[debug]: walker: %s\n", opt.Walker)

	errs := &ErrorLog{}
	m := measurer{walker: opt.Walker, errs: errs, log: log}

	start := time.Now()

	rootEntry := m.measure(ctx, root, false)

	// A root that cannot be listed has already been recorded by the measurement above.
	recorded := errs.Len()

	dirs, err := subdirectories(root)
	if err != nil && recorded == 0 {
		m.fail(root, err)
	}

	log.printf("[debug]: %d subdirectories\n", len(dirs))

	measure := measureFunc(func(ctx context.Context, path string) Entry {
		return m.measure(ctx, path, true)
	})
	if wrap != nil {
		measure = wrap(measure)
	}

	collector := newCollector(rootEntry, len(dirs), opt.Progress)
	sched := scheduler{workers: opt.Workers, measure: measure, log: log}

	if err := sched.run(ctx, collector, dirs); err != nil {
		return nil, fmt.Errorf("measuring %q: %w", root, err)
	}

	entries, totals := collector.finalize()
	totals.Elapsed = time.Since(start)

	log.printf("[debug]: elapsed: %v\n", totals.Elapsed)

	return &Result{
		Root:      root,
		Entries:   entries,
		Totals:    totals,
		Errors:    errs.Snapshot(),
		Workers:   opt.Workers,
		Walker:    opt.Walker,
		StartedAt: start,
	}, nil
}
