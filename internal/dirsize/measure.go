package dirsize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// errNotDirectory is recorded when a path handed to a walker is not a directory.
var errNotDirectory = errors.New("not a directory")

// measureFunc measures one top-level subdirectory recursively.
type measureFunc func(ctx context.Context, path string) Entry

// measurer walks directories and records failures in a shared ErrorLog.
// It holds no per-walk state, so one measurer serves every worker.
type measurer struct {
	walker string
	errs   *ErrorLog
	log    logger
}

// Measure returns the size and regular-file count of path. When recursive is
// false only the direct files of path are counted.
//
// Directories that cannot be read are recorded in errs and contribute nothing
// beyond what was read before the failure. Files that vanish before their size
// is read are skipped. Symlinks and other non-regular files are neither counted
// nor followed.
func Measure(ctx context.Context, path string, recursive bool, walker string, errs *ErrorLog) Entry {
	if errs == nil {
		errs = &ErrorLog{}
	}

	return measurer{walker: walker, errs: errs}.measure(ctx, path, recursive)
}

func (m measurer) measure(ctx context.Context, path string, recursive bool) Entry {
	path = filepath.Clean(path)
	entry := Entry{Path: path}

	if info, err := os.Stat(path); err == nil {
		entry.ModTime = info.ModTime()
	}

	switch m.walker {
	case WalkerStack:
		entry.Size, entry.FileCount = m.walkStack(ctx, path, recursive)
	default:
		entry.Size, entry.FileCount = m.walkFast(ctx, path, recursive)
	}

	return entry
}

// fail records an enumeration failure for path.
func (m measurer) fail(path string, err error) {
	m.log.printf("[debug]: error reading %s: %v\n", path, err)
	m.errs.Record(path, err)
}

// walkFast measures root with fastwalk using a single worker, so a subtree
// never adds concurrency beyond the goroutine that owns it.
//
//nolint:varnamelen // d is standard for DirEntry
func (m measurer) walkFast(ctx context.Context, root string, recursive bool) (int64, int64) {
	var size, count atomic.Int64

	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: 1,
	}

	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// File-level failures are skipped like vanished files.
			if d != nil && !d.IsDir() {
				return nil
			}

			m.fail(path, err)

			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path == root {
			if !d.IsDir() {
				m.fail(path, fmt.Errorf("reading %s: %w", path, errNotDirectory))

				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // Vanished files are skipped
		}

		size.Add(info.Size())
		count.Add(1)

		return nil
	})
	if walkErr != nil && ctx.Err() == nil {
		m.fail(root, walkErr)
	}

	return size.Load(), count.Load()
}

// walkStack measures root with an explicit stack of pending directories
// instead of call-stack recursion, so tree depth does not grow the goroutine stack.
func (m measurer) walkStack(ctx context.Context, root string, recursive bool) (int64, int64) {
	var size, count int64

	stack := []string{root}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			break
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// ReadDir returns whatever it read before failing.
		entries, err := os.ReadDir(dir)

		for _, d := range entries { //nolint:varnamelen // d is standard for DirEntry
			switch {
			case d.IsDir():
				if recursive {
					stack = append(stack, filepath.Join(dir, d.Name()))
				}
			case d.Type().IsRegular():
				info, infoErr := d.Info()
				if infoErr != nil {
					continue
				}

				size += info.Size()
				count++
			}
		}

		if err != nil {
			m.fail(dir, err)
		}
	}

	return size, count
}

// subdirectories lists the immediate subdirectories of root.
// Symlinks to directories are not included.
func subdirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)

	dirs := make([]string, 0, len(entries))

	for _, d := range entries {
		if d.IsDir() {
			dirs = append(dirs, filepath.Join(root, d.Name()))
		}
	}

	return dirs, err
}
