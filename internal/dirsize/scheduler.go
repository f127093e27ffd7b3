package dirsize

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// scheduler fans top-level subdirectories out over a bounded set of goroutines.
type scheduler struct {
	workers int
	measure measureFunc
	log     logger
}

// run measures every directory in dirs and merges each result into c.
// It returns once every dispatched measurement has been merged.
// Dispatch stops early if ctx is cancelled, in which case ctx.Err() is returned.
func (s scheduler) run(ctx context.Context, c *collector, dirs []string) error {
	var group errgroup.Group

	group.SetLimit(s.workers)

	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}

		// Go blocks while the limit is reached.
		group.Go(func() error {
			entry := s.measure(ctx, dir)

			s.log.printf("[debug]: measured %s: %d files, %d bytes\n", entry.Path, entry.FileCount, entry.Size)
			c.add(entry)

			return nil
		})
	}

	_ = group.Wait()

	return ctx.Err()
}
