package dirsize

import "context"

// Export internal symbols for white-box tests in dirsize package.
type MeasureFunc = measureFunc

// RunWrapped runs with wrap applied around every subdirectory measurement.
func RunWrapped(ctx context.Context, opt Options, wrap func(MeasureFunc) MeasureFunc) (*Result, error) {
	return run(ctx, opt, wrap)
}
