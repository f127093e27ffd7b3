package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/dirsize/internal/dirsize"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
	// MB is the number of bytes in a megabyte as displayed in tables.
	MB = 1048576
	// MaxPathWidth is the longest directory name shown before it is shortened.
	MaxPathWidth = 50
)

// sortEntries returns a copy of entries ordered by size, largest first.
// Equal sizes are ordered by path.
func sortEntries(entries []dirsize.Entry) []dirsize.Entry {
	sorted := slices.Clone(entries)

	slices.SortStableFunc(sorted, func(a, b dirsize.Entry) int {
		if a.Size != b.Size {
			if a.Size > b.Size {
				return -1
			}

			return 1
		}

		return strings.Compare(a.Path, b.Path)
	})

	return sorted
}

// toMB formats size in megabytes with two decimals and thousands separators.
func toMB(size int64) string {
	formatted := strconv.FormatFloat(float64(size)/MB, 'f', 2, 64)
	whole, frac, _ := strings.Cut(formatted, ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return formatted
	}

	return humanize.Comma(n) + "." + frac
}

// trimPath shortens names longer than MaxPathWidth runes.
func trimPath(name string) string {
	runes := []rune(name)
	if len(runes) <= MaxPathWidth {
		return name
	}

	return string(runes[:MaxPathWidth-2]) + "…"
}

// displayName returns the label shown for an entry: "." for the root itself,
// otherwise the path relative to the root.
func displayName(root, path string) string {
	if path == root {
		return "."
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}

	return filepath.ToSlash(rel)
}

// limit returns at most top entries; top <= 0 means all of them.
func limit(entries []dirsize.Entry, top int) []dirsize.Entry {
	if top > 0 && len(entries) > top {
		return entries[:top]
	}

	return entries
}

// PrintJSON outputs the result in JSON format.
func PrintJSON(res *dirsize.Result, writer io.Writer) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintPaths outputs one "size<TAB>path" line per subdirectory, largest first.
// The root itself is left out. It is the input format of the shell integration.
func PrintPaths(res *dirsize.Result, writer io.Writer, top int) error {
	subdirs := slices.DeleteFunc(sortEntries(res.Entries), func(e dirsize.Entry) bool {
		return e.Path == res.Root
	})

	for _, e := range limit(subdirs, top) {
		if _, err := fmt.Fprintf(writer, "%s\t%s\n", humanize.IBytes(uint64(e.Size)), e.Path); err != nil { //nolint:gosec // Sizes are never negative
			return err
		}
	}

	return nil
}

// PrintTable outputs the result in human-readable table format.
//
//nolint:errcheck // Errors surface on Flush
func PrintTable(res *dirsize.Result, writer io.Writer, top int, showErrors bool) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "\nDirectory: %s\n\n", res.Root)
	fmt.Fprintln(w, "Directory\tFiles\tSize (MB)\tSize\t")

	for _, e := range limit(sortEntries(res.Entries), top) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			trimPath(displayName(res.Root, e.Path)),
			humanize.Comma(e.FileCount),
			toMB(e.Size),
			humanize.IBytes(uint64(e.Size))) //nolint:gosec // Sizes are never negative
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t\t\t")
	fmt.Fprintf(w, "Total directories:\t%d\t\t\t\n", len(res.Entries))
	fmt.Fprintf(w, "Total files:\t%s\t\t\t\n", humanize.Comma(res.Totals.FileCount))
	fmt.Fprintf(w, "Total size:\t%s MB (%s)\t\t\t\n",
		toMB(res.Totals.Size), humanize.IBytes(uint64(res.Totals.Size))) //nolint:gosec // Sizes are never negative
	fmt.Fprintf(w, "Errors:\t%d\t\t\t\n", len(res.Errors))
	fmt.Fprintf(w, "Elapsed:\t%d ms\t\t\t\n", res.Totals.Elapsed/time.Millisecond)

	if showErrors && len(res.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:\t\t\t\t")

		for _, e := range res.Errors {
			fmt.Fprintf(w, "  %s\t%s\t\t\t\n", e.Path, e.Description)
		}
	}

	return w.Flush()
}
