package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eiannone/keyboard"

	"github.com/idelchi/dirsize/internal/dirsize"
)

// PageSize is the number of rows the browser draws at once.
const PageSize = 20

// level is one directory shown by the browser.
type level struct {
	res    *dirsize.Result
	rows   []dirsize.Entry // subdirectories, largest first
	cursor int
}

func newLevel(res *dirsize.Result) level {
	rows := make([]dirsize.Entry, 0, len(res.Entries))

	for _, e := range sortEntries(res.Entries) {
		if e.Path != res.Root {
			rows = append(rows, e)
		}
	}

	return level{res: res, rows: rows}
}

// browser is the key-driven state of the interactive mode.
// Entering a directory measures it again; going up reuses the earlier result.
type browser struct {
	levels []level
	open   func(ctx context.Context, path string) (*dirsize.Result, error)
	status string
}

func newBrowser(res *dirsize.Result, open func(context.Context, string) (*dirsize.Result, error)) *browser {
	return &browser{levels: []level{newLevel(res)}, open: open}
}

func (b *browser) current() *level {
	return &b.levels[len(b.levels)-1]
}

// handle applies one key press and reports whether the browser should exit.
//
//nolint:cyclop // One case per key binding
func (b *browser) handle(ctx context.Context, ch rune, key keyboard.Key) bool {
	cur := b.current()
	b.status = ""

	switch {
	case key == keyboard.KeyEsc, key == keyboard.KeyCtrlC, ch == 'q':
		return true
	case key == keyboard.KeyArrowUp, ch == 'k':
		if cur.cursor > 0 {
			cur.cursor--
		}
	case key == keyboard.KeyArrowDown, ch == 'j':
		if cur.cursor < len(cur.rows)-1 {
			cur.cursor++
		}
	case key == keyboard.KeyArrowLeft, key == keyboard.KeyBackspace, key == keyboard.KeyBackspace2, ch == 'h':
		if len(b.levels) > 1 {
			b.levels = b.levels[:len(b.levels)-1]
		}
	case key == keyboard.KeyEnter, key == keyboard.KeyArrowRight, ch == 'l':
		if len(cur.rows) == 0 {
			return false
		}

		res, err := b.open(ctx, cur.rows[cur.cursor].Path)
		if err != nil {
			b.status = err.Error()

			return false
		}

		b.levels = append(b.levels, newLevel(res))
	}

	return false
}

// page returns the bounds of the PageSize rows containing cursor.
func page(rows, cursor int) (int, int) {
	start := cursor / PageSize * PageSize

	return start, min(start+PageSize, rows)
}

// view draws the current level. Lines end in \r\n since the terminal is in raw mode.
//
//nolint:errcheck // Best-effort terminal output
func (b *browser) view(w io.Writer) {
	cur := b.current()
	res := cur.res

	var sb strings.Builder

	sb.WriteString("\033[H\033[2J")
	fmt.Fprintf(&sb, "Directory: %s\r\n", res.Root)
	fmt.Fprintf(&sb, "%s files, %s MB, %d errors, %d ms\r\n\r\n",
		humanize.Comma(res.Totals.FileCount), toMB(res.Totals.Size), len(res.Errors), res.Totals.Elapsed/time.Millisecond)
	fmt.Fprintf(&sb, "  %-50s | %10s | %12s\r\n", "Directory", "Files", "Size (MB)")

	if len(cur.rows) == 0 {
		sb.WriteString("  (no subdirectories)\r\n")
	}

	start, end := page(len(cur.rows), cur.cursor)

	if start > 0 {
		fmt.Fprintf(&sb, "  (%d more above)\r\n", start)
	}

	for i := start; i < end; i++ {
		e := cur.rows[i]

		marker := " "
		if i == cur.cursor {
			marker = ">"
		}

		fmt.Fprintf(&sb, "%s %-50s | %10s | %12s\r\n",
			marker, trimPath(displayName(res.Root, e.Path)), humanize.Comma(e.FileCount), toMB(e.Size))
	}

	if end < len(cur.rows) {
		fmt.Fprintf(&sb, "  (%d more below)\r\n", len(cur.rows)-end)
	}

	sb.WriteString("\r\n↑/↓ move  enter open  ← back  q quit\r\n")

	if b.status != "" {
		fmt.Fprintf(&sb, "%s\r\n", b.status)
	}

	io.WriteString(w, sb.String())
}

// browse runs the interactive drill-down until the user quits.
func browse(ctx context.Context, res *dirsize.Result, opts options, stdout, stderr io.Writer) error {
	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("opening keyboard: %w", err)
	}
	defer keyboard.Close() //nolint:errcheck // Terminal restore

	b := newBrowser(res, func(ctx context.Context, path string) (*dirsize.Result, error) {
		return measure(ctx, opts, path, stderr, false)
	})

	for {
		b.view(stdout)

		ch, key, err := keyboard.GetKey()
		if err != nil {
			return fmt.Errorf("reading key: %w", err)
		}

		if b.handle(ctx, ch, key) {
			return nil
		}
	}
}
