package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/eiannone/keyboard"

	"github.com/idelchi/dirsize/internal/dirsize"
)

func fakeResults() map[string]*dirsize.Result {
	return map[string]*dirsize.Result{
		"/r": {
			Root: "/r",
			Entries: []dirsize.Entry{
				{Path: "/r", Size: 1},
				{Path: "/r/small", Size: 10},
				{Path: "/r/big", Size: 100},
			},
		},
		"/r/big": {
			Root: "/r/big",
			Entries: []dirsize.Entry{
				{Path: "/r/big", Size: 40},
				{Path: "/r/big/inner", Size: 60},
			},
		},
	}
}

func newTestBrowser() (*browser, *[]string) {
	results := fakeResults()
	opened := []string{}

	b := newBrowser(results["/r"], func(_ context.Context, path string) (*dirsize.Result, error) {
		opened = append(opened, path)

		res, ok := results[path]
		if !ok {
			return nil, errors.New("vanished: " + path)
		}

		return res, nil
	})

	return b, &opened
}

func TestBrowserNavigation(t *testing.T) {
	b, opened := newTestBrowser()
	ctx := context.Background()

	if got := b.current().rows[0].Path; got != "/r/big" {
		t.Fatalf("rows not sorted by size: first=%s", got)
	}

	if len(b.current().rows) != 2 {
		t.Fatalf("root entry must not be a row: %v", b.current().rows)
	}

	// Up at the top is a no-op.
	b.handle(ctx, 0, keyboard.KeyArrowUp)

	if b.current().cursor != 0 {
		t.Fatalf("cursor moved above first row")
	}

	// Enter opens the largest subdirectory.
	b.handle(ctx, 0, keyboard.KeyEnter)

	if len(b.levels) != 2 || b.current().res.Root != "/r/big" {
		t.Fatalf("did not drill into /r/big: levels=%d", len(b.levels))
	}

	// Back restores the previous level with its cursor.
	b.handle(ctx, 0, keyboard.KeyArrowLeft)
	b.handle(ctx, 'j', 0)
	b.handle(ctx, 'j', 0)

	if b.current().cursor != 1 {
		t.Fatalf("cursor: got=%d want=1", b.current().cursor)
	}

	// Opening a directory that fails keeps the level and reports the error.
	b.handle(ctx, 0, keyboard.KeyEnter)

	if len(b.levels) != 1 || !strings.Contains(b.status, "vanished: /r/small") {
		t.Fatalf("failed open: levels=%d status=%q", len(b.levels), b.status)
	}

	// Back at the top level is a no-op.
	b.handle(ctx, 0, keyboard.KeyBackspace2)

	if len(b.levels) != 1 {
		t.Fatalf("popped the last level")
	}

	want := []string{"/r/big", "/r/small"}
	if strings.Join(*opened, ",") != strings.Join(want, ",") {
		t.Fatalf("opened: got=%v want=%v", *opened, want)
	}
}

func TestBrowserQuit(t *testing.T) {
	tests := []struct {
		name string
		ch   rune
		key  keyboard.Key
	}{
		{name: "q", ch: 'q'},
		{name: "esc", key: keyboard.KeyEsc},
		{name: "ctrl-c", key: keyboard.KeyCtrlC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBrowser()

			if !b.handle(context.Background(), tt.ch, tt.key) {
				t.Errorf("key did not quit")
			}
		})
	}
}

func TestBrowserView(t *testing.T) {
	b, _ := newTestBrowser()

	var buf bytes.Buffer

	b.view(&buf)

	out := buf.String()
	for _, want := range []string{"Directory: /r", "> big", "  small"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestBrowserViewPages(t *testing.T) {
	entries := []dirsize.Entry{{Path: "/r"}}
	for i := range 45 {
		entries = append(entries, dirsize.Entry{Path: fmt.Sprintf("/r/d%02d", i), Size: int64(100 - i)})
	}

	b := newBrowser(&dirsize.Result{Root: "/r", Entries: entries}, nil)

	tests := []struct {
		name   string
		cursor int
		want   []string
		absent []string
	}{
		{
			name:   "first page",
			cursor: 0,
			want:   []string{"> d00", "  d19", "(25 more below)"},
			absent: []string{"d20", "more above"},
		},
		{
			name:   "middle page",
			cursor: 27,
			want:   []string{"(20 more above)", "  d20", "> d27", "  d39", "(5 more below)"},
			absent: []string{"d19", "d40"},
		},
		{
			name:   "last page",
			cursor: 44,
			want:   []string{"(40 more above)", "> d44"},
			absent: []string{"d39", "more below"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.current().cursor = tt.cursor

			var buf bytes.Buffer

			b.view(&buf)

			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("view missing %q:\n%s", want, out)
				}
			}

			for _, absent := range tt.absent {
				if strings.Contains(out, absent) {
					t.Errorf("view contains %q:\n%s", absent, out)
				}
			}
		})
	}
}
