package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/idelchi/dirsize/internal/dirsize"
)

func TestToMB(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want string
	}{
		{name: "zero", size: 0, want: "0.00"},
		{name: "one megabyte", size: MB, want: "1.00"},
		{name: "fraction", size: MB + MB/2, want: "1.50"},
		{name: "small", size: 5243, want: "0.01"},
		{name: "thousands", size: 1234 * MB, want: "1,234.00"},
		{name: "millions", size: 2_500_000 * MB, want: "2,500,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toMB(tt.size); got != tt.want {
				t.Errorf("toMB(%d) = %q; want %q", tt.size, got, tt.want)
			}
		})
	}
}

func TestTrimPath(t *testing.T) {
	long := strings.Repeat("a", 60)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "short", input: "src", want: "src"},
		{name: "exact", input: strings.Repeat("b", MaxPathWidth), want: strings.Repeat("b", MaxPathWidth)},
		{name: "long", input: long, want: strings.Repeat("a", MaxPathWidth-2) + "…"},
		{name: "multibyte", input: strings.Repeat("é", 51), want: strings.Repeat("é", MaxPathWidth-2) + "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimPath(tt.input); got != tt.want {
				t.Errorf("trimPath(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSortEntries(t *testing.T) {
	entries := []dirsize.Entry{
		{Path: "/r", Size: 10},
		{Path: "/r/b", Size: 30},
		{Path: "/r/a", Size: 30},
		{Path: "/r/c", Size: 0},
	}

	got := sortEntries(entries)

	want := []string{"/r/a", "/r/b", "/r", "/r/c"}
	for i, path := range want {
		if got[i].Path != path {
			t.Fatalf("position %d: got %s, want %s (%v)", i, got[i].Path, path, got)
		}
	}

	if entries[0].Path != "/r" {
		t.Error("sortEntries modified its input")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/data", want: "."},
		{path: "/data/logs", want: "logs"},
	}

	for _, tt := range tests {
		if got := displayName("/data", tt.path); got != tt.want {
			t.Errorf("displayName(%q) = %q; want %q", tt.path, got, tt.want)
		}
	}
}

func TestPrintTableErrors(t *testing.T) {
	res := &dirsize.Result{
		Root: "/data",
		Entries: []dirsize.Entry{
			{Path: "/data", Size: 100, FileCount: 1},
			{Path: "/data/z"},
		},
		Totals: dirsize.Totals{Size: 100, FileCount: 1},
		Errors: []dirsize.ErrorEntry{{Path: "/data/z", Description: "open /data/z: permission denied"}},
	}

	tests := []struct {
		name       string
		showErrors bool
		want       bool
	}{
		{name: "hidden", showErrors: false, want: false},
		{name: "shown", showErrors: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			if err := PrintTable(res, &buf, 0, tt.showErrors); err != nil {
				t.Fatalf("print: %v", err)
			}

			out := buf.String()
			if got := strings.Contains(out, "permission denied"); got != tt.want {
				t.Errorf("error listed = %v; want %v\n%s", got, tt.want, out)
			}

			if !strings.Contains(out, "Errors:") {
				t.Errorf("error count missing:\n%s", out)
			}
		})
	}
}

func TestPrintPathsSkipsRoot(t *testing.T) {
	res := &dirsize.Result{
		Root: "/data",
		Entries: []dirsize.Entry{
			{Path: "/data", Size: 4096},
			{Path: "/data/logs", Size: 2048},
			{Path: "/data/tmp", Size: 1024},
		},
	}

	tests := []struct {
		name string
		top  int
		want string
	}{
		{name: "all", top: 0, want: "2.0 KiB\t/data/logs\n1.0 KiB\t/data/tmp\n"},
		{name: "top one", top: 1, want: "2.0 KiB\t/data/logs\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			if err := PrintPaths(res, &buf, tt.top); err != nil {
				t.Fatalf("print: %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
