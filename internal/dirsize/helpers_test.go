package dirsize_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/idelchi/dirsize/internal/dirsize"
)

func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()

	fullPath := filepath.Join(root, rel)
	parent := filepath.Dir(fullPath)

	err := os.MkdirAll(parent, 0o750)
	if err != nil {
		t.Fatalf("mkdir %s: %v", parent, err)
	}

	err = os.WriteFile(fullPath, []byte(strings.Repeat("x", size)), 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}
}

func mkdir(t *testing.T, root, rel string) string {
	t.Helper()

	dir := filepath.Join(root, rel)

	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}

	return dir
}

// makeUnreadable revokes all permissions on path and restores them on cleanup
// so the temp dir can be removed.
func makeUnreadable(t *testing.T, path string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("chmod 000 unsupported on windows")
	}

	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed when running as root")
	}

	err := os.Chmod(path, 0)
	if err != nil {
		t.Fatalf("chmod: %v", err)
	}

	t.Cleanup(func() {
		_ = os.Chmod(path, 0o750)
	})
}

// entryByPath indexes entries by their path, failing on duplicates.
func entryByPath(t *testing.T, entries []dirsize.Entry) map[string]dirsize.Entry {
	t.Helper()

	out := make(map[string]dirsize.Entry, len(entries))

	for _, e := range entries {
		if _, ok := out[e.Path]; ok {
			t.Fatalf("duplicate entry for %s", e.Path)
		}

		out[e.Path] = e
	}

	return out
}

func assertEntry(t *testing.T, got dirsize.Entry, wantSize, wantFiles int64) {
	t.Helper()

	if got.Size != wantSize || got.FileCount != wantFiles {
		t.Fatalf("%s: got size=%d files=%d, want size=%d files=%d",
			got.Path, got.Size, got.FileCount, wantSize, wantFiles)
	}
}
