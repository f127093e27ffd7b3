package integration

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	out, err := render("zsh", "/usr/local/bin/dirsize")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"emulate -L zsh",
		"/usr/local/bin/dirsize --output paths",
		"--preview '/usr/local/bin/dirsize --top 20 {2}'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered script missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "{{") {
		t.Errorf("unrendered template action left in script:\n%s", out)
	}
}
