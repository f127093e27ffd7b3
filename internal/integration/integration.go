// Package integration provides embedded shell integration snippets.
package integration

import (
	"bytes"
	_ "embed"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

// ZshFzf contains the zsh shell integration script with fzf support.
//
//go:embed zsh-fzf.sh
var ZshFzf string

// Render renders the integration script with the shell name and the path of
// the running dirsize binary.
func Render() (string, error) {
	// First use LookPath to find zsh binary
	zsh, err := exec.LookPath("zsh")
	if err != nil {
		return "", err
	}

	// Fall back to PATH lookup when the executable cannot be resolved.
	binary := "dirsize"
	if exe, err := os.Executable(); err == nil {
		binary = filepath.ToSlash(exe)
	}

	return render(filepath.Base(zsh), binary)
}

func render(shell, binary string) (string, error) {
	tmpl, err := template.New("zsh-fzf").Parse(ZshFzf)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"SHELL":   shell,
		"DIRSIZE": binary,
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
