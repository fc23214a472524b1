// Package editor opens package files outside the TUI
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Opener picks a program for a file: the user's editor for text, the
// desktop opener for everything else
type Opener struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
	goos     string
}

// NewOpener creates a new opener
func NewOpener() *Opener {
	return &Opener{getenv: os.Getenv, lookPath: exec.LookPath, goos: runtime.GOOS}
}

// Command returns an exec.Cmd that opens path. mime is the detected media
// type of the file, or "" if unknown.
// This is useful for integrating with bubbletea's ExecProcess
func (o *Opener) Command(path, mime string) (*exec.Cmd, error) {
	program := ""
	if isText(mime) {
		program = o.findEditor()
	}
	if program == "" {
		program = o.findDesktopOpener()
	}
	if program == "" {
		return nil, fmt.Errorf("no program to open %s: set $EDITOR environment variable", path)
	}

	cmd := exec.Command(program, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

func isText(mime string) bool {
	if mime == "" {
		return true
	}
	base, _, _ := strings.Cut(mime, ";")
	switch base {
	case "application/json", "application/xml", "application/x-yaml", "application/yaml":
		return true
	}
	return strings.HasPrefix(base, "text/")
}

// findEditor returns the editor to use
func (o *Opener) findEditor() string {
	// Check $EDITOR first
	if editor := o.getenv("EDITOR"); editor != "" {
		return editor
	}

	// Check $VISUAL
	if visual := o.getenv("VISUAL"); visual != "" {
		return visual
	}

	// Try common editors
	for _, editor := range []string{"nvim", "vim", "vi", "nano"} {
		if path, err := o.lookPath(editor); err == nil {
			return path
		}
	}

	return ""
}

func (o *Opener) findDesktopOpener() string {
	candidates := []string{"xdg-open"}
	if o.goos == "darwin" {
		candidates = []string{"open"}
	}
	for _, c := range candidates {
		if path, err := o.lookPath(c); err == nil {
			return path
		}
	}
	return ""
}
