package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// defaultWidth is used when the terminal size cannot be read.
const defaultWidth = 100

// NewRenderer returns a function that renders markdown for f.
// Terminals get glamour output wrapped to their width; pipes and files get
// the markdown unchanged so reports stay greppable.
func NewRenderer(f *os.File) func(string) (string, error) {
	if f == nil || !IsTerminal(f) {
		return plain
	}

	width := defaultWidth
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		width = w
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return plain
	}
	return r.Render
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func plain(markdown string) (string, error) {
	return markdown, nil
}
