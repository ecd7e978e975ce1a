package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner shown by serve and mcp.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct{ text, color string }{
		{"  _____           _", "#818cf8"},
		{" |_   _|   _ _ __(_)_ __   __ _", "#a78bfa"},
		{"   | || | | | '__| | '_ \\ / _` |", "#c084fc"},
		{"   | || |_| | |  | | | | | (_| |", "#e879f9"},
		{"   |_| \\__,_|_|  |_|_| |_|\\__, |", "#f472b6"},
		{"                          |___/", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colors a run outcome for terminal output.
// Without color support the plain status is returned.
func Status(status domain.Status) string {
	p := termenv.ColorProfile()
	s := termenv.String(string(status))
	switch status {
	case domain.StatusAccepted:
		return s.Foreground(p.Color("#22c55e")).Bold().String()
	case domain.StatusRejected:
		return s.Foreground(p.Color("#ef4444")).Bold().String()
	case domain.StatusFailed:
		return s.Foreground(p.Color("#f59e0b")).Bold().String()
	}
	return s.String()
}
