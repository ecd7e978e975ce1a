package domain

import (
	"fmt"
	"strings"
)

// Status defines where a run stands after a step.
type Status string

const (
	StatusRunning  Status = "running"  // Transition applied, more steps needed
	StatusAccepted Status = "accepted" // Halted in an accept state
	StatusRejected Status = "rejected" // Halted in a reject state
	StatusFailed   Status = "failed"   // Aborted by a table error
)

// Halted reports whether the status is terminal.
func (s Status) Halted() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusFailed
}

// Configuration is the execution context of one run: the tape, the head
// location and the current state.
// It is owned by a single run and must not be shared between runs.
type Configuration[S comparable] struct {
	// Tape holds the written portion of the conceptually bi-infinite tape.
	Tape []rune

	// Head is an index into Tape. It may sit one cell outside the tape
	// between steps; the next step grows the tape before reading.
	Head int

	// State is the current state.
	State S

	// Steps counts the transitions applied so far.
	Steps int
}

// NewConfiguration creates the context for a fresh run on input.
// The input may or may not carry its boundary blanks: a missing leading
// blank is added so that the head starts on the first input cell, and a
// missing trailing blank is synthesized by Grow when the head reaches it.
func NewConfiguration[S comparable](input string, initial S) *Configuration[S] {
	tape := []rune(input)
	if len(tape) == 0 || tape[0] != Blank {
		tape = append([]rune{Blank}, tape...)
	}
	return &Configuration[S]{
		Tape:  tape,
		Head:  InitialHead,
		State: initial,
	}
}

// Grow extends the tape by one blank on whichever end the head has moved
// past. It reports whether the tape changed.
func (c *Configuration[S]) Grow() bool {
	if c.Head < 0 {
		c.Tape = append([]rune{Blank}, c.Tape...)
		c.Head++
		return true
	}
	if c.Head >= len(c.Tape) {
		c.Tape = append(c.Tape, Blank)
		return true
	}
	return false
}

// Symbol returns the symbol under the head. The caller must Grow first.
func (c *Configuration[S]) Symbol() rune {
	return c.Tape[c.Head]
}

// Clone deep-copies the configuration.
func (c *Configuration[S]) Clone() *Configuration[S] {
	if c == nil {
		return nil
	}
	next := *c
	next.Tape = append([]rune(nil), c.Tape...)
	return &next
}

// Content returns the tape with the blank edges trimmed.
func (c *Configuration[S]) Content() string {
	return strings.Trim(string(c.Tape), string(Blank))
}

// String renders the tape with the head cell bracketed, e.g. "_01[1]0_".
func (c *Configuration[S]) String() string {
	var sb strings.Builder
	for i, r := range c.Tape {
		if i == c.Head {
			sb.WriteByte('[')
			sb.WriteRune(r)
			sb.WriteByte(']')
			continue
		}
		sb.WriteRune(r)
	}
	if c.Head < 0 {
		return "[ ]" + sb.String()
	}
	if c.Head >= len(c.Tape) {
		sb.WriteString("[ ]")
	}
	return sb.String()
}

// Describe is the one-line trace form of the configuration.
func (c *Configuration[S]) Describe() string {
	return fmt.Sprintf("step %d  q=%v  %s", c.Steps, c.State, c.String())
}
