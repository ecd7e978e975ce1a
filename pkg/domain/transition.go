package domain

import (
	"fmt"
	"strings"
)

// Direction is the head movement of a single step.
type Direction int

const (
	Left  Direction = -1
	Right Direction = +1
)

// ParseDirection reads the direction notation used in definition files.
// Accepted forms are "L", "R", "left" and "right", case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return Left, nil
	case "r", "right":
		return Right, nil
	}
	return 0, fmt.Errorf("invalid direction %q (expected L or R)", s)
}

// Valid reports whether d is Left or Right.
func (d Direction) Valid() bool {
	return d == Left || d == Right
}

// Delta is the change applied to the head location.
func (d Direction) Delta() int {
	return int(d)
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "L"
	case Right:
		return "R"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Action is the right-hand side of a transition: the next state, the symbol
// written under the head and the head movement.
//
// Write is kept as a string so that a malformed entry can be represented;
// it must hold exactly one character when the entry is exercised.
type Action[S comparable] struct {
	Next  S         `json:"to" yaml:"to"`
	Write string    `json:"write" yaml:"write"`
	Move  Direction `json:"move" yaml:"move"`
}

// Table is the transition function, indexed first by state, then by the
// symbol under the head. Coverage is partial.
type Table[S comparable] map[S]map[rune]Action[S]

// Lookup resolves the action for (state, symbol).
func (t Table[S]) Lookup(state S, symbol rune) (Action[S], error) {
	row, ok := t[state]
	if !ok {
		return Action[S]{}, &UnknownStateError{State: state}
	}
	act, ok := row[symbol]
	if !ok {
		return Action[S]{}, &UnknownSymbolError{State: state, Symbol: symbol}
	}
	return act, nil
}

// Clone returns a copy of the table whose rows are not shared with t.
func (t Table[S]) Clone() Table[S] {
	out := make(Table[S], len(t))
	for state, row := range t {
		cp := make(map[rune]Action[S], len(row))
		for sym, act := range row {
			cp[sym] = act
		}
		out[state] = cp
	}
	return out
}
