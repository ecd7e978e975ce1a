/*
Package turing is an interpreter for single-tape, single-head deterministic Turing machines.

A machine is a set of states, an initial state, accepting and rejecting states and a
partial transition table. Running it on an input string either halts in an accepting or
rejecting state, or fails because the table does not cover a configuration the run reached.

# Concept

The machine definition is immutable after New and can be shared freely. Every run builds
its own execution context (tape, head location, current state) and discards it when the
run ends, so concurrent runs of one Machine never interfere.

The transition table is validated lazily: an entry that is missing or malformed is only
reported when a run actually needs it. This makes it possible to exercise a table that is
still being written against the inputs it already covers.

# Key Features

  - Lazy tape growth: the tape grows by one blank exactly when the head moves past an edge.
  - Typed errors: UnknownState, UnknownSymbol and BadSymbol carry the offending state and symbol.
  - Single stepping: Start and Step expose the loop so callers can bound or trace execution.
  - Definition files: pkg/schema loads machines from YAML or JSON.

# Usage

	table := domain.Table[int]{
		0: {
			'0': {Next: 0, Write: "0", Move: turing.R},
			'1': {Next: 0, Write: "1", Move: turing.R},
			'_': {Next: 1, Write: "_", Move: turing.L},
		},
		1: {
			'0': {Next: 2, Write: "0", Move: turing.L},
			'1': {Next: 3, Write: "1", Move: turing.L},
			'_': {Next: 3, Write: "_", Move: turing.R},
		},
	}
	isEven, err := turing.New([]int{0, 1, 2, 3}, 0, []int{2}, []int{3}, table)
	if err != nil {
		log.Fatal(err)
	}
	ok, err := isEven.Run("011010") // true, nil
*/
package turing
