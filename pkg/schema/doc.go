// Package schema reads machine definitions written as data.
//
// A definition lists the states, the initial state, the accept and reject
// states and a partial transition table keyed by state and then by symbol:
//
//	name: is-even
//	states: [q0, q1, yes, no]
//	initial: q0
//	accept: yes
//	reject: no
//	transitions:
//	  q0:
//	    "0": {to: q0, write: "0", move: R}
//	    "1": [q0, "1", R]
//	    _:   [q1, _, L]
//	  q1:
//	    "0": [yes, "0", L]
//	    "1": [no, "1", L]
//	    _:   [no, _, R]
//
// JSON documents with the same shape are accepted too, as JSON is read
// through the YAML decoder.
//
// Parse only checks the document structure. Compile turns it into a
// *turing.Machine[string]; the table is still checked lazily by the engine.
// An unknown direction only fails the run that reaches it, and a symbol key
// that is not a single character is dropped since no cell can match it.
// Lint reports every problem eagerly without running anything.
package schema
