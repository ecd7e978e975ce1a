/*
Package domain contains the core types of the Turing machine engine.

It defines the transition function, the execution context and the errors a
run can end with. This package is kept pure and free of external
dependencies like I/O or persistence.

# Key Entities

  - Table: the partial transition function, indexed by state then symbol.
  - Action: next state, symbol to write and head direction.
  - Configuration: the tape, head location and current state of one run.
  - LifecycleHooks: callbacks fired on start, step and halt.
*/
package domain
