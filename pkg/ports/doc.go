/*
Package ports defines the driven ports (interfaces) of the turing runtime.

These interfaces decouple the machine-running surfaces (CLI, HTTP, MCP) from
where definitions come from and where paused runs are kept.

# Key Interfaces

  - MachineLoader: Resolves machine definitions by name (embedded library, directory, memory).
  - SessionStore: Persists and loads session Snapshots.
  - DistributedLocker: Provides distributed locking for concurrent stepping of one session.
*/
package ports
