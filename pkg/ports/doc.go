/*
Package ports defines the driven ports (interfaces) for the use-tree engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various data backends and the binding layer
to persist view state wherever it likes.

# Key Interfaces

  - TreeSource: supplies children-of-node and ancestor-trail queries
    asynchronously (e.g., Memory, YAML file, a remote API).
  - StateStore: persists the user-driven ViewState by key (e.g., Memory, Redis).
  - Locker: optional distributed locking for bindings shared across processes.

The package also ships reusable contract suites (RunTreeSourceContract,
RunStateStoreContract) that every adapter's tests run against.
*/
package ports
