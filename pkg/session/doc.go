/*
Package session implements the binding layer that owns canonical view state.

It provides high-level abstractions for handling concurrent access to
persisted view states across multiple replicas, integrating per-key local
locks with optional distributed locking and a pluggable state store. The
engine itself stays unaware of persistence: a binding loads the state, hands
it to the engine, and funnels every controller transform back through
Manager.Update.
*/
package session
