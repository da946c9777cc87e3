package domain

import "errors"

// ErrStateNotFound is returned when a persisted view state cannot be found in a store.
var ErrStateNotFound = errors.New("view state not found")

// ErrNodeNotFound is returned by sources when a node id is unknown.
var ErrNodeNotFound = errors.New("node not found")
