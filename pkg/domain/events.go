package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventFetchStart  EventType = "fetch_start"
	EventFetchCommit EventType = "fetch_commit"
	EventStaleDrop   EventType = "stale_drop"
	EventRecompute   EventType = "recompute"
	EventSourceReset EventType = "source_reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// FetchKind distinguishes what a fetch event was loading.
type FetchKind string

const (
	FetchRoots    FetchKind = "roots"
	FetchTrail    FetchKind = "trail"
	FetchChildren FetchKind = "children"
)

// FetchEvent describes one asynchronous batch against the tree source.
type FetchEvent struct {
	EventBase
	Kind FetchKind `json:"kind"`
	// IDs are the node ids in the batch. Empty for a roots fetch; a single
	// element (the active id) for a trail fetch.
	IDs []string `json:"ids,omitempty"`
	// Took is set on commit and stale-drop events.
	Took time.Duration `json:"took,omitempty"`
	// Err is set when the fetch failed. Failed batches still emit a commit
	// event so observers can count them; the view model stays loading.
	Err error `json:"-"`
}

// RecomputeEvent describes one rebuild of the materialized tree.
type RecomputeEvent struct {
	EventBase
	// Nodes is the number of view nodes in the rebuilt tree.
	Nodes int `json:"nodes"`
	// Reused is how many of them were identity-preserved from the previous
	// build.
	Reused int `json:"reused"`
}

// LifecycleHooks defines callbacks for engine observability.
// All fields are optional; nil hooks are skipped. Callbacks run synchronously
// on the engine's commit path and must not block.
type LifecycleHooks struct {
	OnFetchStart  func(context.Context, *FetchEvent)
	OnFetchCommit func(context.Context, *FetchEvent)
	OnStaleDrop   func(context.Context, *FetchEvent)
	OnRecompute   func(context.Context, *RecomputeEvent)
	OnSourceReset func(context.Context, *EventBase)
}
