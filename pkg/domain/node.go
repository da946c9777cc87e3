package domain

// Node is a single item of the hierarchical data set.
// The ID is the identity key throughout the system; Data is an opaque payload
// owned by the TreeSource and never inspected or mutated by the core.
type Node[T any] struct {
	ID   string `json:"id" yaml:"id"`
	Data T      `json:"data,omitempty" yaml:"data,omitempty"`
}

// Loadable represents the result of one asynchronous fetch.
// IsLoading is true while the fetch has not resolved; Items holds the ordered
// result once it has. A zero Loadable reads as "resolved and empty", which is
// what a consumer should see for a node whose children were never requested.
type Loadable[E any] struct {
	IsLoading bool `json:"isLoading"`
	Items     []E  `json:"items"`
}
