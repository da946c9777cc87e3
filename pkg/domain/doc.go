/*
Package domain contains the core domain models and pure state policy for the
use-tree engine.

It defines the fundamental entities of the tree view — source nodes, loadable
fetch results, the user-owned view state, and the annotated view nodes the
materializer produces. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Node: an opaque payload plus a unique string ID, as supplied by a TreeSource.
  - Loadable: the result of one asynchronous fetch, with a distinguishable
    "not yet resolved" state.
  - ViewState: the small user-driven value (active node, explicit
    expand/collapse overrides) that the binding owns and the engine reads.
  - ViewNode / Tree: the materialized, annotated view of the data set.

The state policy lives here as pure functions (WithExpanded, WithToggled,
WithActiveID, WithAllExpanded) so the engine's controller and any external
binding apply exactly the same merge rules.
*/
package domain
