/*
Package usetree materializes a UI-facing view of a hierarchical, lazily
loaded data set.

It combines three inputs: an asynchronous TreeSource (children-of-node and
ancestor-trail queries), a small user-driven ViewState (which node is active,
which nodes are explicitly expanded or collapsed), and a default policy that
implicitly expands the path to the active node. The output is a tree of
annotated view nodes that is pointer-stable across updates wherever nothing
observable changed, so a downstream rendering layer can skip unaffected
subtrees by comparing references.

# Concept

The Engine owns the loading lifecycle: it fetches roots on attach, resolves
the active node's ancestor trail, batch-loads children for every node that
must be visible, and debounces the loading indicator so fast fetches never
flash a spinner. State transitions (toggle, expand, activate) are pure
functions over the ViewState; the Engine applies them through a single
UpdateState primitive, which makes the policy trivially testable and lets an
external binding own the canonical state instead.

# Key Properties

  - Identity preservation: a node whose derived fields and children did not
    change is the same object as in the previous snapshot.
  - Default expansion of the active trail, with explicit collapse winning.
  - Atomic batches: children fetched together become visible together.
  - Source swaps reset all cached data; stale in-flight results are dropped.

# Usage

	source := memory.NewSource(
		memory.Item[string]{ID: "a", Data: "first"},
		memory.Item[string]{ID: "a1", Data: "nested", Parent: "a"},
		memory.Item[string]{ID: "b", Data: "second"},
	)

	engine := usetree.New(source)
	defer engine.Close()

	engine.SetActiveID("a1")
	if err := engine.WaitIdle(ctx); err != nil {
		log.Fatal(err)
	}

	for _, row := range engine.Tree().Flatten() {
		fmt.Printf("%*s%s\n", row.Depth*2, "", row.ID)
	}
*/
package usetree
