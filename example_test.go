package usetree_test

import (
	"context"
	"fmt"
	"strings"

	usetree "github.com/RobbyUitbeijerse/use-tree"
	"github.com/RobbyUitbeijerse/use-tree/pkg/adapters/memory"
)

// ExampleNew shows the in-memory source, useful for testing, embedded
// scenarios, or when you don't want to rely on the file system.
func ExampleNew() {
	source := memory.NewSource([]memory.Item[string]{
		{ID: "a", Data: "Alpha"},
		{ID: "a1", Data: "Alpha One", Parent: "a"},
		{ID: "b", Data: "Beta"},
	})

	engine := usetree.New[string](source)
	defer engine.Close()

	// Activating a node expands its ancestors and loads their children.
	engine.SetActiveID("a1")
	if err := engine.WaitIdle(context.Background()); err != nil {
		fmt.Println("error:", err)
		return
	}

	for _, row := range engine.Tree().Flatten() {
		fmt.Printf("%s%s\n", strings.Repeat("  ", row.Depth), row.ID)
	}
	// Output:
	// a
	//   a1
	// b
}

// ExampleEngine_ToggleExpanded collapses a node that the active trail had
// expanded implicitly.
func ExampleEngine_ToggleExpanded() {
	source := memory.NewSource([]memory.Item[string]{
		{ID: "a", Data: "Alpha"},
		{ID: "a1", Data: "Alpha One", Parent: "a"},
	})

	engine := usetree.New[string](source)
	defer engine.Close()

	engine.SetActiveID("a1")
	if err := engine.WaitIdle(context.Background()); err != nil {
		fmt.Println("error:", err)
		return
	}

	engine.ToggleExpanded("a")
	for _, row := range engine.Tree().Flatten() {
		fmt.Println(row.ID)
	}
	// Output:
	// a
}
