package cli

import (
	"strings"
	"testing"

	"github.com/RobbyUitbeijerse/use-tree/internal/testutils"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func materialize(t *testing.T, active string) *domain.Tree[string] {
	t.Helper()
	engine := testutils.SettledEngine(t)
	if active != "" {
		engine.SetActiveID(active)
		testutils.WaitIdle(t, engine)
	}
	return engine.Tree()
}

func TestPrintCollapsed(t *testing.T) {
	tree := materialize(t, "")

	var buf strings.Builder
	printer := NewPrinter(&buf, WithColor[string](false))
	require.NoError(t, printer.Print(tree))

	assert.Equal(t, "· a\n· b\n", buf.String())
}

func TestPrintActiveTrail(t *testing.T) {
	tree := materialize(t, "a1")

	var buf strings.Builder
	printer := NewPrinter(&buf, WithColor[string](false))
	require.NoError(t, printer.Print(tree))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "▾ a", lines[0])
	// The active node is on its own trail, so it reads as expanded too.
	assert.Equal(t, "  ▾ a1", lines[1])
	assert.Equal(t, "· b", lines[2])
}

func TestPrintCustomLabel(t *testing.T) {
	tree := materialize(t, "")

	var buf strings.Builder
	printer := NewPrinter(&buf,
		WithColor[string](false),
		WithLabel(func(n *domain.ViewNode[string]) string { return n.Data }),
	)
	require.NoError(t, printer.Print(tree))

	assert.Contains(t, buf.String(), "Alpha")
	assert.Contains(t, buf.String(), "Beta")
}

func TestPrintNilTree(t *testing.T) {
	var buf strings.Builder
	printer := NewPrinter[string](&buf)
	require.NoError(t, printer.Print(nil))
	assert.Empty(t, buf.String())
}
