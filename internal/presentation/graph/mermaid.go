package graph

import (
	"fmt"
	"strings"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
)

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	TrailNodes []string
	ActiveNode string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a
// materialized tree. Roots render as circles, inner nodes as rectangles, and
// nodes whose children are still loading carry an hourglass annotation. It
// also applies overlay styles (Trail/Active) if provided.
func GenerateMermaid[T any](tree *domain.Tree[T], overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	tree.Walk(func(node *domain.ViewNode[T]) bool {
		safeID := sanitizeMermaidID(node.ID)

		// Node shape based on position
		opener, closer := "[", "]"
		if node.Depth == 0 {
			opener, closer = "((", "))" // Circle
		}

		label := fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer)
		if node.Children.IsLoading {
			label = fmt.Sprintf("    %s%s\"%s <br/> ⏳\"%s\n", safeID, opener, node.ID, closer)
		}
		sb.WriteString(label)

		for _, child := range node.Children.Items {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(child.ID)))
		}
		return true
	})

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef trail fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		// Deduplicate trail nodes (using safeIDs)
		trailSet := make(map[string]bool)
		for _, id := range overlay.TrailNodes {
			safeID := sanitizeMermaidID(id)
			if !trailSet[safeID] && safeID != "" {
				trailSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s trail;\n", safeID))
			}
		}

		if overlay.ActiveNode != "" {
			safeActive := sanitizeMermaidID(overlay.ActiveNode)
			sb.WriteString(fmt.Sprintf("    class %s active;\n", safeActive))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
