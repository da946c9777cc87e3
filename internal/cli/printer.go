// Package cli renders materialized trees for terminal output.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/muesli/termenv"
)

// Printer writes the visible rows of a tree as an indented list, one node per
// line. Colors degrade to plain text when the profile is Ascii.
type Printer[T any] struct {
	out     io.Writer
	profile termenv.Profile
	label   func(*domain.ViewNode[T]) string
}

// PrinterOption configures a Printer.
type PrinterOption[T any] func(*Printer[T])

// WithColor forces color on or off. The default follows the terminal's
// capabilities.
func WithColor[T any](enabled bool) PrinterOption[T] {
	return func(p *Printer[T]) {
		p.profile = termenv.Ascii
		if enabled {
			p.profile = termenv.ColorProfile()
		}
	}
}

// WithLabel sets the row label function. The default prints the node ID.
func WithLabel[T any](label func(*domain.ViewNode[T]) string) PrinterOption[T] {
	return func(p *Printer[T]) { p.label = label }
}

// NewPrinter creates a Printer writing to w.
func NewPrinter[T any](w io.Writer, opts ...PrinterOption[T]) *Printer[T] {
	p := &Printer[T]{
		out:     w,
		profile: termenv.ColorProfile(),
		label:   func(n *domain.ViewNode[T]) string { return n.ID },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Print writes the visible rows of the tree. Collapsed subtrees are skipped,
// matching what an interactive menu would show.
func (p *Printer[T]) Print(tree *domain.Tree[T]) error {
	if tree == nil {
		return nil
	}
	if tree.IsLoading {
		_, err := fmt.Fprintln(p.out, p.styled("loading...", "8"))
		return err
	}
	for _, n := range tree.Flatten() {
		if _, err := fmt.Fprintln(p.out, p.row(n)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer[T]) row(n *domain.ViewNode[T]) string {
	indent := strings.Repeat("  ", n.Depth)

	marker := "·"
	switch {
	case n.IsExpanded:
		marker = "▾"
	case len(n.Children.Items) > 0 || n.Children.IsLoading:
		marker = "▸"
	}

	label := p.label(n)
	switch {
	case n.IsActive:
		label = p.profile.String(label).Bold().Foreground(p.profile.Color("6")).String()
	case n.IsActiveTrail:
		label = p.styled(label, "6")
	}

	row := indent + marker + " " + label
	if n.Children.IsLoading {
		row += " " + p.styled("(loading)", "8")
	}
	return row
}

func (p *Printer[T]) styled(s, color string) string {
	return p.profile.String(s).Foreground(p.profile.Color(color)).String()
}
