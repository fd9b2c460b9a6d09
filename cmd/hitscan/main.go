// hitscan prints a map of which element owns each terminal cell.
//
// It builds a frame the way an application would (header, two panes, a
// centered modal, a floating dropdown hanging off a header button),
// probes every cell with HitTest and renders one colored rune per cell.
// Useful for eyeballing z-order and floating-subtree behavior, and for
// measuring probe cost on a realistic tree.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"dispatch"
)

var (
	gridWidth  = flag.Int("width", 0, "grid width (default: terminal width)")
	gridHeight = flag.Int("height", 0, "grid height (default: terminal height minus legend)")
	sweeps     = flag.Int("sweeps", 100, "timed full-grid sweeps for the stats section")
	plain      = flag.Bool("plain", false, "runes only, no color")
)

const (
	lidHeader dispatch.LayoutID = iota + 1
	lidMenuButton
	lidMenu
	lidSidebar
	lidContent
	lidModal
	lidStatus
)

type cellClass struct {
	glyph rune
	name  string
	color string
}

// Render classes per element. Cells owned by the bare root fall through
// to the zero LayoutID.
var classes = map[dispatch.LayoutID]cellClass{
	0:             {'.', "root", "#374151"},
	lidHeader:     {'=', "header", "#6B7280"},
	lidMenuButton: {'B', "menu button", "#F59E0B"},
	lidMenu:       {'M', "dropdown (floating, z=10)", "#EF4444"},
	lidSidebar:    {'s', "sidebar", "#3B82F6"},
	lidContent:    {'c', "content", "#10B981"},
	lidModal:      {'#', "modal (z=5)", "#7C3AED"},
	lidStatus:     {'_', "status", "#6B7280"},
}

// legendOrder keeps the printed legend stable.
var legendOrder = []dispatch.LayoutID{
	0, lidHeader, lidMenuButton, lidMenu, lidSidebar, lidContent, lidModal, lidStatus,
}

// buildFrame assembles a plausible application frame. The dropdown is a
// child of the one-row menu button, so without MarkFloating every probe
// below row zero would prune it away.
func buildFrame(t *dispatch.Tree, w, h int) {
	t.Build(func(t *dispatch.Tree) {
		t.PushNode()
		t.SetBounds(dispatch.Rect{Width: w, Height: h})

		t.PushNode()
		t.SetLayoutID(lidHeader).SetBounds(dispatch.Rect{X: 0, Y: 0, Width: w, Height: 1})
		t.PushNode()
		t.SetLayoutID(lidMenuButton).SetBounds(dispatch.Rect{X: 2, Y: 0, Width: 8, Height: 1})
		t.PushNode()
		t.SetLayoutID(lidMenu).
			SetBounds(dispatch.Rect{X: 2, Y: 1, Width: 18, Height: 6}).
			SetZIndex(10).
			MarkFloating()
		t.PopNode()
		t.PopNode()
		t.PopNode()

		t.PushNode()
		t.SetLayoutID(lidSidebar).SetBounds(dispatch.Rect{X: 0, Y: 1, Width: w / 4, Height: h - 2})
		t.PopNode()

		t.PushNode()
		t.SetLayoutID(lidContent).SetBounds(dispatch.Rect{X: w / 4, Y: 1, Width: w - w/4, Height: h - 2})
		t.PushNode()
		t.SetLayoutID(lidModal).
			SetBounds(dispatch.Rect{X: w/2 - 15, Y: h/2 - 4, Width: 30, Height: 8}).
			SetZIndex(5)
		t.PopNode()
		t.PopNode()

		t.PushNode()
		t.SetLayoutID(lidStatus).SetBounds(dispatch.Rect{X: 0, Y: h - 1, Width: w, Height: 1})
		t.PopNode()

		t.PopNode()
	})
}

func main() {
	flag.Parse()

	width, height := 100, 30
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h-len(legendOrder)-6
	}
	if *gridWidth > 0 {
		width = *gridWidth
	}
	if *gridHeight > 0 {
		height = *gridHeight
	}
	if width < 40 {
		width = 40
	}
	if height < 12 {
		height = 12
	}

	tree := dispatch.NewTree(dispatch.WithCapacity(16))
	buildFrame(tree, width, height)

	styles := make(map[dispatch.LayoutID]lipgloss.Style, len(classes))
	for lid, c := range classes {
		styles[lid] = lipgloss.NewStyle().Foreground(lipgloss.Color(c.color))
	}

	// Map pass: one probe per cell, rendered.
	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			lid := dispatch.LayoutID(0)
			if hit, ok := tree.HitTest(x, y); ok {
				if l, ok := tree.LayoutOf(hit); ok {
					lid = l
				}
			}
			c, ok := classes[lid]
			if !ok {
				c = cellClass{'?', "unknown", "#FFFFFF"}
			}
			if *plain {
				b.WriteRune(c.glyph)
			} else {
				b.WriteString(styles[lid].Render(string(c.glyph)))
			}
		}
		b.WriteString("\n")
	}
	fmt.Print(b.String())

	fmt.Println()
	for _, lid := range legendOrder {
		c := classes[lid]
		swatch := string(c.glyph)
		if !*plain {
			swatch = styles[lid].Render(swatch)
		}
		line := fmt.Sprintf("  %s  %s", swatch, c.name)
		if id, ok := tree.NodeByLayout(lid); ok {
			if r, ok := tree.Bounds(id); ok {
				line += fmt.Sprintf("  %v", r)
			}
		}
		fmt.Println(line)
	}

	// Timed pass: full-grid sweeps, no rendering.
	probes := 0
	start := time.Now()
	for s := 0; s < *sweeps; s++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				tree.HitTest(x, y)
				probes++
			}
		}
	}
	elapsed := time.Since(start)

	fmt.Fprintf(os.Stderr, "\n=== Probe cost ===\n")
	fmt.Fprintf(os.Stderr, "Grid:       %dx%d, %d nodes, depth %d\n", width, height, tree.NodeCount(), tree.MaxDepth())
	fmt.Fprintf(os.Stderr, "Probes:     %d (%d sweeps)\n", probes, *sweeps)
	fmt.Fprintf(os.Stderr, "Total:      %v\n", elapsed)
	fmt.Fprintf(os.Stderr, "Per probe:  %dns\n", elapsed.Nanoseconds()/int64(probes))
}
