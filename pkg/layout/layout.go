// Package layout assigns 2D positions to outline trees.
//
// Two strategies are implemented: a radial layout that spreads branches
// around a central root, and a horizontal layout that grows left to right
// with siblings stacked vertically. A third mode, Free, picks between them
// based on tree complexity.
//
// Coordinates are in pixels. Label bounding boxes come from a Measurer so
// the engine can use real font metrics when rendering and a cheap estimator
// in tests; overlap avoidance is best-effort, but radius (radial) and x
// (horizontal) strictly increase with depth.
package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/mindmap/pkg/outline"
)

// Mode selects the layout strategy.
type Mode int

const (
	// ModeFree auto-selects Center or Horizontal from tree complexity.
	ModeFree Mode = iota
	// ModeCenter places the root at the origin with branches radiating out.
	ModeCenter
	// ModeHorizontal grows the tree left to right.
	ModeHorizontal
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeCenter:
		return "center"
	case ModeHorizontal:
		return "horizontal"
	default:
		return "free"
	}
}

// ParseMode parses a layout selector. The empty string means Free.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "free":
		return ModeFree, nil
	case "center":
		return ModeCenter, nil
	case "horizontal":
		return ModeHorizontal, nil
	default:
		return ModeFree, fmt.Errorf("invalid layout: %q (must be 'center', 'horizontal', or 'free')", s)
	}
}

// Config holds the layout tunables. Zero values are replaced by defaults in
// Build, so callers can set only what they need.
type Config struct {
	// CenterMaxNodes and CenterMaxDepth bound the trees Free mode will
	// route to the radial layout; anything larger goes horizontal.
	CenterMaxNodes int
	CenterMaxDepth int

	// Radial ring spacing: first ring at BaseRadius, RadiusStep more per
	// depth level.
	BaseRadius float64
	RadiusStep float64

	// CollisionMargin pads bounding boxes during radial overlap checks.
	CollisionMargin float64

	// SiblingGap is the vertical space between sibling subtrees and
	// ConnectorLength the minimum horizontal edge length, both used by the
	// horizontal layout.
	SiblingGap      float64
	ConnectorLength float64
}

// DefaultConfig returns the standard tunables.
func DefaultConfig() Config {
	return Config{
		CenterMaxNodes:  50,
		CenterMaxDepth:  4,
		BaseRadius:      100,
		RadiusStep:      120,
		CollisionMargin: 20,
		SiblingGap:      40,
		ConnectorLength: 120,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CenterMaxNodes == 0 {
		c.CenterMaxNodes = d.CenterMaxNodes
	}
	if c.CenterMaxDepth == 0 {
		c.CenterMaxDepth = d.CenterMaxDepth
	}
	if c.BaseRadius == 0 {
		c.BaseRadius = d.BaseRadius
	}
	if c.RadiusStep == 0 {
		c.RadiusStep = d.RadiusStep
	}
	if c.CollisionMargin == 0 {
		c.CollisionMargin = d.CollisionMargin
	}
	if c.SiblingGap == 0 {
		c.SiblingGap = d.SiblingGap
	}
	if c.ConnectorLength == 0 {
		c.ConnectorLength = d.ConnectorLength
	}
	return c
}

// Measurer reports the rendered bounding box of a label at a given tree
// depth. The renderer implements this with real font metrics; Estimator is
// a font-free approximation.
type Measurer interface {
	Measure(label string, depth int) (w, h float64)
}

// Estimator approximates label boxes from rune widths: wide (CJK) runes
// count as one em, narrow runes as 0.6em. It mirrors the sizing rules the
// renderer uses (shrinking font and padding with depth) closely enough for
// layout decisions without loading any font.
type Estimator struct {
	BaseFontSize float64
	MinFontSize  float64
}

// Measure implements Measurer.
func (e Estimator) Measure(label string, depth int) (w, h float64) {
	base := e.BaseFontSize
	if base == 0 {
		base = 42
	}
	min := e.MinFontSize
	if min == 0 {
		min = 24
	}
	size := math.Max(base-float64(depth)*6, min)

	var ems float64
	for _, r := range label {
		if r > 127 {
			ems += 1.0
		} else {
			ems += 0.6
		}
	}
	pad := math.Max(18-float64(depth)*2, 10)
	return ems*size + 2*pad, size + 2*pad
}

// Positioned is an outline node annotated with render coordinates and the
// bounding box of its label. X and Y are the node center.
type Positioned struct {
	Node *outline.Node
	X, Y float64
	W, H float64
	// Color is the branch color as a hex string. The root is dark gray,
	// each first-level branch gets a palette color, deeper nodes inherit.
	Color    string
	Parent   *Positioned
	Children []*Positioned

	// extent caches the subtree height during horizontal layout.
	extent float64
}

// Depth returns the node's depth in the tree.
func (p *Positioned) Depth() int { return p.Node.Depth }

// Radius returns the node's distance from the origin.
func (p *Positioned) Radius() float64 { return math.Hypot(p.X, p.Y) }

// Tree is a positioned outline tree. Nodes lists every node in depth-first
// document order; Mode is the resolved (never Free) strategy.
type Tree struct {
	Root  *Positioned
	Mode  Mode
	Nodes []*Positioned
}

// Bounds returns the bounding box of all node boxes.
func (t *Tree) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range t.Nodes {
		minX = math.Min(minX, n.X-n.W/2)
		maxX = math.Max(maxX, n.X+n.W/2)
		minY = math.Min(minY, n.Y-n.H/2)
		maxY = math.Max(maxY, n.Y+n.H/2)
	}
	return minX, minY, maxX, maxY
}

// rootColor is the outline and text color of the root node.
const rootColor = "#333333"

// branchPalette cycles across first-level branches; subtrees inherit their
// branch color.
var branchPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FECA57", "#FF9FF3",
	"#54A0FF", "#5F27CD", "#00D2D3", "#FF9F43", "#EE5A24", "#0984E3",
}

// Build positions every node of root under the given mode. A nil root
// yields a single placeholder node rather than an error. A nil measurer
// falls back to the Estimator.
func Build(root *outline.Node, mode Mode, m Measurer, cfg Config) *Tree {
	cfg = cfg.withDefaults()
	if m == nil {
		m = Estimator{}
	}
	if root == nil {
		root = &outline.Node{Label: outline.DefaultRootLabel}
	}
	if mode == ModeFree {
		mode = Resolve(root, cfg)
	}

	p := annotate(root, nil, 0, m)
	switch mode {
	case ModeHorizontal:
		layoutHorizontal(p, cfg)
	default:
		layoutRadial(p, cfg)
	}

	t := &Tree{Root: p, Mode: mode}
	var walk func(*Positioned)
	walk = func(n *Positioned) {
		t.Nodes = append(t.Nodes, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(p)
	return t
}

// Resolve picks the concrete mode for a Free request: radial for small,
// shallow trees where rings stay readable, horizontal for everything else.
func Resolve(root *outline.Node, cfg Config) Mode {
	cfg = cfg.withDefaults()
	if root == nil {
		return ModeCenter
	}
	if root.CountNodes() <= cfg.CenterMaxNodes && root.MaxDepth() <= cfg.CenterMaxDepth {
		return ModeCenter
	}
	return ModeHorizontal
}

// annotate mirrors the outline tree into Positioned nodes, measuring label
// boxes and assigning branch colors. Coordinates stay zero until a layout
// pass fills them in.
func annotate(n *outline.Node, parent *Positioned, branch int, m Measurer) *Positioned {
	w, h := m.Measure(n.Label, n.Depth)
	p := &Positioned{Node: n, W: w, H: h, Parent: parent}
	switch {
	case parent == nil:
		p.Color = rootColor
	case parent.Parent == nil:
		p.Color = branchPalette[branch%len(branchPalette)]
	default:
		p.Color = parent.Color
	}
	for i, c := range n.Children {
		p.Children = append(p.Children, annotate(c, p, i, m))
	}
	return p
}
