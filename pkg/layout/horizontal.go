package layout

import "math"

// layoutHorizontal implements the left-to-right mode in two passes: the
// first computes each subtree's vertical extent bottom-up, the second
// assigns coordinates top-down so every parent sits at the centroid of its
// children's span. Horizontal spacing accounts for the actual label widths
// of parent and children, so wide labels never overlap the connector of the
// next column.
func layoutHorizontal(root *Positioned, cfg Config) {
	computeExtent(root, cfg)
	assign(root, 0, 0, cfg)
}

// computeExtent fills in the subtree height of every node: a leaf occupies
// its own box height, an inner node the stacked extents of its children
// (plus gaps) or its own height, whichever is larger.
func computeExtent(n *Positioned, cfg Config) float64 {
	if len(n.Children) == 0 {
		n.extent = n.H
		return n.extent
	}
	total := 0.0
	for _, c := range n.Children {
		total += computeExtent(c, cfg)
	}
	total += float64(len(n.Children)-1) * cfg.SiblingGap
	n.extent = math.Max(n.H, total)
	return n.extent
}

// assign places n at (x, yCenter) and stacks its children in the next
// column, centered on the parent.
func assign(n *Positioned, x, yCenter float64, cfg Config) {
	n.X = x
	n.Y = yCenter

	if len(n.Children) == 0 {
		return
	}

	maxChildW := 0.0
	total := 0.0
	for _, c := range n.Children {
		maxChildW = math.Max(maxChildW, c.W)
		total += c.extent
	}
	total += float64(len(n.Children)-1) * cfg.SiblingGap

	childX := x + n.W/2 + cfg.ConnectorLength + maxChildW/2
	cur := yCenter - total/2
	for _, c := range n.Children {
		assign(c, childX, cur+c.extent/2, cfg)
		cur += c.extent + cfg.SiblingGap
	}
}
