// Package outline builds rooted label trees from Markdown documents.
//
// The tree is the input to the layout engine: heading levels and list
// nesting define the hierarchy, document order defines sibling order.
// Parsing never fails; degenerate inputs (empty string, no headings)
// produce a tree with a synthetic root instead of an error.
package outline

// DefaultRootLabel is the label given to the synthetic root node when the
// document has no single top-level heading to act as the root.
const DefaultRootLabel = "Mind Map"

// Node is a single labeled node in the outline tree. Children preserve
// source document order. Depth is 0 for the root and increases by one per
// level; it is always consistent with the tree structure.
type Node struct {
	Label    string
	Depth    int
	Children []*Node
}

// CountNodes returns the total number of nodes in the subtree rooted at n,
// including n itself.
func (n *Node) CountNodes() int {
	count := 1
	for _, c := range n.Children {
		count += c.CountNodes()
	}
	return count
}

// MaxDepth returns the largest Depth value in the subtree rooted at n.
// A root-only tree has MaxDepth 0.
func (n *Node) MaxDepth() int {
	max := n.Depth
	for _, c := range n.Children {
		if d := c.MaxDepth(); d > max {
			max = d
		}
	}
	return max
}

// Leaves returns the number of leaf nodes under n. A leaf counts as one,
// including n itself when it has no children. The layout engine uses leaf
// counts to weight angular spans so bushy branches get more room.
func (n *Node) Leaves() int {
	if len(n.Children) == 0 {
		return 1
	}
	sum := 0
	for _, c := range n.Children {
		sum += c.Leaves()
	}
	return sum
}

// Walk visits n and every descendant in depth-first document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// assignDepths rewrites Depth for the whole subtree so it matches the tree
// structure. Called after parsing, where root promotion can shift levels.
func assignDepths(n *Node, depth int) {
	n.Depth = depth
	for _, c := range n.Children {
		assignDepths(c, depth+1)
	}
}
