package outline

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Parse converts a Markdown document into an outline tree.
//
// ATX headings establish depth via their level; unordered and ordered list
// items become children of the nearest preceding heading (or enclosing list
// item for nested lists). Inline emphasis, strong, and code markers are
// stripped because only their text content is extracted from the AST. Code
// blocks, paragraphs, and other block elements are skipped.
//
// Parse never fails. An empty or structure-free document yields a tree with
// just the synthetic root. A document whose top level holds exactly one
// heading uses that heading as the root; otherwise top-level entries hang
// off a synthetic "Mind Map" root.
func Parse(markdown string) *Node {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	// Stack of open headings. Root sits at level 0 so every heading and
	// top-level list has a parent.
	type stackEntry struct {
		node  *Node
		level int
	}
	root := &Node{Label: DefaultRootLabel}
	stack := []stackEntry{{node: root, level: 0}}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			label := inlineText(node, src)
			if label == "" {
				continue
			}
			for len(stack) > 1 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			child := &Node{Label: label}
			parent.Children = append(parent.Children, child)
			stack = append(stack, stackEntry{node: child, level: node.Level})

		case *ast.List:
			appendList(stack[len(stack)-1].node, node, src)
		}
	}

	// A single top-level entry is the document's natural root; promote it
	// so the synthetic wrapper only appears when genuinely needed.
	if len(root.Children) == 1 {
		root = root.Children[0]
	}
	assignDepths(root, 0)
	return root
}

// appendList attaches every item of a Markdown list under parent, recursing
// into nested lists so indentation maps to tree depth.
func appendList(parent *Node, list *ast.List, src []byte) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		li, ok := item.(*ast.ListItem)
		if !ok {
			continue
		}
		label, nested := splitListItem(li, src)
		if label == "" && len(nested) == 0 {
			continue
		}
		child := &Node{Label: label}
		if child.Label == "" {
			// A bare nested list without item text; hoist grandchildren.
			for _, sub := range nested {
				appendList(parent, sub, src)
			}
			continue
		}
		parent.Children = append(parent.Children, child)
		for _, sub := range nested {
			appendList(child, sub, src)
		}
	}
}

// splitListItem separates a list item's own text from its nested sublists.
func splitListItem(li *ast.ListItem, src []byte) (label string, nested []*ast.List) {
	var buf bytes.Buffer
	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		switch block := c.(type) {
		case *ast.List:
			nested = append(nested, block)
		case *ast.TextBlock, *ast.Paragraph:
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(inlineText(block, src))
		}
	}
	return strings.TrimSpace(buf.String()), nested
}

// inlineText extracts the plain text of a block node's inline children,
// dropping emphasis and code span markers along the way.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	collectText(n, src, &buf)
	return strings.TrimSpace(buf.String())
}

func collectText(n ast.Node, src []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.CodeSpan:
			collectText(t, src, buf)
		default:
			collectText(c, src, buf)
		}
	}
}
