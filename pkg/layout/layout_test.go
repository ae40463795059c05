package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/mindmap/pkg/outline"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"center", ModeCenter, false},
		{"horizontal", ModeHorizontal, false},
		{"free", ModeFree, false},
		{"", ModeFree, false},
		{"radial", ModeFree, true},
		{"CENTER", ModeFree, true}, // case-sensitive
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestModeString(t *testing.T) {
	for mode, want := range map[Mode]string{ModeCenter: "center", ModeHorizontal: "horizontal", ModeFree: "free"} {
		if got := mode.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", mode, got, want)
		}
	}
}

func TestRadialRadiusIncreasesWithDepth(t *testing.T) {
	tree := outline.Parse("# Root\n## A\n- a1\n- a2\n  - a2x\n## B\n- b1\n## C")
	positioned := Build(tree, ModeCenter, nil, Config{})

	for _, n := range positioned.Nodes {
		if n.Parent == nil {
			if n.Radius() != 0 {
				t.Errorf("root should sit at the origin, got radius %f", n.Radius())
			}
			continue
		}
		if n.Radius() <= n.Parent.Radius() {
			t.Errorf("node %q radius %.1f should exceed parent %q radius %.1f",
				n.Node.Label, n.Radius(), n.Parent.Node.Label, n.Parent.Radius())
		}
	}
}

func TestRadialTwoSiblings(t *testing.T) {
	tree := outline.Parse("# Root\n- A\n- B")
	positioned := Build(tree, ModeCenter, nil, Config{})
	if len(positioned.Root.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(positioned.Root.Children))
	}

	a, b := positioned.Root.Children[0], positioned.Root.Children[1]
	if math.Abs(a.Radius()-b.Radius()) > 1e-6 {
		t.Errorf("siblings should share a radius: %f vs %f", a.Radius(), b.Radius())
	}

	angleA := math.Atan2(a.Y, a.X)
	angleB := math.Atan2(b.Y, b.X)
	sep := math.Abs(angleA - angleB)
	if sep > math.Pi {
		sep = 2*math.Pi - sep
	}
	if sep < 2*math.Pi/3 {
		t.Errorf("angular separation = %.3f rad, want at least 2π/3", sep)
	}
}

func TestRadialNoOverlapSmallTree(t *testing.T) {
	tree := outline.Parse("# Root\n## One\n- a\n- b\n## Two\n- c\n- d\n## Three")
	positioned := Build(tree, ModeCenter, nil, Config{})

	nodes := positioned.Nodes
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			overlapX := math.Abs(a.X-b.X) < (a.W+b.W)/2
			overlapY := math.Abs(a.Y-b.Y) < (a.H+b.H)/2
			if overlapX && overlapY {
				t.Errorf("boxes overlap: %q at (%.0f,%.0f) and %q at (%.0f,%.0f)",
					a.Node.Label, a.X, a.Y, b.Node.Label, b.X, b.Y)
			}
		}
	}
}

func TestHorizontalXIncreasesWithDepth(t *testing.T) {
	tree := outline.Parse("# Root\n## A\n- a1\n  - deep\n## B\n- b1")
	positioned := Build(tree, ModeHorizontal, nil, Config{})

	for _, n := range positioned.Nodes {
		if n.Parent == nil {
			continue
		}
		if n.X <= n.Parent.X {
			t.Errorf("node %q x=%.1f should exceed parent %q x=%.1f",
				n.Node.Label, n.X, n.Parent.Node.Label, n.Parent.X)
		}
	}
}

func TestHorizontalParentCentroid(t *testing.T) {
	tree := outline.Parse("# Root\n- A\n- B\n- C")
	positioned := Build(tree, ModeHorizontal, nil, Config{})

	for _, n := range positioned.Nodes {
		if len(n.Children) == 0 {
			continue
		}
		top := math.Inf(1)
		bottom := math.Inf(-1)
		for _, c := range n.Children {
			top = math.Min(top, c.Y-c.extent/2)
			bottom = math.Max(bottom, c.Y+c.extent/2)
		}
		center := (top + bottom) / 2
		if math.Abs(center-n.Y) > 1e-6 {
			t.Errorf("node %q y=%.2f should be the centroid %.2f of its children's span", n.Node.Label, n.Y, center)
		}
	}
}

func TestHorizontalSiblingsDoNotOverlap(t *testing.T) {
	tree := outline.Parse("# Root\n- one\n- two\n- three\n- four")
	positioned := Build(tree, ModeHorizontal, nil, Config{})

	children := positioned.Root.Children
	for i := 1; i < len(children); i++ {
		prevBottom := children[i-1].Y + children[i-1].H/2
		curTop := children[i].Y - children[i].H/2
		if curTop <= prevBottom {
			t.Errorf("siblings %q and %q overlap vertically", children[i-1].Node.Label, children[i].Node.Label)
		}
	}
}

func TestResolveFreeMode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Mode
	}{
		{"small shallow tree", "# Root\n- A\n- B", ModeCenter},
		{"deep chain", "# a\n## b\n### c\n#### d\n##### e\n###### f", ModeHorizontal},
	}
	for _, tt := range tests {
		tree := outline.Parse(tt.input)
		if got := Resolve(tree, Config{}); got != tt.want {
			t.Errorf("%s: Resolve = %v, want %v", tt.name, got, tt.want)
		}
	}

	// Node-count threshold: 3 nodes with a limit of 2 goes horizontal.
	tree := outline.Parse("# Root\n- A\n- B")
	if got := Resolve(tree, Config{CenterMaxNodes: 2, CenterMaxDepth: 4}); got != ModeHorizontal {
		t.Errorf("tree above node threshold should resolve to horizontal, got %v", got)
	}
}

func TestBuildNilTree(t *testing.T) {
	positioned := Build(nil, ModeCenter, nil, Config{})
	if positioned == nil || positioned.Root == nil {
		t.Fatal("nil tree should yield a placeholder node")
	}
	if len(positioned.Nodes) != 1 {
		t.Errorf("placeholder tree should have one node, got %d", len(positioned.Nodes))
	}
	if positioned.Root.Node.Label != outline.DefaultRootLabel {
		t.Errorf("placeholder label = %q, want %q", positioned.Root.Node.Label, outline.DefaultRootLabel)
	}
}

func TestBuildResolvesFree(t *testing.T) {
	tree := outline.Parse("# Root\n- A")
	positioned := Build(tree, ModeFree, nil, Config{})
	if positioned.Mode == ModeFree {
		t.Error("Build should resolve Free to a concrete mode")
	}
}

func TestBranchColors(t *testing.T) {
	tree := outline.Parse("# Root\n## A\n- a1\n## B")
	positioned := Build(tree, ModeCenter, nil, Config{})

	if positioned.Root.Color != rootColor {
		t.Errorf("root color = %q, want %q", positioned.Root.Color, rootColor)
	}
	a := positioned.Root.Children[0]
	b := positioned.Root.Children[1]
	if a.Color == b.Color {
		t.Error("sibling branches should get distinct palette colors")
	}
	if a.Children[0].Color != a.Color {
		t.Errorf("grandchild should inherit branch color %q, got %q", a.Color, a.Children[0].Color)
	}
}

func TestEstimatorShrinksWithDepth(t *testing.T) {
	e := Estimator{}
	w0, h0 := e.Measure("Label", 0)
	w3, h3 := e.Measure("Label", 3)
	if w3 >= w0 || h3 >= h0 {
		t.Errorf("deeper labels should measure smaller: depth0=(%.1f,%.1f) depth3=(%.1f,%.1f)", w0, h0, w3, h3)
	}

	narrow, _ := e.Measure("abc", 1)
	wide, _ := e.Measure("中文字", 1)
	if wide <= narrow {
		t.Errorf("CJK label should measure wider than same-length ASCII: %.1f vs %.1f", wide, narrow)
	}
}

func TestBounds(t *testing.T) {
	tree := outline.Parse("# Root\n- A\n- B")
	positioned := Build(tree, ModeHorizontal, nil, Config{})
	minX, minY, maxX, maxY := positioned.Bounds()
	if minX >= maxX || minY >= maxY {
		t.Errorf("degenerate bounds: (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
	for _, n := range positioned.Nodes {
		if n.X-n.W/2 < minX || n.X+n.W/2 > maxX || n.Y-n.H/2 < minY || n.Y+n.H/2 > maxY {
			t.Errorf("node %q outside reported bounds", n.Node.Label)
		}
	}
}
