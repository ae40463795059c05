package layout

import "math"

// layoutRadial implements the center mode: the root sits at the origin and
// each branch claims an angular span proportional to its leaf count.
// Children are pushed outward along their span's mid-angle until their
// bounding box stops colliding with anything already placed, which keeps the
// layout compact while preserving the ring ordering (a child always sits
// strictly farther out than its parent).
func layoutRadial(root *Positioned, cfg Config) {
	r := &radialState{cfg: cfg, minRadius: map[int]float64{}}
	r.place(root, 0, 2*math.Pi, 0)
}

type radialState struct {
	cfg    Config
	placed []box
	// minRadius tracks the inner edge of each ring so sibling subtrees at
	// the same depth stay on comparable radii.
	minRadius map[int]float64
}

type box struct{ x, y, w, h float64 }

func (s *radialState) collides(x, y, w, h float64) bool {
	m := s.cfg.CollisionMargin
	l1, r1 := x-w/2-m, x+w/2+m
	t1, b1 := y-h/2-m, y+h/2+m
	for _, b := range s.placed {
		l2, r2 := b.x-b.w/2, b.x+b.w/2
		t2, b2 := b.y-b.h/2, b.y+b.h/2
		if l1 <= r2 && r1 >= l2 && t1 <= b2 && b1 >= t2 {
			return true
		}
	}
	return false
}

// ringRadius computes the minimum radius for a node at the given depth. The
// floor grows linearly per ring, and is lifted past the parent's radius by
// both half-diagonals so a child can never fall inside its parent's ring.
func (s *radialState) ringRadius(depth int, parent *Positioned, w, h float64) float64 {
	r := s.cfg.BaseRadius + float64(depth-1)*s.cfg.RadiusStep
	if parent != nil {
		parentDiag := math.Hypot(parent.W, parent.H) / 2
		childDiag := math.Hypot(w, h) / 2
		r = math.Max(r, parent.Radius()+parentDiag+childDiag+30)
	}
	if cur, ok := s.minRadius[depth]; ok && cur > r {
		r = cur
	} else {
		s.minRadius[depth] = r
	}
	return r
}

// place positions node within the angular span [start, end) at the given
// depth, then subdivides the span among its children by leaf weight.
func (s *radialState) place(node *Positioned, start, end float64, depth int) {
	if depth == 0 {
		node.X, node.Y = 0, 0
	} else {
		mid := (start + end) / 2
		minR := s.ringRadius(depth, node.Parent, node.W, node.H)
		baseStep := 20 + float64(depth-1)*5

		r := minR
		for attempt := 0; attempt < 150; attempt++ {
			step := baseStep * (1 + float64(attempt)*0.05)
			r = minR + float64(attempt)*step
			x := r * math.Cos(mid)
			y := r * math.Sin(mid)
			if !s.collides(x, y, node.W, node.H) {
				break
			}
		}
		node.X = r * math.Cos(mid)
		node.Y = r * math.Sin(mid)

		// A node pushed far past its ring drags the rest of the ring out
		// with it, but only for substantial overshoot to avoid inflating
		// the whole map.
		if r > s.minRadius[depth]*1.2 {
			s.minRadius[depth] = r
		}
	}
	s.placed = append(s.placed, box{node.X, node.Y, node.W, node.H})

	if len(node.Children) == 0 {
		return
	}
	total := 0.0
	for _, c := range node.Children {
		total += float64(c.Node.Leaves())
	}
	span := end - start
	cur := start
	for _, c := range node.Children {
		childSpan := float64(c.Node.Leaves()) / total * span
		s.place(c, cur, cur+childSpan, depth+1)
		cur += childSpan
	}
}
