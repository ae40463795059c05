package render

import (
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/mindmap/pkg/layout"
)

// Options controls canvas sizing. Zero values fall back to defaults.
type Options struct {
	// MarginBase plus MarginPerDepth per tree level pads the canvas around
	// the positioned bounding box. Deeper maps get more breathing room.
	MarginBase     float64
	MarginPerDepth float64

	// MinWidth and MinHeight floor the canvas size so tiny trees still
	// produce a readable image.
	MinWidth  int
	MinHeight int

	// MaxDim caps either canvas dimension; larger renders are downscaled
	// to fit so response payloads stay bounded. Zero means 4096.
	MaxDim int
}

// DefaultOptions returns the standard canvas settings.
func DefaultOptions() Options {
	return Options{
		MarginBase:     150,
		MarginPerDepth: 30,
		MinWidth:       640,
		MinHeight:      480,
		MaxDim:         4096,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MarginBase == 0 {
		o.MarginBase = d.MarginBase
	}
	if o.MarginPerDepth == 0 {
		o.MarginPerDepth = d.MarginPerDepth
	}
	if o.MinWidth == 0 {
		o.MinWidth = d.MinWidth
	}
	if o.MinHeight == 0 {
		o.MinHeight = d.MinHeight
	}
	if o.MaxDim == 0 {
		o.MaxDim = d.MaxDim
	}
	return o
}

// Draw rasterizes a positioned tree onto a white canvas sized to fit all
// node boxes plus margin. Edges are drawn first as cubic beziers in the
// child's branch color, then each node as a rounded white box with a
// colored outline and centered label.
func Draw(t *layout.Tree, fonts *FontSet, opts Options) (image.Image, error) {
	if t == nil || t.Root == nil || len(t.Nodes) == 0 {
		return nil, fmt.Errorf("draw: empty layout")
	}
	if fonts == nil {
		return nil, fmt.Errorf("draw: no font set")
	}
	opts = opts.withDefaults()

	minX, minY, maxX, maxY := t.Bounds()
	maxDepth := 0
	for _, n := range t.Nodes {
		if d := n.Depth(); d > maxDepth {
			maxDepth = d
		}
	}
	margin := opts.MarginBase + float64(maxDepth)*opts.MarginPerDepth

	width := int(math.Ceil(maxX - minX + 2*margin))
	height := int(math.Ceil(maxY - minY + 2*margin))
	if width < opts.MinWidth {
		width = opts.MinWidth
	}
	if height < opts.MinHeight {
		height = opts.MinHeight
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Center the content inside the canvas (the minimum-size floor can make
	// the canvas larger than content + margin).
	offX := (float64(width) - (maxX - minX)) / 2
	offY := (float64(height) - (maxY - minY)) / 2
	toCanvas := func(x, y float64) (float64, float64) {
		return x - minX + offX, y - minY + offY
	}

	for _, n := range t.Nodes {
		if n.Parent != nil {
			drawEdge(dc, n, t.Mode, toCanvas)
		}
	}
	for _, n := range t.Nodes {
		if err := drawNode(dc, n, fonts, toCanvas); err != nil {
			return nil, err
		}
	}

	img := dc.Image()
	if width > opts.MaxDim || height > opts.MaxDim {
		img = imaging.Fit(img, opts.MaxDim, opts.MaxDim, imaging.Lanczos)
	}
	return img, nil
}

// drawEdge draws the connector from n's parent to n. The radial mode bends
// the curve outward along the parent's radial direction; the horizontal
// mode leaves the parent's right edge and enters the child's left edge with
// horizontal tangents.
func drawEdge(dc *gg.Context, n *layout.Positioned, mode layout.Mode, toCanvas func(float64, float64) (float64, float64)) {
	p := n.Parent
	r, g, b, ok := parseHexColor(n.Color)
	if !ok {
		r, g, b = 0.2, 0.2, 0.2
	}

	var sx, sy, c1x, c1y, c2x, c2y, ex, ey, lineWidth float64
	if mode == layout.ModeHorizontal {
		// Retract endpoints into the boxes so the curve visually connects
		// even when measured widths are slightly off.
		visualStartX := p.X + p.W/2
		visualEndX := n.X - n.W/2
		sx, sy = p.X+p.W/2*0.6, p.Y
		ex, ey = n.X-n.W/2*0.6, n.Y

		hdist := math.Abs(visualEndX - visualStartX)
		cpDist := math.Min(hdist*0.6, 240)
		c1x, c1y = visualStartX+cpDist, p.Y
		c2x, c2y = visualEndX-cpDist, n.Y
		lineWidth = math.Max(3-float64(n.Depth())*0.3, 1)
	} else {
		sx, sy = p.X, p.Y
		ex, ey = n.X, n.Y
		dx, dy := ex-sx, ey-sy
		dist := math.Hypot(dx, dy)
		if dist < 0.1 {
			return
		}
		// First control point extends along the parent's radial direction
		// so branches leave the center smoothly.
		nx, ny := dx/dist, dy/dist
		if sd := math.Hypot(sx, sy); sd > 0.001 {
			nx, ny = sx/sd, sy/sd
		}
		c1x, c1y = sx+nx*dist*0.4, sy+ny*dist*0.4
		c2x, c2y = ex-dx*0.4, ey-dy*0.4
		lineWidth = math.Max(3-float64(n.Depth())*0.5, 1)
	}

	sx, sy = toCanvas(sx, sy)
	c1x, c1y = toCanvas(c1x, c1y)
	c2x, c2y = toCanvas(c2x, c2y)
	ex, ey = toCanvas(ex, ey)

	dc.SetRGBA(r, g, b, 0.8)
	dc.SetLineWidth(lineWidth)
	dc.MoveTo(sx, sy)
	dc.CubicTo(c1x, c1y, c2x, c2y, ex, ey)
	dc.Stroke()
}

// drawNode draws a rounded white box outlined in the branch color with the
// label centered inside.
func drawNode(dc *gg.Context, n *layout.Positioned, fonts *FontSet, toCanvas func(float64, float64) (float64, float64)) error {
	r, g, b, ok := parseHexColor(n.Color)
	if !ok {
		return fmt.Errorf("draw node %q: bad color %q", n.Node.Label, n.Color)
	}
	cx, cy := toCanvas(n.X, n.Y)

	borderWidth := 3.0
	if n.Parent == nil {
		borderWidth = 4.0
	}

	dc.DrawRoundedRectangle(cx-n.W/2, cy-n.H/2, n.W, n.H, 6)
	dc.SetRGB(1, 1, 1)
	dc.FillPreserve()
	dc.SetRGB(r, g, b)
	dc.SetLineWidth(borderWidth)
	dc.Stroke()

	dc.SetRGB(r, g, b)
	fonts.WithFace(n.Node.Label, n.Depth(), func(face font.Face) {
		dc.SetFontFace(face)
		dc.DrawStringAnchored(n.Node.Label, cx, cy, 0.5, 0.5)
	})
	return nil
}

// parseHexColor parses "#RRGGBB" into float components.
func parseHexColor(s string) (r, g, b float64, ok bool) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	r = float64(v>>16&0xFF) / 255
	g = float64(v>>8&0xFF) / 255
	b = float64(v&0xFF) / 255
	return r, g, b, true
}
