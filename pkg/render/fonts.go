// Package render rasterizes positioned outline trees into PNG images.
//
// Drawing is done with fogleman/gg on an in-memory canvas. Text uses the
// embedded Go Regular face by default; labels containing CJK script switch
// to a system font discovered once at startup (WenQuanYi, Noto Sans CJK,
// PingFang, Microsoft YaHei, ...). The FontSet doubles as the layout
// engine's Measurer so label boxes match what actually gets drawn.
package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultCJKCandidates lists font files tried in order when resolving a
// CJK-capable face. Filenames only; the search covers the platform font
// directories plus any configured extra directories.
var DefaultCJKCandidates = []string{
	"wqy-microhei.ttc",
	"NotoSansCJK-Regular.ttc",
	"NotoSansCJKsc-Regular.otf",
	"PingFang.ttc",
	"Hiragino Sans GB.ttc",
	"msyh.ttc",
	"simhei.ttf",
}

// FontConfig controls font resolution and sizing.
type FontConfig struct {
	// CJKCandidates overrides DefaultCJKCandidates when non-empty.
	CJKCandidates []string
	// Dirs lists extra directories to search before the system font paths.
	Dirs []string
	// BaseSize is the root label size in points; labels shrink 6pt per
	// depth level down to MinSize. Zero means the 42/24 defaults.
	BaseSize float64
	MinSize  float64
}

// FontSet holds the resolved fonts for one process. It is created once at
// startup and read-only afterwards. freetype faces carry mutable glyph and
// raster buffers, so each cached face pairs with a mutex and all use goes
// through WithFace; concurrent renders can then share one FontSet.
type FontSet struct {
	base    *truetype.Font
	cjk     *truetype.Font
	cjkPath string

	baseSize float64
	minSize  float64

	mu    sync.Mutex
	faces map[faceKey]*lockedFace
}

type faceKey struct {
	cjk  bool
	size float64
}

// lockedFace serializes every use of one cached face. The lock must cover
// the whole measure or draw operation, not single calls: Glyph hands out
// slices of the face's internal mask buffer, which the next Glyph call
// overwrites.
type lockedFace struct {
	mu   sync.Mutex
	face font.Face
}

// LoadFonts parses the embedded default face and attempts to resolve a CJK
// fallback from the filesystem. A missing CJK font is not an error: CJK
// labels then render with the default face. The filesystem is only touched
// here, never per-request.
func LoadFonts(cfg FontConfig, logger *log.Logger) (*FontSet, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	base, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}

	fs := &FontSet{
		base:     base,
		baseSize: cfg.BaseSize,
		minSize:  cfg.MinSize,
		faces:    map[faceKey]*lockedFace{},
	}
	if fs.baseSize == 0 {
		fs.baseSize = 42
	}
	if fs.minSize == 0 {
		fs.minSize = 24
	}

	candidates := cfg.CJKCandidates
	if len(candidates) == 0 {
		candidates = DefaultCJKCandidates
	}
	if path, data := findCJK(candidates, cfg.Dirs); data != nil {
		f, err := truetype.Parse(data)
		if err != nil {
			logger.Debug("CJK font unusable", "path", path, "error", err)
		} else {
			fs.cjk = f
			fs.cjkPath = path
			logger.Debug("CJK font resolved", "path", path)
		}
	}
	if fs.cjk == nil {
		logger.Debug("no CJK font found, CJK labels will use the default face")
	}
	return fs, nil
}

// findCJK returns the path and contents of the first candidate font found
// in the extra directories or the system font paths.
func findCJK(candidates, dirs []string) (string, []byte) {
	for _, name := range candidates {
		for _, dir := range dirs {
			path := filepath.Join(dir, name)
			if data, err := os.ReadFile(path); err == nil {
				return path, data
			}
		}
		if path, err := findfont.Find(name); err == nil {
			if data, err := os.ReadFile(path); err == nil {
				return path, data
			}
		}
	}
	return "", nil
}

// HasCJK reports whether a CJK-capable font was resolved.
func (fs *FontSet) HasCJK() bool { return fs.cjk != nil }

// CJKPath returns the resolved CJK font file, or "" when none was found.
func (fs *FontSet) CJKPath() string { return fs.cjkPath }

// SizeForDepth returns the label point size at a tree depth: the base size
// shrinks 6pt per level and never drops below the minimum.
func (fs *FontSet) SizeForDepth(depth int) float64 {
	return math.Max(fs.baseSize-float64(depth)*6, fs.minSize)
}

// PaddingForDepth returns the label box padding at a tree depth.
func PaddingForDepth(depth int) float64 {
	return math.Max(18-float64(depth)*2, 10)
}

// face returns the cached locked face at the given size, using the CJK
// font when requested and available.
func (fs *FontSet) face(size float64, cjk bool) *lockedFace {
	useCJK := cjk && fs.cjk != nil
	key := faceKey{cjk: useCJK, size: size}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if f, ok := fs.faces[key]; ok {
		return f
	}
	src := fs.base
	if useCJK {
		src = fs.cjk
	}
	f := &lockedFace{face: truetype.NewFace(src, &truetype.Options{Size: size})}
	fs.faces[key] = f
	return f
}

// WithFace runs fn with the face for a label at a tree depth, selecting the
// CJK font when the label contains CJK script. The face's lock is held for
// the duration of fn; fn must not retain the face.
func (fs *FontSet) WithFace(label string, depth int, fn func(font.Face)) {
	lf := fs.face(fs.SizeForDepth(depth), ContainsCJK(label))
	lf.mu.Lock()
	defer lf.mu.Unlock()
	fn(lf.face)
}

// BaseSize returns the configured root label point size.
func (fs *FontSet) BaseSize() float64 { return fs.baseSize }

// MinSize returns the configured minimum label point size.
func (fs *FontSet) MinSize() float64 { return fs.minSize }

// Measure implements layout.Measurer: the rendered bounding box of a label,
// including box padding, using real font metrics.
func (fs *FontSet) Measure(label string, depth int) (w, h float64) {
	pad := PaddingForDepth(depth)
	fs.WithFace(label, depth, func(face font.Face) {
		adv := font.MeasureString(face, label)
		metrics := face.Metrics()
		w = float64(adv.Ceil()) + 2*pad
		h = float64((metrics.Ascent + metrics.Descent).Ceil()) + 2*pad
	})
	return w, h
}

// ContainsCJK reports whether any rune of s belongs to a CJK script.
func ContainsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) ||
			unicode.Is(unicode.Hangul, r) ||
			unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) {
			return true
		}
	}
	return false
}
