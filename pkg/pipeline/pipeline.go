// Package pipeline provides the core mind map generation pipeline.
//
// This package implements the complete parse → layout → render pipeline that
// is shared by the CLI, the MCP tools, and the HTTP API. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Convert the Markdown outline into a node tree
//  2. Layout: Position every node in the requested layout mode
//  3. Render: Draw the positioned tree and encode it as PNG
//
// # Usage
//
// Create a Runner once (font resolution touches the filesystem) and execute
// the pipeline per request:
//
//	runner, err := pipeline.NewRunner(nil, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Markdown: "# Project\n- Goals\n- Risks",
//	    Layout:   "center",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.PNG
package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindmap/pkg/cache"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/layout"
	"github.com/matzehuels/mindmap/pkg/observability"
	"github.com/matzehuels/mindmap/pkg/outline"
	"github.com/matzehuels/mindmap/pkg/render"
)

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Markdown is the outline document to visualize.
	Markdown string `json:"markdown_content"`

	// Layout selects the layout mode: "free" (default), "center", or
	// "horizontal". Free mode picks center or horizontal based on the
	// shape of the parsed tree.
	Layout string `json:"layout,omitempty"`

	// Layout and render tuning. Zero values mean defaults.
	LayoutConfig  layout.Config  `json:"-"`
	RenderOptions render.Options `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateMarkdown(o.Markdown); err != nil {
		return err
	}
	if err := errors.ValidateLayout(o.Layout); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// PNG is the encoded image.
	PNG []byte

	// Mode is the layout mode actually used. For free requests this is the
	// resolved mode (center or horizontal), never free itself.
	Mode layout.Mode

	// Tree is the positioned node tree, useful for inspection and testing.
	// Nil when the result was served from cache.
	Tree *layout.Tree

	// CacheHit reports whether the image came from the cache instead of a
	// fresh render.
	CacheHit bool

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	TreeDepth   int
	ImageWidth  int
	ImageHeight int
	ParseTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// Runner executes the pipeline with a shared font set.
//
// The Runner is stateless except for the fonts and logger - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Fonts  *render.FontSet
	Logger *log.Logger

	// Cache stores finished renders keyed by content hash. Defaults to a
	// NullCache (caching disabled).
	Cache cache.Cache

	// CacheTTL bounds the lifetime of cached entries. Zero means no expiry;
	// renders are deterministic, so entries never go stale on their own.
	CacheTTL time.Duration
}

// NewRunner creates a runner, resolving fonts if none are supplied.
// If logger is nil, logging is discarded.
func NewRunner(fonts *render.FontSet, logger *log.Logger) (*Runner, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if fonts == nil {
		var err error
		fonts, err = render.LoadFonts(render.FontConfig{}, logger)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFontFailed, err, "load fonts")
		}
	}
	return &Runner{Fonts: fonts, Logger: logger, Cache: cache.NewNullCache()}, nil
}

// cachedResult is the envelope stored in the cache for a finished render.
type cachedResult struct {
	Mode        string `json:"mode"`
	NodeCount   int    `json:"node_count"`
	TreeDepth   int    `json:"tree_depth"`
	ImageWidth  int    `json:"image_width"`
	ImageHeight int    `json:"image_height"`
	PNG         []byte `json:"png"`
}

// cacheKey derives the content-addressed key for a validated request. Font
// sizes come from the runner's font set because they shape every label box.
func (r *Runner) cacheKey(opts Options) string {
	return cache.ImageKey(opts.Markdown, cache.ImageKeyOpts{
		Layout:         opts.Layout,
		CenterMaxNodes: opts.LayoutConfig.CenterMaxNodes,
		CenterMaxDepth: opts.LayoutConfig.CenterMaxDepth,
		BaseFontSize:   r.Fonts.BaseSize(),
		MinFontSize:    r.Fonts.MinSize(),
		MaxImageDim:    opts.RenderOptions.MaxDim,
		MarginBase:     opts.RenderOptions.MarginBase,
	})
}

// Execute runs the complete parse → layout → render pipeline.
// Finished renders are cached; a cache hit skips all three stages.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	result := &Result{}

	key := r.cacheKey(opts)
	if r.Cache != nil {
		if data, found, err := r.Cache.Get(ctx, key); err == nil && found {
			var cached cachedResult
			if err := json.Unmarshal(data, &cached); err == nil {
				mode, err := layout.ParseMode(cached.Mode)
				if err == nil {
					result.PNG = cached.PNG
					result.Mode = mode
					result.CacheHit = true
					result.Stats.NodeCount = cached.NodeCount
					result.Stats.TreeDepth = cached.TreeDepth
					result.Stats.ImageWidth = cached.ImageWidth
					result.Stats.ImageHeight = cached.ImageHeight
					r.Logger.Debug("render cache hit", "key", key)
					return result, nil
				}
			}
			// Corrupt entry, drop it and render fresh.
			_ = r.Cache.Delete(ctx, key)
		}
	}

	// Stage 1: Parse
	parseStart := time.Now()
	hooks.OnParseStart(ctx)
	root := outline.Parse(opts.Markdown)
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = root.CountNodes()
	result.Stats.TreeDepth = root.MaxDepth()
	hooks.OnParseComplete(ctx, result.Stats.NodeCount, result.Stats.ParseTime, nil)

	r.Logger.Info("parsed outline",
		"nodes", result.Stats.NodeCount,
		"depth", result.Stats.TreeDepth,
		"duration", result.Stats.ParseTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Layout
	mode, _ := layout.ParseMode(opts.Layout)
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, mode.String(), result.Stats.NodeCount)
	tree := layout.Build(root, mode, r.Fonts, opts.LayoutConfig)
	result.Tree = tree
	result.Mode = tree.Mode
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, tree.Mode.String(), result.Stats.LayoutTime, nil)

	r.Logger.Info("computed layout",
		"mode", tree.Mode,
		"duration", result.Stats.LayoutTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, tree.Mode.String())
	img, err := render.Draw(tree, r.Fonts, opts.RenderOptions)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeRenderFailed, err, "draw %s map", tree.Mode)
		hooks.OnRenderComplete(ctx, tree.Mode.String(), 0, time.Since(renderStart), err)
		return nil, err
	}
	png, err := render.EncodePNG(img)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeEncodeFailed, err, "encode %s map", tree.Mode)
		hooks.OnRenderComplete(ctx, tree.Mode.String(), 0, time.Since(renderStart), err)
		return nil, err
	}
	result.PNG = png
	result.Stats.RenderTime = time.Since(renderStart)
	bounds := img.Bounds()
	result.Stats.ImageWidth = bounds.Dx()
	result.Stats.ImageHeight = bounds.Dy()
	hooks.OnRenderComplete(ctx, tree.Mode.String(), len(png), result.Stats.RenderTime, nil)

	r.Logger.Info("rendered image",
		"width", result.Stats.ImageWidth,
		"height", result.Stats.ImageHeight,
		"bytes", len(png),
		"duration", result.Stats.RenderTime)

	if r.Cache != nil {
		data, err := json.Marshal(cachedResult{
			Mode:        result.Mode.String(),
			NodeCount:   result.Stats.NodeCount,
			TreeDepth:   result.Stats.TreeDepth,
			ImageWidth:  result.Stats.ImageWidth,
			ImageHeight: result.Stats.ImageHeight,
			PNG:         result.PNG,
		})
		if err == nil {
			if err := r.Cache.Set(ctx, key, data, r.CacheTTL); err != nil {
				r.Logger.Debug("render cache store failed", "error", err)
			}
		}
	}

	return result, nil
}
