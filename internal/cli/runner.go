package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindmap/internal/config"
	"github.com/matzehuels/mindmap/pkg/cache"
	"github.com/matzehuels/mindmap/pkg/pipeline"
	"github.com/matzehuels/mindmap/pkg/render"
)

// newRunner builds the pipeline runner from the loaded configuration:
// fonts, logger, and the optional on-disk render cache.
func newRunner(cfg config.Config, logger *log.Logger) (*pipeline.Runner, error) {
	fonts, err := loadFonts(cfg, logger)
	if err != nil {
		return nil, err
	}
	if fonts.HasCJK() {
		logger.Debug("CJK font available", "path", fonts.CJKPath())
	}

	runner, err := pipeline.NewRunner(fonts, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			base, err := os.UserCacheDir()
			if err != nil {
				base = os.TempDir()
			}
			dir = filepath.Join(base, "mindmap")
		}
		c, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		runner.Cache = c
		runner.CacheTTL = time.Duration(cfg.Cache.TTLHours) * time.Hour
		logger.Debug("render cache enabled", "dir", dir)
	}
	return runner, nil
}

// loadFonts resolves the font set per the config. A missing CJK font is
// fine; only a broken embedded face is fatal.
func loadFonts(cfg config.Config, logger *log.Logger) (*render.FontSet, error) {
	return render.LoadFonts(render.FontConfig{
		CJKCandidates: cfg.Fonts.CJKCandidates,
		Dirs:          cfg.Fonts.Dirs,
		BaseSize:      cfg.Render.BaseFontSize,
		MinSize:       cfg.Render.MinFontSize,
	}, logger)
}
