// Package config loads server and pipeline settings from an optional TOML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds all tunable settings. Every field has a compiled-in default;
// a config file only needs the keys it wants to change.
type Config struct {
	Server ServerConfig `toml:"server"`
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Fonts  FontsConfig  `toml:"fonts"`
	Cache  CacheConfig  `toml:"cache"`
}

// ServerConfig controls the SSE and HTTP transports.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LayoutConfig tunes the free-mode selection thresholds.
type LayoutConfig struct {
	CenterMaxNodes int `toml:"center_max_nodes"`
	CenterMaxDepth int `toml:"center_max_depth"`
}

// RenderConfig tunes canvas sizing and typography.
type RenderConfig struct {
	BaseFontSize float64 `toml:"base_font_size"`
	MinFontSize  float64 `toml:"min_font_size"`
	MaxImageDim  int     `toml:"max_image_dim"`
	MarginBase   float64 `toml:"margin_base"`
}

// FontsConfig controls CJK font resolution.
type FontsConfig struct {
	// CJKCandidates lists font filenames tried in order.
	CJKCandidates []string `toml:"cjk_candidates"`
	// Dirs lists extra directories searched before system font paths.
	Dirs []string `toml:"dirs"`
}

// CacheConfig controls the on-disk render cache. Rendering is deterministic,
// so cached images never go stale; the TTL only bounds disk usage.
type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	Dir      string `toml:"dir"`
	TTLHours int    `toml:"ttl_hours"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8899},
		Layout: LayoutConfig{CenterMaxNodes: 50, CenterMaxDepth: 4},
		Render: RenderConfig{
			BaseFontSize: 42,
			MinFontSize:  24,
			MaxImageDim:  4096,
			MarginBase:   150,
		},
		Cache: CacheConfig{TTLHours: 24 * 7},
	}
}

// Load reads configuration from path, layered on the defaults and then the
// environment. An empty path or missing file is not an error: defaults and
// environment overrides still apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.Server.Host = envOr("MINDMAP_HOST", cfg.Server.Host)
	cfg.Server.Port = envInt("MINDMAP_PORT", cfg.Server.Port)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges after all layers are applied.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Layout.CenterMaxNodes <= 0 {
		return fmt.Errorf("center_max_nodes must be positive")
	}
	if c.Layout.CenterMaxDepth <= 0 {
		return fmt.Errorf("center_max_depth must be positive")
	}
	if c.Render.MinFontSize > c.Render.BaseFontSize {
		return fmt.Errorf("min_font_size %v exceeds base_font_size %v", c.Render.MinFontSize, c.Render.BaseFontSize)
	}
	if c.Render.MaxImageDim < 256 {
		return fmt.Errorf("max_image_dim must be at least 256")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
