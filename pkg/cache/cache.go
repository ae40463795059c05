// Package cache provides content-addressed caching for rendered mind maps.
//
// Rendering is deterministic: the same outline, layout mode, and tuning
// always produce the same PNG. That makes cached results safe to reuse for
// as long as the caller wants. Keys hash every input that affects the
// rendered bytes; a tuning change therefore never serves a stale image.
//
// Two implementations are provided: FileCache for persistent on-disk storage
// and NullCache to disable caching without branching at call sites.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores rendered results keyed by content hash.
type Cache interface {
	// Get returns the cached data for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key from the cache. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// ImageKeyOpts captures every tunable that affects the rendered image.
// Two runs with equal markdown and equal opts produce identical PNGs.
type ImageKeyOpts struct {
	Layout         string  `json:"layout"`
	CenterMaxNodes int     `json:"center_max_nodes,omitempty"`
	CenterMaxDepth int     `json:"center_max_depth,omitempty"`
	BaseFontSize   float64 `json:"base_font_size,omitempty"`
	MinFontSize    float64 `json:"min_font_size,omitempty"`
	MaxImageDim    int     `json:"max_image_dim,omitempty"`
	MarginBase     float64 `json:"margin_base,omitempty"`
}

// ImageKey generates the cache key for a render request.
// The markdown itself is hashed first so keys stay short regardless of
// document size.
func ImageKey(markdown string, opts ImageKeyOpts) string {
	return hashKey("img", Hash([]byte(markdown)), opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// NullCache is a no-op cache that never stores anything.
// Useful for testing or when caching should be disabled.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
