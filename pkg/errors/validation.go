package errors

import (
	"strings"
	"unicode/utf8"
)

// MaxMarkdownBytes bounds accepted outline documents. Anything larger is
// rejected before parsing so a single request cannot exhaust memory.
const MaxMarkdownBytes = 1 << 20 // 1 MiB

// ValidateMarkdown validates an outline document before it enters the
// pipeline. Whitespace-only input counts as empty.
func ValidateMarkdown(markdown string) error {
	if strings.TrimSpace(markdown) == "" {
		return New(ErrCodeEmptyMarkdown, "markdown content cannot be empty")
	}
	if len(markdown) > MaxMarkdownBytes {
		return New(ErrCodeMarkdownTooLong, "markdown content too large (max %d bytes)", MaxMarkdownBytes)
	}
	if !utf8.ValidString(markdown) {
		return New(ErrCodeInvalidInput, "markdown content is not valid UTF-8")
	}
	if strings.ContainsRune(markdown, '\x00') {
		return New(ErrCodeInvalidInput, "markdown content contains null bytes")
	}
	return nil
}

// ValidLayouts is the set of accepted layout mode names. The empty string is
// also accepted by the pipeline and means free mode.
var ValidLayouts = map[string]bool{
	"free":       true,
	"center":     true,
	"horizontal": true,
}

// ValidateLayout checks that a layout mode name is valid.
func ValidateLayout(layout string) error {
	if layout == "" || ValidLayouts[layout] {
		return nil
	}
	return New(ErrCodeInvalidLayout, "invalid layout: %q (must be one of: free, center, horizontal)", layout)
}
