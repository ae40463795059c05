package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func TestDerivedOutput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plan.md", "plan.png"},
		{"notes.markdown", "notes.png"},
		{"noext", "noext.png"},
		{"dir/plan.md", "dir/plan.png"},
		{"-", "mindmap.png"},
	}
	for _, tt := range tests {
		if got := derivedOutput(tt.input); got != tt.want {
			t.Errorf("derivedOutput(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReadInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.md")
	if err := os.WriteFile(path, []byte("# Root\n- A"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := readInput(path)
	if err != nil {
		t.Fatalf("readInput: %v", err)
	}
	if got != "# Root\n- A" {
		t.Errorf("readInput = %q", got)
	}
}

func TestReadInputMissingFile(t *testing.T) {
	if _, err := readInput(filepath.Join(t.TempDir(), "nope.md")); err == nil {
		t.Error("missing file should error")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plan.md")
	if err := os.WriteFile(input, []byte("# Plan\n- Research\n- Build"), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.png")

	configPath := ""
	cmd := newRenderCmd(&configPath)
	cmd.SetArgs([]string{input, "--output", output, "--layout", "center"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render command: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, pngSignature) {
		t.Error("output is not a PNG")
	}
}

func TestRenderCommandDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plan.md")
	if err := os.WriteFile(input, []byte("# Plan\n- A"), 0o644); err != nil {
		t.Fatal(err)
	}

	configPath := ""
	cmd := newRenderCmd(&configPath)
	cmd.SetArgs([]string{input})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render command: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "plan.png")); err != nil {
		t.Errorf("derived output missing: %v", err)
	}
}

func TestRenderCommandBadLayout(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plan.md")
	if err := os.WriteFile(input, []byte("# Plan"), 0o644); err != nil {
		t.Fatal(err)
	}

	configPath := ""
	cmd := newRenderCmd(&configPath)
	cmd.SetArgs([]string{input, "--layout", "spiral"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("unknown layout should error")
	}
}
