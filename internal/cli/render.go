package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindmap/internal/config"
	"github.com/matzehuels/mindmap/pkg/layout"
	"github.com/matzehuels/mindmap/pkg/pipeline"
	"github.com/matzehuels/mindmap/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output string // output PNG path; derived from the input name when empty
	layout string // layout mode: free (default), center, horizontal
}

// newRenderCmd creates the render command for one-shot image generation.
// It reads a Markdown outline from a file (or stdin with "-") and writes a
// PNG next to it unless --output says otherwise.
func newRenderCmd(configPath *string) *cobra.Command {
	opts := renderOpts{layout: "free"}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a Markdown outline to a mind map PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := layout.ParseMode(opts.layout); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], *configPath, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with .png)")
	cmd.Flags().StringVarP(&opts.layout, "layout", "l", opts.layout, "layout mode: free (default), center, horizontal")

	return cmd
}

func runRender(ctx context.Context, input, configPath string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	markdown, err := readInput(input)
	if err != nil {
		return err
	}

	p := newProgress(logger)
	runner, err := newRunner(cfg, logger)
	if err != nil {
		return err
	}
	result, err := runner.Execute(ctx, pipeline.Options{
		Markdown:      markdown,
		Layout:        opts.layout,
		LayoutConfig:  layout.Config{CenterMaxNodes: cfg.Layout.CenterMaxNodes, CenterMaxDepth: cfg.Layout.CenterMaxDepth},
		RenderOptions: render.Options{MarginBase: cfg.Render.MarginBase, MaxDim: cfg.Render.MaxImageDim},
	})
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = derivedOutput(input)
	}
	if err := os.WriteFile(output, result.PNG, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	p.done(fmt.Sprintf("Rendered %d nodes as %s map to %s", result.Stats.NodeCount, result.Mode, output))
	return nil
}

// readInput reads the outline from a file, or stdin when input is "-".
func readInput(input string) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", input, err)
	}
	return string(data), nil
}

// derivedOutput swaps the input extension for .png ("plan.md" -> "plan.png").
// Stdin input writes to mindmap.png in the working directory.
func derivedOutput(input string) string {
	if input == "-" {
		return "mindmap.png"
	}
	if i := strings.LastIndex(input, "."); i > 0 {
		return input[:i] + ".png"
	}
	return input + ".png"
}
