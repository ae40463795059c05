// Package mcp implements a Model Context Protocol (MCP) server using the
// mcp-go library.
//
// The server exposes three tools that convert a Markdown outline into a
// rendered mind map image: create_center_mindmap, create_horizontal_mindmap,
// and create_free_mindmap. All three share one pipeline; they differ only in
// the layout mode passed through. The server speaks stdio by default and can
// also be mounted over SSE or streamable HTTP (see http.go).
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/matzehuels/mindmap/internal/config"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/layout"
	"github.com/matzehuels/mindmap/pkg/pipeline"
	"github.com/matzehuels/mindmap/pkg/render"
)

// Server wraps an MCP server around the render pipeline.
type Server struct {
	cfg       config.Config
	logger    *log.Logger
	runner    *pipeline.Runner
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server with all mind map tools registered.
func NewServer(cfg config.Config, runner *pipeline.Runner, logger *log.Logger, version string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	mcpServer := server.NewMCPServer(
		"mindmap",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		runner:    runner,
		mcpServer: mcpServer,
	}
	s.setupTools()
	return s
}

// MCPServer exposes the underlying server for transport wiring.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) setupTools() {
	tools := []struct {
		name        string
		layout      string
		description string
	}{
		{
			name:   "create_center_mindmap",
			layout: "center",
			description: "Create a mind map image with the root topic in the center and " +
				"branches radiating outward. Best for balanced outlines with a clear central theme.",
		},
		{
			name:   "create_horizontal_mindmap",
			layout: "horizontal",
			description: "Create a mind map image that grows left to right, root on the left " +
				"and deeper levels in columns. Best for deep or list-heavy outlines.",
		},
		{
			name:   "create_free_mindmap",
			layout: "free",
			description: "Create a mind map image, automatically choosing between the center " +
				"and horizontal layouts based on the outline's size and depth.",
		},
	}

	for _, t := range tools {
		tool := mcp.NewTool(t.name,
			mcp.WithDescription(t.description),
			mcp.WithString("markdown_content",
				mcp.Required(),
				mcp.Description("Markdown outline to visualize. Headings (#, ##, ...) and "+
					"nested list items (-, *, 1.) become nodes of the mind map."),
			),
		)
		s.mcpServer.AddTool(tool, s.createHandler(t.layout))
	}
}

// toolMetadata is the machine-readable summary returned alongside the image.
type toolMetadata struct {
	Layout      string `json:"layout"`
	NodeCount   int    `json:"node_count"`
	TreeDepth   int    `json:"tree_depth"`
	ImageWidth  int    `json:"image_width"`
	ImageHeight int    `json:"image_height"`
	ImageBytes  int    `json:"image_bytes"`
}

// createHandler returns the tool handler for one layout mode. All tools share
// the same flow: extract the outline, run the pipeline, return the image.
func (s *Server) createHandler(layoutMode string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		markdown, err := request.RequireString("markdown_content")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing or invalid 'markdown_content' parameter: %v", err)), nil
		}

		result, err := s.runner.Execute(ctx, pipeline.Options{
			Markdown:      markdown,
			Layout:        layoutMode,
			LayoutConfig:  layoutConfigFrom(s.cfg),
			RenderOptions: renderOptionsFrom(s.cfg),
		})
		if err != nil {
			s.logger.Error("tool call failed", "layout", layoutMode, "error", err)
			return mcp.NewToolResultError(errors.UserMessage(err)), nil
		}

		meta := toolMetadata{
			Layout:      result.Mode.String(),
			NodeCount:   result.Stats.NodeCount,
			TreeDepth:   result.Stats.TreeDepth,
			ImageWidth:  result.Stats.ImageWidth,
			ImageHeight: result.Stats.ImageHeight,
			ImageBytes:  len(result.PNG),
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode metadata: %v", err)), nil
		}

		summary := fmt.Sprintf("Generated a %s mind map with %d nodes (depth %d), %dx%d px.",
			meta.Layout, meta.NodeCount, meta.TreeDepth, meta.ImageWidth, meta.ImageHeight)

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{Type: "text", Text: summary},
				mcp.ImageContent{
					Type:     "image",
					Data:     render.EncodeBase64(result.PNG),
					MIMEType: render.MIMEType,
				},
				mcp.TextContent{Type: "text", Text: string(metaJSON)},
			},
		}, nil
	}
}

// layoutConfigFrom maps the loaded configuration onto layout tuning.
func layoutConfigFrom(cfg config.Config) layout.Config {
	return layout.Config{
		CenterMaxNodes: cfg.Layout.CenterMaxNodes,
		CenterMaxDepth: cfg.Layout.CenterMaxDepth,
	}
}

// renderOptionsFrom maps the loaded configuration onto canvas options.
func renderOptionsFrom(cfg config.Config) render.Options {
	return render.Options{
		MarginBase: cfg.Render.MarginBase,
		MaxDim:     cfg.Render.MaxImageDim,
	}
}

// ServeStdio runs the server over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}
