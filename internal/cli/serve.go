package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindmap/internal/config"
	"github.com/matzehuels/mindmap/internal/mcp"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	host string // listen host for the network transports
	port int    // listen port for the network transports
}

// newServeCmd creates the serve command for running the MCP server.
//
// Transports:
//   - stdio (default): JSON-RPC over stdin/stdout, for local MCP clients
//   - sse: HTTP server with the SSE transport
//   - http: HTTP server with the streamable transport plus the REST API
func newServeCmd(configPath *string) *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:       "serve [stdio|sse|http]",
		Short:     "Run the MCP mind map server",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"stdio", "sse", "http"},
		RunE: func(cmd *cobra.Command, args []string) error {
			transport := "stdio"
			if len(args) == 1 {
				transport = args[0]
			}
			return runServe(cmd, transport, *configPath, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "listen port (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, transport, configPath string, opts *serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	runner, err := newRunner(cfg, logger)
	if err != nil {
		return err
	}
	srv := mcp.NewServer(cfg, runner, logger, Version())

	switch transport {
	case "stdio":
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, cfg.Server.Addr())
	case "http":
		return srv.ServeHTTP(ctx, cfg.Server.Addr())
	default:
		return fmt.Errorf("unknown transport: %q (must be stdio, sse, or http)", transport)
	}
}
