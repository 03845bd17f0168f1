// Package mcpserver exposes a tool registry over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"

	"bookcatalog/internal/tools"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	Name    = "Books MCP Server"
	Version = "1.0.0"
)

// New builds an MCP server with every tool in registry.
func New(registry *tools.Registry, logger *log.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, t := range registry.All() {
		s.AddTool(Definition(t), Handler(t, logger))
	}
	return s
}

// Definition converts a tool into its MCP description. Every hint is set
// explicitly; MCP hosts assume destructive when the hint is absent.
func Definition(t tools.Tool) mcp.Tool {
	def := mcp.NewToolWithRawSchema(t.Name(), t.Description(), t.Schema())

	a := t.Annotations()
	def.Annotations = mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(a.ReadOnly),
		DestructiveHint: mcp.ToBoolPtr(a.Destructive),
		IdempotentHint:  mcp.ToBoolPtr(a.Idempotent),
		OpenWorldHint:   mcp.ToBoolPtr(false),
	}
	return def
}

// Handler adapts a tool to an MCP handler. Tool failures are reported as
// error results so the model can see them.
func Handler(t tools.Tool, logger *log.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
		}

		out, err := t.Execute(ctx, args)
		if err != nil {
			logger.Debug("tool failed", "tool", t.Name(), "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
