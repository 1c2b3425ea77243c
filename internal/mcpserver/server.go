package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Draichi/canvas-ui/internal/bookmark"
	"github.com/Draichi/canvas-ui/internal/engine"
	"github.com/Draichi/canvas-ui/internal/live"
)

// Server exposes one canvas to MCP clients. Every tool is a toolbar button
// or pointer gesture applied to the same live session a renderer would use.
type Server struct {
	mcp     *server.MCPServer
	session *live.Session
}

// New loads the canvas's working state from svc and registers the tools.
func New(ctx context.Context, canvasID string, svc *bookmark.Service, opts ...engine.Option) *Server {
	s := &Server{
		session: live.NewSession(ctx, canvasID, svc, opts...),
	}

	s.mcp = server.NewMCPServer(
		"canvas-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerToolbarTools()
	s.registerPointerTools()
	s.registerBookmarkTools()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	slog.Info("starting mcp stdio server", "canvas", s.session.CanvasID())
	return server.ServeStdio(s.mcp)
}

// Flush writes pending drag moves to the working state.
func (s *Server) Flush(ctx context.Context) error {
	return s.session.Flush(ctx)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func stringArg(args map[string]any, name string) (string, error) {
	v, _ := args[name].(string)
	if v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

func numberArg(args map[string]any, name string) (float64, error) {
	v, ok := args[name].(float64)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

// optionalNumber returns args[name] or def when the argument is absent.
func optionalNumber(args map[string]any, name string, def float64) float64 {
	if v, ok := args[name].(float64); ok {
		return v
	}
	return def
}
