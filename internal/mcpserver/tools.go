package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Draichi/canvas-ui/internal/document"
	"github.com/Draichi/canvas-ui/internal/engine"
)

func (s *Server) registerToolbarTools() {
	toolbar := []struct {
		name, cmd, description string
	}{
		{"add_circle", engine.CmdAddCircle, "Add a circle at a random point of the visible area"},
		{"add_rectangle", engine.CmdAddRectangle, "Add a square at a random point of the visible area"},
		{"zoom_in", engine.CmdZoomIn, "Zoom in one step (max 3x)"},
		{"zoom_out", engine.CmdZoomOut, "Zoom out one step (min 1x)"},
		{"toggle_pan", engine.CmdTogglePan, "Toggle pan mode. Shapes cannot be dragged while panning"},
		{"clear_canvas", engine.CmdClearCanvas, "Remove all shapes and arrows and reset the viewport"},
		{"bookmark_state", engine.CmdBookmarkAppState, "Save the current canvas as a new bookmark"},
		{"toggle_connect_mode", engine.CmdToggleConnectMode, "Toggle connect mode. Clicking two shapes in connect mode links them with an arrow"},
	}
	for _, t := range toolbar {
		s.mcp.AddTool(mcp.NewTool(t.name, mcp.WithDescription(t.description)), s.execHandler(t.cmd))
	}

	s.mcp.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the shapes, arrows, viewport and interaction state of the canvas"),
	), s.handleGetState)
}

func (s *Server) registerPointerTools() {
	s.mcp.AddTool(mcp.NewTool("click_shape",
		mcp.WithDescription("Press on a shape: selects it, or starts/completes a connection in connect mode"),
		mcp.WithString("shapeId", mcp.Description("Shape ID"), mcp.Required()),
	), s.handleClickShape)

	s.mcp.AddTool(mcp.NewTool("click_background",
		mcp.WithDescription("Press on the empty canvas: clears the selection or pending connection"),
	), s.handleClickBackground)

	s.mcp.AddTool(mcp.NewTool("move_shape",
		mcp.WithDescription("Drag a shape to a new center position in canvas coordinates"),
		mcp.WithString("shapeId", mcp.Description("Shape ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveShape)

	s.mcp.AddTool(mcp.NewTool("transform_shape",
		mcp.WithDescription("Set a shape's position, scale and rotation"),
		mcp.WithString("shapeId", mcp.Description("Shape ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("X position (optional, keeps current)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, keeps current)")),
		mcp.WithNumber("scaleX", mcp.Description("Horizontal scale (optional, keeps current)")),
		mcp.WithNumber("scaleY", mcp.Description("Vertical scale (optional, keeps current)")),
		mcp.WithNumber("rotation", mcp.Description("Rotation in degrees (optional, keeps current)")),
	), s.handleTransformShape)

	s.mcp.AddTool(mcp.NewTool("delete_arrow",
		mcp.WithDescription("Remove an arrow by ID"),
		mcp.WithString("arrowId", mcp.Description("Arrow ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteArrow)

	s.mcp.AddTool(mcp.NewTool("delete_shape",
		mcp.WithDescription("Remove a shape by ID. Arrows attached to it stay but are no longer drawn"),
		mcp.WithString("shapeId", mcp.Description("Shape ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteShape)
}

func (s *Server) registerBookmarkTools() {
	s.mcp.AddTool(mcp.NewTool("list_bookmarks",
		mcp.WithDescription("List saved bookmarks, oldest first"),
	), s.handleListBookmarks)

	s.mcp.AddTool(mcp.NewTool("load_bookmark",
		mcp.WithDescription("Replace the canvas with a saved bookmark"),
		mcp.WithString("bookmarkId", mcp.Description("Bookmark ID"), mcp.Required()),
	), s.handleLoadBookmark)

	s.mcp.AddTool(mcp.NewTool("delete_bookmark",
		mcp.WithDescription("Delete a saved bookmark"),
		mcp.WithString("bookmarkId", mcp.Description("Bookmark ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBookmark)
}

func boolPtr(b bool) *bool { return &b }

// ── Handlers ──────────────────────────────────────────────

func (s *Server) execHandler(cmd string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var created string
		err := s.session.Do(func(e *engine.Engine) error {
			var err error
			created, err = e.Exec(ctx, cmd)
			return err
		})
		if err != nil {
			return nil, err
		}
		if created != "" {
			return textResult(fmt.Sprintf("%s: created %s", cmd, created)), nil
		}
		return textResult(cmd + ": done"), nil
	}
}

func (s *Server) handleGetState(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.View())
}

func (s *Server) handleClickShape(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := stringArg(req.GetArguments(), "shapeId")
	if err != nil {
		return nil, err
	}

	var (
		arrow     document.Arrow
		connected bool
		view      engine.View
	)
	err = s.session.Do(func(e *engine.Engine) error {
		if _, ok := e.Scene().Shape(id); !ok {
			return fmt.Errorf("shape %s not found", id)
		}
		arrow, connected = e.PointerDown(id)
		view = e.State()
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case connected:
		return textResult(fmt.Sprintf("Connected %s to %s with arrow %s", arrow.From, arrow.To, arrow.ID)), nil
	case view.Notification != "":
		return textResult(view.Notification), nil
	default:
		return textResult(fmt.Sprintf("Selected %s", id)), nil
	}
}

func (s *Server) handleClickBackground(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.session.Do(func(e *engine.Engine) error {
		e.PointerDown("")
		return nil
	})
	return textResult("Selection cleared"), nil
}

func (s *Server) handleMoveShape(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := stringArg(args, "shapeId")
	if err != nil {
		return nil, err
	}
	x, err := numberArg(args, "x")
	if err != nil {
		return nil, err
	}
	y, err := numberArg(args, "y")
	if err != nil {
		return nil, err
	}

	err = s.session.Do(func(e *engine.Engine) error {
		if !e.DragStart(id) {
			return fmt.Errorf("cannot drag %s: shape missing or pan mode is on", id)
		}
		e.DragMove(id, x, y)
		e.DragEnd()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Shape %s moved to (%.1f, %.1f)", id, x, y)), nil
}

func (s *Server) handleTransformShape(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := stringArg(args, "shapeId")
	if err != nil {
		return nil, err
	}

	var t document.Transform
	err = s.session.Do(func(e *engine.Engine) error {
		shape, ok := e.Scene().Shape(id)
		if !ok {
			return fmt.Errorf("shape %s not found", id)
		}
		cur := shape.Transform()
		t = document.Transform{
			X:        optionalNumber(args, "x", cur.X),
			Y:        optionalNumber(args, "y", cur.Y),
			ScaleX:   optionalNumber(args, "scaleX", cur.ScaleX),
			ScaleY:   optionalNumber(args, "scaleY", cur.ScaleY),
			Rotation: optionalNumber(args, "rotation", cur.Rotation),
		}
		if !e.TransformEnd(id, t) {
			return fmt.Errorf("cannot transform %s while pan mode is on", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(t)
}

func (s *Server) handleDeleteArrow(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := stringArg(req.GetArguments(), "arrowId")
	if err != nil {
		return nil, err
	}
	var deleted bool
	s.session.Do(func(e *engine.Engine) error {
		deleted = e.DeleteArrow(id)
		return nil
	})
	if !deleted {
		return nil, fmt.Errorf("arrow %s not found", id)
	}
	return textResult(fmt.Sprintf("Arrow %s deleted", id)), nil
}

func (s *Server) handleDeleteShape(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := stringArg(req.GetArguments(), "shapeId")
	if err != nil {
		return nil, err
	}
	var deleted bool
	s.session.Do(func(e *engine.Engine) error {
		deleted = e.DeleteShape(id)
		return nil
	})
	if !deleted {
		return nil, fmt.Errorf("shape %s not found", id)
	}
	return textResult(fmt.Sprintf("Shape %s deleted", id)), nil
}

func (s *Server) handleListBookmarks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.session.Bookmarks().ListBookmarks(ctx)
	if err != nil {
		return nil, err
	}

	type summary struct {
		ID     string  `json:"id"`
		Shapes int     `json:"shapes"`
		Arrows int     `json:"arrows"`
		Scale  float64 `json:"scale"`
	}
	out := make([]summary, 0, len(list))
	for _, b := range list {
		out = append(out, summary{
			ID:     b.ID,
			Shapes: len(b.State.Shapes),
			Arrows: len(b.State.Arrows),
			Scale:  b.State.Scale,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleLoadBookmark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := stringArg(req.GetArguments(), "bookmarkId")
	if err != nil {
		return nil, err
	}
	err = s.session.Do(func(e *engine.Engine) error {
		return e.LoadBookmark(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Bookmark %s loaded", id)), nil
}

func (s *Server) handleDeleteBookmark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := stringArg(req.GetArguments(), "bookmarkId")
	if err != nil {
		return nil, err
	}
	if err := s.session.Bookmarks().DeleteBookmark(ctx, id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Bookmark %s deleted", id)), nil
}
