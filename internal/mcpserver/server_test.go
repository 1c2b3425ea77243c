package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Draichi/canvas-ui/internal/bookmark"
	"github.com/Draichi/canvas-ui/internal/engine"
	"github.com/Draichi/canvas-ui/internal/scene"
	"github.com/Draichi/canvas-ui/internal/storage"
	"github.com/Draichi/canvas-ui/internal/typeid"
)

func newTestServer(t *testing.T) (*Server, *bookmark.Service) {
	t.Helper()
	svc := bookmark.ForCanvas(storage.NewMemory(), "mcp", bookmark.WithIDs(typeid.Sequence("bm")))
	sc := scene.New(
		scene.WithShapeIDs(typeid.Sequence("shape")),
		scene.WithArrowIDs(typeid.Sequence("arrow")),
	)
	s := New(context.Background(), "mcp", svc,
		engine.WithScene(sc),
		engine.WithRand(rand.New(rand.NewPCG(3, 4))),
	)
	return s, svc
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// textOf returns a reader for a tool result's single text item, so a
// handler call can be passed straight in.
func textOf(t *testing.T) func(*mcp.CallToolResult, error) string {
	t.Helper()
	return func(res *mcp.CallToolResult, err error) string {
		t.Helper()
		if err != nil {
			t.Fatalf("tool error: %v", err)
		}
		if len(res.Content) != 1 {
			t.Fatalf("expected one content item, got %d", len(res.Content))
		}
		tc, ok := res.Content[0].(mcp.TextContent)
		if !ok {
			t.Fatalf("expected text content, got %T", res.Content[0])
		}
		return tc.Text
	}
}

func TestToolbarToolsAndConnect(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestServer(t)

	got := textOf(t)(s.execHandler(engine.CmdAddCircle)(ctx, call(nil)))
	if !strings.Contains(got, "shape_1") {
		t.Errorf("expected created id in %q", got)
	}
	s.execHandler(engine.CmdAddRectangle)(ctx, call(nil))
	s.execHandler(engine.CmdToggleConnectMode)(ctx, call(nil))

	got = textOf(t)(s.handleClickShape(ctx, call(map[string]any{"shapeId": "shape_1"})))
	if got != "Connecting from shape_1. Click another shape to connect." {
		t.Errorf("unexpected reply %q", got)
	}
	got = textOf(t)(s.handleClickShape(ctx, call(map[string]any{"shapeId": "shape_2"})))
	if got != "Connected shape_1 to shape_2 with arrow arrow_1" {
		t.Errorf("unexpected reply %q", got)
	}

	var view engine.View
	if err := json.Unmarshal([]byte(textOf(t)(s.handleGetState(ctx, call(nil)))), &view); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(view.Shapes) != 2 || len(view.Arrows) != 1 || !view.ConnectMode {
		t.Errorf("unexpected view: %d shapes, %d arrows, connect=%v", len(view.Shapes), len(view.Arrows), view.ConnectMode)
	}
}

func TestClickUnknownShape(t *testing.T) {
	s, _ := newTestServer(t)
	if _, err := s.handleClickShape(context.Background(), call(map[string]any{"shapeId": "shape_9"})); err == nil {
		t.Error("expected error for unknown shape")
	}
	if _, err := s.handleClickShape(context.Background(), call(nil)); err == nil {
		t.Error("expected error for missing shapeId")
	}
}

func TestMoveAndTransformShape(t *testing.T) {
	ctx := context.Background()
	s, svc := newTestServer(t)
	s.execHandler(engine.CmdAddCircle)(ctx, call(nil))

	textOf(t)(s.handleMoveShape(ctx, call(map[string]any{"shapeId": "shape_1", "x": 10.0, "y": 20.0})))

	// The drag ended, so the move is in the working state already.
	saved := svc.LoadWorkingState(ctx)
	if saved.Shapes[0].X != 10 || saved.Shapes[0].Y != 20 || saved.Shapes[0].IsDragging {
		t.Errorf("unexpected saved shape %+v", saved.Shapes[0])
	}

	textOf(t)(s.handleTransformShape(ctx, call(map[string]any{"shapeId": "shape_1", "scaleX": 2.0, "rotation": 45.0})))
	shape := s.session.View().Shapes[0]
	if shape.X != 10 || shape.Y != 20 || shape.ScaleX != 2 || shape.ScaleY != 1 || shape.Rotation != 45 {
		t.Errorf("unexpected transform %+v", shape)
	}

	s.execHandler(engine.CmdTogglePan)(ctx, call(nil))
	if _, err := s.handleMoveShape(ctx, call(map[string]any{"shapeId": "shape_1", "x": 0.0, "y": 0.0})); err == nil {
		t.Error("expected move to fail in pan mode")
	}
	if _, err := s.handleMoveShape(ctx, call(map[string]any{"shapeId": "shape_1", "x": "left", "y": 0.0})); err == nil {
		t.Error("expected error for non-numeric x")
	}
}

func TestDeleteTools(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestServer(t)
	s.execHandler(engine.CmdAddCircle)(ctx, call(nil))
	s.execHandler(engine.CmdAddCircle)(ctx, call(nil))
	s.execHandler(engine.CmdToggleConnectMode)(ctx, call(nil))
	s.handleClickShape(ctx, call(map[string]any{"shapeId": "shape_1"}))
	s.handleClickShape(ctx, call(map[string]any{"shapeId": "shape_2"}))

	textOf(t)(s.handleDeleteShape(ctx, call(map[string]any{"shapeId": "shape_1"})))
	if n := len(s.session.View().Arrows); n != 1 {
		t.Errorf("deleting a shape should keep its arrows, got %d", n)
	}
	textOf(t)(s.handleDeleteArrow(ctx, call(map[string]any{"arrowId": "arrow_1"})))
	if _, err := s.handleDeleteArrow(ctx, call(map[string]any{"arrowId": "arrow_1"})); err == nil {
		t.Error("expected error deleting a missing arrow")
	}
	if _, err := s.handleDeleteShape(ctx, call(map[string]any{"shapeId": "shape_1"})); err == nil {
		t.Error("expected error deleting a missing shape")
	}
}

func TestBookmarkTools(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestServer(t)
	s.execHandler(engine.CmdAddCircle)(ctx, call(nil))

	got := textOf(t)(s.execHandler(engine.CmdBookmarkAppState)(ctx, call(nil)))
	if !strings.Contains(got, "bm_1") {
		t.Fatalf("expected bookmark id in %q", got)
	}

	s.execHandler(engine.CmdClearCanvas)(ctx, call(nil))
	textOf(t)(s.handleLoadBookmark(ctx, call(map[string]any{"bookmarkId": "bm_1"})))
	if n := len(s.session.View().Shapes); n != 1 {
		t.Errorf("expected 1 shape after load, got %d", n)
	}

	var list []struct {
		ID     string `json:"id"`
		Shapes int    `json:"shapes"`
	}
	json.Unmarshal([]byte(textOf(t)(s.handleListBookmarks(ctx, call(nil)))), &list)
	if len(list) != 1 || list[0].ID != "bm_1" || list[0].Shapes != 1 {
		t.Errorf("unexpected bookmark list %+v", list)
	}

	textOf(t)(s.handleDeleteBookmark(ctx, call(map[string]any{"bookmarkId": "bm_1"})))
	_, err := s.handleLoadBookmark(ctx, call(map[string]any{"bookmarkId": "bm_1"}))
	if !errors.Is(err, bookmark.ErrBookmarkNotFound) {
		t.Errorf("expected ErrBookmarkNotFound, got %v", err)
	}
}
