package live

import (
	"encoding/json"

	"github.com/Draichi/canvas-ui/internal/bookmark"
	"github.com/Draichi/canvas-ui/internal/document"
	"github.com/Draichi/canvas-ui/internal/engine"
)

// Message is the envelope for every websocket frame in both directions.
// Seq is chosen by the renderer and echoed on replies.
type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Renderer -> server
	TypeCommand        = "command"
	TypePointerDown    = "pointer.down"
	TypePointerDownAt  = "pointer.downAt"
	TypeDragStart      = "drag.start"
	TypeDragMove       = "drag.move"
	TypeDragEnd        = "drag.end"
	TypeTransformEnd   = "transform.end"
	TypePanEnd         = "pan.end"
	TypeScreenResize   = "screen.resize"
	TypeBookmarkLoad   = "bookmark.load"
	TypeBookmarkDelete = "bookmark.delete"
	TypeBookmarkList   = "bookmark.list"

	// Server -> renderer
	TypeState     = "state"
	TypePatch     = "patch"
	TypeBookmarks = "bookmarks"
	TypeError     = "error"
)

// CommandPayload names a toolbar command (engine.Cmd*).
type CommandPayload struct {
	Name string `json:"name"`
}

// ShapePayload targets one shape. An empty ShapeID on pointer.down is a
// press on the background.
type ShapePayload struct {
	ShapeID string `json:"shapeId"`
}

// PointPayload is a screen position for pointer.downAt.
type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DragPayload is one drag.move tick in scene coordinates.
type DragPayload struct {
	ShapeID string  `json:"shapeId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// TransformPayload carries the result of a transformer gesture.
type TransformPayload struct {
	ShapeID   string             `json:"shapeId"`
	Transform document.Transform `json:"transform"`
}

// PanPayload is the stage position at the end of a stage drag.
type PanPayload struct {
	StagePos document.Point `json:"stagePos"`
}

type ScreenPayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type BookmarkPayload struct {
	ID string `json:"id"`
}

// StatePayload is a full frame: the view plus the draw commands for it.
type StatePayload struct {
	engine.View
	Commands []engine.DrawCommand `json:"commands"`
	// Created is the id a command produced, if any.
	Created string `json:"created,omitempty"`
}

// PatchPayload replaces commands of the last state frame by ObjectID. It
// answers drag.move so a drag tick does not resend the whole canvas.
type PatchPayload struct {
	Commands []engine.DrawCommand `json:"commands"`
}

type BookmarksPayload struct {
	Bookmarks []bookmark.Bookmark `json:"bookmarks"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(msgType string, seq int64, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: msgType, Seq: seq, Payload: data}
}
