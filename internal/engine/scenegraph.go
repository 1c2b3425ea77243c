package engine

import "github.com/Draichi/canvas-ui/internal/document"

// SceneGraph is the render-ready state of the canvas. It is retained between
// frames: drags update single nodes, structural changes rebuild it.
type SceneGraph struct {
	Nodes     []*SceneNode // painter order, back to front
	NodesById map[string]*SceneNode
	Arrows    []*ArrowNode

	// shape id -> arrows attached to it, for refreshing on drag
	arrowsByShape map[string][]*ArrowNode
}

// SceneNode is a resolved shape ready for rendering and hit testing.
type SceneNode struct {
	ID       string
	Type     document.ShapeType
	Dragging bool

	WorldTransform Matrix2D // local -> scene
	inverse        Matrix2D // scene -> local
	invertible     bool

	Bounds Rect // axis-aligned bounding box in scene space
}

// ArrowNode is an arrow with both endpoints resolved. Arrows whose shapes
// are missing never get a node.
type ArrowNode struct {
	ID       string
	From, To string
	Segment  Segment
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{
		NodesById:     make(map[string]*SceneNode),
		arrowsByShape: make(map[string][]*ArrowNode),
	}
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// SetDragging mirrors the scene's dragging flags onto the nodes.
func (sg *SceneGraph) SetDragging(id string) {
	for _, node := range sg.Nodes {
		node.Dragging = node.ID == id
	}
}

// HitTest returns the ID of the topmost shape containing the scene point,
// or empty string for the background.
func HitTest(sg *SceneGraph, x, y float64) string {
	if sg == nil {
		return ""
	}

	// Front to back: later shapes are drawn on top.
	for i := len(sg.Nodes) - 1; i >= 0; i-- {
		node := sg.Nodes[i]
		if !node.invertible || !node.Bounds.Contains(x, y) {
			continue
		}
		lx, ly := node.inverse.TransformPoint(x, y)
		if containsLocal(node.Type, lx, ly) {
			return node.ID
		}
	}
	return ""
}

// SelectionBounds returns the bounding box of one shape, or an empty rect.
func (sg *SceneGraph) SelectionBounds(id string) Rect {
	if node, ok := sg.NodesById[id]; ok {
		return node.Bounds
	}
	return Rect{}
}

// ContentBounds returns the union of all shape bounds.
func (sg *SceneGraph) ContentBounds() Rect {
	var r Rect
	for _, node := range sg.Nodes {
		r = r.Union(node.Bounds)
	}
	return r
}
