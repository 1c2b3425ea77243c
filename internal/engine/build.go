package engine

import (
	"github.com/Draichi/canvas-ui/internal/document"
	"github.com/Draichi/canvas-ui/internal/scene"
)

// BuildSceneGraph resolves every shape and every live arrow of sc.
func BuildSceneGraph(sc *scene.Scene) *SceneGraph {
	sg := NewSceneGraph()

	for _, shape := range sc.Shapes() {
		node := &SceneNode{ID: shape.ID, Type: shape.Type}
		node.update(shape)
		sg.Nodes = append(sg.Nodes, node)
		sg.NodesById[shape.ID] = node
	}

	for _, arrow := range sc.Arrows() {
		from, to, ok := sc.ResolveArrow(arrow)
		if !ok {
			continue
		}
		an := &ArrowNode{
			ID:      arrow.ID,
			From:    arrow.From,
			To:      arrow.To,
			Segment: AdjustedEndpoints(from, to),
		}
		sg.Arrows = append(sg.Arrows, an)
		sg.arrowsByShape[arrow.From] = append(sg.arrowsByShape[arrow.From], an)
		if arrow.To != arrow.From {
			sg.arrowsByShape[arrow.To] = append(sg.arrowsByShape[arrow.To], an)
		}
	}

	return sg
}

// update recomputes the node's transforms and bounds from shape.
func (n *SceneNode) update(shape document.Shape) {
	n.Dragging = shape.IsDragging
	n.WorldTransform = ShapeMatrix(shape)
	n.inverse, n.invertible = n.WorldTransform.Invert()
	n.Bounds = n.WorldTransform.TransformRect(localBounds(shape.Type))
}

// UpdateShape refreshes one node and the arrows touching it after the shape
// moved or was transformed. It reports false when the node is unknown and
// the graph needs a rebuild instead.
func (sg *SceneGraph) UpdateShape(sc *scene.Scene, shape document.Shape) bool {
	node, ok := sg.NodesById[shape.ID]
	if !ok {
		return false
	}
	node.update(shape)

	for _, an := range sg.arrowsByShape[shape.ID] {
		from, to, ok := sc.ResolveArrow(document.Arrow{ID: an.ID, From: an.From, To: an.To})
		if !ok {
			return false
		}
		an.Segment = AdjustedEndpoints(from, to)
	}
	return true
}
