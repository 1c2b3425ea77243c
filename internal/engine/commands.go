package engine

import (
	"encoding/json"

	"github.com/Draichi/canvas-ui/internal/document"
)

// Arrowhead size in scene units.
const (
	ArrowPointerLength = 10.0
	ArrowPointerWidth  = 10.0
)

// Draw ops, in the order they appear in a frame.
const (
	OpStage       = "stage"
	OpArrow       = "arrow"
	OpShape       = "shape"
	OpTransformer = "transformer"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// Colors and styling are the renderer's business; commands carry geometry only.
type DrawCommand struct {
	Op            string             `json:"op"`
	ObjectID      string             `json:"objectId,omitempty"`  // For hit correlation
	Shape         document.ShapeType `json:"shape,omitempty"`     // For "shape" ops
	Transform     []float64          `json:"transform,omitempty"` // [a, b, c, d, e, f] affine matrix
	Points        []float64          `json:"points,omitempty"`    // [x1, y1, x2, y2] for "arrow" ops
	PointerLength float64            `json:"pointerLength,omitempty"`
	PointerWidth  float64            `json:"pointerWidth,omitempty"`
	Bounds        *Rect              `json:"bounds,omitempty"` // For "transformer" ops
	Dragging      bool               `json:"dragging,omitempty"`
}

// CompileDrawCommands generates the frame for sg seen through view.
// The stage transform comes first, then arrows beneath shapes, then the
// transformer around selectedID if it is set.
func CompileDrawCommands(sg *SceneGraph, view Viewport, selectedID string) []DrawCommand {
	commands := []DrawCommand{{
		Op:        OpStage,
		Transform: view.Matrix().ToSlice(),
	}}
	if sg == nil {
		return commands
	}

	for _, an := range sg.Arrows {
		commands = append(commands, arrowCommand(an))
	}
	for _, node := range sg.Nodes {
		commands = append(commands, shapeCommand(node))
	}
	if node, ok := sg.NodesById[selectedID]; ok && selectedID != "" {
		commands = append(commands, transformerCommand(node))
	}

	return commands
}

// CompileShapeCommands returns only the commands that change when shape id
// moves: its arrows, the shape, and the transformer if id is selected.
// Renderers patch these into the last full frame by ObjectID.
func CompileShapeCommands(sg *SceneGraph, id, selectedID string) []DrawCommand {
	node, ok := sg.NodesById[id]
	if !ok {
		return nil
	}

	var commands []DrawCommand
	for _, an := range sg.arrowsByShape[id] {
		commands = append(commands, arrowCommand(an))
	}
	commands = append(commands, shapeCommand(node))
	if id == selectedID {
		commands = append(commands, transformerCommand(node))
	}
	return commands
}

func arrowCommand(an *ArrowNode) DrawCommand {
	return DrawCommand{
		Op:            OpArrow,
		ObjectID:      an.ID,
		Points:        an.Segment.Points(),
		PointerLength: ArrowPointerLength,
		PointerWidth:  ArrowPointerWidth,
	}
}

func shapeCommand(node *SceneNode) DrawCommand {
	return DrawCommand{
		Op:        OpShape,
		ObjectID:  node.ID,
		Shape:     node.Type,
		Transform: node.WorldTransform.ToSlice(),
		Dragging:  node.Dragging,
	}
}

func transformerCommand(node *SceneNode) DrawCommand {
	bounds := node.Bounds
	return DrawCommand{
		Op:        OpTransformer,
		ObjectID:  node.ID,
		Transform: node.WorldTransform.ToSlice(),
		Bounds:    &bounds,
	}
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a rect to JSON.
func RectToJSON(r Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
