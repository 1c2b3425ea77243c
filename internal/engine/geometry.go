package engine

import (
	"math"

	"github.com/Draichi/canvas-ui/internal/document"
)

// Segment is an arrow's drawn line in scene coordinates.
type Segment struct {
	Start document.Point `json:"start"`
	End   document.Point `json:"end"`
}

// Points flattens the segment to [x1, y1, x2, y2].
func (s Segment) Points() []float64 {
	return []float64{s.Start.X, s.Start.Y, s.End.X, s.End.Y}
}

// Margin is the distance from a shape's center at which arrows attach.
// Rotation is ignored: a rotated square is treated as a circle of half its
// side, so arrowheads can land slightly inside or outside the corners.
func Margin(s document.Shape) float64 {
	if s.Type == document.ShapeCircle {
		return document.CircleRadius * s.ScaleX
	}
	return document.SquareSide / 2 * s.ScaleX
}

// AdjustedEndpoints pulls both ends of the center-to-center line in by each
// shape's margin so the arrow touches the outlines rather than the centers.
// Identical centers give angle 0 and a degenerate segment.
func AdjustedEndpoints(from, to document.Shape) Segment {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	cos, sin := math.Cos(angle), math.Sin(angle)

	fromMargin := Margin(from)
	toMargin := Margin(to)

	return Segment{
		Start: document.Point{X: from.X + fromMargin*cos, Y: from.Y + fromMargin*sin},
		End:   document.Point{X: to.X - toMargin*cos, Y: to.Y - toMargin*sin},
	}
}

// localBounds is the unscaled extent of a shape around its center.
func localBounds(t document.ShapeType) Rect {
	if t == document.ShapeCircle {
		r := document.CircleRadius
		return Rect{X: -r, Y: -r, Width: 2 * r, Height: 2 * r}
	}
	h := document.SquareSide / 2
	return Rect{X: -h, Y: -h, Width: document.SquareSide, Height: document.SquareSide}
}

// containsLocal tests a point already mapped into the shape's local space.
func containsLocal(t document.ShapeType, lx, ly float64) bool {
	if t == document.ShapeCircle {
		r := document.CircleRadius
		return lx*lx+ly*ly <= r*r
	}
	h := document.SquareSide / 2
	return math.Abs(lx) <= h && math.Abs(ly) <= h
}
