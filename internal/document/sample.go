package document

import "github.com/Draichi/canvas-ui/internal/typeid"

// NewSampleSnapshot returns a small scene: a circle connected to a square.
func NewSampleSnapshot() *Snapshot {
	circleID := typeid.NewShapeID()
	squareID := typeid.NewShapeID()

	return &Snapshot{
		Shapes: []Shape{
			{
				ID:       circleID,
				X:        320,
				Y:        240,
				Rotation: 0,
				ScaleX:   1,
				ScaleY:   1,
				Type:     ShapeCircle,
			},
			{
				ID:       squareID,
				X:        560,
				Y:        360,
				Rotation: 30,
				ScaleX:   1.25,
				ScaleY:   1.25,
				Type:     ShapeSquare,
			},
		},
		Scale:    DefaultScale,
		StagePos: Point{},
		Arrows: []Arrow{
			{ID: typeid.NewArrowID(), From: circleID, To: squareID},
		},
	}
}
