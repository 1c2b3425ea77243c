package document

// ShapeType is fixed when a shape is created.
type ShapeType string

const (
	ShapeCircle ShapeType = "circle"
	ShapeSquare ShapeType = "square"
)

// Valid reports whether t is one of the known shape types.
func (t ShapeType) Valid() bool {
	return t == ShapeCircle || t == ShapeSquare
}

// Shape dimensions in unscaled scene units.
const (
	CircleRadius = 40.0
	SquareSide   = 80.0
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform is the mutable placement of a shape, committed when a
// resize/rotate handle is released.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	Rotation float64 `json:"rotation"`
}

// Shape is a node placed on the canvas. X and Y are the center in scene
// coordinates; Rotation is in degrees.
type Shape struct {
	ID         string    `json:"id"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Rotation   float64   `json:"rotation"`
	ScaleX     float64   `json:"scaleX"`
	ScaleY     float64   `json:"scaleY"`
	IsDragging bool      `json:"isDragging"`
	Type       ShapeType `json:"type"`
}

// Transform returns the shape's current placement.
func (s Shape) Transform() Transform {
	return Transform{X: s.X, Y: s.Y, ScaleX: s.ScaleX, ScaleY: s.ScaleY, Rotation: s.Rotation}
}

// Apply overwrites the mutable placement fields with t.
func (s *Shape) Apply(t Transform) {
	s.X = t.X
	s.Y = t.Y
	s.ScaleX = t.ScaleX
	s.ScaleY = t.ScaleY
	s.Rotation = t.Rotation
}

// Arrow is a directed connection between two shapes. From and To may name
// shapes that no longer exist; such arrows are inert.
type Arrow struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}
