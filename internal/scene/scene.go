// Package scene owns the canonical shape and arrow lists of a canvas.
//
// A Scene is not safe for concurrent use. Callers serialize access the way
// an input event loop does: one event applied fully before the next.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Draichi/canvas-ui/internal/document"
	"github.com/Draichi/canvas-ui/internal/typeid"
)

var (
	ErrShapeNotFound    = errors.New("shape not found")
	ErrUnknownShapeType = errors.New("unknown shape type")
)

// Placement is where a new shape lands.
type Placement struct {
	X        float64
	Y        float64
	Rotation float64
}

type subscription struct {
	id       int
	observer Observer
}

type Scene struct {
	shapes     []document.Shape
	index      map[string]int // shape id -> position in shapes
	arrows     []document.Arrow
	arrowIndex map[string]int

	newShapeID typeid.Generator
	newArrowID typeid.Generator

	subs    []subscription
	nextSub int
}

type Option func(*Scene)

// WithShapeIDs overrides the shape id generator.
func WithShapeIDs(g typeid.Generator) Option {
	return func(s *Scene) { s.newShapeID = g }
}

// WithArrowIDs overrides the arrow id generator.
func WithArrowIDs(g typeid.Generator) Option {
	return func(s *Scene) { s.newArrowID = g }
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		index:      make(map[string]int),
		arrowIndex: make(map[string]int),
		newShapeID: typeid.ForPrefix(typeid.PrefixShape),
		newArrowID: typeid.ForPrefix(typeid.PrefixArrow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers o and returns a function that removes it.
func (s *Scene) Subscribe(o Observer) func() {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, observer: o})
	return func() {
		// Copy so a notify in progress keeps ranging over the old list.
		s.subs = slices.DeleteFunc(slices.Clone(s.subs), func(sub subscription) bool {
			return sub.id == id
		})
	}
}

func (s *Scene) notify(kind ChangeKind, id string) {
	c := Change{Kind: kind, ID: id}
	for _, sub := range s.subs {
		sub.observer.SceneChanged(c)
	}
}

// --- Queries ---

// Shape looks a shape up by id.
func (s *Scene) Shape(id string) (document.Shape, bool) {
	i, ok := s.index[id]
	if !ok {
		return document.Shape{}, false
	}
	return s.shapes[i], true
}

// Has reports whether a shape with id exists.
func (s *Scene) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Shapes returns a copy of the shapes in painter order.
func (s *Scene) Shapes() []document.Shape {
	return append([]document.Shape{}, s.shapes...)
}

// Arrows returns a copy of the arrows in creation order.
func (s *Scene) Arrows() []document.Arrow {
	return append([]document.Arrow{}, s.arrows...)
}

// Len returns the number of shapes.
func (s *Scene) Len() int {
	return len(s.shapes)
}

// ResolveArrow returns both endpoints of a. ok is false when either shape
// is gone; such an arrow renders as nothing.
func (s *Scene) ResolveArrow(a document.Arrow) (from, to document.Shape, ok bool) {
	from, okFrom := s.Shape(a.From)
	to, okTo := s.Shape(a.To)
	return from, to, okFrom && okTo
}

// Dragging returns the id of the shape being dragged, if any.
func (s *Scene) Dragging() (string, bool) {
	for _, shape := range s.shapes {
		if shape.IsDragging {
			return shape.ID, true
		}
	}
	return "", false
}

// --- Shape mutations ---

// AddShape appends a shape of type t at the given placement with unit scale.
func (s *Scene) AddShape(t document.ShapeType, at Placement) (document.Shape, error) {
	if !t.Valid() {
		return document.Shape{}, fmt.Errorf("%w: %q", ErrUnknownShapeType, t)
	}

	id := s.newShapeID()
	for s.Has(id) {
		id = s.newShapeID()
	}

	shape := document.Shape{
		ID:       id,
		X:        at.X,
		Y:        at.Y,
		Rotation: at.Rotation,
		ScaleX:   1,
		ScaleY:   1,
		Type:     t,
	}
	s.index[id] = len(s.shapes)
	s.shapes = append(s.shapes, shape)

	s.notify(ShapeAdded, id)
	return shape, nil
}

// UpdateShapeTransform replaces the position, scale and rotation of a shape.
// Returns false if the shape does not exist.
func (s *Scene) UpdateShapeTransform(id string, t document.Transform) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.shapes[i].Apply(t)
	s.notify(ShapeTransformed, id)
	return true
}

// MoveShape updates only the position of a shape. It is called once per
// pointer tick while dragging.
func (s *Scene) MoveShape(id string, x, y float64) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.shapes[i].X = x
	s.shapes[i].Y = y
	s.notify(ShapeMoved, id)
	return true
}

// SetDragging marks id as the only dragging shape. An unknown id leaves no
// shape dragging.
func (s *Scene) SetDragging(id string) {
	for i := range s.shapes {
		s.shapes[i].IsDragging = s.shapes[i].ID == id
	}
	s.notify(DragStarted, id)
}

// ClearDragging marks every shape as not dragging.
func (s *Scene) ClearDragging() {
	for i := range s.shapes {
		s.shapes[i].IsDragging = false
	}
	s.notify(DragEnded, "")
}

// DeleteShape removes a shape. Arrows referencing it are left in place.
func (s *Scene) DeleteShape(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.shapes); j++ {
		s.index[s.shapes[j].ID] = j
	}
	s.notify(ShapeDeleted, id)
	return true
}

// --- Arrow mutations ---

// AddArrow connects two existing shapes. When either id is unknown it logs
// a warning, leaves the arrows untouched and returns ErrShapeNotFound.
func (s *Scene) AddArrow(fromID, toID string) (document.Arrow, error) {
	if !s.Has(fromID) || !s.Has(toID) {
		slog.Warn("cannot create arrow, shape does not exist", "from", fromID, "to", toID)
		return document.Arrow{}, fmt.Errorf("add arrow %s -> %s: %w", fromID, toID, ErrShapeNotFound)
	}

	id := s.newArrowID()
	for {
		if _, taken := s.arrowIndex[id]; !taken {
			break
		}
		id = s.newArrowID()
	}

	arrow := document.Arrow{ID: id, From: fromID, To: toID}
	s.arrowIndex[id] = len(s.arrows)
	s.arrows = append(s.arrows, arrow)

	s.notify(ArrowAdded, id)
	return arrow, nil
}

// DeleteArrow removes an arrow. Returns false if it does not exist.
func (s *Scene) DeleteArrow(id string) bool {
	i, ok := s.arrowIndex[id]
	if !ok {
		return false
	}
	s.arrows = append(s.arrows[:i], s.arrows[i+1:]...)
	delete(s.arrowIndex, id)
	for j := i; j < len(s.arrows); j++ {
		s.arrowIndex[s.arrows[j].ID] = j
	}
	s.notify(ArrowDeleted, id)
	return true
}

// --- Whole-scene mutations ---

// Clear removes every shape and arrow.
func (s *Scene) Clear() {
	s.shapes = nil
	s.arrows = nil
	s.index = make(map[string]int)
	s.arrowIndex = make(map[string]int)
	s.notify(Cleared, "")
}

// Replace swaps in a new set of shapes and arrows, typically from a loaded
// snapshot. Later duplicates of an id are dropped.
func (s *Scene) Replace(shapes []document.Shape, arrows []document.Arrow) {
	s.shapes = make([]document.Shape, 0, len(shapes))
	s.index = make(map[string]int, len(shapes))
	for _, shape := range shapes {
		if s.Has(shape.ID) {
			continue
		}
		s.index[shape.ID] = len(s.shapes)
		s.shapes = append(s.shapes, shape)
	}

	s.arrows = make([]document.Arrow, 0, len(arrows))
	s.arrowIndex = make(map[string]int, len(arrows))
	for _, a := range arrows {
		if _, dup := s.arrowIndex[a.ID]; dup {
			continue
		}
		s.arrowIndex[a.ID] = len(s.arrows)
		s.arrows = append(s.arrows, a)
	}

	s.notify(Replaced, "")
}
