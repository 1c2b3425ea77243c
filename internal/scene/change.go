package scene

// ChangeKind names a committed mutation of the scene.
type ChangeKind string

const (
	ShapeAdded       ChangeKind = "shape.added"
	ShapeMoved       ChangeKind = "shape.moved"
	ShapeTransformed ChangeKind = "shape.transformed"
	ShapeDeleted     ChangeKind = "shape.deleted"
	DragStarted      ChangeKind = "drag.started"
	DragEnded        ChangeKind = "drag.ended"
	ArrowAdded       ChangeKind = "arrow.added"
	ArrowDeleted     ChangeKind = "arrow.deleted"
	Cleared          ChangeKind = "scene.cleared"
	Replaced         ChangeKind = "scene.replaced"
)

// Change describes one committed mutation. ID is the shape or arrow
// affected, empty for whole-scene changes.
type Change struct {
	Kind ChangeKind
	ID   string
}

// HighFrequency reports whether the change comes from the per-tick drag path.
func (c Change) HighFrequency() bool {
	return c.Kind == ShapeMoved
}

// Observer is notified synchronously after every committed mutation.
type Observer interface {
	SceneChanged(Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

func (f ObserverFunc) SceneChanged(c Change) { f(c) }
