package engine

import (
	"math"
	"math/rand/v2"

	"github.com/Draichi/canvas-ui/internal/document"
)

// ZoomStep is the scale change of one zoom button press.
const ZoomStep = 0.1

// Spawn placement as fractions of the screen: new shapes land in the middle
// 60% on each axis.
const (
	spawnMargin = 0.2
	spawnRange  = 0.6
)

// Viewport is the stage camera. Scene = (Screen - StagePos) / Scale.
type Viewport struct {
	Scale     float64        `json:"scale"`
	StagePos  document.Point `json:"stagePos"`
	IsPanning bool           `json:"isPanning"`
}

// NewViewport returns the unzoomed, unpanned camera.
func NewViewport() Viewport {
	return Viewport{Scale: document.DefaultScale}
}

// roundScale keeps repeated ±0.1 steps from drifting (1.1+0.1 != 1.2).
func roundScale(v float64) float64 {
	return math.Round(v*100) / 100
}

// ZoomIn raises the scale by one step, saturating at MaxScale.
func (v *Viewport) ZoomIn() bool {
	next := min(roundScale(v.Scale+ZoomStep), document.MaxScale)
	changed := next != v.Scale
	v.Scale = next
	return changed
}

// ZoomOut lowers the scale by one step, saturating at MinScale.
func (v *Viewport) ZoomOut() bool {
	next := max(roundScale(v.Scale-ZoomStep), document.MinScale)
	changed := next != v.Scale
	v.Scale = next
	return changed
}

// TogglePan flips pan mode and returns the new value.
func (v *Viewport) TogglePan() bool {
	v.IsPanning = !v.IsPanning
	return v.IsPanning
}

// CommitPan stores the stage position at the end of a stage drag. Outside
// pan mode the stage is not draggable and the position is ignored.
func (v *Viewport) CommitPan(pos document.Point) bool {
	if !v.IsPanning {
		return false
	}
	v.StagePos = pos
	return true
}

// Reset restores scale 1 and origin. Pan mode is left as is.
func (v *Viewport) Reset() {
	v.Scale = document.DefaultScale
	v.StagePos = document.Point{}
}

// Matrix maps scene coordinates to screen coordinates.
func (v Viewport) Matrix() Matrix2D {
	return Translate(v.StagePos.X, v.StagePos.Y).Multiply(Scale(v.Scale, v.Scale))
}

// ScreenToScene converts a pointer position into scene coordinates.
func (v Viewport) ScreenToScene(x, y float64) (float64, float64) {
	scale := v.Scale
	if scale == 0 {
		scale = document.DefaultScale
	}
	return (x - v.StagePos.X) / scale, (y - v.StagePos.Y) / scale
}

// SceneToScreen converts scene coordinates into screen coordinates.
func (v Viewport) SceneToScreen(x, y float64) (float64, float64) {
	return x*v.Scale + v.StagePos.X, y*v.Scale + v.StagePos.Y
}

// SpawnPoint picks a screen position for a new shape inside the central
// region of a screenW x screenH screen.
func SpawnPoint(screenW, screenH float64, rnd *rand.Rand) (float64, float64) {
	x := screenW*spawnMargin + rnd.Float64()*screenW*spawnRange
	y := screenH*spawnMargin + rnd.Float64()*screenH*spawnRange
	return x, y
}
