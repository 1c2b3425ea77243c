package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/Draichi/canvas-ui/internal/document"
	"github.com/Draichi/canvas-ui/internal/scene"
)

// ViewportChanged is emitted to engine observers when zoom, pan mode or the
// stage position change.
const ViewportChanged scene.ChangeKind = "viewport.changed"

// Default screen size used for spawn placement until the host reports one.
const (
	DefaultScreenWidth  = 1280.0
	DefaultScreenHeight = 720.0
)

var ErrNoBookmarks = errors.New("bookmarks are not configured")

// Bookmarks is the persistence behind the bookmark button.
type Bookmarks interface {
	CreateBookmark(ctx context.Context, snap *document.Snapshot) (string, error)
	LoadBookmark(ctx context.Context, id string) (*document.Snapshot, error)
}

// Engine owns one canvas: the scene, the camera and the interaction state.
// It processes commands from the frontend and returns query results.
// Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	scene    *scene.Scene
	viewport Viewport
	ctrl     Controller

	// Retained scene graph
	sceneGraph *SceneGraph
	// Dirty flag - scene graph needs rebuild
	dirty bool

	rnd       *rand.Rand
	screenW   float64
	screenH   float64
	bookmarks Bookmarks

	subs []*engineSub
}

type engineSub struct{ o scene.Observer }

// Option configures an Engine.
type Option func(*Engine)

// WithScene uses sc instead of a fresh scene.
func WithScene(sc *scene.Scene) Option {
	return func(e *Engine) { e.scene = sc }
}

// WithRand sets the source for spawn positions and rotations.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rnd = r }
}

// WithScreenSize sets the initial screen size used for spawn placement.
func WithScreenSize(w, h float64) Option {
	return func(e *Engine) { e.screenW, e.screenH = w, h }
}

// WithBookmarks enables BookmarkAppState and LoadBookmark.
func WithBookmarks(b Bookmarks) Option {
	return func(e *Engine) { e.bookmarks = b }
}

// NewEngine creates a new engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		viewport:   NewViewport(),
		sceneGraph: NewSceneGraph(),
		dirty:      true,
		screenW:    DefaultScreenWidth,
		screenH:    DefaultScreenHeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.scene == nil {
		e.scene = scene.New()
	}
	if e.rnd == nil {
		e.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	e.scene.Subscribe(scene.ObserverFunc(e.sceneChanged))
	return e
}

// Subscribe registers o for scene and viewport changes. The returned func
// removes it.
func (e *Engine) Subscribe(o scene.Observer) func() {
	sub := &engineSub{o: o}
	e.subs = append(e.subs, sub)
	return func() {
		e.subs = slices.DeleteFunc(e.subs, func(s *engineSub) bool { return s == sub })
	}
}

func (e *Engine) notify(c scene.Change) {
	for _, sub := range slices.Clone(e.subs) {
		sub.o.SceneChanged(c)
	}
}

// sceneChanged keeps the retained graph current and forwards the change.
func (e *Engine) sceneChanged(c scene.Change) {
	switch c.Kind {
	case scene.ShapeMoved, scene.ShapeTransformed:
		if !e.dirty {
			shape, ok := e.scene.Shape(c.ID)
			if !ok || !e.sceneGraph.UpdateShape(e.scene, shape) {
				e.dirty = true
			}
		}
	case scene.DragStarted:
		e.sceneGraph.SetDragging(c.ID)
	case scene.DragEnded:
		e.sceneGraph.SetDragging("")
	default:
		e.dirty = true
	}
	e.notify(c)
}

func (e *Engine) viewportChanged() {
	e.notify(scene.Change{Kind: ViewportChanged})
}

// Scene exposes the underlying scene model.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// Viewport returns the current camera.
func (e *Engine) Viewport() Viewport { return e.viewport }

// Controller returns a copy of the interaction state machine.
func (e *Engine) Controller() Controller { return e.ctrl }

// --- Toolbar commands ---

// AddCircle spawns a circle in the visible area.
func (e *Engine) AddCircle() document.Shape {
	return e.addShape(document.ShapeCircle)
}

// AddRectangle spawns a square in the visible area.
func (e *Engine) AddRectangle() document.Shape {
	return e.addShape(document.ShapeSquare)
}

func (e *Engine) addShape(t document.ShapeType) document.Shape {
	sx, sy := SpawnPoint(e.screenW, e.screenH, e.rnd)
	x, y := e.viewport.ScreenToScene(sx, sy)
	rotation := e.rnd.Float64() * 180

	// Adding a shape leaves connect mode.
	e.ctrl.SetConnectMode(false)

	shape, err := e.scene.AddShape(t, scene.Placement{X: x, Y: y, Rotation: rotation})
	if err != nil {
		// Only reachable with an unknown type, which the two callers rule out.
		slog.Error("add shape failed", "type", t, "error", err)
	}
	return shape
}

// ZoomIn raises the zoom by one step.
func (e *Engine) ZoomIn() {
	if e.viewport.ZoomIn() {
		e.viewportChanged()
	}
}

// ZoomOut lowers the zoom by one step.
func (e *Engine) ZoomOut() {
	if e.viewport.ZoomOut() {
		e.viewportChanged()
	}
}

// TogglePan flips pan mode and returns the new value. While panning the
// stage is draggable and shapes are not.
func (e *Engine) TogglePan() bool {
	on := e.viewport.TogglePan()
	e.viewportChanged()
	return on
}

// ToggleConnectMode flips connect mode and returns the new value.
func (e *Engine) ToggleConnectMode() bool {
	return e.ctrl.ToggleConnectMode()
}

// ClearCanvas removes every shape and arrow and resets the camera.
// Pan mode and connect mode survive.
func (e *Engine) ClearCanvas() {
	e.ctrl.ClearState()
	e.viewport.Reset()
	e.scene.Clear()
}

// BookmarkAppState stores the current snapshot as a new bookmark.
func (e *Engine) BookmarkAppState(ctx context.Context) (string, error) {
	if e.bookmarks == nil {
		return "", ErrNoBookmarks
	}
	return e.bookmarks.CreateBookmark(ctx, e.Snapshot())
}

// LoadBookmark replaces the canvas with a stored bookmark.
func (e *Engine) LoadBookmark(ctx context.Context, id string) error {
	if e.bookmarks == nil {
		return ErrNoBookmarks
	}
	snap, err := e.bookmarks.LoadBookmark(ctx, id)
	if err != nil {
		return err
	}
	e.LoadSnapshot(snap)
	return nil
}

// --- Pointer commands ---

// PointerDown handles a press on shape id, or on the background when id is
// empty. Unknown ids are ignored. It returns the arrow a completed
// connection created.
func (e *Engine) PointerDown(id string) (document.Arrow, bool) {
	if id != "" && !e.scene.Has(id) {
		return document.Arrow{}, false
	}

	req, ok := e.ctrl.PointerDown(id)
	if !ok {
		return document.Arrow{}, false
	}

	arrow, err := e.scene.AddArrow(req.From, req.To)
	if err != nil {
		// The source was deleted while connecting.
		return document.Arrow{}, false
	}
	return arrow, true
}

// PointerDownAt hit-tests a screen position and presses whatever is there.
// It returns the id that was hit.
func (e *Engine) PointerDownAt(x, y float64) string {
	id := e.HitTest(x, y)
	e.PointerDown(id)
	return id
}

// DragStart marks id as dragging. Shapes are not draggable while panning.
func (e *Engine) DragStart(id string) bool {
	if e.viewport.IsPanning || !e.scene.Has(id) {
		return false
	}
	e.scene.SetDragging(id)
	e.ctrl.Select(id)
	return true
}

// DragMove moves id to a scene position. This runs per pointer event, so it
// only touches the moved node and its arrows.
func (e *Engine) DragMove(id string, x, y float64) bool {
	if e.viewport.IsPanning {
		return false
	}
	return e.scene.MoveShape(id, x, y)
}

// DragEnd clears the dragging flag.
func (e *Engine) DragEnd() {
	e.scene.ClearDragging()
}

// TransformEnd commits the result of a transformer gesture.
func (e *Engine) TransformEnd(id string, t document.Transform) bool {
	if e.viewport.IsPanning {
		return false
	}
	return e.scene.UpdateShapeTransform(id, t)
}

// PanEnd commits the stage position at the end of a stage drag.
func (e *Engine) PanEnd(pos document.Point) bool {
	if !e.viewport.CommitPan(pos) {
		return false
	}
	e.viewportChanged()
	return true
}

// DeleteArrow removes one arrow.
func (e *Engine) DeleteArrow(id string) bool {
	return e.scene.DeleteArrow(id)
}

// DeleteShape removes one shape. Arrows attached to it stay in the model
// and stop rendering.
func (e *Engine) DeleteShape(id string) bool {
	if !e.scene.DeleteShape(id) {
		return false
	}
	e.ctrl.Forget(id)
	return true
}

// SetScreenSize records the host's screen size for spawn placement.
func (e *Engine) SetScreenSize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	e.screenW, e.screenH = w, h
}

// --- State ---

// Snapshot captures the persistable state.
func (e *Engine) Snapshot() *document.Snapshot {
	return &document.Snapshot{
		Shapes:    e.scene.Shapes(),
		Arrows:    e.scene.Arrows(),
		Scale:     e.viewport.Scale,
		IsPanning: e.viewport.IsPanning,
		StagePos:  e.viewport.StagePos,
	}
}

// LoadSnapshot replaces the whole canvas. Selection and connect mode are
// reset, scale is clamped into range, drag flags are cleared and shapes
// stored without a scale get unit scale.
func (e *Engine) LoadSnapshot(snap *document.Snapshot) {
	if snap == nil {
		snap = document.NewEmptySnapshot()
	}
	snap = snap.Clone()

	e.ctrl.Reset()
	e.viewport = Viewport{
		Scale:     document.ClampScale(snap.Scale),
		StagePos:  snap.StagePos,
		IsPanning: snap.IsPanning,
	}
	for i := range snap.Shapes {
		sh := &snap.Shapes[i]
		sh.IsDragging = false
		if sh.ScaleX == 0 {
			sh.ScaleX = 1
		}
		if sh.ScaleY == 0 {
			sh.ScaleY = 1
		}
	}
	e.scene.Replace(snap.Shapes, snap.Arrows)
}

// Graph returns the retained scene graph, rebuilding it if needed.
func (e *Engine) Graph() *SceneGraph {
	if e.dirty {
		e.sceneGraph = BuildSceneGraph(e.scene)
		e.dirty = false
	}
	return e.sceneGraph
}

// HitTest returns the topmost shape under a screen position.
func (e *Engine) HitTest(x, y float64) string {
	sx, sy := e.viewport.ScreenToScene(x, y)
	return HitTest(e.Graph(), sx, sy)
}

// DrawCommands compiles the current frame.
func (e *Engine) DrawCommands() []DrawCommand {
	selected, _ := e.ctrl.SelectedID()
	return CompileDrawCommands(e.Graph(), e.viewport, selected)
}

// ShapeDrawCommands returns the draw commands touched by moving id. On the
// drag path the graph is updated in place, so this does no rebuild.
func (e *Engine) ShapeDrawCommands(id string) []DrawCommand {
	selected, _ := e.ctrl.SelectedID()
	return CompileShapeCommands(e.Graph(), id, selected)
}

// Render returns the current frame's draw commands as JSON.
func (e *Engine) Render() string {
	result, _ := DrawCommandsToJSON(e.DrawCommands())
	return result
}

// GetSelectionBounds returns the bounding box of the selected shape as JSON.
func (e *Engine) GetSelectionBounds() string {
	selected, ok := e.ctrl.SelectedID()
	if !ok {
		return RectToJSON(Rect{})
	}
	return RectToJSON(e.Graph().SelectionBounds(selected))
}

// View is everything a frontend needs to draw chrome around the canvas.
type View struct {
	Shapes       []document.Shape `json:"shapes"`
	Arrows       []document.Arrow `json:"arrows"`
	Scale        float64          `json:"scale"`
	IsPanning    bool             `json:"isPanning"`
	StagePos     document.Point   `json:"stagePos"`
	ConnectMode  bool             `json:"connectMode"`
	Interaction  InteractionState `json:"interaction"`
	SelectedID   string           `json:"selectedId,omitempty"`
	Notification string           `json:"notification,omitempty"`
}

// State returns the current view.
func (e *Engine) State() View {
	selected, _ := e.ctrl.SelectedID()
	return View{
		Shapes:       e.scene.Shapes(),
		Arrows:       e.scene.Arrows(),
		Scale:        e.viewport.Scale,
		IsPanning:    e.viewport.IsPanning,
		StagePos:     e.viewport.StagePos,
		ConnectMode:  e.ctrl.ConnectMode(),
		Interaction:  e.ctrl.State(),
		SelectedID:   selected,
		Notification: e.ctrl.Notification(),
	}
}

// StateJSON returns State as JSON.
func (e *Engine) StateJSON() string {
	data, _ := json.Marshal(e.State())
	return string(data)
}
