package bookmark

import (
	"context"
	"log/slog"
	"time"

	"github.com/Draichi/canvas-ui/internal/document"
	"github.com/Draichi/canvas-ui/internal/scene"
)

const saveTimeout = 5 * time.Second

// SnapshotSource is whatever owns the live canvas state.
type SnapshotSource interface {
	Snapshot() *document.Snapshot
}

// Autosaver writes the working state after each committed change. Drag
// moves only mark it dirty; the drag end or the next Flush writes them.
//
// Autosaver is not safe for concurrent use. Flush must run under the same
// lock that guards the source.
type Autosaver struct {
	svc    *Service
	source SnapshotSource
	dirty  bool
}

func NewAutosaver(svc *Service, source SnapshotSource) *Autosaver {
	return &Autosaver{svc: svc, source: source}
}

// SceneChanged implements scene.Observer.
func (a *Autosaver) SceneChanged(c scene.Change) {
	a.dirty = true
	if c.HighFrequency() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := a.Flush(ctx); err != nil {
		slog.Warn("autosave failed", "change", c.Kind, "error", err)
	}
}

// Dirty reports whether changes are waiting to be written.
func (a *Autosaver) Dirty() bool { return a.dirty }

// Flush writes the working state if anything changed since the last write.
func (a *Autosaver) Flush(ctx context.Context) error {
	if !a.dirty {
		return nil
	}
	if err := a.svc.SaveWorkingState(ctx, a.source.Snapshot()); err != nil {
		return err
	}
	a.dirty = false
	return nil
}
