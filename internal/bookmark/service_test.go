package bookmark_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/Draichi/canvas-ui/internal/bookmark"
	"github.com/Draichi/canvas-ui/internal/document"
	"github.com/Draichi/canvas-ui/internal/engine"
	"github.com/Draichi/canvas-ui/internal/scene"
	"github.com/Draichi/canvas-ui/internal/storage"
	"github.com/Draichi/canvas-ui/internal/typeid"
)

func newTestService(store storage.Store) *bookmark.Service {
	return bookmark.NewService(store, bookmark.WithIDs(typeid.Sequence("bm")))
}

func newTestEngine(svc *bookmark.Service) *engine.Engine {
	sc := scene.New(
		scene.WithShapeIDs(typeid.Sequence("shape")),
		scene.WithArrowIDs(typeid.Sequence("arrow")),
	)
	return engine.NewEngine(
		engine.WithScene(sc),
		engine.WithRand(rand.New(rand.NewPCG(3, 5))),
		engine.WithBookmarks(svc),
	)
}

func TestBookmarkMutateLoad(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(storage.NewMemory())
	e := newTestEngine(svc)

	e.AddCircle()
	e.AddRectangle()
	before := e.Snapshot()

	id, err := e.BookmarkAppState(ctx)
	if err != nil {
		t.Fatalf("bookmark: %v", err)
	}

	e.AddCircle()
	e.DragStart(before.Shapes[0].ID)
	e.DragMove(before.Shapes[0].ID, 1, 1)
	e.DragEnd()

	if err := e.LoadBookmark(ctx, id); err != nil {
		t.Fatalf("load: %v", err)
	}

	after := e.Snapshot()
	if len(after.Shapes) != len(before.Shapes) {
		t.Fatalf("expected %d shapes, got %d", len(before.Shapes), len(after.Shapes))
	}
	for i := range before.Shapes {
		if after.Shapes[i] != before.Shapes[i] {
			t.Errorf("shape %d: expected %+v, got %+v", i, before.Shapes[i], after.Shapes[i])
		}
	}

	// Loading keeps the bookmark.
	if _, err := svc.LoadBookmark(ctx, id); err != nil {
		t.Errorf("bookmark gone after load: %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	svc := newTestService(store)

	working := document.NewSampleSnapshot()
	if err := svc.SaveWorkingState(ctx, working); err != nil {
		t.Fatal(err)
	}

	first, _ := svc.CreateBookmark(ctx, document.NewEmptySnapshot())
	second, _ := svc.CreateBookmark(ctx, document.NewSampleSnapshot())

	list, err := svc.ListBookmarks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != first || list[1].ID != second {
		t.Fatalf("expected [%s %s], got %+v", first, second, list)
	}
	if len(list[1].State.Shapes) != 2 {
		t.Errorf("bookmark state not decoded: %+v", list[1].State)
	}

	if err := svc.DeleteBookmark(ctx, first); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteBookmark(ctx, first); !errors.Is(err, bookmark.ErrBookmarkNotFound) {
		t.Errorf("expected ErrBookmarkNotFound, got %v", err)
	}

	list, _ = svc.ListBookmarks(ctx)
	if len(list) != 1 || list[0].ID != second {
		t.Errorf("expected only %s, got %+v", second, list)
	}

	// The working slot is separate from bookmarks.
	if got := svc.LoadWorkingState(ctx); len(got.Shapes) != len(working.Shapes) {
		t.Errorf("working state changed by bookmark delete: %+v", got)
	}
}

func TestListSkipsUnreadableBookmarks(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	svc := newTestService(store)

	id, _ := svc.CreateBookmark(ctx, document.NewEmptySnapshot())
	store.Put(ctx, bookmark.KeyBookmarkPrefix+"broken", []byte("{oops"))

	list, err := svc.ListBookmarks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != id {
		t.Errorf("expected only %s, got %+v", id, list)
	}
}

func TestLoadMissingBookmark(t *testing.T) {
	svc := newTestService(storage.NewMemory())
	if _, err := svc.LoadBookmark(context.Background(), "bm_404"); !errors.Is(err, bookmark.ErrBookmarkNotFound) {
		t.Errorf("expected ErrBookmarkNotFound, got %v", err)
	}
}

func TestWorkingStateFallbacks(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		stored string
	}{
		{"absent", ""},
		{"malformed", "not json at all"},
		{"wrong shape", `{"shapes":{"a":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemory()
			if tt.stored != "" {
				store.Put(ctx, bookmark.KeyWorkingState, []byte(tt.stored))
			}

			snap := newTestService(store).LoadWorkingState(ctx)
			if len(snap.Shapes) != 0 || len(snap.Arrows) != 0 {
				t.Errorf("expected empty scene, got %+v", snap)
			}
			if snap.Scale != 1 || snap.IsPanning || snap.StagePos != (document.Point{}) {
				t.Errorf("expected default viewport, got %+v", snap)
			}
		})
	}
}

func TestWorkingStatePartialFields(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	store.Put(ctx, bookmark.KeyWorkingState, []byte(`{"isPanning":true,"stagePos":{"x":4,"y":5}}`))

	snap := newTestService(store).LoadWorkingState(ctx)
	if snap.Scale != 1 || !snap.IsPanning || snap.StagePos != (document.Point{X: 4, Y: 5}) {
		t.Errorf("unexpected merge: %+v", snap)
	}
}

func TestCanvasNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	alice := bookmark.ForCanvas(store, "alice")
	bob := bookmark.ForCanvas(store, "bob")

	alice.CreateBookmark(ctx, document.NewEmptySnapshot())

	list, err := bob.ListBookmarks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("bob sees alice's bookmarks: %+v", list)
	}
}
