package live

import (
	"context"
	"sync"

	"github.com/Draichi/canvas-ui/internal/bookmark"
	"github.com/Draichi/canvas-ui/internal/engine"
)

// Session is the live state of one canvas: an engine loaded from the
// canvas's working state, saved back as it changes. Every event and flush
// runs under mu, in arrival order.
type Session struct {
	mu        sync.Mutex
	canvasID  string
	engine    *engine.Engine
	bookmarks *bookmark.Service
	saver     *bookmark.Autosaver

	// current connection, guarded by Hub.mu
	client *Client
}

// NewSession restores the canvas's working state and starts autosaving.
func NewSession(ctx context.Context, canvasID string, svc *bookmark.Service, opts ...engine.Option) *Session {
	e := engine.NewEngine(append(opts, engine.WithBookmarks(svc))...)
	e.LoadSnapshot(svc.LoadWorkingState(ctx))

	s := &Session{
		canvasID:  canvasID,
		engine:    e,
		bookmarks: svc,
		saver:     bookmark.NewAutosaver(svc, e),
	}
	e.Subscribe(s.saver)
	return s
}

func (s *Session) CanvasID() string { return s.canvasID }

// Apply handles one inbound message and returns the replies.
func (s *Session) Apply(ctx context.Context, msg *Message) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dispatch(ctx, msg)
}

// Welcome returns the frames a newly attached renderer needs.
func (s *Session) Welcome(ctx context.Context) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return []*Message{s.stateMessage(0, ""), s.bookmarksMessage(ctx, 0)}
}

// Flush writes pending drag moves to the working state.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saver.Flush(ctx)
}

// View returns the current view of the canvas.
func (s *Session) View() engine.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.State()
}

// Do runs fn against the engine under the session lock. Changes fn makes
// are autosaved like any other event.
func (s *Session) Do(fn func(e *engine.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.engine)
}

func (s *Session) Bookmarks() *bookmark.Service { return s.bookmarks }
