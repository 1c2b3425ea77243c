// Package live serves canvases to renderers over websockets. Each canvas
// has one session and at most one connected renderer; a new connection
// takes the canvas over from the previous one.
package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/Draichi/canvas-ui/internal/bookmark"
	"github.com/Draichi/canvas-ui/internal/engine"
	"github.com/Draichi/canvas-ui/internal/storage"
)

const flushTimeout = 10 * time.Second

type Hub struct {
	mu         sync.Mutex
	sessions   map[string]*Session // canvasID -> session
	store      storage.Store
	engineOpts []engine.Option

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a hub persisting canvases in store. engineOpts apply to
// every session's engine.
func NewHub(store storage.Store, engineOpts ...engine.Option) *Hub {
	return &Hub{
		sessions:   make(map[string]*Session),
		store:      store,
		engineOpts: engineOpts,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Session returns the session for canvasID, restoring it from storage if
// it is not live.
func (h *Hub) Session(canvasID string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.sessionLocked(canvasID)
}

func (h *Hub) sessionLocked(canvasID string) *Session {
	s, ok := h.sessions[canvasID]
	if !ok {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()

		svc := bookmark.ForCanvas(h.store, canvasID)
		s = NewSession(ctx, canvasID, svc, h.engineOpts...)
		h.sessions[canvasID] = s
	}
	return s
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	session := h.sessionLocked(client.CanvasID)
	previous := session.client
	session.client = client
	h.mu.Unlock()

	if previous != nil {
		slog.Info("renderer replaced", "canvas", client.CanvasID, "previous", previous.ClientID)
		go previous.kick()
	}

	for _, msg := range session.Welcome(context.Background()) {
		client.Send(msg)
	}

	slog.Info("renderer joined", "user", client.UserID, "canvas", client.CanvasID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	close(client.send)

	session, ok := h.sessions[client.CanvasID]
	if ok && session.client == client {
		// Save before dropping the session so a reconnect restores the
		// latest state.
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		if err := session.Flush(ctx); err != nil {
			slog.Warn("flush on disconnect failed", "canvas", client.CanvasID, "error", err)
		}
		cancel()
		session.client = nil
		delete(h.sessions, client.CanvasID)
	}

	slog.Info("renderer left", "user", client.UserID, "canvas", client.CanvasID)
}

func (h *Hub) handleMessage(ctx context.Context, sender *Client, msg *Message) {
	h.mu.Lock()
	session, ok := h.sessions[sender.CanvasID]
	current := ok && session.client == sender
	h.mu.Unlock()
	if !current {
		// Replaced; its session belongs to someone else now.
		return
	}

	for _, reply := range session.Apply(ctx, msg) {
		sender.Send(reply)
	}
}

// FlushAll writes pending changes of every live session.
func (h *Hub) FlushAll(ctx context.Context) {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		if err := s.Flush(ctx); err != nil {
			slog.Warn("working state sync failed", "canvas", s.CanvasID(), "error", err)
		}
	}
}

// Stop saves every session and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		h.FlushAll(ctx)
		close(h.done)
	})
}

// ServeCanvas upgrades the request and runs a renderer connection for
// canvasID until it closes.
func (h *Hub) ServeCanvas(w http.ResponseWriter, r *http.Request, canvasID, userID string, originPatterns []string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h, conn, userID, canvasID, uuid.New().String())
	h.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
