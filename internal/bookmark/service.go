// Package bookmark persists canvas snapshots: the working state that is
// restored on the next start, and named bookmarks the user can return to.
package bookmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Draichi/canvas-ui/internal/document"
	"github.com/Draichi/canvas-ui/internal/storage"
	"github.com/Draichi/canvas-ui/internal/typeid"
)

// Storage keys. Bookmark keys are KeyBookmarkPrefix followed by the id.
const (
	KeyWorkingState   = "appState"
	KeyBookmarkPrefix = "bookmark-view-"
)

var ErrBookmarkNotFound = errors.New("bookmark not found")

// Bookmark is one saved view.
type Bookmark struct {
	ID    string             `json:"id"`
	State *document.Snapshot `json:"state"`
}

// CanvasNamespace is the key prefix holding one canvas's entries in a
// shared store.
func CanvasNamespace(canvasID string) string {
	return "canvas/" + canvasID + "/"
}

type Service struct {
	store storage.Store
	newID typeid.Generator
}

type Option func(*Service)

// WithIDs overrides the bookmark id generator.
func WithIDs(g typeid.Generator) Option {
	return func(s *Service) { s.newID = g }
}

func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		newID: typeid.ForPrefix(typeid.PrefixBookmark),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForCanvas returns a service scoped to one canvas of a shared store.
func ForCanvas(store storage.Store, canvasID string, opts ...Option) *Service {
	return NewService(storage.Prefixed(store, CanvasNamespace(canvasID)), opts...)
}

// SaveWorkingState overwrites the working slot.
func (s *Service) SaveWorkingState(ctx context.Context, snap *document.Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, KeyWorkingState, data); err != nil {
		return fmt.Errorf("save working state: %w", err)
	}
	return nil
}

// LoadWorkingState reads the working slot. A missing, unreadable or
// malformed slot yields an empty snapshot.
func (s *Service) LoadWorkingState(ctx context.Context) *document.Snapshot {
	data, err := s.store.Get(ctx, KeyWorkingState)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("read working state failed, starting empty", "key", KeyWorkingState, "error", err)
		}
		return document.NewEmptySnapshot()
	}
	return document.DecodeSnapshotOrEmpty(data)
}

// CreateBookmark stores a copy of snap under a new time-ordered id.
func (s *Service) CreateBookmark(ctx context.Context, snap *document.Snapshot) (string, error) {
	data, err := snap.Encode()
	if err != nil {
		return "", err
	}

	id := s.newID()
	if err := s.store.Put(ctx, KeyBookmarkPrefix+id, data); err != nil {
		return "", fmt.Errorf("create bookmark: %w", err)
	}
	return id, nil
}

// ListBookmarks returns every bookmark, oldest first. Entries that no
// longer decode are skipped.
func (s *Service) ListBookmarks(ctx context.Context) ([]Bookmark, error) {
	entries, err := s.store.List(ctx, KeyBookmarkPrefix)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	bookmarks := make([]Bookmark, 0, len(entries))
	for _, e := range entries {
		snap, err := document.DecodeSnapshot(e.Value)
		if err != nil {
			slog.Warn("skipping unreadable bookmark", "key", e.Key, "error", err)
			continue
		}
		bookmarks = append(bookmarks, Bookmark{
			ID:    strings.TrimPrefix(e.Key, KeyBookmarkPrefix),
			State: snap,
		})
	}
	return bookmarks, nil
}

// LoadBookmark reads one bookmark. The bookmark itself is left in place.
func (s *Service) LoadBookmark(ctx context.Context, id string) (*document.Snapshot, error) {
	data, err := s.store.Get(ctx, KeyBookmarkPrefix+id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBookmarkNotFound
		}
		return nil, fmt.Errorf("load bookmark: %w", err)
	}

	snap, err := document.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("load bookmark %s: %w", id, err)
	}
	return snap, nil
}

// DeleteBookmark removes one bookmark. The working state is untouched.
func (s *Service) DeleteBookmark(ctx context.Context, id string) error {
	key := KeyBookmarkPrefix + id
	if _, err := s.store.Get(ctx, key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrBookmarkNotFound
		}
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}
