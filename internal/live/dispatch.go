package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Draichi/canvas-ui/internal/engine"
)

// dispatch applies msg to the engine. The caller holds s.mu.
func (s *Session) dispatch(ctx context.Context, msg *Message) []*Message {
	res, err := s.applyLocked(ctx, msg)
	if err != nil {
		slog.Warn("rejected message", "canvas", s.canvasID, "type", msg.Type, "error", err)
		return []*Message{newMessage(TypeError, msg.Seq, ErrorPayload{Message: err.Error()})}
	}

	var replies []*Message
	if res.patch != "" {
		replies = append(replies, newMessage(TypePatch, msg.Seq, PatchPayload{
			Commands: s.engine.ShapeDrawCommands(res.patch),
		}))
	}
	if res.state {
		replies = append(replies, s.stateMessage(msg.Seq, res.created))
	}
	if res.bookmarks {
		replies = append(replies, s.bookmarksMessage(ctx, msg.Seq))
	}
	return replies
}

// result says which frames a message needs in reply.
type result struct {
	created   string
	state     bool
	bookmarks bool
	// patch is the shape whose commands alone need resending
	patch string
}

func decode[T any](msg *Message) (T, error) {
	var p T
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	return p, nil
}

// applyLocked runs the engine operation for msg.
func (s *Session) applyLocked(ctx context.Context, msg *Message) (result, error) {
	e := s.engine
	res := result{state: true}

	switch msg.Type {
	case TypeCommand:
		p, err := decode[CommandPayload](msg)
		if err != nil {
			return res, err
		}
		res.created, err = e.Exec(ctx, p.Name)
		res.bookmarks = p.Name == engine.CmdBookmarkAppState
		return res, err

	case TypePointerDown:
		p, err := decode[ShapePayload](msg)
		if err != nil {
			return res, err
		}
		if arrow, ok := e.PointerDown(p.ShapeID); ok {
			res.created = arrow.ID
		}

	case TypePointerDownAt:
		p, err := decode[PointPayload](msg)
		if err != nil {
			return res, err
		}
		e.PointerDownAt(p.X, p.Y)

	case TypeDragStart:
		p, err := decode[ShapePayload](msg)
		if err != nil {
			return res, err
		}
		e.DragStart(p.ShapeID)

	case TypeDragMove:
		p, err := decode[DragPayload](msg)
		if err != nil {
			return res, err
		}
		if !e.DragMove(p.ShapeID, p.X, p.Y) {
			return result{}, nil
		}
		return result{patch: p.ShapeID}, nil

	case TypeDragEnd:
		e.DragEnd()

	case TypeTransformEnd:
		p, err := decode[TransformPayload](msg)
		if err != nil {
			return res, err
		}
		e.TransformEnd(p.ShapeID, p.Transform)

	case TypePanEnd:
		p, err := decode[PanPayload](msg)
		if err != nil {
			return res, err
		}
		e.PanEnd(p.StagePos)

	case TypeScreenResize:
		p, err := decode[ScreenPayload](msg)
		if err != nil {
			return res, err
		}
		e.SetScreenSize(p.Width, p.Height)

	case TypeBookmarkLoad:
		p, err := decode[BookmarkPayload](msg)
		if err != nil {
			return res, err
		}
		return res, e.LoadBookmark(ctx, p.ID)

	case TypeBookmarkDelete:
		p, err := decode[BookmarkPayload](msg)
		if err != nil {
			return res, err
		}
		return result{bookmarks: true}, s.bookmarks.DeleteBookmark(ctx, p.ID)

	case TypeBookmarkList:
		return result{bookmarks: true}, nil

	default:
		return res, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return res, nil
}

func (s *Session) stateMessage(seq int64, created string) *Message {
	return newMessage(TypeState, seq, StatePayload{
		View:     s.engine.State(),
		Commands: s.engine.DrawCommands(),
		Created:  created,
	})
}

func (s *Session) bookmarksMessage(ctx context.Context, seq int64) *Message {
	list, err := s.bookmarks.ListBookmarks(ctx)
	if err != nil {
		return newMessage(TypeError, seq, ErrorPayload{Message: err.Error()})
	}
	return newMessage(TypeBookmarks, seq, BookmarksPayload{Bookmarks: list})
}
