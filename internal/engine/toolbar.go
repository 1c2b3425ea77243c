package engine

import (
	"context"
	"errors"
	"fmt"
)

// Toolbar command names, as sent by renderers.
const (
	CmdAddCircle         = "addCircle"
	CmdAddRectangle      = "addRectangle"
	CmdZoomIn            = "zoomIn"
	CmdZoomOut           = "zoomOut"
	CmdTogglePan         = "togglePan"
	CmdClearCanvas       = "clearCanvas"
	CmdBookmarkAppState  = "bookmarkAppState"
	CmdToggleConnectMode = "toggleConnectMode"
)

var ErrUnknownCommand = errors.New("unknown command")

// Exec runs a zero-argument toolbar command by name. For commands that
// create something it returns the new id.
func (e *Engine) Exec(ctx context.Context, name string) (string, error) {
	switch name {
	case CmdAddCircle:
		return e.AddCircle().ID, nil
	case CmdAddRectangle:
		return e.AddRectangle().ID, nil
	case CmdZoomIn:
		e.ZoomIn()
	case CmdZoomOut:
		e.ZoomOut()
	case CmdTogglePan:
		e.TogglePan()
	case CmdClearCanvas:
		e.ClearCanvas()
	case CmdBookmarkAppState:
		return e.BookmarkAppState(ctx)
	case CmdToggleConnectMode:
		e.ToggleConnectMode()
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return "", nil
}
