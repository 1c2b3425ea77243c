//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/Draichi/canvas-ui/internal/bookmark"
	"github.com/Draichi/canvas-ui/internal/document"
	"github.com/Draichi/canvas-ui/internal/engine"
)

var (
	eng       *engine.Engine
	bookmarks *bookmark.Service
)

func main() {
	ctx := context.Background()

	// Same keys the browser app always used: appState and bookmark-view-*.
	bookmarks = bookmark.NewService(newLocalStorage())
	eng = engine.NewEngine(engine.WithBookmarks(bookmarks))
	eng.LoadSnapshot(bookmarks.LoadWorkingState(ctx))
	eng.Subscribe(bookmark.NewAutosaver(bookmarks, eng))

	canvasEngine := js.Global().Get("Object").New()

	// --- Toolbar ---
	for _, name := range []string{
		engine.CmdAddCircle,
		engine.CmdAddRectangle,
		engine.CmdZoomIn,
		engine.CmdZoomOut,
		engine.CmdTogglePan,
		engine.CmdClearCanvas,
		engine.CmdBookmarkAppState,
		engine.CmdToggleConnectMode,
	} {
		canvasEngine.Set(name, js.FuncOf(execCommand(name)))
	}

	// --- Pointer events (frontend → backend) ---
	canvasEngine.Set("pointerDown", js.FuncOf(pointerDown))
	canvasEngine.Set("pointerDownAt", js.FuncOf(pointerDownAt))
	canvasEngine.Set("dragStart", js.FuncOf(dragStart))
	canvasEngine.Set("dragMove", js.FuncOf(dragMove))
	canvasEngine.Set("dragEnd", js.FuncOf(dragEnd))
	canvasEngine.Set("transformEnd", js.FuncOf(transformEnd))
	canvasEngine.Set("panEnd", js.FuncOf(panEnd))
	canvasEngine.Set("deleteShape", js.FuncOf(deleteShape))
	canvasEngine.Set("deleteArrow", js.FuncOf(deleteArrow))
	canvasEngine.Set("setScreenSize", js.FuncOf(setScreenSize))
	canvasEngine.Set("loadSample", js.FuncOf(loadSample))
	canvasEngine.Set("loadBookmark", js.FuncOf(loadBookmark))
	canvasEngine.Set("deleteBookmark", js.FuncOf(deleteBookmark))

	// --- Queries (frontend ← backend) ---
	canvasEngine.Set("render", js.FuncOf(render))
	canvasEngine.Set("hitTest", js.FuncOf(hitTest))
	canvasEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	canvasEngine.Set("getState", js.FuncOf(getState))
	canvasEngine.Set("listBookmarks", js.FuncOf(listBookmarks))

	js.Global().Set("canvasEngine", canvasEngine)
	js.Global().Set("canvasWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorValue(err error) js.Value {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

// --- Command Handlers ---

func execCommand(name string) func(js.Value, []js.Value) any {
	return func(this js.Value, args []js.Value) any {
		created, err := eng.Exec(context.Background(), name)
		if err != nil {
			return errorValue(err)
		}
		return js.ValueOf(map[string]any{"ok": true, "created": created})
	}
}

func pointerDown(this js.Value, args []js.Value) any {
	id := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		id = args[0].String()
	}
	arrow, ok := eng.PointerDown(id)
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(arrow.ID)
}

func pointerDownAt(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.PointerDownAt(args[0].Float(), args[1].Float()))
}

func dragStart(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.DragStart(args[0].String()))
}

func dragMove(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.DragMove(args[0].String(), args[1].Float(), args[2].Float()))
}

func dragEnd(this js.Value, args []js.Value) any {
	eng.DragEnd()
	return nil
}

func transformEnd(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	var t document.Transform
	if err := json.Unmarshal([]byte(args[1].String()), &t); err != nil {
		return errorValue(err)
	}
	return js.ValueOf(eng.TransformEnd(args[0].String(), t))
}

func panEnd(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.PanEnd(document.Point{X: args[0].Float(), Y: args[1].Float()}))
}

func deleteShape(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.DeleteShape(args[0].String()))
}

func deleteArrow(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.DeleteArrow(args[0].String()))
}

func setScreenSize(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return nil
	}
	eng.SetScreenSize(args[0].Float(), args[1].Float())
	return nil
}

func loadSample(this js.Value, args []js.Value) any {
	eng.LoadSnapshot(document.NewSampleSnapshot())
	return js.ValueOf(map[string]any{"ok": true})
}

func loadBookmark(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing bookmark id"})
	}
	if err := eng.LoadBookmark(context.Background(), args[0].String()); err != nil {
		return errorValue(err)
	}
	return js.ValueOf(map[string]any{"ok": true})
}

func deleteBookmark(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing bookmark id"})
	}
	if err := bookmarks.DeleteBookmark(context.Background(), args[0].String()); err != nil {
		return errorValue(err)
	}
	return js.ValueOf(map[string]any{"ok": true})
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getState(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.StateJSON())
}

func listBookmarks(this js.Value, args []js.Value) any {
	list, err := bookmarks.ListBookmarks(context.Background())
	if err != nil {
		return errorValue(err)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(string(data))
}
