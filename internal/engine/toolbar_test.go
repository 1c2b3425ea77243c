package engine

import (
	"context"
	"errors"
	"testing"
)

func TestExecToolbarCommands(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	id, err := e.Exec(ctx, CmdAddCircle)
	if err != nil || id != "shape_1" {
		t.Fatalf("expected shape_1, got %q (%v)", id, err)
	}
	if id, _ := e.Exec(ctx, CmdAddRectangle); id != "shape_2" {
		t.Errorf("expected shape_2, got %q", id)
	}

	steps := []struct {
		cmd   string
		check func() bool
	}{
		{CmdZoomIn, func() bool { return e.Viewport().Scale == 1.1 }},
		{CmdZoomOut, func() bool { return e.Viewport().Scale == 1 }},
		{CmdTogglePan, func() bool { return e.Viewport().IsPanning }},
		{CmdToggleConnectMode, func() bool { return e.Controller().ConnectMode() }},
		{CmdClearCanvas, func() bool { return e.Scene().Len() == 0 }},
	}
	for _, step := range steps {
		if _, err := e.Exec(ctx, step.cmd); err != nil {
			t.Fatalf("%s: %v", step.cmd, err)
		}
		if !step.check() {
			t.Errorf("%s had no effect", step.cmd)
		}
	}
}

func TestExecUnknownCommand(t *testing.T) {
	e := newTestEngine()
	if _, err := e.Exec(context.Background(), "explode"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}
