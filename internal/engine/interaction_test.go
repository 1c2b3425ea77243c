package engine

import "testing"

func TestControllerSelection(t *testing.T) {
	var c Controller

	if _, ok := c.PointerDown("a"); ok {
		t.Fatal("selection should not request a connection")
	}
	if got := c.State(); got.Kind != StateSelected || got.ShapeID != "a" {
		t.Fatalf("expected selected(a), got %+v", got)
	}

	c.PointerDown("b")
	if id, ok := c.SelectedID(); !ok || id != "b" {
		t.Fatalf("expected selected(b), got %q %v", id, ok)
	}

	c.PointerDown("")
	if got := c.State(); got.Kind != StateIdle || got.ShapeID != "" {
		t.Fatalf("expected idle, got %+v", got)
	}
}

func TestControllerConnect(t *testing.T) {
	var c Controller
	c.ToggleConnectMode()

	c.PointerDown("a")
	if got := c.State(); got.Kind != StateConnecting || got.ShapeID != "a" {
		t.Fatalf("expected connecting(a), got %+v", got)
	}
	want := "Connecting from a. Click another shape to connect."
	if got := c.Notification(); got != want {
		t.Errorf("expected notification %q, got %q", want, got)
	}

	// Pressing the source again changes nothing.
	if _, ok := c.PointerDown("a"); ok {
		t.Fatal("self connection requested")
	}
	if got := c.State(); got.Kind != StateConnecting || got.ShapeID != "a" {
		t.Fatalf("expected connecting(a), got %+v", got)
	}

	req, ok := c.PointerDown("b")
	if !ok {
		t.Fatal("expected a connect request")
	}
	if req.From != "a" || req.To != "b" {
		t.Errorf("expected a -> b, got %s -> %s", req.From, req.To)
	}
	if c.State().Kind != StateIdle {
		t.Errorf("expected idle after connecting, got %v", c.State().Kind)
	}
	if !c.ConnectMode() {
		t.Error("connect mode should stay on after a connection")
	}
	if c.Notification() != "" {
		t.Errorf("notification should clear, got %q", c.Notification())
	}
}

func TestControllerConnectFromSelected(t *testing.T) {
	var c Controller
	c.PointerDown("a")
	c.SetConnectMode(true)

	c.PointerDown("b")
	if got := c.State(); got.Kind != StateConnecting || got.ShapeID != "b" {
		t.Fatalf("expected connecting(b), got %+v", got)
	}
}

func TestControllerAbandonConnection(t *testing.T) {
	tests := []struct {
		name  string
		abort func(*Controller)
	}{
		{"background press", func(c *Controller) { c.PointerDown("") }},
		{"connect mode off", func(c *Controller) { c.SetConnectMode(false) }},
		{"source forgotten", func(c *Controller) { c.Forget("a") }},
		{"reset", func(c *Controller) { c.Reset() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Controller
			c.SetConnectMode(true)
			c.PointerDown("a")

			tt.abort(&c)

			if c.State().Kind != StateIdle {
				t.Errorf("expected idle, got %v", c.State().Kind)
			}
			if _, ok := c.PointerDown("b"); ok {
				t.Error("abandoned connection still completed")
			}
		})
	}
}

func TestControllerSelectIgnoredWhileConnecting(t *testing.T) {
	var c Controller
	c.SetConnectMode(true)
	c.PointerDown("a")

	c.Select("b")
	if got := c.State(); got.Kind != StateConnecting || got.ShapeID != "a" {
		t.Fatalf("expected connecting(a), got %+v", got)
	}
}

func TestControllerSelectInConnectModeWhenIdle(t *testing.T) {
	var c Controller
	c.SetConnectMode(true)
	c.PointerDown("a")
	c.PointerDown("b")

	c.Select("b")
	if id, ok := c.SelectedID(); !ok || id != "b" {
		t.Fatalf("expected b selected, got %+v", c.State())
	}
	if !c.ConnectMode() {
		t.Error("select should not leave connect mode")
	}

	// The next press starts a connection from the pressed shape.
	c.PointerDown("a")
	if got := c.State(); got.Kind != StateConnecting || got.ShapeID != "a" {
		t.Errorf("expected connecting(a), got %+v", got)
	}
}

func TestStateKindString(t *testing.T) {
	for kind, want := range map[StateKind]string{
		StateIdle:       "idle",
		StateSelected:   "selected",
		StateConnecting: "connecting",
	} {
		if kind.String() != want {
			t.Errorf("expected %q, got %q", want, kind.String())
		}
	}
}
