package engine

import "fmt"

// StateKind enumerates the pointer interaction states.
type StateKind int

const (
	StateIdle StateKind = iota
	StateSelected
	StateConnecting
)

func (k StateKind) String() string {
	switch k {
	case StateSelected:
		return "selected"
	case StateConnecting:
		return "connecting"
	default:
		return "idle"
	}
}

// MarshalText lets the kind appear as a string in JSON views.
func (k StateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *StateKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*k = StateIdle
	case "selected":
		*k = StateSelected
	case "connecting":
		*k = StateConnecting
	default:
		return fmt.Errorf("unknown interaction state %q", text)
	}
	return nil
}

// InteractionState is the current state plus the shape it refers to.
// ShapeID is empty in StateIdle.
type InteractionState struct {
	Kind    StateKind `json:"kind"`
	ShapeID string    `json:"shapeId,omitempty"`
}

// ConnectRequest asks the scene for an arrow between two shapes.
type ConnectRequest struct {
	From string
	To   string
}

// Controller is the selection/connection state machine. It does not touch
// the scene; completing a connection yields a ConnectRequest for the caller.
type Controller struct {
	state       InteractionState
	connectMode bool
}

// State returns the current interaction state.
func (c Controller) State() InteractionState { return c.state }

// ConnectMode reports whether clicks build arrows.
func (c Controller) ConnectMode() bool { return c.connectMode }

// SelectedID returns the shape the transformer is attached to, if any.
func (c Controller) SelectedID() (string, bool) {
	if c.state.Kind == StateSelected {
		return c.state.ShapeID, true
	}
	return "", false
}

// PointerDown applies a press on target, where empty target is the stage
// background. It returns a request when the press completes a connection.
func (c *Controller) PointerDown(target string) (ConnectRequest, bool) {
	if target == "" {
		c.state = InteractionState{Kind: StateIdle}
		return ConnectRequest{}, false
	}

	if !c.connectMode {
		c.state = InteractionState{Kind: StateSelected, ShapeID: target}
		return ConnectRequest{}, false
	}

	if c.state.Kind == StateConnecting {
		if target == c.state.ShapeID {
			// Pressing the source again keeps waiting for a target.
			return ConnectRequest{}, false
		}
		req := ConnectRequest{From: c.state.ShapeID, To: target}
		c.state = InteractionState{Kind: StateIdle}
		return req, true
	}

	c.state = InteractionState{Kind: StateConnecting, ShapeID: target}
	return ConnectRequest{}, false
}

// Select attaches the selection to id, as a drag start does. It is ignored
// while a connection is pending.
func (c *Controller) Select(id string) {
	if c.state.Kind == StateConnecting {
		return
	}
	c.state = InteractionState{Kind: StateSelected, ShapeID: id}
}

// SetConnectMode switches connect mode. Turning it off abandons a pending
// connection.
func (c *Controller) SetConnectMode(on bool) {
	c.connectMode = on
	if !on && c.state.Kind == StateConnecting {
		c.state = InteractionState{Kind: StateIdle}
	}
}

// ToggleConnectMode flips connect mode and returns the new value.
func (c *Controller) ToggleConnectMode() bool {
	c.SetConnectMode(!c.connectMode)
	return c.connectMode
}

// Forget drops the selection or pending connection if it refers to id.
func (c *Controller) Forget(id string) {
	if c.state.ShapeID == id {
		c.state = InteractionState{Kind: StateIdle}
	}
}

// ClearState returns to Idle and keeps connect mode.
func (c *Controller) ClearState() {
	c.state = InteractionState{Kind: StateIdle}
}

// Reset returns to Idle with connect mode off.
func (c *Controller) Reset() {
	c.state = InteractionState{Kind: StateIdle}
	c.connectMode = false
}

// Notification is the hint shown while a connection is pending.
func (c Controller) Notification() string {
	if c.state.Kind != StateConnecting {
		return ""
	}
	return fmt.Sprintf("Connecting from %s. Click another shape to connect.", c.state.ShapeID)
}
