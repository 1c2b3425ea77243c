package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Zoom limits for Snapshot.Scale.
const (
	MinScale     = 1.0
	MaxScale     = 3.0
	DefaultScale = 1.0
)

var ErrEmptySnapshot = errors.New("empty snapshot")

// Snapshot is the unit of persistence: the whole scene plus the viewport.
// The JSON layout is shared by the working slot and every bookmark.
type Snapshot struct {
	Shapes    []Shape `json:"shapes"`
	Scale     float64 `json:"scale"`
	IsPanning bool    `json:"isPanning"`
	StagePos  Point   `json:"stagePos"`
	Arrows    []Arrow `json:"arrows"`
}

// wireSnapshot tells absent fields apart from zero values.
type wireSnapshot struct {
	Shapes    []Shape  `json:"shapes"`
	Scale     *float64 `json:"scale"`
	IsPanning *bool    `json:"isPanning"`
	StagePos  *Point   `json:"stagePos"`
	Arrows    []Arrow  `json:"arrows"`
}

// NewEmptySnapshot returns the state used when nothing usable is stored.
func NewEmptySnapshot() *Snapshot {
	return &Snapshot{
		Shapes: []Shape{},
		Scale:  DefaultScale,
		Arrows: []Arrow{},
	}
}

// ClampScale limits a zoom factor to [MinScale, MaxScale].
func ClampScale(v float64) float64 {
	return min(max(v, MinScale), MaxScale)
}

// DecodeSnapshot parses a stored snapshot. Missing fields take their empty
// defaults, shapes without an id or a known type are dropped and duplicate
// shape ids keep their first occurrence. Shape fields are kept as stored.
// Arrows pointing at unknown shapes are kept.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptySnapshot
	}

	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := NewEmptySnapshot()
	if w.Scale != nil && *w.Scale != 0 {
		snap.Scale = ClampScale(*w.Scale)
	}
	if w.IsPanning != nil {
		snap.IsPanning = *w.IsPanning
	}
	if w.StagePos != nil {
		snap.StagePos = *w.StagePos
	}

	seen := make(map[string]bool, len(w.Shapes))
	for _, s := range w.Shapes {
		if s.ID == "" || !s.Type.Valid() || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		snap.Shapes = append(snap.Shapes, s)
	}

	for _, a := range w.Arrows {
		if a.ID == "" || a.From == "" || a.To == "" {
			continue
		}
		snap.Arrows = append(snap.Arrows, a)
	}

	return snap, nil
}

// DecodeSnapshotOrEmpty is DecodeSnapshot that degrades to an empty
// snapshot instead of failing.
func DecodeSnapshotOrEmpty(data []byte) *Snapshot {
	snap, err := DecodeSnapshot(data)
	if err != nil {
		if !errors.Is(err, ErrEmptySnapshot) {
			slog.Warn("stored snapshot unreadable, starting empty", "error", err)
		}
		return NewEmptySnapshot()
	}
	return snap
}

// Encode serializes the snapshot. Nil lists are written as [].
func (s *Snapshot) Encode() ([]byte, error) {
	out := *s
	if out.Shapes == nil {
		out.Shapes = []Shape{}
	}
	if out.Arrows == nil {
		out.Arrows = []Arrow{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.Shapes = append(make([]Shape, 0, len(s.Shapes)), s.Shapes...)
	out.Arrows = append(make([]Arrow, 0, len(s.Arrows)), s.Arrows...)
	return &out
}
