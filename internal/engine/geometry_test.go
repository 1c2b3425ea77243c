package engine

import (
	"math"
	"testing"

	"github.com/Draichi/canvas-ui/internal/document"
)

const epsilon = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func circleAt(id string, x, y float64) document.Shape {
	return document.Shape{ID: id, Type: document.ShapeCircle, X: x, Y: y, ScaleX: 1, ScaleY: 1}
}

func squareAt(id string, x, y float64) document.Shape {
	return document.Shape{ID: id, Type: document.ShapeSquare, X: x, Y: y, ScaleX: 1, ScaleY: 1}
}

func TestAdjustedEndpointsHorizontalCircles(t *testing.T) {
	seg := AdjustedEndpoints(circleAt("a", 0, 0), circleAt("b", 100, 0))

	if !near(seg.Start.X, 40) || !near(seg.Start.Y, 0) {
		t.Errorf("start expected (40, 0), got (%.4f, %.4f)", seg.Start.X, seg.Start.Y)
	}
	if !near(seg.End.X, 60) || !near(seg.End.Y, 0) {
		t.Errorf("end expected (60, 0), got (%.4f, %.4f)", seg.End.X, seg.End.Y)
	}
}

func TestAdjustedEndpointsVerticalMixed(t *testing.T) {
	// Square below a circle: margins 40 and 40 along +y.
	seg := AdjustedEndpoints(circleAt("a", 10, 0), squareAt("b", 10, 200))

	if !near(seg.Start.X, 10) || !near(seg.Start.Y, 40) {
		t.Errorf("start expected (10, 40), got (%.4f, %.4f)", seg.Start.X, seg.Start.Y)
	}
	if !near(seg.End.X, 10) || !near(seg.End.Y, 160) {
		t.Errorf("end expected (10, 160), got (%.4f, %.4f)", seg.End.X, seg.End.Y)
	}
}

func TestAdjustedEndpointsDiagonal(t *testing.T) {
	seg := AdjustedEndpoints(circleAt("a", 0, 0), circleAt("b", 300, 400))

	// Direction (0.6, 0.8)
	if !near(seg.Start.X, 24) || !near(seg.Start.Y, 32) {
		t.Errorf("start expected (24, 32), got (%.4f, %.4f)", seg.Start.X, seg.Start.Y)
	}
	if !near(seg.End.X, 276) || !near(seg.End.Y, 368) {
		t.Errorf("end expected (276, 368), got (%.4f, %.4f)", seg.End.X, seg.End.Y)
	}
}

func TestAdjustedEndpointsIdenticalCenters(t *testing.T) {
	seg := AdjustedEndpoints(circleAt("a", 50, 50), circleAt("b", 50, 50))

	for i, v := range seg.Points() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("point %d is not finite: %v", i, v)
		}
	}
	// atan2(0, 0) is 0, so the ends are pushed apart along +x.
	if !near(seg.Start.X, 90) || !near(seg.End.X, 10) {
		t.Errorf("expected start.x 90 and end.x 10, got %.4f and %.4f", seg.Start.X, seg.End.X)
	}
}

func TestMarginUsesScaleX(t *testing.T) {
	tests := []struct {
		name  string
		shape document.Shape
		want  float64
	}{
		{"circle", circleAt("c", 0, 0), 40},
		{"square", squareAt("s", 0, 0), 40},
		{"scaled circle", document.Shape{Type: document.ShapeCircle, ScaleX: 2, ScaleY: 0.5}, 80},
		{"scaled square", document.Shape{Type: document.ShapeSquare, ScaleX: 1.5, ScaleY: 3}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Margin(tt.shape); !near(got, tt.want) {
				t.Errorf("expected %.2f, got %.2f", tt.want, got)
			}
		})
	}
}

func TestSegmentPoints(t *testing.T) {
	seg := Segment{Start: document.Point{X: 1, Y: 2}, End: document.Point{X: 3, Y: 4}}
	got := seg.Points()
	want := []float64{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
