package main

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDragFollowsPointer(t *testing.T) {
	box := BoxGeometry{X: 0.1, Y: 0.1, Width: 0.4, Height: 0.2}
	s := beginDrag(RegionTitle, 0.2, 0.2, box)

	moved := s.pointerMove(0.4, 0.3)
	if !almostEqual(moved.X, 0.3) || !almostEqual(moved.Y, 0.2) {
		t.Errorf("origin (%v, %v), want (0.3, 0.2)", moved.X, moved.Y)
	}
	if !almostEqual(moved.Width, box.Width) || !almostEqual(moved.Height, box.Height) {
		t.Error("drag changed the box size")
	}
}

func TestDragClampsToCanvas(t *testing.T) {
	box := BoxGeometry{X: 0.1, Y: 0.1, Width: 0.4, Height: 0.2}
	s := beginDrag(RegionTitle, 0.2, 0.2, box)

	moved := s.pointerMove(-5, -5)
	if moved.X != 0 || moved.Y != 0 {
		t.Errorf("origin (%v, %v), want (0, 0)", moved.X, moved.Y)
	}

	moved = s.pointerMove(5, 5)
	if !almostEqual(moved.X, 0.6) || !almostEqual(moved.Y, 0.8) {
		t.Errorf("origin (%v, %v), want (0.6, 0.8)", moved.X, moved.Y)
	}
	if moved.X+moved.Width > 1 || moved.Y+moved.Height > 1 {
		t.Error("box escaped the canvas")
	}
}

func TestResizeBottomRightGrows(t *testing.T) {
	box := BoxGeometry{X: 0.1, Y: 0.1, Width: 0.4, Height: 0.2}
	s := beginResize(RegionBody, CornerBR, 0.5, 0.3, box)

	resized := s.pointerMove(0.7, 0.5)
	if !almostEqual(resized.Width, 0.6) || !almostEqual(resized.Height, 0.4) {
		t.Errorf("size (%v, %v), want (0.6, 0.4)", resized.Width, resized.Height)
	}
	if resized.X != box.X || resized.Y != box.Y {
		t.Error("far-edge resize moved the origin")
	}
}

func TestResizeTopLeftKeepsOppositeCorner(t *testing.T) {
	box := BoxGeometry{X: 0.2, Y: 0.2, Width: 0.4, Height: 0.4}
	s := beginResize(RegionBody, CornerTL, 0.2, 0.2, box)

	resized := s.pointerMove(0.3, 0.3)
	if !almostEqual(resized.X, 0.3) || !almostEqual(resized.Y, 0.3) {
		t.Errorf("origin (%v, %v), want (0.3, 0.3)", resized.X, resized.Y)
	}
	// The bottom-right corner must not move.
	if !almostEqual(resized.X+resized.Width, 0.6) || !almostEqual(resized.Y+resized.Height, 0.6) {
		t.Errorf("opposite corner moved to (%v, %v)", resized.X+resized.Width, resized.Y+resized.Height)
	}
}

func TestResizeEnforcesMinimumSize(t *testing.T) {
	box := BoxGeometry{X: 0.1, Y: 0.1, Width: 0.4, Height: 0.2}

	// Collapse from the bottom-right: size floors, origin fixed.
	br := beginResize(RegionBody, CornerBR, 0.5, 0.3, box)
	resized := br.pointerMove(0, 0)
	if !almostEqual(resized.Width, minBoxWidth) || !almostEqual(resized.Height, minBoxHeight) {
		t.Errorf("size (%v, %v), want floors (%v, %v)",
			resized.Width, resized.Height, minBoxWidth, minBoxHeight)
	}

	// Collapse from the top-left: origin stops where the floor is reached.
	tl := beginResize(RegionBody, CornerTL, 0.1, 0.1, box)
	resized = tl.pointerMove(1, 1)
	if !almostEqual(resized.Width, minBoxWidth) || !almostEqual(resized.Height, minBoxHeight) {
		t.Errorf("size (%v, %v), want floors", resized.Width, resized.Height)
	}
	if !almostEqual(resized.X+resized.Width, 0.5) || !almostEqual(resized.Y+resized.Height, 0.3) {
		t.Error("far edge moved while collapsing from the near edge")
	}
}

func TestResizeClampsToCanvas(t *testing.T) {
	box := BoxGeometry{X: 0.5, Y: 0.5, Width: 0.3, Height: 0.3}
	s := beginResize(RegionBody, CornerBR, 0.8, 0.8, box)

	resized := s.pointerMove(5, 5)
	if !almostEqual(resized.Width, 0.5) || !almostEqual(resized.Height, 0.5) {
		t.Errorf("size (%v, %v), want clamped to canvas", resized.Width, resized.Height)
	}
}

func TestClampFloatDegenerateRange(t *testing.T) {
	// When the floor exceeds the canvas remainder the floor wins.
	if got := clampFloat(0.5, 0.3, 0.1); got != 0.3 {
		t.Errorf("got %v, want lo when hi < lo", got)
	}
}
