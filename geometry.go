package main

// BoxGeometry describes one text region as fractions of the slide canvas.
// All fields are in [0, 1]; the interaction sessions below keep
// X+Width <= 1 and Y+Height <= 1.
type BoxGeometry struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
}

// DragSession captures the state of an in-progress box move: the pointer
// position and box geometry at press time. Pointer coordinates are
// fractions of the canvas, same space as the geometry.
type DragSession struct {
	region Region
	startX float64
	startY float64
	box    BoxGeometry
}

func beginDrag(region Region, pointerX, pointerY float64, box BoxGeometry) DragSession {
	return DragSession{
		region: region,
		startX: pointerX,
		startY: pointerY,
		box:    box,
	}
}

// pointerMove returns the geometry for the current pointer position.
// Size is unchanged; the origin follows the pointer delta, clamped so the
// box stays fully inside the canvas.
func (s DragSession) pointerMove(pointerX, pointerY float64) BoxGeometry {
	box := s.box
	box.X = clampFloat(s.box.X+(pointerX-s.startX), 0, 1-s.box.Width)
	box.Y = clampFloat(s.box.Y+(pointerY-s.startY), 0, 1-s.box.Height)
	return box
}

// ResizeSession captures an in-progress corner resize.
type ResizeSession struct {
	region Region
	corner Corner
	startX float64
	startY float64
	box    BoxGeometry
}

func beginResize(region Region, corner Corner, pointerX, pointerY float64, box BoxGeometry) ResizeSession {
	return ResizeSession{
		region: region,
		corner: corner,
		startX: pointerX,
		startY: pointerY,
		box:    box,
	}
}

// pointerMove returns the geometry for the current pointer position.
// Right/bottom edges grow or shrink the box in place. Left/top edges move
// the origin and shrink the matching dimension by the same delta, so the
// opposite edge stays put while the near corner follows the pointer.
func (s ResizeSession) pointerMove(pointerX, pointerY float64) BoxGeometry {
	dx := pointerX - s.startX
	dy := pointerY - s.startY
	box := s.box

	switch s.corner {
	case CornerBR:
		box.Width = growEdge(s.box.X, s.box.Width, dx, minBoxWidth)
		box.Height = growEdge(s.box.Y, s.box.Height, dy, minBoxHeight)
	case CornerTR:
		box.Width = growEdge(s.box.X, s.box.Width, dx, minBoxWidth)
		box.Y, box.Height = moveEdge(s.box.Y, s.box.Height, dy, minBoxHeight)
	case CornerBL:
		box.X, box.Width = moveEdge(s.box.X, s.box.Width, dx, minBoxWidth)
		box.Height = growEdge(s.box.Y, s.box.Height, dy, minBoxHeight)
	case CornerTL:
		box.X, box.Width = moveEdge(s.box.X, s.box.Width, dx, minBoxWidth)
		box.Y, box.Height = moveEdge(s.box.Y, s.box.Height, dy, minBoxHeight)
	}
	return box
}

// growEdge resizes from the far edge: the origin is fixed, the dimension
// changes by delta, clamped between the floor and the canvas boundary.
func growEdge(origin, size, delta, floor float64) float64 {
	return clampFloat(size+delta, floor, 1-origin)
}

// moveEdge resizes from the near edge: the origin moves by delta and the
// dimension shrinks by the same amount, keeping origin+size constant.
// Delta is clamped so the origin stays in [0, 1] and the box never drops
// below the floor.
func moveEdge(origin, size, delta, floor float64) (float64, float64) {
	delta = clampFloat(delta, -origin, size-floor)
	return origin + delta, size - delta
}

func clampFloat(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
