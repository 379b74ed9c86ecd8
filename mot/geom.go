package mot

import (
	"image"
	"math"
)

// Rectangle is an axis-aligned pixel box: top-left corner plus size.
type Rectangle struct {
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Width  float64 `msgpack:"w"`
	Height float64 `msgpack:"h"`
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// NewRectFromCorners builds rectangle from (x1, y1) top-left and (x2, y2) bottom-right corners
func NewRectFromCorners(x1, y1, x2, y2 float64) Rectangle {
	return Rectangle{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// X2 returns right border
func (r Rectangle) X2() float64 {
	return r.X + r.Width
}

// Y2 returns bottom border
func (r Rectangle) Y2() float64 {
	return r.Y + r.Height
}

// Empty reports whether rectangle has no area
func (r Rectangle) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rectangle) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

func (r Rectangle) Center() Point {
	return Point{
		X: r.X + r.Width/2.0,
		Y: r.Y + r.Height/2.0,
	}
}

// Diagonal returns length of rectangle's diagonal
func (r Rectangle) Diagonal() float64 {
	return math.Hypot(r.Width, r.Height)
}

// FootPoint returns ground contact point of a person box: horizontal center of the bottom border.
// Coordinates are truncated to whole pixels.
func (r Rectangle) FootPoint() Point {
	return Point{
		X: math.Trunc((r.X + r.X2()) / 2.0),
		Y: math.Trunc(r.Y2()),
	}
}

// Image converts rectangle to image.Rectangle (rounding corners to the nearest pixel)
func (r Rectangle) Image() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X2())), int(math.Round(r.Y2())),
	)
}

// Clamp clips rectangle to the [0, width-1] x [0, height-1] frame.
// Returns false when nothing is left after clipping.
func (r Rectangle) Clamp(width, height int) (Rectangle, bool) {
	x1 := clampFloat64(r.X, 0, float64(width-1))
	x2 := clampFloat64(r.X2(), 0, float64(width-1))
	y1 := clampFloat64(r.Y, 0, float64(height-1))
	y2 := clampFloat64(r.Y2(), 0, float64(height-1))
	if x2 <= x1 || y2 <= y1 {
		return Rectangle{}, false
	}
	return NewRectFromCorners(x1, y1, x2, y2), true
}

type Point struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}

// DistanceTo returns euclidean distance between two points
func (p Point) DistanceTo(other Point) float64 {
	return euclideanDistance(p, other)
}

// Sub returns p - other
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}
