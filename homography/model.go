// Package homography maps pixel coordinates of broadcast frames to metric pitch coordinates.
//
// Calibration is done on keyframes: four pixel points on the edge of the centre circle,
// ordered left, right, bottom, top. Frames between keyframes use linearly interpolated matrices.
package homography

import (
	"sort"

	"github.com/LdDl/kicksense/mot"
	"github.com/pkg/errors"
)

var (
	// ErrNoKeyframes is returned when a transform is requested before any calibration
	ErrNoKeyframes = errors.New("homography: no keyframes")
	// ErrDegenerate is returned for calibration points or pixels which give no finite transform
	ErrDegenerate = errors.New("homography: degenerate geometry")
)

// CenterCircleRadius is the radius of the centre circle in meters
const CenterCircleRadius = 9.15

// Keyframe is a calibrated frame
type Keyframe struct {
	Frame  int
	Matrix Matrix
}

// Model keeps keyframes sorted by frame index
type Model struct {
	radius    float64
	keyframes []Keyframe
	bounds    []mot.Point
}

type Option func(*Model)

// WithRadius overrides radius of the reference circle
func WithRadius(radius float64) Option {
	return func(m *Model) {
		m.radius = radius
	}
}

// WithBounds restricts transforms to pixels inside polygon (e.g. visible part of the pitch).
// Pixels outside are reported as degenerate.
func WithBounds(polygon []mot.Point) Option {
	return func(m *Model) {
		m.bounds = append([]mot.Point(nil), polygon...)
	}
}

func NewModel(opts ...Option) *Model {
	m := &Model{radius: CenterCircleRadius}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ReferencePoints returns metric points matching calibration order: left, right, bottom, top
func (m *Model) ReferencePoints() []mot.Point {
	r := m.radius
	return []mot.Point{{X: -r, Y: 0}, {X: r, Y: 0}, {X: 0, Y: -r}, {X: 0, Y: r}}
}

// AddKeyframe calibrates frame from four pixel points on the reference circle
func (m *Model) AddKeyframe(frameIdx int, pixels []mot.Point) error {
	return m.AddCorrespondence(frameIdx, pixels, m.ReferencePoints())
}

// AddCorrespondence calibrates frame from any four pixel -> meter point pairs.
// Keyframe for an already calibrated frame is replaced.
func (m *Model) AddCorrespondence(frameIdx int, pixels, meters []mot.Point) error {
	matrix, err := Solve(pixels, meters)
	if err != nil {
		return errors.Wrapf(err, "keyframe %d", frameIdx)
	}
	pos := sort.Search(len(m.keyframes), func(i int) bool {
		return m.keyframes[i].Frame >= frameIdx
	})
	if pos < len(m.keyframes) && m.keyframes[pos].Frame == frameIdx {
		m.keyframes[pos].Matrix = matrix
		return nil
	}
	m.keyframes = append(m.keyframes, Keyframe{})
	copy(m.keyframes[pos+1:], m.keyframes[pos:])
	m.keyframes[pos] = Keyframe{Frame: frameIdx, Matrix: matrix}
	return nil
}

// Keyframes returns copy of calibrated keyframes in frame order
func (m *Model) Keyframes() []Keyframe {
	return append([]Keyframe(nil), m.keyframes...)
}

// Matrix returns transform for the frame: first keyframe before the calibrated range,
// last keyframe after it, linear interpolation of the bracketing keyframes inside.
func (m *Model) Matrix(frameIdx int) (Matrix, error) {
	n := len(m.keyframes)
	if n == 0 {
		return Matrix{}, ErrNoKeyframes
	}
	if frameIdx <= m.keyframes[0].Frame {
		return m.keyframes[0].Matrix, nil
	}
	if frameIdx >= m.keyframes[n-1].Frame {
		return m.keyframes[n-1].Matrix, nil
	}
	next := sort.Search(n, func(i int) bool {
		return m.keyframes[i].Frame >= frameIdx
	})
	after := m.keyframes[next]
	if after.Frame == frameIdx {
		return after.Matrix, nil
	}
	before := m.keyframes[next-1]
	t := float64(frameIdx-before.Frame) / float64(after.Frame-before.Frame)
	return Lerp(before.Matrix, after.Matrix, t), nil
}

// TransformPoint maps pixel to pitch meters at the frame
func (m *Model) TransformPoint(pixel mot.Point, frameIdx int) (mot.Point, error) {
	matrix, err := m.Matrix(frameIdx)
	if err != nil {
		return mot.Point{}, err
	}
	if len(m.bounds) >= 3 && !insidePolygon(m.bounds, pixel) {
		return mot.Point{}, errors.Wrapf(ErrDegenerate, "pixel (%.1f, %.1f) outside calibrated area", pixel.X, pixel.Y)
	}
	return matrix.Apply(pixel)
}

// insidePolygon is even-odd ray casting test, points on the border count as inside
func insidePolygon(polygon []mot.Point, p mot.Point) bool {
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		a, b := polygon[i], polygon[j]
		if onSegment(a, b, p) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(a, b, p mot.Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if cross > 1e-9 || cross < -1e-9 {
		return false
	}
	return p.X >= min(a.X, b.X) && p.X <= max(a.X, b.X) && p.Y >= min(a.Y, b.Y) && p.Y <= max(a.Y, b.Y)
}
