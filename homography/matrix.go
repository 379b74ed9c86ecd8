package homography

import (
	"math"

	"github.com/LdDl/kicksense/mot"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a 3x3 projective transform in row-major order, Matrix[8] is normally 1
type Matrix [9]float64

// maxCondition bounds the condition number of the 8x8 system. Beyond it the points
// are treated as degenerate (collinear or repeated)
const maxCondition = 1e12

// Solve computes matrix mapping src[i] -> dst[i] for four point pairs.
// Both point sets are normalized first (centroid at origin, mean distance sqrt(2)),
// then the 8 unknowns h00..h21 come from the linear system A*h = b with h22 fixed to 1.
func Solve(src, dst []mot.Point) (Matrix, error) {
	if len(src) != 4 || len(dst) != 4 {
		return Matrix{}, errors.Wrapf(ErrDegenerate, "need exactly 4 point pairs, got %d and %d", len(src), len(dst))
	}
	srcNorm, srcT, _, ok := normalize(src)
	if !ok {
		return Matrix{}, errors.Wrap(ErrDegenerate, "pixel points coincide")
	}
	dstNorm, _, dstInv, ok := normalize(dst)
	if !ok {
		return Matrix{}, errors.Wrap(ErrDegenerate, "reference points coincide")
	}

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := srcNorm[i].X, srcNorm[i].Y
		u, v := dstNorm[i].X, dstNorm[i].Y
		r := 2 * i
		a.SetRow(r, []float64{x, y, 1, 0, 0, 0, -x * u, -y * u})
		b.SetVec(r, u)
		a.SetRow(r+1, []float64{0, 0, 0, x, y, 1, -x * v, -y * v})
		b.SetVec(r+1, v)
	}

	var lu mat.LU
	lu.Factorize(a)
	if cond := lu.Cond(); math.IsInf(cond, 0) || math.IsNaN(cond) || cond > maxCondition {
		return Matrix{}, errors.Wrap(ErrDegenerate, "calibration points do not span a quadrilateral")
	}
	var h mat.VecDense
	if err := lu.SolveVecTo(&h, false, b); err != nil {
		return Matrix{}, errors.Wrap(ErrDegenerate, err.Error())
	}
	var normalized Matrix
	for i := 0; i < 8; i++ {
		normalized[i] = h.AtVec(i)
	}
	normalized[8] = 1

	m := dstInv.Mul(normalized).Mul(srcT)
	if math.Abs(m[8]) > 1e-12 {
		scale := m[8]
		for i := range m {
			m[i] /= scale
		}
	}
	return m, nil
}

// normalize returns similarity-normalized copy of points together with the
// normalizing transform and its inverse
func normalize(pts []mot.Point) ([]mot.Point, Matrix, Matrix, bool) {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))
	meanDist := 0.0
	for _, p := range pts {
		meanDist += math.Hypot(p.X-cx, p.Y-cy)
	}
	meanDist /= float64(len(pts))
	if meanDist < 1e-9 {
		return nil, Matrix{}, Matrix{}, false
	}
	s := math.Sqrt2 / meanDist
	out := make([]mot.Point, len(pts))
	for i, p := range pts {
		out[i] = mot.Point{X: s * (p.X - cx), Y: s * (p.Y - cy)}
	}
	t := Matrix{s, 0, -s * cx, 0, s, -s * cy, 0, 0, 1}
	inv := Matrix{1 / s, 0, cx, 0, 1 / s, cy, 0, 0, 1}
	return out, t, inv, true
}

// Mul returns m * other
func (m Matrix) Mul(other Matrix) Matrix {
	a := mat.NewDense(3, 3, append([]float64(nil), m[:]...))
	b := mat.NewDense(3, 3, append([]float64(nil), other[:]...))
	var c mat.Dense
	c.Mul(a, b)
	var out Matrix
	copy(out[:], c.RawMatrix().Data)
	return out
}

// Apply transforms a point dividing by the homogeneous coordinate
func (m Matrix) Apply(p mot.Point) (mot.Point, error) {
	w := m[6]*p.X + m[7]*p.Y + m[8]
	if math.Abs(w) < 1e-12 {
		return mot.Point{}, errors.Wrapf(ErrDegenerate, "point (%.2f, %.2f) maps to infinity", p.X, p.Y)
	}
	return mot.Point{
		X: (m[0]*p.X + m[1]*p.Y + m[2]) / w,
		Y: (m[3]*p.X + m[4]*p.Y + m[5]) / w,
	}, nil
}

// Lerp interpolates two matrices element by element, t in [0, 1].
// This is not a projective interpolation: good enough for slow camera drift only.
func Lerp(a, b Matrix, t float64) Matrix {
	var out Matrix
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*t
	}
	return out
}
