package postproc

import "github.com/LdDl/kicksense/mot"

// LargestShift picks the feature which moved the most between frames and returns the camera
// shift it implies (previous minus next). Features with ok false are ignored.
// moved reports whether the displacement exceeded minMotion.
func LargestShift(prev, next []mot.Point, ok []bool, minMotion float64) (dx, dy float64, moved bool) {
	largest := 0.0
	for i := range prev {
		if i >= len(next) || (ok != nil && (i >= len(ok) || !ok[i])) {
			continue
		}
		if d := prev[i].DistanceTo(next[i]); d > largest {
			largest = d
			dx, dy = prev[i].X-next[i].X, prev[i].Y-next[i].Y
		}
	}
	return dx, dy, largest > minMotion
}

// NearEdges keeps points within margin pixels of left or right frame border, where the stands
// and advertising boards are rather than moving players
func NearEdges(points []mot.Point, width int, margin float64) []mot.Point {
	out := points[:0:0]
	for _, p := range points {
		if p.X < margin || p.X >= float64(width)-margin {
			out = append(out, p)
		}
	}
	return out
}
