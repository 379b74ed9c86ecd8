package mot

// IoU calculates Intersection over Union between two rectangles.
// Empty rectangles never overlap anything.
func IoU(r1, r2 Rectangle) float64 {
	if r1.Empty() || r2.Empty() {
		return 0.0
	}
	xA := max(r1.X, r2.X)
	yA := max(r1.Y, r2.Y)
	xB := min(r1.X2(), r2.X2())
	yB := min(r1.Y2(), r2.Y2())

	interArea := max(0, xB-xA) * max(0, yB-yA)
	if interArea == 0 {
		return 0.0
	}
	return interArea / (r1.Area() + r2.Area() - interArea)
}

func clampFloat64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
