package mot

import (
	kalman_filter "github.com/LdDl/kalman-filter"
)

// BallState tells where the ball box of a frame came from
type BallState uint8

const (
	BallMissing BallState = iota
	BallDetected
	BallPredicted
)

// BallFilter follows the single match ball with 2-D Kalman filter on its center.
// The ball is small and often lost by the detector for a couple of frames:
// the filter bridges up to maxGap missed frames with predicted positions.
type BallFilter struct {
	dt     float64
	maxGap int
	missed int
	width  float64
	height float64
	kf     *kalman_filter.Kalman2D
}

// NewBallFilter creates filter with time step of one frame
func NewBallFilter(maxGap int) *BallFilter {
	return &BallFilter{
		dt:     1.0,
		maxGap: maxGap,
	}
}

// Step consumes ball detections of the next frame.
// When several candidates are present the one closest to the predicted position wins
// (or the most confident one if nothing is being followed yet).
func (bf *BallFilter) Step(detections []*BoxBlob) (Rectangle, BallState) {
	var predicted Point
	if bf.kf != nil {
		bf.kf.Predict()
		x, y := bf.kf.GetState()
		predicted = Point{X: x, Y: y}
	}

	var best *BoxBlob
	bestScore := 0.0
	for _, det := range detections {
		var score float64
		if bf.kf != nil {
			score = -euclideanDistance(det.GetCenter(), predicted)
		} else {
			score = det.GetConfidence()
		}
		if best == nil || score > bestScore {
			best = det
			bestScore = score
		}
	}

	if best != nil {
		bbox := best.GetBBox()
		center := bbox.Center()
		if bf.kf == nil || bf.kf.Update(center.X, center.Y) != nil {
			bf.reset(center)
		}
		bf.width, bf.height = bbox.Width, bbox.Height
		bf.missed = 0
		return bbox, BallDetected
	}

	if bf.kf != nil && bf.missed < bf.maxGap {
		bf.missed++
		return NewRect(predicted.X-bf.width/2.0, predicted.Y-bf.height/2.0, bf.width, bf.height), BallPredicted
	}
	bf.kf = nil
	bf.missed = 0
	return Rectangle{}, BallMissing
}

func (bf *BallFilter) reset(center Point) {
	bf.kf = kalman_filter.NewKalman2D(bf.dt, 1.0, 1.0, 2.0, 0.1, 0.1, kalman_filter.WithState2D(center.X, center.Y))
}
