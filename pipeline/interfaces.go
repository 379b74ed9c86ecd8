// Package pipeline drives a match video through detection, provisional tracking and
// re-identification into the track store, then runs the ordered post-processing stages.
package pipeline

import (
	"image"

	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
	"github.com/google/uuid"
)

// Detection is an object found by a Detector, box in full frame pixel coordinates
type Detection struct {
	BBox       mot.Rectangle
	Class      mot.Class
	Confidence float64
}

// FrameSource yields decoded frames in order. ok is false once the stream is over.
type FrameSource interface {
	Next() (frame image.Image, ok bool, err error)
	Meta() tracks.Meta
}

type Detector interface {
	Detect(frame image.Image) ([]Detection, error)
}

// ProvisionalTrack is a short lived track of a frame-to-frame tracker. Its id changes whenever
// the tracker loses the object, persistent identities are resolved on top of it.
type ProvisionalTrack struct {
	ID        uuid.UUID
	Confirmed bool
	BBox      mot.Rectangle
}

type ProvisionalTracker interface {
	Update(detections []Detection, frame image.Image) ([]ProvisionalTrack, error)
}

// MotionEstimator returns camera shift of the frame in pixels
type MotionEstimator interface {
	Estimate(frame image.Image) (dx, dy float64, err error)
}

// StaticCamera is MotionEstimator of a fixed camera
type StaticCamera struct{}

func (StaticCamera) Estimate(image.Image) (float64, float64, error) {
	return 0, 0, nil
}
