package mot

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// BoxBlob is a detected person (player, goalkeeper or referee) followed by 8-D Kalman filter.
// State vector: [cx, cy, w, h, vx, vy, vw, vh].
// It implements Blob[*BoxBlob] interface.
type BoxBlob struct {
	id            uuid.UUID
	class         Class
	confidence    float64
	currentBBox   Rectangle
	predictedBBox Rectangle
	active        bool
	hits          int
	noMatchTimes  int
	tracker       *kalman_filter.KalmanBBox
}

// NewBoxBlobWithTime creates a new BoxBlob with specified time step.
func NewBoxBlobWithTime(bbox Rectangle, class Class, confidence, dt float64) *BoxBlob {
	center := bbox.Center()
	// Player boxes change size slowly compared to their position, so size has no control input
	kf := kalman_filter.NewKalmanBBox(
		dt, 1.0, 1.0, 0.0, 0.0,
		2.0, 0.1, 0.1, 0.1, 0.1,
		kalman_filter.WithStateBBox(center.X, center.Y, bbox.Width, bbox.Height),
	)
	return &BoxBlob{
		id:            uuid.New(),
		class:         class,
		confidence:    confidence,
		currentBBox:   bbox,
		predictedBBox: bbox,
		hits:          1,
		tracker:       kf,
	}
}

// NewBoxBlob creates a new BoxBlob with time step of one frame.
func NewBoxBlob(bbox Rectangle, class Class, confidence float64) *BoxBlob {
	return NewBoxBlobWithTime(bbox, class, confidence, 1.0)
}

func (blob *BoxBlob) GetID() uuid.UUID {
	return blob.id
}

func (blob *BoxBlob) SetID(newID uuid.UUID) {
	blob.id = newID
}

// GetClass returns class of the latest matched detection
func (blob *BoxBlob) GetClass() Class {
	return blob.class
}

// GetConfidence returns confidence of the latest matched detection
func (blob *BoxBlob) GetConfidence() float64 {
	return blob.confidence
}

func (blob *BoxBlob) GetCenter() Point {
	return blob.currentBBox.Center()
}

func (blob *BoxBlob) GetBBox() Rectangle {
	return blob.currentBBox
}

func (blob *BoxBlob) GetPredictedBBox() Rectangle {
	return blob.predictedBBox
}

func (blob *BoxBlob) GetDiagonal() float64 {
	return blob.currentBBox.Diagonal()
}

func (blob *BoxBlob) Activate() {
	blob.active = true
}

func (blob *BoxBlob) Deactivate() {
	blob.active = false
}

func (blob *BoxBlob) IsActive() bool {
	return blob.active
}

func (blob *BoxBlob) GetHits() int {
	return blob.hits
}

func (blob *BoxBlob) GetNoMatchTimes() int {
	return blob.noMatchTimes
}

func (blob *BoxBlob) IncNoMatch() {
	blob.noMatchTimes++
}

func (blob *BoxBlob) ResetNoMatch() {
	blob.noMatchTimes = 0
}

// DistanceTo returns distance between centers of two blobs
func (blob *BoxBlob) DistanceTo(otherBlob *BoxBlob) float64 {
	return euclideanDistance(blob.GetCenter(), otherBlob.GetCenter())
}

// PredictNextPosition executes Kalman filter prediction step
func (blob *BoxBlob) PredictNextPosition() {
	blob.tracker.Predict()
	cx, cy, w, h := blob.tracker.GetState()
	blob.predictedBBox = NewRect(cx-w/2.0, cy-h/2.0, w, h)
}

// Update corrects the filter with detection's box and takes over its class and confidence
func (blob *BoxBlob) Update(detection *BoxBlob) error {
	measured := detection.currentBBox
	center := measured.Center()
	err := blob.tracker.Update(center.X, center.Y, measured.Width, measured.Height)
	if err != nil {
		return errors.Wrap(err, "Can't update object tracker")
	}
	cx, cy, w, h := blob.tracker.GetState()
	blob.currentBBox = NewRect(cx-w/2.0, cy-h/2.0, w, h)
	blob.class = detection.class
	blob.confidence = detection.confidence
	blob.active = true
	blob.hits++
	blob.noMatchTimes = 0
	return nil
}

// GetVelocity returns current velocity estimates (vx, vy, vw, vh) from Kalman filter
func (blob *BoxBlob) GetVelocity() (float64, float64, float64, float64) {
	return blob.tracker.GetVelocity()
}
