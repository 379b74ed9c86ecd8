package mot

import "github.com/google/uuid"

// Blob is the interface for tracked objects.
// Self is the concrete type implementing this interface (e.g., *BoxBlob).
type Blob[Self any] interface {
	GetID() uuid.UUID
	SetID(newID uuid.UUID)

	// Detector output
	GetClass() Class
	GetConfidence() float64

	GetCenter() Point
	GetBBox() Rectangle
	GetPredictedBBox() Rectangle
	GetDiagonal() float64

	Activate()
	Deactivate()
	IsActive() bool

	// Number of successful matches (including the very first detection)
	GetHits() int
	GetNoMatchTimes() int
	IncNoMatch()
	ResetNoMatch()

	PredictNextPosition()
	Update(measurement Self) error

	DistanceTo(other Self) float64
}
