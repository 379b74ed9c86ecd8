package mot

import (
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CentroidTracker matches detections to tracks by distance between box centers.
// Useful for wide shots where player boxes are tiny and IoU is unstable.
type CentroidTracker[B Blob[B]] struct {
	// Main storage
	Objects map[uuid.UUID]B
	// Threshold distance in pixels
	minDistThreshold float64
	// Max number of frames when object could not be found again
	maxNoMatch int
}

// NewCentroidTracker creates new instance of CentroidTracker
func NewCentroidTracker[B Blob[B]](minDistThreshold float64, maxNoMatch int) *CentroidTracker[B] {
	return &CentroidTracker[B]{
		Objects:          make(map[uuid.UUID]B),
		minDistThreshold: minDistThreshold,
		maxNoMatch:       maxNoMatch,
	}
}

func (tracker *CentroidTracker[B]) MatchObjects(newObjects []B) error {
	for _, object := range tracker.Objects {
		object.Deactivate()
		object.PredictNextPosition()
	}
	queue := make(distanceHeap[B], 0, len(newObjects))
	for _, newObject := range newObjects {
		item := &candidate[B]{detection: newObject, distance: math.MaxFloat64}
		for objectID, object := range tracker.Objects {
			dist := math.Min(
				newObject.DistanceTo(object),
				euclideanDistance(newObject.GetCenter(), object.GetPredictedBBox().Center()),
			)
			if dist < item.distance {
				item.distance = dist
				item.trackID = objectID
			}
		}
		queue.Push(item)
	}

	// Min-heap guarantees that each track is updated by its nearest detection only once.
	// Remaining detections pointing to the same track become new tracks.
	reserved := make(map[uuid.UUID]struct{})
	blobsToRegister := make([]B, 0)
	for queue.Len() > 0 {
		item := queue.Pop()
		if _, ok := reserved[item.trackID]; ok {
			blobsToRegister = append(blobsToRegister, item.detection)
			continue
		}
		if item.distance < item.detection.GetDiagonal()*0.5 || item.distance < tracker.minDistThreshold {
			existing, ok := tracker.Objects[item.trackID]
			if !ok {
				blobsToRegister = append(blobsToRegister, item.detection)
				continue
			}
			if err := existing.Update(item.detection); err != nil {
				return errors.Wrapf(err, "Can't update blob with id %s", item.trackID.String())
			}
			existing.Activate()
			item.detection.SetID(item.trackID)
			reserved[item.trackID] = struct{}{}
		} else {
			blobsToRegister = append(blobsToRegister, item.detection)
		}
	}

	for _, blob := range blobsToRegister {
		blob.Activate()
		tracker.Objects[blob.GetID()] = blob
		reserved[blob.GetID()] = struct{}{}
	}

	for objectID, object := range tracker.Objects {
		if _, ok := reserved[objectID]; ok {
			continue
		}
		object.IncNoMatch()
		if object.GetNoMatchTimes() > tracker.maxNoMatch {
			delete(tracker.Objects, objectID)
		}
	}
	return nil
}

// GetActiveTracks returns tracks matched or registered in the latest MatchObjects call
func (tracker *CentroidTracker[B]) GetActiveTracks() []B {
	active := make([]B, 0, len(tracker.Objects))
	for _, object := range tracker.Objects {
		if object.IsActive() {
			active = append(active, object)
		}
	}
	return active
}
