package mot

import (
	"container/heap"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// IoUTracker is a naive multi-object tracker matching detections by IoU with predicted boxes.
// When boxes stop overlapping (fast players, dropped frames) it falls back to center distance.
type IoUTracker[B Blob[B]] struct {
	// Max number of frames when object could not be found again
	maxNoMatch int
	// Minimal combined score to accept a match
	iouThreshold float64
	// Storage for tracked objects
	Objects map[uuid.UUID]B
}

// NewIoUTracker creates a new instance of IoUTracker with specified parameters.
func NewIoUTracker[B Blob[B]](maxNoMatch int, iouThreshold float64) *IoUTracker[B] {
	return &IoUTracker[B]{
		maxNoMatch:   maxNoMatch,
		iouThreshold: iouThreshold,
		Objects:      make(map[uuid.UUID]B),
	}
}

// scoredBlob holds a detection with its best match score and target track for priority queue
type scoredBlob[B Blob[B]] struct {
	score   float64
	trackID uuid.UUID
	blob    B
}

// scoreHeap implements heap.Interface as max-heap by score
type scoreHeap[B Blob[B]] []*scoredBlob[B]

func (h scoreHeap[B]) Len() int           { return len(h) }
func (h scoreHeap[B]) Less(i, j int) bool { return h[i].score > h[j].score }
func (h scoreHeap[B]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *scoreHeap[B]) Push(x any) {
	*h = append(*h, x.(*scoredBlob[B]))
}

func (h *scoreHeap[B]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}

// matchScore combines IoU with a distance similarity. Pure distance matches get lower weight.
func matchScore(detection, predicted Rectangle) float64 {
	iouValue := IoU(detection, predicted)
	distance := euclideanDistance(predicted.Center(), detection.Center())
	distanceScore := 1.0 / (1.0 + distance*0.01)
	if iouValue > 0.05 {
		return iouValue*0.8 + distanceScore*0.2
	}
	return distanceScore * 0.5
}

// MatchObjects matches new detections to existing tracked objects
func (tracker *IoUTracker[B]) MatchObjects(newObjects []B) error {
	for _, object := range tracker.Objects {
		object.Deactivate()
		object.PredictNextPosition()
	}

	pq := &scoreHeap[B]{}
	heap.Init(pq)
	for _, newObj := range newObjects {
		item := &scoredBlob[B]{blob: newObj}
		for objID, object := range tracker.Objects {
			score := matchScore(newObj.GetBBox(), object.GetPredictedBBox())
			if score > item.score {
				item.score = score
				item.trackID = objID
			}
		}
		heap.Push(pq, item)
	}

	blobsToRegister := make([]B, 0)
	reserved := make(map[uuid.UUID]struct{})
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*scoredBlob[B])
		if _, taken := reserved[item.trackID]; taken || item.score <= tracker.iouThreshold {
			blobsToRegister = append(blobsToRegister, item.blob)
			continue
		}
		existing, ok := tracker.Objects[item.trackID]
		if !ok {
			blobsToRegister = append(blobsToRegister, item.blob)
			continue
		}
		if err := existing.Update(item.blob); err != nil {
			return errors.Wrapf(err, "Can't update blob with id %s", item.trackID)
		}
		existing.ResetNoMatch()
		existing.Activate()
		item.blob.SetID(item.trackID)
		reserved[item.trackID] = struct{}{}
	}

	for _, blob := range blobsToRegister {
		blob.Activate()
		tracker.Objects[blob.GetID()] = blob
		reserved[blob.GetID()] = struct{}{}
	}

	for id, object := range tracker.Objects {
		if _, ok := reserved[id]; ok {
			continue
		}
		object.IncNoMatch()
		if object.GetNoMatchTimes() > tracker.maxNoMatch {
			delete(tracker.Objects, id)
		}
	}
	return nil
}

// GetActiveTracks returns tracks matched or registered in the latest MatchObjects call
func (tracker *IoUTracker[B]) GetActiveTracks() []B {
	active := make([]B, 0, len(tracker.Objects))
	for _, object := range tracker.Objects {
		if object.IsActive() {
			active = append(active, object)
		}
	}
	return active
}
