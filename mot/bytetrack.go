package mot

import (
	"sort"

	"github.com/arthurkushman/go-hungarian"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MatchingAlgorithm is for algorithm type for matching detections to tracks
type MatchingAlgorithm uint16

const (
	// MatchingAlgorithmHungarian uses the Hungarian algorithm (Kuhn-Munkres) for optimal assignment
	MatchingAlgorithmHungarian MatchingAlgorithm = iota
	// MatchingAlgorithmGreedy uses a greedy algorithm for faster but potentially suboptimal assignment
	MatchingAlgorithmGreedy
)

// ByteTrackerOptions configures ByteTracker
type ByteTrackerOptions struct {
	// Maximum number of frames an object can be missing before it is removed
	MaxDisappeared int
	// Minimal IoU between predicted track box and detection to accept a match
	MinIoU float64
	// Detections with confidence >= HighThresh take part in the first association stage and may start new tracks
	HighThresh float64
	// Detections with LowThresh <= confidence < HighThresh only extend existing tracks
	LowThresh float64
	Algorithm MatchingAlgorithm
	Logger    *logrus.Entry
}

// DefaultByteTrackerOptions mirrors the settings used for broadcast football footage
func DefaultByteTrackerOptions() ByteTrackerOptions {
	return ByteTrackerOptions{
		MaxDisappeared: 20,
		MinIoU:         0.3,
		HighThresh:     0.5,
		LowThresh:      0.3,
		Algorithm:      MatchingAlgorithmHungarian,
	}
}

// ByteTracker is implementation of Multi-object tracker (MOT) called ByteTrack.
// B is the blob type implementing Blob[B] interface.
type ByteTracker[B Blob[B]] struct {
	opts   ByteTrackerOptions
	logger *logrus.Entry
	// Main storage
	Objects map[uuid.UUID]B
}

// NewByteTracker creates a new instance of ByteTracker
func NewByteTracker[B Blob[B]](opts ByteTrackerOptions) *ByteTracker[B] {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ByteTracker[B]{
		opts:    opts,
		logger:  logger.WithField("tracker", "bytetrack"),
		Objects: make(map[uuid.UUID]B),
	}
}

// bboxPair is a helper struct to pair track ID with its bounding box.
type bboxPair struct {
	ID   uuid.UUID
	BBox Rectangle
}

// MatchObjects matches detections of the current frame with existing tracks.
// Detection confidence is taken from the blobs themselves.
func (bt *ByteTracker[B]) MatchObjects(detections []B) error {
	for _, track := range bt.Objects {
		track.Deactivate()
		track.PredictNextPosition()
	}

	// Iterate tracks in a stable order so that equal IoU values resolve the same way on every run
	candidates := make([]bboxPair, 0, len(bt.Objects))
	for id, track := range bt.Objects {
		if track.GetNoMatchTimes() < bt.opts.MaxDisappeared {
			candidates = append(candidates, bboxPair{ID: id, BBox: track.GetPredictedBBox()})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID.String() < candidates[j].ID.String()
	})

	matchedTracks := make(map[uuid.UUID]struct{})
	matchedDetections := make(map[int]struct{})

	highDetections := make([]int, 0, len(detections))
	lowDetections := make([]int, 0)
	for i, det := range detections {
		conf := det.GetConfidence()
		switch {
		case conf >= bt.opts.HighThresh:
			highDetections = append(highDetections, i)
		case conf >= bt.opts.LowThresh:
			lowDetections = append(lowDetections, i)
		}
	}

	// 1. High confidence detections against every live track
	if err := bt.associate(candidates, highDetections, detections, matchedTracks, matchedDetections); err != nil {
		return errors.Wrap(err, "high confidence stage")
	}

	// 2. Low confidence detections against tracks left over from the first stage
	leftover := make([]bboxPair, 0, len(candidates))
	for _, pair := range candidates {
		if _, found := matchedTracks[pair.ID]; !found {
			leftover = append(leftover, pair)
		}
	}
	if err := bt.associate(leftover, lowDetections, detections, matchedTracks, matchedDetections); err != nil {
		return errors.Wrap(err, "low confidence stage")
	}

	// 3. Unmatched high confidence detections start new tracks
	for _, detIdx := range highDetections {
		if _, found := matchedDetections[detIdx]; !found {
			newBlob := detections[detIdx]
			newBlob.Activate()
			bt.Objects[newBlob.GetID()] = newBlob
			matchedTracks[newBlob.GetID()] = struct{}{}
		}
	}

	// 4. Age and drop tracks which were not seen
	for id, track := range bt.Objects {
		if _, found := matchedTracks[id]; found {
			continue
		}
		track.IncNoMatch()
		if track.GetNoMatchTimes() >= bt.opts.MaxDisappeared {
			delete(bt.Objects, id)
		}
	}
	return nil
}

// GetActiveTracks returns tracks which were matched (or created) in the latest MatchObjects call.
func (bt *ByteTracker[B]) GetActiveTracks() []B {
	activeTracks := make([]B, 0, len(bt.Objects))
	for _, track := range bt.Objects {
		if track.IsActive() {
			activeTracks = append(activeTracks, track)
		}
	}
	return activeTracks
}

func (bt *ByteTracker[B]) associate(
	tracks []bboxPair,
	detectionIndices []int,
	allDetections []B,
	matchedTracks map[uuid.UUID]struct{},
	matchedDetections map[int]struct{},
) error {
	if len(tracks) == 0 || len(detectionIndices) == 0 {
		return nil
	}
	iouMatrix := make([][]float64, len(tracks))
	for i, trk := range tracks {
		row := make([]float64, len(detectionIndices))
		for j, detIdx := range detectionIndices {
			row[j] = IoU(trk.BBox, allDetections[detIdx].GetBBox())
		}
		iouMatrix[i] = row
	}

	var matches [][2]int
	switch bt.opts.Algorithm {
	case MatchingAlgorithmHungarian:
		matches = bt.hungarianMatching(iouMatrix, len(tracks), len(detectionIndices))
	default:
		matches = bt.greedyMatching(iouMatrix, len(tracks), len(detectionIndices))
	}

	for _, match := range matches {
		if iouMatrix[match[0]][match[1]] < bt.opts.MinIoU {
			continue
		}
		trackID := tracks[match[0]].ID
		detIdx := detectionIndices[match[1]]
		track, ok := bt.Objects[trackID]
		if !ok {
			continue
		}
		if err := track.Update(allDetections[detIdx]); err != nil {
			return errors.Wrapf(err, "failed to update track %s", trackID)
		}
		track.ResetNoMatch()
		track.Activate()
		matchedTracks[trackID] = struct{}{}
		matchedDetections[detIdx] = struct{}{}
	}
	return nil
}

// hungarianMatching pads IoU matrix to a square one with zeros and solves maximum assignment.
// Returns pairs of {trackIndex, detectionIndex}.
func (bt *ByteTracker[B]) hungarianMatching(iouMatrix [][]float64, numTracks, numDetections int) [][2]int {
	size := max(numTracks, numDetections)
	padded := iouMatrix
	if numTracks != numDetections {
		padded = make([][]float64, size)
		for i := range padded {
			padded[i] = make([]float64, size)
			if i < numTracks {
				copy(padded[i], iouMatrix[i])
			}
		}
	}
	assignments := hungarian.SolveMax(padded)
	matches := make([][2]int, 0, min(numTracks, numDetections))
	for trackIndex, row := range assignments {
		for detectionIndex := range row {
			if trackIndex < numTracks && detectionIndex < numDetections {
				matches = append(matches, [2]int{trackIndex, detectionIndex})
			} else if trackIndex >= size || detectionIndex >= size {
				bt.logger.WithFields(logrus.Fields{
					"track_idx":     trackIndex,
					"detection_idx": detectionIndex,
				}).Warn("Hungarian assignment out of bounds")
			}
			break
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i][0] < matches[j][0]
	})
	return matches
}

// greedyMatching takes for each track the best still free detection passing MinIoU
func (bt *ByteTracker[B]) greedyMatching(iouMatrix [][]float64, numTracks, numDetections int) [][2]int {
	matches := make([][2]int, 0)
	taken := make(map[int]struct{})
	for i := 0; i < numTracks; i++ {
		bestIoU := -1.0
		bestDet := -1
		for j := 0; j < numDetections; j++ {
			if _, found := taken[j]; found {
				continue
			}
			if iouMatrix[i][j] > bestIoU && iouMatrix[i][j] >= bt.opts.MinIoU {
				bestIoU = iouMatrix[i][j]
				bestDet = j
			}
		}
		if bestDet != -1 {
			matches = append(matches, [2]int{i, bestDet})
			taken[bestDet] = struct{}{}
		}
	}
	return matches
}
