package pipeline

import (
	"image"
	"sort"

	"github.com/LdDl/kicksense/mot"
	"github.com/pkg/errors"
)

const (
	TrackerByteTrack = "bytetrack"
	TrackerIoU       = "iou"
	TrackerCentroid  = "centroid"
)

// TrackerConfig selects and tunes provisional tracker
type TrackerConfig struct {
	Kind      string
	ByteTrack mot.ByteTrackerOptions
	// Max center distance in pixels for centroid tracker
	CentroidMaxDistance float64
	// Track is confirmed after this many matched frames
	HitsToConfirm int
}

func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Kind:                TrackerByteTrack,
		ByteTrack:           mot.DefaultByteTrackerOptions(),
		CentroidMaxDistance: 60,
		HitsToConfirm:       3,
	}
}

type blobTracker interface {
	MatchObjects(detections []*mot.BoxBlob) error
	GetActiveTracks() []*mot.BoxBlob
}

// MOTTracker is ProvisionalTracker on top of Kalman box trackers of the mot package
type MOTTracker struct {
	tracker       blobTracker
	hitsToConfirm int
}

func NewMOTTracker(cfg TrackerConfig) (*MOTTracker, error) {
	var tracker blobTracker
	switch cfg.Kind {
	case TrackerByteTrack, "":
		tracker = mot.NewByteTracker[*mot.BoxBlob](cfg.ByteTrack)
	case TrackerIoU:
		tracker = mot.NewIoUTracker[*mot.BoxBlob](cfg.ByteTrack.MaxDisappeared, cfg.ByteTrack.MinIoU)
	case TrackerCentroid:
		tracker = mot.NewCentroidTracker[*mot.BoxBlob](cfg.CentroidMaxDistance, cfg.ByteTrack.MaxDisappeared)
	default:
		return nil, errors.Errorf("unknown tracker '%s'", cfg.Kind)
	}
	return &MOTTracker{
		tracker:       tracker,
		hitsToConfirm: max(cfg.HitsToConfirm, 1),
	}, nil
}

// Update matches detections of the frame. Tracks are returned ordered by box position so
// identities are minted in a reproducible order.
func (mt *MOTTracker) Update(detections []Detection, _ image.Image) ([]ProvisionalTrack, error) {
	blobs := make([]*mot.BoxBlob, 0, len(detections))
	for _, det := range detections {
		blobs = append(blobs, mot.NewBoxBlob(det.BBox, det.Class, det.Confidence))
	}
	if err := mt.tracker.MatchObjects(blobs); err != nil {
		return nil, errors.Wrap(err, "can't match detections")
	}
	active := mt.tracker.GetActiveTracks()
	out := make([]ProvisionalTrack, 0, len(active))
	for _, blob := range active {
		out = append(out, ProvisionalTrack{
			ID:        blob.GetID(),
			Confirmed: blob.GetHits() >= mt.hitsToConfirm,
			BBox:      blob.GetBBox(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BBox.X != out[j].BBox.X {
			return out[i].BBox.X < out[j].BBox.X
		}
		return out[i].BBox.Y < out[j].BBox.Y
	})
	return out, nil
}
