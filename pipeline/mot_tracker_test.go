package pipeline

import (
	"testing"

	"github.com/LdDl/kicksense/mot"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMOTTrackerConfirmation(t *testing.T) {
	t.Parallel()
	for _, kind := range []string{TrackerByteTrack, TrackerIoU, TrackerCentroid} {
		kind := kind
		t.Run(kind, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultTrackerConfig()
			cfg.Kind = kind
			tracker, err := NewMOTTracker(cfg)
			require.NoError(t, err)

			var ids []uuid.UUID
			for f := 0; f < 4; f++ {
				shift := float64(f)
				out, err := tracker.Update([]Detection{
					{BBox: mot.NewRect(300-shift, 50, 20, 40), Class: mot.ClassPlayer, Confidence: 0.9},
					{BBox: mot.NewRect(100+shift, 50, 20, 40), Class: mot.ClassPlayer, Confidence: 0.9},
				}, nil)
				require.NoError(t, err)
				require.Len(t, out, 2)
				assert.Less(t, out[0].BBox.X, out[1].BBox.X, "tracks are ordered left to right")
				assert.Equal(t, f >= 2, out[0].Confirmed, "frame %d", f)
				if ids == nil {
					ids = []uuid.UUID{out[0].ID, out[1].ID}
					continue
				}
				assert.Equal(t, ids, []uuid.UUID{out[0].ID, out[1].ID}, "frame %d", f)
			}
		})
	}
}

func TestMOTTrackerUnknownKind(t *testing.T) {
	t.Parallel()
	_, err := NewMOTTracker(TrackerConfig{Kind: "deepsort"})
	assert.Error(t, err)
}
