package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LdDl/kicksense/mot"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 40.0, cfg.GetMaxSpeedKmh())
	assert.Equal(t, 5, cfg.GetSpeedWindow())
	assert.Equal(t, 7, cfg.GetSmoothingMinPoints())
	assert.Equal(t, 5.0, cfg.GetMinDistanceM())
	assert.Equal(t, 70.0, cfg.GetPossessionMaxPx())
	assert.Equal(t, "bytetrack", cfg.GetTracker())

	// every getter of the empty config agrees with the filled one
	empty := EmptyConfig()
	assert.Equal(t, empty.GetReidMinScore(), *cfg.ReidMinScore)
	assert.Equal(t, empty.GetBatchSize(), *cfg.BatchSize)
	assert.Equal(t, empty.GetPossessionRefs(), *cfg.PossessionRefs)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "run.json", `{
  "max_speed_kmh": 36,
  "tracker": "iou",
  "possession_include_referees": true,
  "calibration": [
    {"frame": 120, "points": [[812, 548], [1108, 561], [962, 640], [951, 486]]}
  ]
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 36.0, cfg.GetMaxSpeedKmh())
	assert.Equal(t, "iou", cfg.GetTracker())
	assert.True(t, cfg.GetPossessionRefs())
	assert.Equal(t, 5, cfg.GetSpeedWindow(), "untouched fields keep defaults")
	assert.Nil(t, cfg.SpeedWindow)

	require.Len(t, cfg.Calibration, 1)
	expected := []mot.Point{{X: 812, Y: 548}, {X: 1108, Y: 561}, {X: 962, Y: 640}, {X: 951, Y: 486}}
	if diff := cmp.Diff(expected, cfg.Calibration[0].Pixels()); diff != "" {
		t.Errorf("calibration mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejects(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		file    string
		content string
		errPart string
	}{
		{"extension", "run.yaml", `{}`, ".json extension"},
		{"syntax", "run.json", `{"max_speed_kmh": }`, "parse config"},
		{"threshold", "run.json", `{"conf_threshold": 1.5}`, "conf_threshold"},
		{"thresholds order", "run.json", `{"low_thresh": 0.6}`, "low_thresh"},
		{"tracker", "run.json", `{"tracker": "sort"}`, "unknown tracker"},
		{"even window", "run.json", `{"smoothing_window": 6}`, "smoothing_window"},
		{"speeds", "run.json", `{"min_speed_kmh": 50}`, "speed limits"},
		{"calibration", "run.json", `{"calibration": [{"frame": 1, "points": [[0, 0]]}]}`, "exactly 4 points"},
		{"window", "run.json", `{"speed_window": 0}`, "speed_window"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.file, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errPart)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadTooLarge(t *testing.T) {
	t.Parallel()
	big := `{"model_path": "` + strings.Repeat("a", maxFileSize) + `"}`
	_, err := Load(writeConfig(t, "big.json", big))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "defaults.json")
	require.NoError(t, DefaultConfig().Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
