// Package config holds tuning of the whole analysis run.
//
// Every field is optional: fields omitted from the JSON file keep their defaults, which are
// provided by Get* methods. DefaultConfig returns the same values with all pointers set, which
// is handy to dump a template file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/LdDl/kicksense/mot"
	"github.com/pkg/errors"
)

// Calibration is a homography keyframe: four pixel points on the centre circle ordered
// left, right, bottom, top
type Calibration struct {
	Frame  int          `json:"frame"`
	Points [][2]float64 `json:"points"`
}

// Pixels returns calibration points in image coordinates
func (cal Calibration) Pixels() []mot.Point {
	pts := make([]mot.Point, len(cal.Points))
	for i, p := range cal.Points {
		pts[i] = mot.NewPoint(p[0], p[1])
	}
	return pts
}

// Config is the root configuration
type Config struct {
	// Detection
	ModelPath       *string  `json:"model_path,omitempty"`
	InputWidth      *int     `json:"input_width,omitempty"`
	InputHeight     *int     `json:"input_height,omitempty"`
	ConfThreshold   *float64 `json:"conf_threshold,omitempty"`
	NMSThreshold    *float64 `json:"nms_threshold,omitempty"`
	DetectEvery     *int     `json:"detect_every,omitempty"`
	MaxFrames       *int     `json:"max_frames,omitempty"`
	BallMaxGap      *int     `json:"ball_max_gap,omitempty"`
	CameraMinMotion *float64 `json:"camera_min_motion,omitempty"`

	// Provisional tracker
	Tracker        *string  `json:"tracker,omitempty"` // bytetrack, iou or centroid
	MaxDisappeared *int     `json:"max_disappeared,omitempty"`
	MinIoU         *float64 `json:"min_iou,omitempty"`
	HighThresh     *float64 `json:"high_thresh,omitempty"`
	LowThresh      *float64 `json:"low_thresh,omitempty"`
	HitsToConfirm  *int     `json:"hits_to_confirm,omitempty"`

	// Re-identification
	MaxInactiveSeconds *float64 `json:"max_inactive_seconds,omitempty"`
	ReidMinScore       *float64 `json:"reid_min_score,omitempty"`
	ReidBaseGate       *float64 `json:"reid_base_gate,omitempty"`
	ReidMaxSpeedPx     *float64 `json:"reid_max_speed_px_per_frame,omitempty"`
	ReidPosPenalty     *float64 `json:"reid_position_penalty,omitempty"`
	HistBins           *int     `json:"hist_bins,omitempty"`

	// Teams
	TeamMinSamples     *int `json:"team_min_samples,omitempty"`
	TeamReclassifyEach *int `json:"team_reclassify_every,omitempty"`

	// Pitch calibration
	Calibration []Calibration `json:"calibration,omitempty"`

	// Post processing
	SmoothingFilter    *string  `json:"smoothing_filter,omitempty"` // savgol or moving_average
	SmoothingWindow    *int     `json:"smoothing_window,omitempty"`
	SmoothingOrder     *int     `json:"smoothing_order,omitempty"`
	SmoothingMinPoints *int     `json:"smoothing_min_points,omitempty"`
	SpeedWindow        *int     `json:"speed_window,omitempty"`
	MaxSpeedKmh        *float64 `json:"max_speed_kmh,omitempty"`
	MinSpeedKmh        *float64 `json:"min_speed_kmh,omitempty"`
	MinDistanceM       *float64 `json:"min_distance_m,omitempty"`
	SprintKmh          *float64 `json:"sprint_kmh,omitempty"`
	PossessionMaxPx    *float64 `json:"possession_max_px,omitempty"`
	PossessionRefs     *bool    `json:"possession_include_referees,omitempty"`
	ContactDistanceM   *float64 `json:"contact_distance_m,omitempty"`
	CohesionEvery      *int     `json:"cohesion_every,omitempty"`

	// Storage
	DatabasePath *string `json:"database_path,omitempty"`
	MatchID      *string `json:"match_id,omitempty"`
	BatchSize    *int    `json:"batch_size,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyConfig returns Config with every field unset
func EmptyConfig() *Config {
	return &Config{}
}

// DefaultConfig returns Config with every field set to its default
func DefaultConfig() *Config {
	empty := EmptyConfig()
	return &Config{
		ModelPath:          ptrString(empty.GetModelPath()),
		InputWidth:         ptrInt(empty.GetInputWidth()),
		InputHeight:        ptrInt(empty.GetInputHeight()),
		ConfThreshold:      ptrFloat64(empty.GetConfThreshold()),
		NMSThreshold:       ptrFloat64(empty.GetNMSThreshold()),
		DetectEvery:        ptrInt(empty.GetDetectEvery()),
		MaxFrames:          ptrInt(empty.GetMaxFrames()),
		BallMaxGap:         ptrInt(empty.GetBallMaxGap()),
		CameraMinMotion:    ptrFloat64(empty.GetCameraMinMotion()),
		Tracker:            ptrString(empty.GetTracker()),
		MaxDisappeared:     ptrInt(empty.GetMaxDisappeared()),
		MinIoU:             ptrFloat64(empty.GetMinIoU()),
		HighThresh:         ptrFloat64(empty.GetHighThresh()),
		LowThresh:          ptrFloat64(empty.GetLowThresh()),
		HitsToConfirm:      ptrInt(empty.GetHitsToConfirm()),
		MaxInactiveSeconds: ptrFloat64(empty.GetMaxInactiveSeconds()),
		ReidMinScore:       ptrFloat64(empty.GetReidMinScore()),
		ReidBaseGate:       ptrFloat64(empty.GetReidBaseGate()),
		ReidMaxSpeedPx:     ptrFloat64(empty.GetReidMaxSpeedPx()),
		ReidPosPenalty:     ptrFloat64(empty.GetReidPosPenalty()),
		HistBins:           ptrInt(empty.GetHistBins()),
		TeamMinSamples:     ptrInt(empty.GetTeamMinSamples()),
		TeamReclassifyEach: ptrInt(empty.GetTeamReclassifyEach()),
		SmoothingFilter:    ptrString(empty.GetSmoothingFilter()),
		SmoothingWindow:    ptrInt(empty.GetSmoothingWindow()),
		SmoothingOrder:     ptrInt(empty.GetSmoothingOrder()),
		SmoothingMinPoints: ptrInt(empty.GetSmoothingMinPoints()),
		SpeedWindow:        ptrInt(empty.GetSpeedWindow()),
		MaxSpeedKmh:        ptrFloat64(empty.GetMaxSpeedKmh()),
		MinSpeedKmh:        ptrFloat64(empty.GetMinSpeedKmh()),
		MinDistanceM:       ptrFloat64(empty.GetMinDistanceM()),
		SprintKmh:          ptrFloat64(empty.GetSprintKmh()),
		PossessionMaxPx:    ptrFloat64(empty.GetPossessionMaxPx()),
		PossessionRefs:     ptrBool(empty.GetPossessionRefs()),
		ContactDistanceM:   ptrFloat64(empty.GetContactDistanceM()),
		CohesionEvery:      ptrInt(empty.GetCohesionEvery()),
		DatabasePath:       ptrString(empty.GetDatabasePath()),
		MatchID:            ptrString(empty.GetMatchID()),
		BatchSize:          ptrInt(empty.GetBatchSize()),
	}
}

const maxFileSize = 1 * 1024 * 1024

// Load reads Config from a JSON file. The file must have .json extension and be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat config file")
	}
	if fileInfo.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Save writes Config as indented JSON
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "failed to write config file")
}

func positiveInt(name string, v *int) error {
	if v != nil && *v < 1 {
		return errors.Errorf("%s must be positive, got %d", name, *v)
	}
	return nil
}

func unitInterval(name string, v *float64) error {
	if v != nil && (*v < 0 || *v > 1) {
		return errors.Errorf("%s must be between 0 and 1, got %f", name, *v)
	}
	return nil
}

// Validate checks values which are set
func (c *Config) Validate() error {
	for name, v := range map[string]*int{
		"input_width":           c.InputWidth,
		"input_height":          c.InputHeight,
		"detect_every":          c.DetectEvery,
		"max_disappeared":       c.MaxDisappeared,
		"hits_to_confirm":       c.HitsToConfirm,
		"hist_bins":             c.HistBins,
		"team_min_samples":      c.TeamMinSamples,
		"team_reclassify_every": c.TeamReclassifyEach,
		"smoothing_min_points":  c.SmoothingMinPoints,
		"speed_window":          c.SpeedWindow,
		"cohesion_every":        c.CohesionEvery,
		"batch_size":            c.BatchSize,
	} {
		if err := positiveInt(name, v); err != nil {
			return err
		}
	}
	for name, v := range map[string]*float64{
		"conf_threshold":        c.ConfThreshold,
		"nms_threshold":         c.NMSThreshold,
		"min_iou":               c.MinIoU,
		"high_thresh":           c.HighThresh,
		"low_thresh":            c.LowThresh,
		"reid_min_score":        c.ReidMinScore,
		"reid_position_penalty": c.ReidPosPenalty,
	} {
		if err := unitInterval(name, v); err != nil {
			return err
		}
	}
	if c.GetLowThresh() > c.GetHighThresh() {
		return errors.Errorf("low_thresh %f is above high_thresh %f", c.GetLowThresh(), c.GetHighThresh())
	}
	if c.MaxFrames != nil && *c.MaxFrames < 0 {
		return errors.Errorf("max_frames must be non-negative, got %d", *c.MaxFrames)
	}
	if c.BallMaxGap != nil && *c.BallMaxGap < 0 {
		return errors.Errorf("ball_max_gap must be non-negative, got %d", *c.BallMaxGap)
	}
	switch c.GetTracker() {
	case "bytetrack", "iou", "centroid":
	default:
		return errors.Errorf("unknown tracker %q", c.GetTracker())
	}
	switch c.GetSmoothingFilter() {
	case "savgol", "moving_average":
	default:
		return errors.Errorf("unknown smoothing filter %q", c.GetSmoothingFilter())
	}
	if w := c.GetSmoothingWindow(); w < 3 || w%2 == 0 {
		return errors.Errorf("smoothing_window must be odd and at least 3, got %d", w)
	}
	if c.GetSmoothingOrder() >= c.GetSmoothingWindow() {
		return errors.Errorf("smoothing_order %d must be below smoothing_window %d", c.GetSmoothingOrder(), c.GetSmoothingWindow())
	}
	if c.GetMinSpeedKmh() < 0 || c.GetMaxSpeedKmh() <= c.GetMinSpeedKmh() {
		return errors.Errorf("speed limits must satisfy 0 <= min < max, got %f and %f", c.GetMinSpeedKmh(), c.GetMaxSpeedKmh())
	}
	if c.GetMaxInactiveSeconds() <= 0 {
		return errors.Errorf("max_inactive_seconds must be positive, got %f", c.GetMaxInactiveSeconds())
	}
	for i, cal := range c.Calibration {
		if len(cal.Points) != 4 {
			return errors.Errorf("calibration %d: exactly 4 points expected, got %d", i, len(cal.Points))
		}
		if cal.Frame < 0 {
			return errors.Errorf("calibration %d: negative frame %d", i, cal.Frame)
		}
	}
	return nil
}
