package config

// GetModelPath returns the model_path value or the default.
func (c *Config) GetModelPath() string {
	if c.ModelPath == nil {
		return "models/football.onnx"
	}
	return *c.ModelPath
}

// GetInputWidth returns the input_width value or the default.
func (c *Config) GetInputWidth() int {
	if c.InputWidth == nil {
		return 640
	}
	return *c.InputWidth
}

// GetInputHeight returns the input_height value or the default.
func (c *Config) GetInputHeight() int {
	if c.InputHeight == nil {
		return 360
	}
	return *c.InputHeight
}

// GetConfThreshold returns the conf_threshold value or the default.
func (c *Config) GetConfThreshold() float64 {
	if c.ConfThreshold == nil {
		return 0.4
	}
	return *c.ConfThreshold
}

// GetNMSThreshold returns the nms_threshold value or the default.
func (c *Config) GetNMSThreshold() float64 {
	if c.NMSThreshold == nil {
		return 0.5
	}
	return *c.NMSThreshold
}

// GetDetectEvery returns the detect_every value or the default.
func (c *Config) GetDetectEvery() int {
	if c.DetectEvery == nil {
		return 2
	}
	return *c.DetectEvery
}

// GetMaxFrames returns the max_frames value or the default.
func (c *Config) GetMaxFrames() int {
	if c.MaxFrames == nil {
		return 0 // zero means the whole video
	}
	return *c.MaxFrames
}

// GetBallMaxGap returns the ball_max_gap value or the default.
func (c *Config) GetBallMaxGap() int {
	if c.BallMaxGap == nil {
		return 2
	}
	return *c.BallMaxGap
}

// GetCameraMinMotion returns the camera_min_motion value or the default.
func (c *Config) GetCameraMinMotion() float64 {
	if c.CameraMinMotion == nil {
		return 5.0
	}
	return *c.CameraMinMotion
}

// GetTracker returns the tracker value or the default.
func (c *Config) GetTracker() string {
	if c.Tracker == nil {
		return "bytetrack"
	}
	return *c.Tracker
}

// GetMaxDisappeared returns the max_disappeared value or the default.
func (c *Config) GetMaxDisappeared() int {
	if c.MaxDisappeared == nil {
		return 20
	}
	return *c.MaxDisappeared
}

// GetMinIoU returns the min_iou value or the default.
func (c *Config) GetMinIoU() float64 {
	if c.MinIoU == nil {
		return 0.3
	}
	return *c.MinIoU
}

// GetHighThresh returns the high_thresh value or the default.
func (c *Config) GetHighThresh() float64 {
	if c.HighThresh == nil {
		return 0.5
	}
	return *c.HighThresh
}

// GetLowThresh returns the low_thresh value or the default.
func (c *Config) GetLowThresh() float64 {
	if c.LowThresh == nil {
		return 0.3
	}
	return *c.LowThresh
}

// GetHitsToConfirm returns the hits_to_confirm value or the default.
func (c *Config) GetHitsToConfirm() int {
	if c.HitsToConfirm == nil {
		return 3
	}
	return *c.HitsToConfirm
}

// GetMaxInactiveSeconds returns the max_inactive_seconds value or the default.
func (c *Config) GetMaxInactiveSeconds() float64 {
	if c.MaxInactiveSeconds == nil {
		return 2.5
	}
	return *c.MaxInactiveSeconds
}

// GetReidMinScore returns the reid_min_score value or the default.
func (c *Config) GetReidMinScore() float64 {
	if c.ReidMinScore == nil {
		return 0.45
	}
	return *c.ReidMinScore
}

// GetReidBaseGate returns the reid_base_gate value or the default.
func (c *Config) GetReidBaseGate() float64 {
	if c.ReidBaseGate == nil {
		return 80.0
	}
	return *c.ReidBaseGate
}

// GetReidMaxSpeedPx returns the reid_max_speed_px_per_frame value or the default.
func (c *Config) GetReidMaxSpeedPx() float64 {
	if c.ReidMaxSpeedPx == nil {
		return 18.0
	}
	return *c.ReidMaxSpeedPx
}

// GetReidPosPenalty returns the reid_position_penalty value or the default.
func (c *Config) GetReidPosPenalty() float64 {
	if c.ReidPosPenalty == nil {
		return 0.15
	}
	return *c.ReidPosPenalty
}

// GetHistBins returns the hist_bins value or the default.
func (c *Config) GetHistBins() int {
	if c.HistBins == nil {
		return 16
	}
	return *c.HistBins
}

// GetTeamMinSamples returns the team_min_samples value or the default.
func (c *Config) GetTeamMinSamples() int {
	if c.TeamMinSamples == nil {
		return 24
	}
	return *c.TeamMinSamples
}

// GetTeamReclassifyEach returns the team_reclassify_every value or the default.
func (c *Config) GetTeamReclassifyEach() int {
	if c.TeamReclassifyEach == nil {
		return 30
	}
	return *c.TeamReclassifyEach
}

// GetSmoothingFilter returns the smoothing_filter value or the default.
func (c *Config) GetSmoothingFilter() string {
	if c.SmoothingFilter == nil {
		return "savgol"
	}
	return *c.SmoothingFilter
}

// GetSmoothingWindow returns the smoothing_window value or the default.
func (c *Config) GetSmoothingWindow() int {
	if c.SmoothingWindow == nil {
		return 7
	}
	return *c.SmoothingWindow
}

// GetSmoothingOrder returns the smoothing_order value or the default.
func (c *Config) GetSmoothingOrder() int {
	if c.SmoothingOrder == nil {
		return 2
	}
	return *c.SmoothingOrder
}

// GetSmoothingMinPoints returns the smoothing_min_points value or the default.
func (c *Config) GetSmoothingMinPoints() int {
	if c.SmoothingMinPoints == nil {
		return 7
	}
	return *c.SmoothingMinPoints
}

// GetSpeedWindow returns the speed_window value or the default.
func (c *Config) GetSpeedWindow() int {
	if c.SpeedWindow == nil {
		return 5
	}
	return *c.SpeedWindow
}

// GetMaxSpeedKmh returns the max_speed_kmh value or the default.
func (c *Config) GetMaxSpeedKmh() float64 {
	if c.MaxSpeedKmh == nil {
		return 40.0
	}
	return *c.MaxSpeedKmh
}

// GetMinSpeedKmh returns the min_speed_kmh value or the default.
func (c *Config) GetMinSpeedKmh() float64 {
	if c.MinSpeedKmh == nil {
		return 0 // floor disabled
	}
	return *c.MinSpeedKmh
}

// GetMinDistanceM returns the min_distance_m value or the default.
func (c *Config) GetMinDistanceM() float64 {
	if c.MinDistanceM == nil {
		return 5.0
	}
	return *c.MinDistanceM
}

// GetSprintKmh returns the sprint_kmh value or the default.
func (c *Config) GetSprintKmh() float64 {
	if c.SprintKmh == nil {
		return 20.0
	}
	return *c.SprintKmh
}

// GetPossessionMaxPx returns the possession_max_px value or the default.
func (c *Config) GetPossessionMaxPx() float64 {
	if c.PossessionMaxPx == nil {
		return 70.0
	}
	return *c.PossessionMaxPx
}

// GetPossessionRefs returns the possession_include_referees value or the default.
func (c *Config) GetPossessionRefs() bool {
	if c.PossessionRefs == nil {
		return false
	}
	return *c.PossessionRefs
}

// GetContactDistanceM returns the contact_distance_m value or the default.
func (c *Config) GetContactDistanceM() float64 {
	if c.ContactDistanceM == nil {
		return 1.2
	}
	return *c.ContactDistanceM
}

// GetCohesionEvery returns the cohesion_every value or the default.
func (c *Config) GetCohesionEvery() int {
	if c.CohesionEvery == nil {
		return 5
	}
	return *c.CohesionEvery
}

// GetDatabasePath returns the database_path value or the default.
func (c *Config) GetDatabasePath() string {
	if c.DatabasePath == nil {
		return "" // persistence disabled
	}
	return *c.DatabasePath
}

// GetMatchID returns the match_id value or the default.
func (c *Config) GetMatchID() string {
	if c.MatchID == nil {
		return "" // generated per run
	}
	return *c.MatchID
}

// GetBatchSize returns the batch_size value or the default.
func (c *Config) GetBatchSize() int {
	if c.BatchSize == nil {
		return 500
	}
	return *c.BatchSize
}
