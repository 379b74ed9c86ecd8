package tracks

import "github.com/LdDl/kicksense/mot"

// Stage is a bitmask of processing stages which wrote a record
type Stage uint8

const (
	StageRaw Stage = 1 << iota
	StageTransformed
	StageSmoothed
	StageKinematics
)

// Has reports whether all bits of other are set
func (s Stage) Has(other Stage) bool {
	return s&other == other
}

// Assignment annotates the ball record with its current holder
type Assignment struct {
	ID       ID       `msgpack:"id"`
	Category Category `msgpack:"category"`
	Distance float64  `msgpack:"distance"`
}

// Record is an observation of one identity in one frame.
//
// PositionTransformed is valid after StageTransformed, Speed and Distance after StageKinematics.
type Record struct {
	BBox                mot.Rectangle `msgpack:"bbox"`
	Position            mot.Point     `msgpack:"position"`
	PositionAdjusted    *mot.Point    `msgpack:"position_adjusted"`
	PositionTransformed *mot.Point    `msgpack:"position_transformed"`
	Speed               *float64      `msgpack:"speed"`
	Distance            *float64      `msgpack:"distance"`
	TeamID              *int          `msgpack:"team_id"`
	HasBall             bool          `msgpack:"has_ball"`
	Assigned            *Assignment   `msgpack:"assigned"`
	Stage               Stage         `msgpack:"stage"`
}

// NewRecord creates raw record from a box. Camera shift of the frame is subtracted
// from the foot point to get camera compensated position.
func NewRecord(bbox mot.Rectangle, cameraShift mot.Point) *Record {
	foot := bbox.FootPoint()
	adjusted := foot.Sub(cameraShift)
	return &Record{
		BBox:             bbox,
		Position:         foot,
		PositionAdjusted: &adjusted,
		Stage:            StageRaw,
	}
}

// PixelPosition returns camera compensated position, falling back to the raw foot point
func (r *Record) PixelPosition() mot.Point {
	if r.PositionAdjusted != nil {
		return *r.PositionAdjusted
	}
	return r.Position
}

// Team returns team label if known
func (r *Record) Team() (int, bool) {
	if r.TeamID == nil {
		return 0, false
	}
	return *r.TeamID, true
}

func (r *Record) SetTeam(team int) {
	r.TeamID = &team
}

// SetTransformed stores metric position and tags the record
func (r *Record) SetTransformed(p mot.Point) {
	r.PositionTransformed = &p
	r.Stage |= StageTransformed
}

// SetKinematics stores window speed and cumulative distance and tags the record
func (r *Record) SetKinematics(speedKmh, distanceM float64) {
	r.Speed = &speedKmh
	r.Distance = &distanceM
	r.Stage |= StageKinematics
}

// SpeedOrZero returns speed or zero when kinematics were not computed
func (r *Record) SpeedOrZero() float64 {
	if r.Speed == nil {
		return 0
	}
	return *r.Speed
}
