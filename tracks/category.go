package tracks

import "github.com/LdDl/kicksense/mot"

// Category is a top-level group of the track store
type Category string

const (
	Players     Category = "players"
	Goalkeepers Category = "goalkeepers"
	Referees    Category = "referees"
	Ball        Category = "ball"
)

// Categories lists every category in iteration order
var Categories = []Category{Players, Goalkeepers, Referees, Ball}

// CategoryOf maps detector class to the store category. Unknown classes are treated as players.
func CategoryOf(class mot.Class) Category {
	switch class {
	case mot.ClassBall:
		return Ball
	case mot.ClassGoalkeeper:
		return Goalkeepers
	case mot.ClassReferee:
		return Referees
	default:
		return Players
	}
}

// ID is a persistent identity
type ID int

// BallID is the reserved identity of the single ball record in a frame
const BallID ID = -1

// ClassMap keeps inferred class of each persistent identity
type ClassMap map[ID]mot.Class

// Observe merges a fresh class observation, goalkeeper and referee labels win over player
func (cm ClassMap) Observe(id ID, class mot.Class) mot.Class {
	existing, known := cm[id]
	merged := mot.PreferClass(existing, known, class)
	cm[id] = merged
	return merged
}

// Get returns identity's class, player when nothing was observed
func (cm ClassMap) Get(id ID) mot.Class {
	if class, ok := cm[id]; ok {
		return class
	}
	return mot.ClassPlayer
}
