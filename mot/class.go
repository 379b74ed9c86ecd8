package mot

// Class is detector's object class
type Class int

const (
	ClassBall       Class = 0
	ClassGoalkeeper Class = 1
	ClassPlayer     Class = 2
	ClassReferee    Class = 3
)

func (c Class) String() string {
	switch c {
	case ClassBall:
		return "Ball"
	case ClassGoalkeeper:
		return "Goalkeeper"
	case ClassPlayer:
		return "Player"
	case ClassReferee:
		return "Referee"
	default:
		return "Unknown"
	}
}

// Official reports whether class is a goalkeeper or a referee.
// Those labels are rarer than players and win over them once observed.
func (c Class) Official() bool {
	return c == ClassGoalkeeper || c == ClassReferee
}

// PreferClass merges newly observed class into the existing one:
// goalkeeper and referee labels stick, player label is upgraded by them.
func PreferClass(existing Class, known bool, observed Class) Class {
	if !known || existing == observed {
		return observed
	}
	if existing.Official() {
		return existing
	}
	if observed.Official() {
		return observed
	}
	return existing
}
