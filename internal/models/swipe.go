package models

import "time"

// Direction is the verdict of a single swipe.
type Direction string

const (
	DirectionInterested Direction = "interested"
	DirectionPassed     Direction = "passed"
)

// Valid reports whether the direction is one of the two known verdicts.
func (d Direction) Valid() bool {
	return d == DirectionInterested || d == DirectionPassed
}

// Swipe is one directional interest event. A pair (actor, target) is
// recorded at most once; a second attempt is rejected, never overwritten.
type Swipe struct {
	ID        int64     `db:"id" json:"id"`
	ActorID   int64     `db:"actor_id" json:"actor_id"`
	TargetID  int64     `db:"target_id" json:"target_id"`
	Direction Direction `db:"direction" json:"direction"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
