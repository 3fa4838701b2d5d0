package models

import "time"

// Match is the symmetric record created when two users have both swiped
// interested on each other. User1ID < User2ID always holds, so a pair can
// appear only once regardless of which side completed it.
type Match struct {
	ID        int64     `db:"id" json:"id"`
	User1ID   int64     `db:"user1_id" json:"user1_id"`
	User2ID   int64     `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Counterpart returns the participant that is not userID.
func (m Match) Counterpart(userID int64) int64 {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// HasParticipant reports whether userID is one of the two match members.
func (m Match) HasParticipant(userID int64) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// CanonicalPair orders two user ids so the smaller one comes first.
func CanonicalPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}
