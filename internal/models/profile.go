package models

// Profile is the public part of a user shown in discovery and match listings.
type Profile struct {
	ID        int64   `db:"id" json:"id"`
	UserID    int64   `db:"user_id" json:"user_id"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Nickname  *string `db:"nickname" json:"nickname,omitempty"`
	Age       int     `db:"age" json:"age"`
	Gender    *string `db:"gender" json:"gender,omitempty"`
	Bio       *string `db:"bio" json:"bio,omitempty"`
	Region    string  `db:"region" json:"region"`
	City      string  `db:"city" json:"city"`
	PfpPath   *string `db:"pfp_path" json:"pfp_path,omitempty"`
}

// CandidateFilter narrows the discovery feed. Zero values mean "no predicate".
type CandidateFilter struct {
	MinAge int
	MaxAge int
	Gender string
	Region string
	City   string
}
