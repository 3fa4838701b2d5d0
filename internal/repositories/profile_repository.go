package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"match-service/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository abstracts profile reads and the discovery feed.
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error)
	GetProfile(ctx context.Context, userID int64) (models.Profile, error)
	GetProfiles(ctx context.Context, userIDs []int64) ([]models.Profile, error)
	ListCandidates(ctx context.Context, viewerID int64, filter models.CandidateFilter) ([]models.Profile, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `id, user_id, first_name, last_name, nickname, age, gender, bio, region, city, pfp_path`

// UpsertProfile creates or replaces the profile for profile.UserID.
func (r *ProfileRepo) UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	var saved models.Profile
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO profiles (user_id, first_name, last_name, nickname, age, gender, bio, region, city, pfp_path)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         ON CONFLICT (user_id) DO UPDATE SET
             first_name = EXCLUDED.first_name,
             last_name = EXCLUDED.last_name,
             nickname = EXCLUDED.nickname,
             age = EXCLUDED.age,
             gender = EXCLUDED.gender,
             bio = EXCLUDED.bio,
             region = EXCLUDED.region,
             city = EXCLUDED.city,
             pfp_path = EXCLUDED.pfp_path
         RETURNING `+profileColumns,
		profile.UserID, profile.FirstName, profile.LastName, profile.Nickname,
		profile.Age, profile.Gender, profile.Bio, profile.Region, profile.City, profile.PfpPath).
		StructScan(&saved)
	return saved, err
}

// GetProfile fetches one profile by user id.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID int64) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// GetProfiles fetches profiles for a set of user ids. Missing ids are simply
// absent from the result; callers decide how to treat the gap.
func (r *ProfileRepo) GetProfiles(ctx context.Context, userIDs []int64) ([]models.Profile, error) {
	if len(userIDs) == 0 {
		return []models.Profile{}, nil
	}
	query, args, err := sqlx.In(
		`SELECT `+profileColumns+` FROM profiles WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var profiles []models.Profile
	err = r.db.SelectContext(ctx, &profiles, query, args...)
	return profiles, err
}

// ListCandidates returns discovery candidates for the viewer: every profile
// except the viewer's own and every target already present in the swipe
// ledger, narrowed by the optional filter predicates.
func (r *ProfileRepo) ListCandidates(ctx context.Context, viewerID int64, filter models.CandidateFilter) ([]models.Profile, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + profileColumns + ` FROM profiles WHERE user_id != $1`)
	args := []interface{}{viewerID}

	addClause := func(clause string, value interface{}) {
		args = append(args, value)
		fmt.Fprintf(&sb, clause, len(args))
	}

	if filter.MinAge > 0 {
		addClause(" AND age >= $%d", filter.MinAge)
	}
	if filter.MaxAge > 0 {
		addClause(" AND age <= $%d", filter.MaxAge)
	}
	if filter.Gender != "" {
		addClause(" AND gender = $%d", filter.Gender)
	}
	if filter.Region != "" {
		addClause(" AND region = $%d", filter.Region)
	}
	if filter.City != "" {
		addClause(" AND city = $%d", filter.City)
	}

	sb.WriteString(` AND user_id NOT IN (SELECT target_id FROM swipes WHERE actor_id = $1)`)
	sb.WriteString(` ORDER BY user_id ASC`)

	var profiles []models.Profile
	err := r.db.SelectContext(ctx, &profiles, sb.String(), args...)
	return profiles, err
}
