package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"missionhub/pkg/models"
)

// ProfileRepository handles profile persistence and point totals
type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, p *models.Profile) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]models.Profile, int, error)

	// ListByPoints pages the leaderboard ordered by total_points DESC, created_at ASC, id ASC
	ListByPoints(ctx context.Context, limit, offset int) ([]models.LeaderboardEntry, int, error)
	// AllPoints returns the full leaderboard order for rank lookups
	AllPoints(ctx context.Context) ([]models.RankedPoints, error)
	RecalculatePoints(ctx context.Context, userID string) (int, error)
	ApprovedCount(ctx context.Context, userID string) (int, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id, name, email, avatar_url, job_title, department, country, bio,
	customer_obsession, total_points, role, password_hash, is_deleted, created_at, updated_at`

// leaderboardOrder is shared by every query that feeds ranking
const leaderboardOrder = `ORDER BY total_points DESC, created_at ASC, id ASC`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	p := &models.Profile{}
	var role string
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.AvatarURL, &p.JobTitle, &p.Department, &p.Country, &p.Bio,
		&p.CustomerObsession, &p.TotalPoints, &role, &p.PasswordHash, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Role = models.Role(role)
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Role == "" {
		p.Role = models.RoleParticipant
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `
		INSERT INTO profiles (id, name, email, password_hash, avatar_url, job_title, department,
			country, bio, customer_obsession, total_points, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $12, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Email, p.PasswordHash, p.AvatarURL, p.JobTitle, p.Department,
		p.Country, p.Bio, p.CustomerObsession, string(p.Role), now,
	)
	if err != nil {
		return mapDBError(err, "create_profile", models.ErrProfileNotFound)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		return nil, mapDBError(err, "get_profile_by_id", models.ErrProfileNotFound)
	}
	return p, nil
}

// GetByEmail ignores soft-deleted profiles
func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1) AND NOT is_deleted`, email)
	p, err := scanProfile(row)
	if err != nil {
		return nil, mapDBError(err, "get_profile_by_email", models.ErrProfileNotFound)
	}
	return p, nil
}

func (r *profileRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE lower(email) = lower($1))`, email).Scan(&exists)
	if err != nil {
		return false, mapDBError(err, "check_email_exists", nil)
	}
	return exists, nil
}

// Update writes the editable profile fields
func (r *profileRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET name = $2, avatar_url = $3, job_title = $4, department = $5, country = $6,
			bio = $7, customer_obsession = $8, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.AvatarURL, p.JobTitle, p.Department, p.Country, p.Bio, p.CustomerObsession,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return mapDBError(err, "update_profile", models.ErrProfileNotFound)
	}
	return nil
}

func (r *profileRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1`, id, string(role))
	if err != nil {
		return mapDBError(err, "update_profile_role", models.ErrProfileNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "update_profile_role", models.ErrProfileNotFound)
	}
	return nil
}

// SoftDelete hides the profile from login and the leaderboard
func (r *profileRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err, "soft_delete_profile", models.ErrProfileNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "soft_delete_profile", models.ErrProfileNotFound)
	}
	return nil
}

func (r *profileRepository) List(ctx context.Context, limit, offset int) ([]models.Profile, int, error) {
	limit, offset = clampPage(limit, offset)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, mapDBError(err, "count_profiles", nil)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC, id ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, mapDBError(err, "list_profiles", nil)
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0, limit)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, mapDBError(err, "scan_profile", nil)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError(err, "list_profiles", nil)
	}
	return profiles, total, nil
}

func (r *profileRepository) ListByPoints(ctx context.Context, limit, offset int) ([]models.LeaderboardEntry, int, error) {
	limit, offset = clampPage(limit, offset)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE NOT is_deleted`).Scan(&total); err != nil {
		return nil, 0, mapDBError(err, "count_leaderboard", nil)
	}

	query := `
		SELECT id, name, avatar_url, total_points, job_title, department, country
		FROM profiles
		WHERE NOT is_deleted
		` + leaderboardOrder + `
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, mapDBError(err, "list_leaderboard", nil)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.AvatarURL, &e.TotalPoints, &e.JobTitle, &e.Department, &e.Country); err != nil {
			return nil, 0, mapDBError(err, "scan_leaderboard", nil)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError(err, "list_leaderboard", nil)
	}
	return entries, total, nil
}

func (r *profileRepository) AllPoints(ctx context.Context) ([]models.RankedPoints, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, total_points FROM profiles WHERE NOT is_deleted `+leaderboardOrder)
	if err != nil {
		return nil, mapDBError(err, "all_points", nil)
	}
	defer rows.Close()

	var points []models.RankedPoints
	for rows.Next() {
		var p models.RankedPoints
		if err := rows.Scan(&p.ID, &p.TotalPoints); err != nil {
			return nil, mapDBError(err, "scan_points", nil)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "all_points", nil)
	}
	return points, nil
}

func (r *profileRepository) RecalculatePoints(ctx context.Context, userID string) (int, error) {
	return recalculatePoints(ctx, r.pool, userID)
}

// recalculatePoints resets total_points to the sum of approved awards.
// Submission writes call it inside their own transaction.
func recalculatePoints(ctx context.Context, q querier, userID string) (int, error) {
	query := `
		UPDATE profiles
		SET total_points = (
			SELECT COALESCE(SUM(points_awarded), 0)
			FROM submissions
			WHERE user_id = $1 AND status = 'approved'
		), updated_at = NOW()
		WHERE id = $1
		RETURNING total_points
	`
	var total int
	if err := q.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, mapDBError(err, "recalculate_points", models.ErrProfileNotFound)
	}
	return total, nil
}

func (r *profileRepository) ApprovedCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE user_id = $1 AND status = 'approved'`, userID).Scan(&n)
	if err != nil {
		return 0, mapDBError(err, "approved_count", models.ErrProfileNotFound)
	}
	return n, nil
}
