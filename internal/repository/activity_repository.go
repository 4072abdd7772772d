package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"missionhub/pkg/models"
)

// ActivityRepository reads the two community feed sources
type ActivityRepository interface {
	// RecentApprovedSubmissions returns the newest approved submissions with
	// author and mission title. A missing mission yields an empty title.
	RecentApprovedSubmissions(ctx context.Context, limit int) ([]models.SubmissionEvent, error)
	RecentProfileChanges(ctx context.Context, limit int) ([]models.ProfileChangeEvent, error)
	RecordProfileChange(ctx context.Context, a *models.ProfileActivity) error
}

type activityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) RecentApprovedSubmissions(ctx context.Context, limit int) ([]models.SubmissionEvent, error) {
	limit = models.ClampLimit(limit, 10, 100)

	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.created_at, s.points_awarded, s.user_id, COALESCE(p.name, ''), p.avatar_url,
			COALESCE(s.mission_id::text, ''), COALESCE(m.title, ''), s.status, s.text_submission, s.media_url
		FROM submissions s
		LEFT JOIN profiles p ON p.id = s.user_id
		LEFT JOIN missions m ON m.id = s.mission_id
		WHERE s.status = 'approved'
		ORDER BY s.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, mapDBError(err, "recent_approved_submissions", nil)
	}
	defer rows.Close()

	events := make([]models.SubmissionEvent, 0, limit)
	for rows.Next() {
		var (
			e      models.SubmissionEvent
			status string
		)
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.PointsAwarded, &e.UserID, &e.UserName, &e.UserAvatarURL,
			&e.MissionID, &e.MissionTitle, &status, &e.TextSubmission, &e.MediaURL); err != nil {
			return nil, mapDBError(err, "scan_submission_event", nil)
		}
		e.Status = models.SubmissionStatus(status)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "recent_approved_submissions", nil)
	}
	return events, nil
}

func (r *activityRepository) RecentProfileChanges(ctx context.Context, limit int) ([]models.ProfileChangeEvent, error) {
	limit = models.ClampLimit(limit, 5, 100)

	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.created_at, a.user_id, COALESCE(p.name, ''), p.avatar_url, a.changed_fields
		FROM profile_activities a
		LEFT JOIN profiles p ON p.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, mapDBError(err, "recent_profile_changes", nil)
	}
	defer rows.Close()

	events := make([]models.ProfileChangeEvent, 0, limit)
	for rows.Next() {
		var e models.ProfileChangeEvent
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.UserID, &e.UserName, &e.UserAvatarURL, &e.ChangedFields); err != nil {
			return nil, mapDBError(err, "scan_profile_change", nil)
		}
		if e.ChangedFields == nil {
			e.ChangedFields = []string{}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "recent_profile_changes", nil)
	}
	return events, nil
}

func (r *activityRepository) RecordProfileChange(ctx context.Context, a *models.ProfileActivity) error {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.ActivityType == "" {
		a.ActivityType = models.ActivityTypeProfileUpdated
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.ChangedFields == nil {
		a.ChangedFields = []string{}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO profile_activities (id, user_id, activity_type, changed_fields, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.UserID, a.ActivityType, a.ChangedFields, a.CreatedAt)
	if err != nil {
		return mapDBError(err, "record_profile_change", models.ErrProfileNotFound)
	}
	return nil
}
