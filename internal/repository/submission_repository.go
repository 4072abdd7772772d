package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"missionhub/pkg/models"
)

type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	// Update rewrites content, status and points, then refreshes the author's total
	Update(ctx context.Context, s *models.Submission) error
	ListForReview(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]models.SubmissionDetail, int, error)
	ListByUser(ctx context.Context, userID string) ([]models.Submission, error)
	// UpdateStatus records a moderation decision and refreshes the author's total
	UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, points int, feedback *string) (*models.Submission, error)
	Delete(ctx context.Context, id string) (*models.Submission, error)
	CountByUserMission(ctx context.Context, userID, missionID string) (int, error)
}

type submissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

const submissionColumns = `s.id, s.user_id, COALESCE(s.mission_id::text, ''), s.text_submission, s.media_url,
	s.answers, s.status, s.points_awarded, s.admin_feedback, s.created_at, s.updated_at`

func scanSubmission(row pgx.Row, extra ...any) (*models.Submission, error) {
	s := &models.Submission{}
	var (
		answers []byte
		status  string
	)
	dest := []any{
		&s.ID, &s.UserID, &s.MissionID, &s.TextSubmission, &s.MediaURL,
		&answers, &status, &s.PointsAwarded, &s.AdminFeedback, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	s.Answers = answers
	s.Status = models.SubmissionStatus(status)
	return s, nil
}

func (r *submissionRepository) Create(ctx context.Context, s *models.Submission) error {
	if s.ID == "" {
		s.ID = newID()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	query := `
		INSERT INTO submissions (id, user_id, mission_id, text_submission, media_url, answers,
			status, points_awarded, admin_feedback, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID, s.UserID, s.MissionID, s.TextSubmission, s.MediaURL, nullableJSON(s.Answers),
		string(s.Status), s.PointsAwarded, s.AdminFeedback, now,
	)
	if err != nil {
		return mapDBError(err, "create_submission", models.ErrSubmissionNotFound)
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions s WHERE s.id = $1`, id))
	if err != nil {
		return nil, mapDBError(err, "get_submission", models.ErrSubmissionNotFound)
	}
	return s, nil
}

func (r *submissionRepository) Update(ctx context.Context, s *models.Submission) error {
	return withTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE submissions
			SET text_submission = $2, media_url = $3, answers = $4, status = $5,
				points_awarded = $6, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`
		err := tx.QueryRow(ctx, query,
			s.ID, s.TextSubmission, s.MediaURL, nullableJSON(s.Answers), string(s.Status), s.PointsAwarded,
		).Scan(&s.UpdatedAt)
		if err != nil {
			return mapDBError(err, "update_submission", models.ErrSubmissionNotFound)
		}
		_, err = recalculatePoints(ctx, tx, s.UserID)
		return err
	})
}

// ListForReview pages submissions with author and mission. An empty status
// lists everything except drafts.
func (r *submissionRepository) ListForReview(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]models.SubmissionDetail, int, error) {
	limit, offset = clampPage(limit, offset)

	filter := `s.status <> 'draft'`
	args := []any{}
	if status != "" {
		filter = `s.status = $1`
		args = append(args, string(status))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM submissions s WHERE `+filter, args...).Scan(&total); err != nil {
		return nil, 0, mapDBError(err, "count_review_queue", nil)
	}

	n := len(args)
	query := `
		SELECT ` + submissionColumns + `, p.name, p.email, COALESCE(m.title, ''),
			(SELECT COUNT(*) FROM likes l WHERE l.submission_id = s.id)
		FROM submissions s
		JOIN profiles p ON p.id = s.user_id
		LEFT JOIN missions m ON m.id = s.mission_id
		WHERE ` + filter + `
		ORDER BY s.created_at DESC, s.id ASC
		LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapDBError(err, "list_review_queue", nil)
	}
	defer rows.Close()

	details := make([]models.SubmissionDetail, 0, limit)
	for rows.Next() {
		var d models.SubmissionDetail
		s, err := scanSubmission(rows, &d.UserName, &d.UserEmail, &d.MissionTitle, &d.LikeCount)
		if err != nil {
			return nil, 0, mapDBError(err, "scan_review_queue", nil)
		}
		d.Submission = *s
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError(err, "list_review_queue", nil)
	}
	return details, total, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID string) ([]models.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions s WHERE s.user_id = $1 ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, mapDBError(err, "list_user_submissions", nil)
	}
	defer rows.Close()

	subs := make([]models.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_submission", nil)
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "list_user_submissions", nil)
	}
	return subs, nil
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, points int, feedback *string) (*models.Submission, error) {
	var updated *models.Submission
	err := withTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE submissions s
			SET status = $2, points_awarded = $3, admin_feedback = COALESCE($4, s.admin_feedback), updated_at = NOW()
			WHERE s.id = $1
			RETURNING ` + submissionColumns
		s, err := scanSubmission(tx.QueryRow(ctx, query, id, string(status), points, feedback))
		if err != nil {
			return mapDBError(err, "update_submission_status", models.ErrSubmissionNotFound)
		}
		if _, err := recalculatePoints(ctx, tx, s.UserID); err != nil {
			return err
		}
		updated = s
		return nil
	})
	return updated, err
}

func (r *submissionRepository) Delete(ctx context.Context, id string) (*models.Submission, error) {
	var deleted *models.Submission
	err := withTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := scanSubmission(tx.QueryRow(ctx,
			`DELETE FROM submissions s WHERE s.id = $1 RETURNING `+submissionColumns, id))
		if err != nil {
			return mapDBError(err, "delete_submission", models.ErrSubmissionNotFound)
		}
		if _, err := recalculatePoints(ctx, tx, s.UserID); err != nil {
			return err
		}
		deleted = s
		return nil
	})
	return deleted, err
}

// CountByUserMission counts non-draft submissions toward the per-user limit
func (r *submissionRepository) CountByUserMission(ctx context.Context, userID, missionID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM submissions
		WHERE user_id = $1 AND mission_id = $2 AND status <> 'draft'
	`, userID, missionID).Scan(&n)
	if err != nil {
		return 0, mapDBError(err, "count_user_mission_submissions", nil)
	}
	return n, nil
}
