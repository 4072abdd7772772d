package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"missionhub/pkg/models"
)

// LikeRepository stores one row per (user, submission) like
type LikeRepository interface {
	// Add reports whether a new like was stored; liking twice is a no-op
	Add(ctx context.Context, userID, submissionID string) (bool, error)
	Remove(ctx context.Context, userID, submissionID string) (bool, error)
	Count(ctx context.Context, submissionID string) (int, error)
	HasLiked(ctx context.Context, userID, submissionID string) (bool, error)
	CountsFor(ctx context.Context, submissionIDs []string) (map[string]int, error)
	LikedBy(ctx context.Context, userID string, submissionIDs []string) (map[string]bool, error)
}

type likeRepository struct {
	pool *pgxpool.Pool
}

func NewLikeRepository(pool *pgxpool.Pool) LikeRepository {
	return &likeRepository{pool: pool}
}

func (r *likeRepository) Add(ctx context.Context, userID, submissionID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO likes (id, user_id, submission_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, submission_id) DO NOTHING
	`, newID(), userID, submissionID, time.Now().UTC())
	if err != nil {
		return false, mapDBError(err, "add_like", models.ErrSubmissionNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *likeRepository) Remove(ctx context.Context, userID, submissionID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND submission_id = $2`, userID, submissionID)
	if err != nil {
		return false, mapDBError(err, "remove_like", models.ErrSubmissionNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *likeRepository) Count(ctx context.Context, submissionID string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM likes WHERE submission_id = $1`, submissionID).Scan(&n); err != nil {
		return 0, mapDBError(err, "count_likes", models.ErrSubmissionNotFound)
	}
	return n, nil
}

func (r *likeRepository) HasLiked(ctx context.Context, userID, submissionID string) (bool, error) {
	var liked bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND submission_id = $2)`,
		userID, submissionID).Scan(&liked); err != nil {
		return false, mapDBError(err, "has_liked", models.ErrSubmissionNotFound)
	}
	return liked, nil
}

// CountsFor omits submissions with no likes
func (r *likeRepository) CountsFor(ctx context.Context, submissionIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return counts, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT submission_id::text, COUNT(*)
		FROM likes
		WHERE submission_id = ANY($1::uuid[])
		GROUP BY submission_id
	`, submissionIDs)
	if err != nil {
		return nil, mapDBError(err, "count_likes_batch", nil)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, mapDBError(err, "scan_like_counts", nil)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "count_likes_batch", nil)
	}
	return counts, nil
}

func (r *likeRepository) LikedBy(ctx context.Context, userID string, submissionIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool, len(submissionIDs))
	if userID == "" || len(submissionIDs) == 0 {
		return liked, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT submission_id::text
		FROM likes
		WHERE user_id = $1 AND submission_id = ANY($2::uuid[])
	`, userID, submissionIDs)
	if err != nil {
		return nil, mapDBError(err, "liked_by", nil)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapDBError(err, "scan_liked_by", nil)
		}
		liked[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "liked_by", nil)
	}
	return liked, nil
}
