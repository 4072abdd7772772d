package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"missionhub/pkg/models"
)

type MissionRepository interface {
	Create(ctx context.Context, m *models.Mission) error
	GetByID(ctx context.Context, id string) (*models.Mission, error)
	List(ctx context.Context) ([]models.Mission, error)
	Update(ctx context.Context, m *models.Mission) error
	Delete(ctx context.Context, id string) error
	UpdateOrder(ctx context.Context, order []models.MissionOrder) error
}

type missionRepository struct {
	pool *pgxpool.Pool
}

func NewMissionRepository(pool *pgxpool.Pool) MissionRepository {
	return &missionRepository{pool: pool}
}

const missionColumns = `id, title, description, instructions, type, points_value, image_url,
	mission_number, display_order, max_submissions_per_user, submission_schema, created_at, updated_at`

func scanMission(row pgx.Row) (*models.Mission, error) {
	m := &models.Mission{}
	var schema []byte
	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.Instructions, &m.Type, &m.PointsValue, &m.ImageURL,
		&m.MissionNumber, &m.DisplayOrder, &m.MaxSubmissionsPerUser, &schema, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.SubmissionSchema = schema
	return m, nil
}

func (r *missionRepository) Create(ctx context.Context, m *models.Mission) error {
	if m.ID == "" {
		m.ID = newID()
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now

	query := `
		INSERT INTO missions (id, title, description, instructions, type, points_value, image_url,
			mission_number, display_order, max_submissions_per_user, submission_schema, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			COALESCE($9, (SELECT COALESCE(MAX(display_order), 0) + 1 FROM missions)),
			$10, $11, $12, $12)
		RETURNING display_order
	`
	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Title, m.Description, m.Instructions, m.Type, m.PointsValue, m.ImageURL,
		m.MissionNumber, m.DisplayOrder, m.MaxSubmissionsPerUser, nullableJSON(m.SubmissionSchema), now,
	).Scan(&m.DisplayOrder)
	if err != nil {
		return mapDBError(err, "create_mission", models.ErrMissionNotFound)
	}
	return nil
}

func (r *missionRepository) GetByID(ctx context.Context, id string) (*models.Mission, error) {
	m, err := scanMission(r.pool.QueryRow(ctx, `SELECT `+missionColumns+` FROM missions WHERE id = $1`, id))
	if err != nil {
		return nil, mapDBError(err, "get_mission", models.ErrMissionNotFound)
	}
	return m, nil
}

// List returns missions in display order, unordered missions last
func (r *missionRepository) List(ctx context.Context) ([]models.Mission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+missionColumns+`
		FROM missions
		ORDER BY display_order ASC NULLS LAST, mission_number ASC NULLS LAST, created_at ASC
	`)
	if err != nil {
		return nil, mapDBError(err, "list_missions", nil)
	}
	defer rows.Close()

	missions := make([]models.Mission, 0)
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_mission", nil)
		}
		missions = append(missions, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "list_missions", nil)
	}
	return missions, nil
}

func (r *missionRepository) Update(ctx context.Context, m *models.Mission) error {
	query := `
		UPDATE missions
		SET title = $2, description = $3, instructions = $4, type = $5, points_value = $6,
			image_url = $7, mission_number = $8, max_submissions_per_user = $9,
			submission_schema = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Title, m.Description, m.Instructions, m.Type, m.PointsValue,
		m.ImageURL, m.MissionNumber, m.MaxSubmissionsPerUser, nullableJSON(m.SubmissionSchema),
	).Scan(&m.UpdatedAt)
	if err != nil {
		return mapDBError(err, "update_mission", models.ErrMissionNotFound)
	}
	return nil
}

// Delete keeps existing submissions; their mission reference becomes NULL
func (r *missionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM missions WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err, "delete_mission", models.ErrMissionNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "delete_mission", models.ErrMissionNotFound)
	}
	return nil
}

// UpdateOrder applies every position or none
func (r *missionRepository) UpdateOrder(ctx context.Context, order []models.MissionOrder) error {
	return withTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		for _, o := range order {
			tag, err := tx.Exec(ctx,
				`UPDATE missions SET display_order = $2, updated_at = NOW() WHERE id = $1`, o.ID, o.DisplayOrder)
			if err != nil {
				return mapDBError(err, "update_mission_order", models.ErrMissionNotFound)
			}
			if tag.RowsAffected() == 0 {
				return mapDBError(pgx.ErrNoRows, "update_mission_order", models.ErrMissionNotFound)
			}
		}
		return nil
	})
}
