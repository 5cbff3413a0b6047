package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/embed-service/internal/domain"
)

// ActivityRepository records and lists project activity entries.
type ActivityRepository interface {
	Create(ctx context.Context, entry *domain.ProjectActivity) error
	ListByProject(ctx context.Context, projectID string, limit, offset int) ([]domain.ProjectActivity, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository instantiates the repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, entry *domain.ProjectActivity) error {
	const query = `
        INSERT INTO project_activity (project_id, actor_user_id, activity_type, detail)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		entry.ProjectID,
		entry.ActorID,
		entry.Type,
		entry.Detail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityRepository) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]domain.ProjectActivity, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
        SELECT id, project_id, actor_user_id, activity_type, detail, created_at
        FROM project_activity
        WHERE project_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProjectActivity
	for rows.Next() {
		var entry domain.ProjectActivity
		if err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&entry.ActorID,
			&entry.Type,
			&entry.Detail,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
