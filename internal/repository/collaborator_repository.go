package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/embed-service/internal/domain"
)

// CollaboratorRepository encapsulates collaborator persistence.
type CollaboratorRepository interface {
	Create(ctx context.Context, collaborator *domain.Collaborator) error
	Update(ctx context.Context, collaborator *domain.Collaborator) error
	Delete(ctx context.Context, projectID, userID string) error
	GetByID(ctx context.Context, id string) (*domain.Collaborator, error)
	GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.Collaborator, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Collaborator, error)
}

type collaboratorRepository struct {
	pool *pgxpool.Pool
}

// NewCollaboratorRepository instantiates the repository.
func NewCollaboratorRepository(pool *pgxpool.Pool) CollaboratorRepository {
	return &collaboratorRepository{pool: pool}
}

func (r *collaboratorRepository) Create(ctx context.Context, collaborator *domain.Collaborator) error {
	const query = `
        INSERT INTO collaborators (project_id, user_id, role, status, invited_by_user_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		collaborator.ProjectID,
		collaborator.UserID,
		collaborator.Role,
		collaborator.Status,
		collaborator.InvitedBy,
	).Scan(&collaborator.ID, &collaborator.CreatedAt, &collaborator.UpdatedAt)
}

func (r *collaboratorRepository) Update(ctx context.Context, collaborator *domain.Collaborator) error {
	const query = `
        UPDATE collaborators SET role=$1, status=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query,
		collaborator.Role,
		collaborator.Status,
		collaborator.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *collaboratorRepository) Delete(ctx context.Context, projectID, userID string) error {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM collaborators WHERE project_id=$1 AND user_id=$2`, projectID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *collaboratorRepository) GetByID(ctx context.Context, id string) (*domain.Collaborator, error) {
	const query = `
        SELECT id, project_id, user_id, role, status, invited_by_user_id, created_at, updated_at
        FROM collaborators WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *collaboratorRepository) GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.Collaborator, error) {
	const query = `
        SELECT id, project_id, user_id, role, status, invited_by_user_id, created_at, updated_at
        FROM collaborators WHERE project_id=$1 AND user_id=$2`
	return r.fetchSingle(ctx, query, projectID, userID)
}

func (r *collaboratorRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Collaborator, error) {
	const query = `
        SELECT id, project_id, user_id, role, status, invited_by_user_id, created_at, updated_at
        FROM collaborators WHERE project_id=$1
        ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Collaborator
	for rows.Next() {
		var collaborator domain.Collaborator
		if err := scanCollaborator(rows.Scan, &collaborator); err != nil {
			return nil, err
		}
		result = append(result, collaborator)
	}
	return result, rows.Err()
}

func (r *collaboratorRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Collaborator, error) {
	var collaborator domain.Collaborator
	if err := scanCollaborator(r.pool.QueryRow(ctx, query, args...).Scan, &collaborator); err != nil {
		return nil, err
	}
	return &collaborator, nil
}

func scanCollaborator(scan func(...any) error, c *domain.Collaborator) error {
	return scan(
		&c.ID,
		&c.ProjectID,
		&c.UserID,
		&c.Role,
		&c.Status,
		&c.InvitedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}
