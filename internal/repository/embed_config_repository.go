package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/embed-service/internal/domain"
)

// EmbedConfigRepository encapsulates embed configuration persistence.
// Upsert replaces token, access-control mode, allowed domains and expiry
// in one statement so a rotation is atomic; concurrent rotations resolve
// at the database with the last writer winning.
type EmbedConfigRepository interface {
	Upsert(ctx context.Context, cfg *domain.EmbedConfig) error
	GetByProjectID(ctx context.Context, projectID string) (*domain.EmbedConfig, error)
	DeleteByProjectID(ctx context.Context, projectID string) error
}

type embedConfigRepository struct {
	pool *pgxpool.Pool
}

// NewEmbedConfigRepository instantiates the repository.
func NewEmbedConfigRepository(pool *pgxpool.Pool) EmbedConfigRepository {
	return &embedConfigRepository{pool: pool}
}

func (r *embedConfigRepository) Upsert(ctx context.Context, cfg *domain.EmbedConfig) error {
	const query = `
        INSERT INTO embed_configs (project_id, token, access_control, allowed_domains, expires_at, created_by_user_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (project_id) DO UPDATE SET
            token = EXCLUDED.token,
            access_control = EXCLUDED.access_control,
            allowed_domains = EXCLUDED.allowed_domains,
            expires_at = EXCLUDED.expires_at,
            updated_at = NOW()
        RETURNING id, created_by_user_id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		cfg.ProjectID,
		cfg.Token,
		cfg.AccessControl,
		joinDomains(cfg.AllowedDomains),
		cfg.ExpiresAt,
		cfg.CreatedBy,
	).Scan(&cfg.ID, &cfg.CreatedBy, &cfg.CreatedAt, &cfg.UpdatedAt)
}

func (r *embedConfigRepository) GetByProjectID(ctx context.Context, projectID string) (*domain.EmbedConfig, error) {
	const query = `
        SELECT id, project_id, token, access_control, allowed_domains, expires_at, created_by_user_id, created_at, updated_at
        FROM embed_configs WHERE project_id=$1`

	var cfg domain.EmbedConfig
	var domains string
	if err := r.pool.QueryRow(ctx, query, projectID).Scan(
		&cfg.ID,
		&cfg.ProjectID,
		&cfg.Token,
		&cfg.AccessControl,
		&domains,
		&cfg.ExpiresAt,
		&cfg.CreatedBy,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cfg.AllowedDomains = splitDomains(domains)
	return &cfg, nil
}

func (r *embedConfigRepository) DeleteByProjectID(ctx context.Context, projectID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM embed_configs WHERE project_id=$1`, projectID)
	return err
}

// Allowed domains are stored comma-joined; the list form exists only in
// the domain model.
func joinDomains(domains []string) string {
	return strings.Join(domains, ",")
}

func splitDomains(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
