package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/embed-service/internal/domain"
)

type fakeProjectRepo struct {
	projects map[string]*domain.Project
	nextID   int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*domain.Project)}
}

func (r *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	r.nextID++
	project.ID = fmt.Sprintf("project-%d", r.nextID)
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	clone := *project
	r.projects[project.ID] = &clone
	return nil
}

func (r *fakeProjectRepo) Update(_ context.Context, project *domain.Project) error {
	if _, ok := r.projects[project.ID]; !ok {
		return pgx.ErrNoRows
	}
	project.UpdatedAt = time.Now()
	clone := *project
	r.projects[project.ID] = &clone
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.projects[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.projects, id)
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *project
	return &clone, nil
}

func (r *fakeProjectRepo) ListForUser(_ context.Context, userID string, _, _ int) ([]domain.Project, error) {
	var result []domain.Project
	for _, project := range r.projects {
		if project.OwnerID == userID {
			result = append(result, *project)
		}
	}
	return result, nil
}

type fakeCollaboratorRepo struct {
	collaborators map[string]*domain.Collaborator
	nextID        int
}

func newFakeCollaboratorRepo() *fakeCollaboratorRepo {
	return &fakeCollaboratorRepo{collaborators: make(map[string]*domain.Collaborator)}
}

func (r *fakeCollaboratorRepo) Create(_ context.Context, collaborator *domain.Collaborator) error {
	r.nextID++
	collaborator.ID = fmt.Sprintf("collab-%d", r.nextID)
	collaborator.CreatedAt = time.Now()
	collaborator.UpdatedAt = collaborator.CreatedAt
	clone := *collaborator
	r.collaborators[collaborator.ID] = &clone
	return nil
}

func (r *fakeCollaboratorRepo) Update(_ context.Context, collaborator *domain.Collaborator) error {
	if _, ok := r.collaborators[collaborator.ID]; !ok {
		return pgx.ErrNoRows
	}
	collaborator.UpdatedAt = time.Now()
	clone := *collaborator
	r.collaborators[collaborator.ID] = &clone
	return nil
}

func (r *fakeCollaboratorRepo) Delete(_ context.Context, projectID, userID string) error {
	for id, collaborator := range r.collaborators {
		if collaborator.ProjectID == projectID && collaborator.UserID == userID {
			delete(r.collaborators, id)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeCollaboratorRepo) GetByID(_ context.Context, id string) (*domain.Collaborator, error) {
	collaborator, ok := r.collaborators[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *collaborator
	return &clone, nil
}

func (r *fakeCollaboratorRepo) GetByProjectAndUser(_ context.Context, projectID, userID string) (*domain.Collaborator, error) {
	for _, collaborator := range r.collaborators {
		if collaborator.ProjectID == projectID && collaborator.UserID == userID {
			clone := *collaborator
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCollaboratorRepo) ListByProject(_ context.Context, projectID string) ([]domain.Collaborator, error) {
	var result []domain.Collaborator
	for _, collaborator := range r.collaborators {
		if collaborator.ProjectID == projectID {
			result = append(result, *collaborator)
		}
	}
	return result, nil
}

type fakeEmbedConfigRepo struct {
	configs map[string]*domain.EmbedConfig
	nextID  int
}

func newFakeEmbedConfigRepo() *fakeEmbedConfigRepo {
	return &fakeEmbedConfigRepo{configs: make(map[string]*domain.EmbedConfig)}
}

func (r *fakeEmbedConfigRepo) Upsert(_ context.Context, cfg *domain.EmbedConfig) error {
	existing, ok := r.configs[cfg.ProjectID]
	if ok {
		cfg.ID = existing.ID
		cfg.CreatedBy = existing.CreatedBy
		cfg.CreatedAt = existing.CreatedAt
	} else {
		r.nextID++
		cfg.ID = fmt.Sprintf("embed-%d", r.nextID)
		cfg.CreatedAt = time.Now()
	}
	cfg.UpdatedAt = time.Now()
	clone := *cfg
	r.configs[cfg.ProjectID] = &clone
	return nil
}

func (r *fakeEmbedConfigRepo) GetByProjectID(_ context.Context, projectID string) (*domain.EmbedConfig, error) {
	cfg, ok := r.configs[projectID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *cfg
	return &clone, nil
}

func (r *fakeEmbedConfigRepo) DeleteByProjectID(_ context.Context, projectID string) error {
	delete(r.configs, projectID)
	return nil
}

type fakeActivityRepo struct {
	entries []domain.ProjectActivity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (r *fakeActivityRepo) Create(_ context.Context, entry *domain.ProjectActivity) error {
	entry.ID = fmt.Sprintf("activity-%d", len(r.entries)+1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeActivityRepo) ListByProject(_ context.Context, projectID string, _, _ int) ([]domain.ProjectActivity, error) {
	var result []domain.ProjectActivity
	for _, entry := range r.entries {
		if entry.ProjectID == projectID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}
