package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/embed-service/internal/domain"
	"github.com/spec-kit/embed-service/internal/events"
	"github.com/spec-kit/embed-service/internal/repository"
	apperrors "github.com/spec-kit/embed-service/pkg/util"
)

// ProjectService coordinates project workflows.
type ProjectService struct {
	projects      repository.ProjectRepository
	collaborators repository.CollaboratorRepository
	configs       repository.EmbedConfigRepository
	activity      repository.ActivityRepository
	cache         *EmbedSnapshotCache
	dispatcher    events.Dispatcher
}

// ProjectDependencies bundles repositories for the project service.
type ProjectDependencies struct {
	ProjectRepo      repository.ProjectRepository
	CollaboratorRepo repository.CollaboratorRepository
	ConfigRepo       repository.EmbedConfigRepository
	ActivityRepo     repository.ActivityRepository
	Cache            *EmbedSnapshotCache
	Dispatcher       events.Dispatcher
}

// ProjectCreateInput describes project creation payload.
type ProjectCreateInput struct {
	Name        string
	Description string
	Shared      bool
}

// ProjectUpdateInput describes a partial project update. Nil fields are
// left untouched.
type ProjectUpdateInput struct {
	Name        *string
	Description *string
	Shared      *bool
}

// NewProjectService constructs the service.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	return &ProjectService{
		projects:      deps.ProjectRepo,
		collaborators: deps.CollaboratorRepo,
		configs:       deps.ConfigRepo,
		activity:      deps.ActivityRepo,
		cache:         deps.Cache,
		dispatcher:    deps.Dispatcher,
	}
}

// CreateProject creates a project owned by the caller.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, input ProjectCreateInput) (*domain.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	project := &domain.Project{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Shared:      input.Shared,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, project.ID, ownerID, domain.ActivityProjectCreated, "project created")
	s.publishEvent(ctx, events.Event{
		Type:      events.EventProjectCreated,
		ProjectID: project.ID,
		Actor:     events.Actor{UserID: ownerID},
		Payload: events.ProjectCreatedPayload{
			Name:   project.Name,
			Shared: project.Shared,
		},
	})
	return project, nil
}

// ListProjects returns projects the caller owns or collaborates on.
func (s *ProjectService) ListProjects(ctx context.Context, userID string, limit, offset int) ([]domain.Project, error) {
	return s.projects.ListForUser(ctx, userID, limit, offset)
}

// GetProject fetches a project, ensuring the caller may view it.
func (s *ProjectService) GetProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, project, userID); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject applies a partial update. Owners and accepted editors
// may edit; the shared visibility flag is owner-only.
func (s *ProjectService) UpdateProject(ctx context.Context, userID, projectID string, input ProjectUpdateInput) (*domain.Project, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeEdit(ctx, project, userID); err != nil {
		return nil, err
	}
	if input.Shared != nil && project.OwnerID != userID {
		return nil, apperrors.NewForbidden("only the owner may change project visibility")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name required", nil)
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
	}
	if input.Shared != nil {
		project.Shared = *input.Shared
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, project.ID)
	s.recordActivity(ctx, project.ID, userID, domain.ActivityProjectUpdated, "project updated")
	return project, nil
}

// DeleteProject removes a project and its embed configuration. Owner only.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID string) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != userID {
		return apperrors.NewForbidden("only the owner may delete a project")
	}

	if err := s.configs.DeleteByProjectID(ctx, projectID); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, projectID)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventProjectDeleted,
		ProjectID: projectID,
		Actor:     events.Actor{UserID: userID},
		Payload:   events.ProjectDeletedPayload{Name: project.Name},
	})
	return nil
}

// ListActivity returns the project activity log for authorized callers.
func (s *ProjectService) ListActivity(ctx context.Context, userID, projectID string, limit, offset int) ([]domain.ProjectActivity, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, project, userID); err != nil {
		return nil, err
	}
	return s.activity.ListByProject(ctx, projectID, limit, offset)
}

func (s *ProjectService) getProject(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", nil)
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) authorizeView(ctx context.Context, project *domain.Project, userID string) error {
	if project.OwnerID == userID {
		return nil
	}
	collaborator, err := s.collaborators.GetByProjectAndUser(ctx, project.ID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewForbidden("access denied")
		}
		return err
	}
	if collaborator.Status != domain.InvitationStatusAccepted {
		return apperrors.NewForbidden("access denied")
	}
	return nil
}

func (s *ProjectService) authorizeEdit(ctx context.Context, project *domain.Project, userID string) error {
	if project.OwnerID == userID {
		return nil
	}
	collaborator, err := s.collaborators.GetByProjectAndUser(ctx, project.ID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewForbidden("access denied")
		}
		return err
	}
	if !collaborator.CanManageEmbed() {
		return apperrors.NewForbidden("editor role required")
	}
	return nil
}

func (s *ProjectService) recordActivity(ctx context.Context, projectID, actorID string, activityType domain.ActivityType, detail string) {
	if s.activity == nil {
		return
	}
	entry := &domain.ProjectActivity{
		ProjectID: projectID,
		ActorID:   &actorID,
		Type:      activityType,
		Detail:    detail,
	}
	_ = s.activity.Create(ctx, entry)
}

func (s *ProjectService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
