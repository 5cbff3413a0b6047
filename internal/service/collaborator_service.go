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

// CollaboratorService manages project invitations and membership.
type CollaboratorService struct {
	projects      repository.ProjectRepository
	collaborators repository.CollaboratorRepository
	users         repository.UserRepository
	activity      repository.ActivityRepository
	dispatcher    events.Dispatcher
}

// CollaboratorDependencies bundles repositories for the service.
type CollaboratorDependencies struct {
	ProjectRepo      repository.ProjectRepository
	CollaboratorRepo repository.CollaboratorRepository
	UserRepo         repository.UserRepository
	ActivityRepo     repository.ActivityRepository
	Dispatcher       events.Dispatcher
}

// NewCollaboratorService constructs the service.
func NewCollaboratorService(deps CollaboratorDependencies) *CollaboratorService {
	return &CollaboratorService{
		projects:      deps.ProjectRepo,
		collaborators: deps.CollaboratorRepo,
		users:         deps.UserRepo,
		activity:      deps.ActivityRepo,
		dispatcher:    deps.Dispatcher,
	}
}

// Invite creates a pending invitation for the user with the given email.
// Only the project owner may invite.
func (s *CollaboratorService) Invite(ctx context.Context, callerID, projectID, email string, role domain.CollaboratorRole) (*domain.Collaborator, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != callerID {
		return nil, apperrors.NewForbidden("only the owner may invite collaborators")
	}

	switch role {
	case domain.CollaboratorRoleViewer, domain.CollaboratorRoleCommenter, domain.CollaboratorRoleEditor, domain.CollaboratorRoleOwner:
	default:
		return nil, apperrors.NewValidationError("unrecognized role", map[string]any{"role": role})
	}

	invitee, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, err
	}
	if invitee.ID == project.OwnerID {
		return nil, apperrors.NewConflict("user already owns this project", nil)
	}
	if _, err := s.collaborators.GetByProjectAndUser(ctx, projectID, invitee.ID); err == nil {
		return nil, apperrors.NewConflict("user already invited", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	collaborator := &domain.Collaborator{
		ProjectID: projectID,
		UserID:    invitee.ID,
		Role:      role,
		Status:    domain.InvitationStatusPending,
		InvitedBy: callerID,
	}
	if err := s.collaborators.Create(ctx, collaborator); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, projectID, callerID, domain.ActivityCollaboratorInvited,
		"invited "+invitee.Email+" as "+string(role))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventCollaboratorInvited,
		ProjectID: projectID,
		Actor:     events.Actor{UserID: callerID},
		Payload: events.CollaboratorInvitedPayload{
			UserID: invitee.ID,
			Role:   role,
		},
	})
	return collaborator, nil
}

// Respond lets the invitee accept or reject a pending invitation.
func (s *CollaboratorService) Respond(ctx context.Context, callerID, invitationID string, accept bool) (*domain.Collaborator, error) {
	collaborator, err := s.collaborators.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("invitation", nil)
		}
		return nil, err
	}
	if collaborator.UserID != callerID {
		return nil, apperrors.NewForbidden("not your invitation")
	}
	if collaborator.Status != domain.InvitationStatusPending {
		return nil, apperrors.NewConflict("invitation already answered", nil)
	}

	if accept {
		collaborator.Status = domain.InvitationStatusAccepted
	} else {
		collaborator.Status = domain.InvitationStatusRejected
	}
	if err := s.collaborators.Update(ctx, collaborator); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, collaborator.ProjectID, callerID, domain.ActivityCollaboratorResponded,
		"invitation "+strings.ToLower(string(collaborator.Status)))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventCollaboratorResponded,
		ProjectID: collaborator.ProjectID,
		Actor:     events.Actor{UserID: callerID},
		Payload: events.CollaboratorRespondedPayload{
			UserID: callerID,
			Status: collaborator.Status,
		},
	})
	return collaborator, nil
}

// List returns a project's collaborators for its members.
func (s *CollaboratorService) List(ctx context.Context, callerID, projectID string) ([]domain.Collaborator, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != callerID {
		collaborator, err := s.collaborators.GetByProjectAndUser(ctx, projectID, callerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewForbidden("access denied")
			}
			return nil, err
		}
		if collaborator.Status != domain.InvitationStatusAccepted {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	return s.collaborators.ListByProject(ctx, projectID)
}

// Remove deletes a collaborator from a project. Owner only.
func (s *CollaboratorService) Remove(ctx context.Context, callerID, projectID, userID string) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != callerID {
		return apperrors.NewForbidden("only the owner may remove collaborators")
	}

	if err := s.collaborators.Delete(ctx, projectID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("collaborator", nil)
		}
		return err
	}

	s.recordActivity(ctx, projectID, callerID, domain.ActivityCollaboratorRemoved, "collaborator removed")
	return nil
}

func (s *CollaboratorService) getProject(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", nil)
		}
		return nil, err
	}
	return project, nil
}

func (s *CollaboratorService) recordActivity(ctx context.Context, projectID, actorID string, activityType domain.ActivityType, detail string) {
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

func (s *CollaboratorService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
