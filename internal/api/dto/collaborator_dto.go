package dto

import (
	"time"

	"github.com/spec-kit/embed-service/internal/domain"
)

// InviteCollaboratorRequest payload.
type InviteCollaboratorRequest struct {
	Email string                  `json:"email"`
	Role  domain.CollaboratorRole `json:"role"`
}

// RespondInvitationRequest payload.
type RespondInvitationRequest struct {
	Accept bool `json:"accept"`
}

// CollaboratorResponse public collaborator view.
type CollaboratorResponse struct {
	ID        string                  `json:"id"`
	ProjectID string                  `json:"project_id"`
	UserID    string                  `json:"user_id"`
	Role      domain.CollaboratorRole `json:"role"`
	Status    domain.InvitationStatus `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
}
