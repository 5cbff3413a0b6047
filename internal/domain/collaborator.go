package domain

import "time"

// CollaboratorRole enumerates per-project permission levels.
type CollaboratorRole string

const (
	CollaboratorRoleViewer    CollaboratorRole = "VIEWER"
	CollaboratorRoleCommenter CollaboratorRole = "COMMENTER"
	CollaboratorRoleEditor    CollaboratorRole = "EDITOR"
	CollaboratorRoleOwner     CollaboratorRole = "OWNER"
)

// InvitationStatus enumerates invitation lifecycle states.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "PENDING"
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
	InvitationStatusRejected InvitationStatus = "REJECTED"
)

// Collaborator associates a user with a project, a role and an invitation status.
type Collaborator struct {
	ID        string
	ProjectID string
	UserID    string
	Role      CollaboratorRole
	Status    InvitationStatus
	InvitedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanManageEmbed reports whether the collaborator may issue or rotate
// embed tokens. Only accepted editors and owners qualify.
func (c *Collaborator) CanManageEmbed() bool {
	if c.Status != InvitationStatusAccepted {
		return false
	}
	return c.Role == CollaboratorRoleEditor || c.Role == CollaboratorRoleOwner
}
