package events

import (
	"time"

	"github.com/spec-kit/embed-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProjectCreated        EventType = "project_created"
	EventProjectDeleted        EventType = "project_deleted"
	EventCollaboratorInvited   EventType = "collaborator_invited"
	EventCollaboratorResponded EventType = "collaborator_responded"
	EventEmbedTokenIssued      EventType = "embed_token_issued"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string `json:"user_id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ProjectID string      `json:"project_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ProjectCreatedPayload payload.
type ProjectCreatedPayload struct {
	Name   string `json:"name"`
	Shared bool   `json:"shared"`
}

// ProjectDeletedPayload payload.
type ProjectDeletedPayload struct {
	Name string `json:"name"`
}

// CollaboratorInvitedPayload payload.
type CollaboratorInvitedPayload struct {
	UserID string                  `json:"user_id"`
	Role   domain.CollaboratorRole `json:"role"`
}

// CollaboratorRespondedPayload payload.
type CollaboratorRespondedPayload struct {
	UserID string                  `json:"user_id"`
	Status domain.InvitationStatus `json:"status"`
}

// EmbedTokenIssuedPayload payload. The token itself is never carried in
// events; only the mode and expiry are.
type EmbedTokenIssuedPayload struct {
	AccessControl domain.EmbedAccessControl `json:"access_control"`
	DomainCount   int                       `json:"domain_count"`
	ExpiresAt     *time.Time                `json:"expires_at,omitempty"`
}
