package domain

import "time"

// ActivityType enumerates recorded project activity entries.
type ActivityType string

const (
	ActivityProjectCreated        ActivityType = "PROJECT_CREATED"
	ActivityProjectUpdated        ActivityType = "PROJECT_UPDATED"
	ActivityProjectDeleted        ActivityType = "PROJECT_DELETED"
	ActivityEmbedTokenIssued      ActivityType = "EMBED_TOKEN_ISSUED"
	ActivityCollaboratorInvited   ActivityType = "COLLABORATOR_INVITED"
	ActivityCollaboratorResponded ActivityType = "COLLABORATOR_RESPONDED"
	ActivityCollaboratorRemoved   ActivityType = "COLLABORATOR_REMOVED"
)

// ProjectActivity is an audit entry for project-level changes.
type ProjectActivity struct {
	ID        string
	ProjectID string
	ActorID   *string
	Type      ActivityType
	Detail    string
	CreatedAt time.Time
}
