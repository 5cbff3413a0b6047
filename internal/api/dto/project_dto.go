package dto

import (
	"time"

	"github.com/spec-kit/embed-service/internal/domain"
)

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Shared      bool   `json:"shared"`
}

// UpdateProjectRequest payload; absent fields are untouched.
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Shared      *bool   `json:"shared"`
}

// ProjectResponse public project view.
type ProjectResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Shared      bool      `json:"shared"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ActivityResponse is one project activity entry.
type ActivityResponse struct {
	ID        string              `json:"id"`
	ActorID   *string             `json:"actor_id,omitempty"`
	Type      domain.ActivityType `json:"type"`
	Detail    string              `json:"detail"`
	CreatedAt time.Time           `json:"created_at"`
}
