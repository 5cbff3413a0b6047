package domain

import "time"

// Project is the aggregate for whiteboard projects.
type Project struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Shared      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
