package domain

import "time"

// EmbedAccessControl enumerates how embed requests are authorized.
type EmbedAccessControl string

const (
	EmbedAccessPublic EmbedAccessControl = "public"
	EmbedAccessToken  EmbedAccessControl = "token"
	EmbedAccessDomain EmbedAccessControl = "domain"
)

// ParseEmbedAccessControl validates a raw mode string.
func ParseEmbedAccessControl(raw string) (EmbedAccessControl, bool) {
	switch EmbedAccessControl(raw) {
	case EmbedAccessPublic, EmbedAccessToken, EmbedAccessDomain:
		return EmbedAccessControl(raw), true
	default:
		return "", false
	}
}

// EmbedConfig holds the embed credentials for a project. At most one
// exists per project; each rotation replaces token, mode, domains and
// expiry as a single unit.
type EmbedConfig struct {
	ID             string
	ProjectID      string
	Token          string
	AccessControl  EmbedAccessControl
	AllowedDomains []string
	ExpiresAt      *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Expired reports whether the configuration is past its expiry at the
// given instant. A nil ExpiresAt never expires.
func (c *EmbedConfig) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
