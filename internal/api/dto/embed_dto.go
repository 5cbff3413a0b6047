package dto

import (
	"encoding/json"
	"strings"
	"time"
)

// DomainList accepts either a JSON array of hostnames or a single
// comma-joined string, normalizing to a lowercased, trimmed slice at
// the boundary. Core logic only ever sees the slice form.
type DomainList []string

// UnmarshalJSON implements the dual string/array form.
func (d *DomainList) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		*d = normalizeDomains(asList)
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return err
	}
	*d = normalizeDomains(strings.Split(asString, ","))
	return nil
}

func normalizeDomains(raw []string) []string {
	result := make([]string, 0, len(raw))
	for _, entry := range raw {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			result = append(result, entry)
		}
	}
	return result
}

// IssueEmbedTokenRequest payload for POST /projects/:id/embed.
type IssueEmbedTokenRequest struct {
	AccessControl  string     `json:"accessControl"`
	AllowedDomains DomainList `json:"allowedDomains"`
	ExpirationDays *int       `json:"expirationDays"`
}

// EmbedTokenResponse is returned at issuance time only; this is the one
// place the token leaves the service.
type EmbedTokenResponse struct {
	Token          string     `json:"token"`
	AccessControl  string     `json:"accessControl"`
	AllowedDomains []string   `json:"allowedDomains"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

// EmbedProjectResponse is the project view exposed to embedding pages.
type EmbedProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EmbedConfigResponse is the configuration view exposed to embedding
// pages. The token is deliberately absent.
type EmbedConfigResponse struct {
	AccessControl  string     `json:"accessControl"`
	AllowedDomains []string   `json:"allowedDomains"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

// ValidateEmbedResponse is the successful validation body.
type ValidateEmbedResponse struct {
	Project     EmbedProjectResponse `json:"project"`
	EmbedConfig EmbedConfigResponse  `json:"embedConfig"`
}
