package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/embed-service/internal/domain"
	"github.com/spec-kit/embed-service/internal/events"
	"github.com/spec-kit/embed-service/internal/repository"
	apperrors "github.com/spec-kit/embed-service/pkg/util"
)

// Embed denial reasons surfaced verbatim to the embedding page.
const (
	ReasonNotConfigured    = "Embed not configured"
	ReasonExpired          = "Embed link expired"
	ReasonInvalidToken     = "Invalid token"
	ReasonDomainNotAllowed = "Domain not allowed"
	ReasonOriginRequired   = "Origin required"
	ReasonInvalidOrigin    = "Invalid origin"
)

const embedTokenBytes = 32

// EmbedService decides whether a request to display a project inside an
// iframe is authorized, and issues/rotates embed credentials.
type EmbedService struct {
	projects      repository.ProjectRepository
	collaborators repository.CollaboratorRepository
	configs       repository.EmbedConfigRepository
	activity      repository.ActivityRepository
	cache         *EmbedSnapshotCache
	dispatcher    events.Dispatcher
}

// EmbedDependencies bundles repositories for the embed service.
type EmbedDependencies struct {
	ProjectRepo      repository.ProjectRepository
	CollaboratorRepo repository.CollaboratorRepository
	ConfigRepo       repository.EmbedConfigRepository
	ActivityRepo     repository.ActivityRepository
	Cache            *EmbedSnapshotCache
	Dispatcher       events.Dispatcher
}

// EmbedIssueInput describes a token issuance payload. AllowedDomains is
// already normalized by the boundary: lowercased, trimmed, no empties.
type EmbedIssueInput struct {
	AccessControl  domain.EmbedAccessControl
	AllowedDomains []string
	ExpirationDays int
}

// EmbedAccessResult is the public view returned on successful
// validation. The token is never part of it.
type EmbedAccessResult struct {
	Project        *domain.Project
	AccessControl  domain.EmbedAccessControl
	AllowedDomains []string
	ExpiresAt      *time.Time
}

// NewEmbedService constructs the service.
func NewEmbedService(deps EmbedDependencies) *EmbedService {
	return &EmbedService{
		projects:      deps.ProjectRepo,
		collaborators: deps.CollaboratorRepo,
		configs:       deps.ConfigRepo,
		activity:      deps.ActivityRepo,
		cache:         deps.Cache,
		dispatcher:    deps.Dispatcher,
	}
}

// IssueOrRotateToken generates a fresh embed token and replaces the
// project's embed configuration as a single unit. The caller must be
// the project owner or an accepted editor/owner collaborator.
func (s *EmbedService) IssueOrRotateToken(ctx context.Context, projectID, callerID string, input EmbedIssueInput) (*domain.EmbedConfig, error) {
	if callerID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", nil)
		}
		return nil, err
	}

	if err := s.authorizeEmbedManagement(ctx, project, callerID); err != nil {
		return nil, err
	}

	if _, ok := domain.ParseEmbedAccessControl(string(input.AccessControl)); !ok {
		return nil, apperrors.NewValidationError("unrecognized access control mode", map[string]any{"accessControl": input.AccessControl})
	}
	if input.ExpirationDays < 0 {
		return nil, apperrors.NewValidationError("expirationDays must be non-negative", nil)
	}

	var expiresAt *time.Time
	if input.ExpirationDays > 0 {
		t := time.Now().AddDate(0, 0, input.ExpirationDays)
		expiresAt = &t
	}

	token, err := generateEmbedToken()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	cfg := &domain.EmbedConfig{
		ProjectID:      project.ID,
		Token:          token,
		AccessControl:  input.AccessControl,
		AllowedDomains: input.AllowedDomains,
		ExpiresAt:      expiresAt,
		CreatedBy:      callerID,
	}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, project.ID)
	s.recordActivity(ctx, project.ID, callerID, domain.ActivityEmbedTokenIssued,
		"embed token rotated, mode "+string(cfg.AccessControl))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventEmbedTokenIssued,
		ProjectID: project.ID,
		Actor:     events.Actor{UserID: callerID},
		Payload: events.EmbedTokenIssuedPayload{
			AccessControl: cfg.AccessControl,
			DomainCount:   len(cfg.AllowedDomains),
			ExpiresAt:     cfg.ExpiresAt,
		},
	})
	return cfg, nil
}

// ValidateEmbedAccess authorizes an anonymous embed request. Expiry is
// evaluated here, lazily; an expired configuration denies every mode.
func (s *EmbedService) ValidateEmbedAccess(ctx context.Context, projectID, suppliedToken, suppliedOrigin string) (*EmbedAccessResult, error) {
	snapshot, err := s.loadSnapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	project := &snapshot.Project
	cfg := snapshot.Config

	if cfg == nil {
		if project.Shared {
			return &EmbedAccessResult{
				Project:       project,
				AccessControl: domain.EmbedAccessPublic,
			}, nil
		}
		return nil, apperrors.NewForbidden(ReasonNotConfigured)
	}

	if cfg.Expired(time.Now()) {
		return nil, apperrors.NewForbidden(ReasonExpired)
	}

	switch cfg.AccessControl {
	case domain.EmbedAccessPublic:
	case domain.EmbedAccessToken:
		if suppliedToken == "" || !tokensEqual(cfg.Token, suppliedToken) {
			return nil, apperrors.NewForbidden(ReasonInvalidToken)
		}
	case domain.EmbedAccessDomain:
		if suppliedOrigin == "" {
			return nil, apperrors.NewForbidden(ReasonOriginRequired)
		}
		host, ok := originHostname(suppliedOrigin)
		if !ok {
			return nil, apperrors.NewForbidden(ReasonInvalidOrigin)
		}
		if !hostAllowed(host, cfg.AllowedDomains) {
			return nil, apperrors.NewForbidden(ReasonDomainNotAllowed)
		}
	default:
		return nil, apperrors.NewValidationError("unrecognized access control mode", map[string]any{"accessControl": cfg.AccessControl})
	}

	return &EmbedAccessResult{
		Project:        project,
		AccessControl:  cfg.AccessControl,
		AllowedDomains: cfg.AllowedDomains,
		ExpiresAt:      cfg.ExpiresAt,
	}, nil
}

func (s *EmbedService) loadSnapshot(ctx context.Context, projectID string) (*embedSnapshot, error) {
	if snapshot, ok := s.cache.get(ctx, projectID); ok {
		return snapshot, nil
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", nil)
		}
		return nil, err
	}

	cfg, err := s.configs.GetByProjectID(ctx, projectID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	snapshot := &embedSnapshot{Project: *project, Config: cfg}
	s.cache.set(ctx, projectID, snapshot)
	return snapshot, nil
}

func (s *EmbedService) authorizeEmbedManagement(ctx context.Context, project *domain.Project, callerID string) error {
	if project.OwnerID == callerID {
		return nil
	}
	collaborator, err := s.collaborators.GetByProjectAndUser(ctx, project.ID, callerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewForbidden("not authorized to manage embedding for this project")
		}
		return err
	}
	if !collaborator.CanManageEmbed() {
		return apperrors.NewForbidden("not authorized to manage embedding for this project")
	}
	return nil
}

func (s *EmbedService) recordActivity(ctx context.Context, projectID, actorID string, activityType domain.ActivityType, detail string) {
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

func (s *EmbedService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

// generateEmbedToken returns 32 random bytes rendered as 64 hex chars.
func generateEmbedToken() (string, error) {
	buf := make([]byte, embedTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func tokensEqual(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// originHostname extracts the hostname from an origin URL. Origins
// without a scheme do not parse to a host and are rejected.
func originHostname(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	host := parsed.Hostname()
	if host == "" {
		return "", false
	}
	return strings.ToLower(host), true
}

// hostAllowed matches the hostname against the allow list: exact match
// or a dot-qualified subdomain. A bare suffix match is not enough;
// "evilexample.com" must not pass for "example.com".
func hostAllowed(host string, allowed []string) bool {
	for _, entry := range allowed {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}
