package service

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/embed-service/internal/domain"
	apperrors "github.com/spec-kit/embed-service/pkg/util"
)

type embedTestEnv struct {
	projects      *fakeProjectRepo
	collaborators *fakeCollaboratorRepo
	configs       *fakeEmbedConfigRepo
	activity      *fakeActivityRepo
	service       *EmbedService
}

func newEmbedTestEnv() *embedTestEnv {
	env := &embedTestEnv{
		projects:      newFakeProjectRepo(),
		collaborators: newFakeCollaboratorRepo(),
		configs:       newFakeEmbedConfigRepo(),
		activity:      newFakeActivityRepo(),
	}
	env.service = NewEmbedService(EmbedDependencies{
		ProjectRepo:      env.projects,
		CollaboratorRepo: env.collaborators,
		ConfigRepo:       env.configs,
		ActivityRepo:     env.activity,
	})
	return env
}

func (env *embedTestEnv) addProject(t *testing.T, ownerID string, shared bool) *domain.Project {
	t.Helper()
	project := &domain.Project{
		OwnerID:     ownerID,
		Name:        "Roadmap Board",
		Description: "Q3 planning",
		Shared:      shared,
	}
	require.NoError(t, env.projects.Create(context.Background(), project))
	return project
}

func (env *embedTestEnv) addCollaborator(t *testing.T, projectID, userID string, role domain.CollaboratorRole, status domain.InvitationStatus) {
	t.Helper()
	require.NoError(t, env.collaborators.Create(context.Background(), &domain.Collaborator{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		Status:    status,
		InvitedBy: "owner",
	}))
}

func assertForbidden(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	assert.Equal(t, reason, de.Message)
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apperrors.ToDomainError(err).HTTPStatus)
}

func TestValidateEmbedAccess_UnconfiguredSharedProject(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", true)

	result, err := env.service.ValidateEmbedAccess(context.Background(), project.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.EmbedAccessPublic, result.AccessControl)
	assert.Equal(t, project.ID, result.Project.ID)
	assert.Nil(t, result.ExpiresAt)
}

func TestValidateEmbedAccess_UnconfiguredPrivateProject(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)

	_, err := env.service.ValidateEmbedAccess(context.Background(), project.ID, "", "")
	assertForbidden(t, err, ReasonNotConfigured)
}

func TestValidateEmbedAccess_UnknownProject(t *testing.T) {
	env := newEmbedTestEnv()

	_, err := env.service.ValidateEmbedAccess(context.Background(), "missing", "", "")
	assertStatus(t, err, http.StatusNotFound)
}

func TestValidateEmbedAccess_ExpiredOverridesEveryMode(t *testing.T) {
	env := newEmbedTestEnv()
	past := time.Now().Add(-time.Hour)

	for _, mode := range []domain.EmbedAccessControl{domain.EmbedAccessPublic, domain.EmbedAccessToken, domain.EmbedAccessDomain} {
		project := env.addProject(t, "owner", true)
		require.NoError(t, env.configs.Upsert(context.Background(), &domain.EmbedConfig{
			ProjectID:      project.ID,
			Token:          "aaaa",
			AccessControl:  mode,
			AllowedDomains: []string{"example.com"},
			ExpiresAt:      &past,
			CreatedBy:      "owner",
		}))

		_, err := env.service.ValidateEmbedAccess(context.Background(), project.ID, "aaaa", "https://example.com")
		assertForbidden(t, err, ReasonExpired)
	}
}

func TestValidateEmbedAccess_TokenMode(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)

	cfg, err := env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl: domain.EmbedAccessToken,
	})
	require.NoError(t, err)

	result, err := env.service.ValidateEmbedAccess(context.Background(), project.ID, cfg.Token, "")
	require.NoError(t, err)
	assert.Equal(t, domain.EmbedAccessToken, result.AccessControl)

	_, err = env.service.ValidateEmbedAccess(context.Background(), project.ID, "", "")
	assertForbidden(t, err, ReasonInvalidToken)

	// Flipping a single character must fail the comparison.
	mutated := []byte(cfg.Token)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	_, err = env.service.ValidateEmbedAccess(context.Background(), project.ID, string(mutated), "")
	assertForbidden(t, err, ReasonInvalidToken)

	// Prefix of the stored token is not a match either.
	_, err = env.service.ValidateEmbedAccess(context.Background(), project.ID, cfg.Token[:32], "")
	assertForbidden(t, err, ReasonInvalidToken)
}

func TestValidateEmbedAccess_DomainMode(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)

	_, err := env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl:  domain.EmbedAccessDomain,
		AllowedDomains: []string{"example.com"},
	})
	require.NoError(t, err)

	cases := []struct {
		name   string
		origin string
		reason string
	}{
		{"exact match", "https://example.com", ""},
		{"subdomain match", "https://app.example.com", ""},
		{"nested subdomain match", "https://deep.app.example.com", ""},
		{"uppercase host", "https://APP.EXAMPLE.COM", ""},
		{"suffix without dot", "https://evilexample.com", ReasonDomainNotAllowed},
		{"allowed domain as prefix", "https://example.com.evil.io", ReasonDomainNotAllowed},
		{"unrelated host", "https://other.org", ReasonDomainNotAllowed},
		{"missing origin", "", ReasonOriginRequired},
		{"origin without scheme", "example.com", ReasonInvalidOrigin},
		{"garbage origin", "://nope", ReasonInvalidOrigin},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := env.service.ValidateEmbedAccess(context.Background(), project.ID, "", tc.origin)
			if tc.reason == "" {
				require.NoError(t, err)
				assert.Equal(t, []string{"example.com"}, result.AllowedDomains)
			} else {
				assertForbidden(t, err, tc.reason)
			}
		})
	}
}

func TestValidateEmbedAccess_UnknownStoredMode(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", true)
	require.NoError(t, env.configs.Upsert(context.Background(), &domain.EmbedConfig{
		ProjectID:     project.ID,
		Token:         "aaaa",
		AccessControl: domain.EmbedAccessControl("magic"),
		CreatedBy:     "owner",
	}))

	_, err := env.service.ValidateEmbedAccess(context.Background(), project.ID, "", "")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestValidateEmbedAccess_TokenNeverEchoed(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)

	cfg, err := env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl: domain.EmbedAccessPublic,
	})
	require.NoError(t, err)

	result, err := env.service.ValidateEmbedAccess(context.Background(), project.ID, "", "")
	require.NoError(t, err)
	assert.NotContains(t, result.Project.Name, cfg.Token)
	// The result type carries no token field at all; this guards the
	// project payload against ever smuggling it.
}

func TestIssueOrRotateToken_TokenShape(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)

	cfg, err := env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl: domain.EmbedAccessToken,
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), cfg.Token)
}

func TestIssueOrRotateToken_RotationInvalidatesPreviousToken(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)

	first, err := env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl: domain.EmbedAccessToken,
	})
	require.NoError(t, err)

	second, err := env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl: domain.EmbedAccessToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = env.service.ValidateEmbedAccess(context.Background(), project.ID, first.Token, "")
	assertForbidden(t, err, ReasonInvalidToken)

	_, err = env.service.ValidateEmbedAccess(context.Background(), project.ID, second.Token, "")
	require.NoError(t, err)
}

func TestIssueOrRotateToken_Expiry(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)

	cfg, err := env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl:  domain.EmbedAccessDomain,
		AllowedDomains: []string{"acme.com"},
		ExpirationDays: 0,
	})
	require.NoError(t, err)
	assert.Nil(t, cfg.ExpiresAt)

	cfg, err = env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl:  domain.EmbedAccessToken,
		ExpirationDays: 7,
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.ExpiresAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), *cfg.ExpiresAt, time.Minute)
}

func TestIssueOrRotateToken_Authorization(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)
	env.addCollaborator(t, project.ID, "editor", domain.CollaboratorRoleEditor, domain.InvitationStatusAccepted)
	env.addCollaborator(t, project.ID, "viewer", domain.CollaboratorRoleViewer, domain.InvitationStatusAccepted)
	env.addCollaborator(t, project.ID, "pending-editor", domain.CollaboratorRoleEditor, domain.InvitationStatusPending)

	input := EmbedIssueInput{AccessControl: domain.EmbedAccessPublic}

	_, err := env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", input)
	assert.NoError(t, err)

	_, err = env.service.IssueOrRotateToken(context.Background(), project.ID, "editor", input)
	assert.NoError(t, err)

	_, err = env.service.IssueOrRotateToken(context.Background(), project.ID, "viewer", input)
	assertStatus(t, err, http.StatusForbidden)

	_, err = env.service.IssueOrRotateToken(context.Background(), project.ID, "pending-editor", input)
	assertStatus(t, err, http.StatusForbidden)

	_, err = env.service.IssueOrRotateToken(context.Background(), project.ID, "stranger", input)
	assertStatus(t, err, http.StatusForbidden)

	_, err = env.service.IssueOrRotateToken(context.Background(), project.ID, "", input)
	assertStatus(t, err, http.StatusUnauthorized)

	_, err = env.service.IssueOrRotateToken(context.Background(), "missing", "owner", input)
	assertStatus(t, err, http.StatusNotFound)
}

func TestIssueOrRotateToken_InvalidInput(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)

	_, err := env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl: domain.EmbedAccessControl("magic"),
	})
	assertStatus(t, err, http.StatusBadRequest)

	_, err = env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl:  domain.EmbedAccessToken,
		ExpirationDays: -1,
	})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestIssueOrRotateToken_RecordsActivity(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)

	_, err := env.service.IssueOrRotateToken(context.Background(), project.ID, "owner", EmbedIssueInput{
		AccessControl: domain.EmbedAccessToken,
	})
	require.NoError(t, err)

	entries, err := env.activity.ListByProject(context.Background(), project.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActivityEmbedTokenIssued, entries[0].Type)
}

// Mirrors the private-project walkthrough: deny while unconfigured,
// configure domain mode, then check subdomain and lookalike origins.
func TestEmbedAccess_PrivateProjectDomainScenario(t *testing.T) {
	env := newEmbedTestEnv()
	project := env.addProject(t, "owner", false)
	ctx := context.Background()

	_, err := env.service.ValidateEmbedAccess(ctx, project.ID, "", "")
	assertForbidden(t, err, ReasonNotConfigured)

	cfg, err := env.service.IssueOrRotateToken(ctx, project.ID, "owner", EmbedIssueInput{
		AccessControl:  domain.EmbedAccessDomain,
		AllowedDomains: []string{"acme.com"},
		ExpirationDays: 0,
	})
	require.NoError(t, err)
	assert.Nil(t, cfg.ExpiresAt)

	result, err := env.service.ValidateEmbedAccess(ctx, project.ID, "", "https://widgets.acme.com")
	require.NoError(t, err)
	assert.Equal(t, domain.EmbedAccessDomain, result.AccessControl)

	_, err = env.service.ValidateEmbedAccess(ctx, project.ID, "", "https://acme.com.evil.io")
	assertForbidden(t, err, ReasonDomainNotAllowed)
}
