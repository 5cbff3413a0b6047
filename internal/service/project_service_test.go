package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/embed-service/internal/domain"
)

type projectTestEnv struct {
	projects      *fakeProjectRepo
	collaborators *fakeCollaboratorRepo
	configs       *fakeEmbedConfigRepo
	activity      *fakeActivityRepo
	service       *ProjectService
}

func newProjectTestEnv() *projectTestEnv {
	env := &projectTestEnv{
		projects:      newFakeProjectRepo(),
		collaborators: newFakeCollaboratorRepo(),
		configs:       newFakeEmbedConfigRepo(),
		activity:      newFakeActivityRepo(),
	}
	env.service = NewProjectService(ProjectDependencies{
		ProjectRepo:      env.projects,
		CollaboratorRepo: env.collaborators,
		ConfigRepo:       env.configs,
		ActivityRepo:     env.activity,
	})
	return env
}

func TestCreateProject(t *testing.T) {
	env := newProjectTestEnv()

	project, err := env.service.CreateProject(context.Background(), "owner", ProjectCreateInput{
		Name:        "  Flowchart  ",
		Description: "diagram",
	})
	require.NoError(t, err)
	assert.Equal(t, "Flowchart", project.Name)
	assert.Equal(t, "owner", project.OwnerID)
	assert.False(t, project.Shared)

	_, err = env.service.CreateProject(context.Background(), "owner", ProjectCreateInput{Name: "   "})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestUpdateProject_SharedFlagIsOwnerOnly(t *testing.T) {
	env := newProjectTestEnv()
	project, err := env.service.CreateProject(context.Background(), "owner", ProjectCreateInput{Name: "Board"})
	require.NoError(t, err)

	require.NoError(t, env.collaborators.Create(context.Background(), &domain.Collaborator{
		ProjectID: project.ID,
		UserID:    "editor",
		Role:      domain.CollaboratorRoleEditor,
		Status:    domain.InvitationStatusAccepted,
		InvitedBy: "owner",
	}))

	newName := "Renamed"
	updated, err := env.service.UpdateProject(context.Background(), "editor", project.ID, ProjectUpdateInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	shared := true
	_, err = env.service.UpdateProject(context.Background(), "editor", project.ID, ProjectUpdateInput{Shared: &shared})
	assertStatus(t, err, http.StatusForbidden)

	updated, err = env.service.UpdateProject(context.Background(), "owner", project.ID, ProjectUpdateInput{Shared: &shared})
	require.NoError(t, err)
	assert.True(t, updated.Shared)
}

func TestUpdateProject_ViewerCannotEdit(t *testing.T) {
	env := newProjectTestEnv()
	project, err := env.service.CreateProject(context.Background(), "owner", ProjectCreateInput{Name: "Board"})
	require.NoError(t, err)

	require.NoError(t, env.collaborators.Create(context.Background(), &domain.Collaborator{
		ProjectID: project.ID,
		UserID:    "viewer",
		Role:      domain.CollaboratorRoleViewer,
		Status:    domain.InvitationStatusAccepted,
		InvitedBy: "owner",
	}))

	name := "Nope"
	_, err = env.service.UpdateProject(context.Background(), "viewer", project.ID, ProjectUpdateInput{Name: &name})
	assertStatus(t, err, http.StatusForbidden)
}

func TestDeleteProject(t *testing.T) {
	env := newProjectTestEnv()
	ctx := context.Background()
	project, err := env.service.CreateProject(ctx, "owner", ProjectCreateInput{Name: "Board"})
	require.NoError(t, err)

	require.NoError(t, env.configs.Upsert(ctx, &domain.EmbedConfig{
		ProjectID:     project.ID,
		Token:         "tok",
		AccessControl: domain.EmbedAccessPublic,
		CreatedBy:     "owner",
	}))

	err = env.service.DeleteProject(ctx, "someone-else", project.ID)
	assertStatus(t, err, http.StatusForbidden)

	require.NoError(t, env.service.DeleteProject(ctx, "owner", project.ID))

	_, err = env.projects.GetByID(ctx, project.ID)
	assert.Error(t, err)
	_, err = env.configs.GetByProjectID(ctx, project.ID)
	assert.Error(t, err)
}

func TestGetProject_Authorization(t *testing.T) {
	env := newProjectTestEnv()
	ctx := context.Background()
	project, err := env.service.CreateProject(ctx, "owner", ProjectCreateInput{Name: "Board"})
	require.NoError(t, err)

	require.NoError(t, env.collaborators.Create(ctx, &domain.Collaborator{
		ProjectID: project.ID,
		UserID:    "pending",
		Role:      domain.CollaboratorRoleViewer,
		Status:    domain.InvitationStatusPending,
		InvitedBy: "owner",
	}))
	require.NoError(t, env.collaborators.Create(ctx, &domain.Collaborator{
		ProjectID: project.ID,
		UserID:    "member",
		Role:      domain.CollaboratorRoleViewer,
		Status:    domain.InvitationStatusAccepted,
		InvitedBy: "owner",
	}))

	_, err = env.service.GetProject(ctx, "owner", project.ID)
	assert.NoError(t, err)

	_, err = env.service.GetProject(ctx, "member", project.ID)
	assert.NoError(t, err)

	_, err = env.service.GetProject(ctx, "pending", project.ID)
	assertStatus(t, err, http.StatusForbidden)

	_, err = env.service.GetProject(ctx, "stranger", project.ID)
	assertStatus(t, err, http.StatusForbidden)

	_, err = env.service.GetProject(ctx, "owner", "missing")
	assertStatus(t, err, http.StatusNotFound)
}
