package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/khare/internal/db"
	"github.com/terraincognita07/khare/internal/models"
)

type projectFixture struct {
	repos      *db.Repositories
	service    *ProjectService
	feed       *ProjectFeed
	admin      Viewer
	client     Viewer
	other      Viewer
	contractor Viewer
}

func seedViewer(t *testing.T, repos *db.Repositories, email string, role models.Role) Viewer {
	t.Helper()

	now := time.Now().UTC()
	account := models.Account{Email: email, PasswordHash: "hash", CreatedAt: now}
	require.NoError(t, repos.Accounts.CreateWithProfile(context.Background(), &account, &models.Profile{Role: role, CreatedAt: now}))
	return Viewer{AccountID: account.ID, Role: role}
}

func newProjectFixture(t *testing.T) projectFixture {
	t.Helper()

	repos := openRepositoriesForTest(t)
	feed := NewProjectFeed(8)
	return projectFixture{
		repos:      repos,
		service:    NewProjectService(repos.Projects, repos.Profiles, feed),
		feed:       feed,
		admin:      seedViewer(t, repos, "admin@example.com", models.RoleAdmin),
		client:     seedViewer(t, repos, "client@example.com", models.RoleClient),
		other:      seedViewer(t, repos, "other@example.com", models.RoleClient),
		contractor: seedViewer(t, repos, "builder@example.com", models.RoleContractor),
	}
}

func TestProjectServiceCreateAndVisibility(t *testing.T) {
	fixture := newProjectFixture(t)
	ctx := context.Background()

	budget := 125000.0
	project, err := fixture.service.Create(ctx, fixture.client, ProjectInput{Title: "  Kitchen remodel ", Budget: &budget, Location: " Austin "})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen remodel", project.Title)
	require.NotNil(t, project.Status)
	assert.Equal(t, models.ProjectStatusPending, *project.Status)
	require.NotNil(t, project.Location)
	assert.Equal(t, "Austin", *project.Location)
	assert.True(t, project.OwnedBy(fixture.client.AccountID))

	_, err = fixture.service.Get(ctx, fixture.other, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fixture.service.Get(ctx, fixture.contractor, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	listed, err := fixture.service.ListForViewer(ctx, fixture.admin)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	listed, err = fixture.service.ListForViewer(ctx, fixture.other)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = fixture.service.ListForViewer(ctx, Viewer{AccountID: "nobody"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestProjectServiceCreateRejections(t *testing.T) {
	fixture := newProjectFixture(t)
	ctx := context.Background()

	_, err := fixture.service.Create(ctx, fixture.contractor, ProjectInput{Title: "Deck"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = fixture.service.Create(ctx, fixture.client, ProjectInput{Title: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	negative := -1.0
	_, err = fixture.service.Create(ctx, fixture.client, ProjectInput{Title: "Deck", Budget: &negative})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = fixture.service.Create(ctx, fixture.client, ProjectInput{Title: "Deck", Status: "archived"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProjectServiceContractorWorkflow(t *testing.T) {
	fixture := newProjectFixture(t)
	ctx := context.Background()

	project, err := fixture.service.Create(ctx, fixture.client, ProjectInput{Title: "Roof"})
	require.NoError(t, err)

	_, err = fixture.service.AssignContractor(ctx, fixture.client, project.ID, fixture.contractor.AccountID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = fixture.service.AssignContractor(ctx, fixture.admin, project.ID, fixture.other.AccountID)
	assert.ErrorIs(t, err, ErrValidation)

	assigned, err := fixture.service.AssignContractor(ctx, fixture.admin, project.ID, fixture.contractor.AccountID)
	require.NoError(t, err)
	assert.True(t, assigned.AssignedTo(fixture.contractor.AccountID))

	title := "Bigger roof"
	_, err = fixture.service.Update(ctx, fixture.contractor, project.ID, ProjectPatch{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	status := models.ProjectStatusInProgress
	updated, err := fixture.service.Update(ctx, fixture.contractor, project.ID, ProjectPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusInProgress, *updated.Status)

	note, err := fixture.service.AddUpdate(ctx, fixture.contractor, project.ID, " Shingles delivered ")
	require.NoError(t, err)
	assert.Equal(t, "Shingles delivered", note.Content)
	notes, err := fixture.service.ListUpdates(ctx, fixture.client, project.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	_, err = fixture.service.AddImage(ctx, fixture.contractor, project.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = fixture.service.AddImage(ctx, fixture.contractor, project.ID, "https://cdn.example.com/roof.jpg")
	require.NoError(t, err)
	images, err := fixture.service.ListImages(ctx, fixture.admin, project.ID)
	require.NoError(t, err)
	assert.Len(t, images, 1)

	unassigned, err := fixture.service.AssignContractor(ctx, fixture.admin, project.ID, "")
	require.NoError(t, err)
	assert.Nil(t, unassigned.ContractorID)
	_, err = fixture.service.Get(ctx, fixture.contractor, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectServiceDeletePermissions(t *testing.T) {
	fixture := newProjectFixture(t)
	ctx := context.Background()

	project, err := fixture.service.Create(ctx, fixture.client, ProjectInput{Title: "Fence"})
	require.NoError(t, err)
	_, err = fixture.service.AssignContractor(ctx, fixture.admin, project.ID, fixture.contractor.AccountID)
	require.NoError(t, err)

	err = fixture.service.Delete(ctx, fixture.contractor, project.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	err = fixture.service.Delete(ctx, fixture.other, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fixture.service.Delete(ctx, fixture.client, project.ID))
	_, err = fixture.service.Get(ctx, fixture.admin, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectServicePublishesChanges(t *testing.T) {
	fixture := newProjectFixture(t)
	ctx := context.Background()

	clientFeed, cancelClient := fixture.feed.Subscribe(fixture.client)
	defer cancelClient()
	contractorFeed, cancelContractor := fixture.feed.Subscribe(fixture.contractor)
	defer cancelContractor()

	project, err := fixture.service.Create(ctx, fixture.client, ProjectInput{Title: "Porch"})
	require.NoError(t, err)
	_, err = fixture.service.AssignContractor(ctx, fixture.admin, project.ID, fixture.contractor.AccountID)
	require.NoError(t, err)
	_, err = fixture.service.AssignContractor(ctx, fixture.admin, project.ID, "")
	require.NoError(t, err)
	require.NoError(t, fixture.service.Delete(ctx, fixture.admin, project.ID))

	var clientTypes []ChangeType
	for len(clientFeed) > 0 {
		clientTypes = append(clientTypes, (<-clientFeed).Type)
	}
	assert.Equal(t, []ChangeType{ChangeInsert, ChangeUpdate, ChangeUpdate, ChangeDelete}, clientTypes)

	// assignment and unassignment; the delete happens after the contractor lost access
	assert.Len(t, contractorFeed, 2)
}

func TestProjectServiceMissingProject(t *testing.T) {
	fixture := newProjectFixture(t)

	_, err := fixture.service.Get(context.Background(), fixture.admin, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
