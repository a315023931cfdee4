package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"acervo/internal/models"
	"acervo/internal/repository"
	"acervo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommunityService(t *testing.T) {
	db := testutil.NewTestDB(t)
	posts := repository.NewPostRepository(db)
	svc := NewCommunityService(repository.NewCommunityRepository(db), posts)
	ctx := context.Background()

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	eng := testutil.CreateCommunity(t, db, "Engenharia")
	testutil.CreateCommunity(t, db, "Biologia")

	all, err = svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Biologia", all[0].Name)

	got, err := svc.Get(ctx, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engenharia", got.Name)

	_, err = svc.Get(ctx, 999)
	assertAppError(t, err, models.CodeNotFound)

	empty, err := svc.ListByCommunity(ctx, eng.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	testutil.CreatePost(t, db, "E1", "x", "u-1", &eng.ID, time.Now().UTC())
	list, err := svc.ListByCommunity(ctx, eng.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Engenharia", list[0].CommunityName)
}

func TestCommunityService_RepositoryError(t *testing.T) {
	repo := noopPostRepo()
	repo.listByCommunityFn = func(context.Context, uint) ([]*models.Post, error) { return nil, errors.New("boom") }
	svc := NewCommunityService(repository.NewCommunityRepository(testutil.NewTestDB(t)), repo)

	_, err := svc.ListByCommunity(context.Background(), 1)
	assertAppError(t, err, models.CodeInternal)
}

func TestOwnershipService(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewOwnershipService(repository.NewPostRepository(db))
	ctx := context.Background()

	now := time.Now().UTC()
	testutil.CreatePost(t, db, "mine-old", "x", "u-ana", nil, now.Add(-time.Hour))
	testutil.CreatePost(t, db, "other", "x", "u-bruno", nil, now.Add(-30*time.Minute))
	testutil.CreatePost(t, db, "mine-new", "x", "u-ana", nil, now)

	posts, err := svc.ListOwnedBy(ctx, identity())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "mine-new", posts[0].Title)
	assert.Equal(t, "mine-old", posts[1].Title)

	for _, id := range []*models.Identity{nil, {}, {OwnerKey: "  "}} {
		posts, err := svc.ListOwnedBy(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	}
}
