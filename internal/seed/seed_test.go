package seed

import (
	"strings"
	"testing"

	"acervo/internal/models"
	"acervo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommunities_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)

	require.NoError(t, Communities(db))
	require.NoError(t, Communities(db))

	var count int64
	require.NoError(t, db.Model(&models.Community{}).Count(&count).Error)
	assert.Equal(t, int64(len(BuiltInCommunities)), count)
}

func TestFactory_BuildPost(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := NewFactory(db, SeedOptions{Seed: 42, AssetBaseURL: "https://cdn.test", MaxDays: 10})
	community := testutil.CreateCommunity(t, db, "Agronomia")

	author := f.Publishers(1)[0]
	post := f.BuildPost(author, community)

	assert.NotEmpty(t, post.Title)
	assert.NotEmpty(t, post.Content)
	assert.Equal(t, author.OwnerKey, post.OwnerKey)
	assert.True(t, strings.HasPrefix(post.ProjectURL, "https://cdn.test/documents/"))
	assert.Equal(t, post.ProjectURL, post.AssetURLs["document"])
	require.NotNil(t, post.CommunityID)
	assert.Equal(t, community.ID, *post.CommunityID)
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := NewSeeder(db, SeedOptions{Seed: 7})

	posts, err := s.Run(Options{NumPublishers: 5, NumPosts: 20, MaxComments: 3})
	require.NoError(t, err)
	assert.Len(t, posts, 20)

	var stored int64
	require.NoError(t, db.Model(&models.Post{}).Count(&stored).Error)
	assert.Equal(t, int64(20), stored)

	// Likes never come from the post's own author
	var selfLikes int64
	require.NoError(t, db.Model(&models.Like{}).
		Joins("JOIN posts ON posts.id = likes.post_id").
		Where("likes.owner_key = posts.owner_key").
		Count(&selfLikes).Error)
	assert.Zero(t, selfLikes)
}

func TestSeeder_ClearAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := NewSeeder(db, SeedOptions{Seed: 1})
	_, err := s.Run(Options{NumPublishers: 2, NumPosts: 5, MaxComments: 2})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll())

	for _, m := range []interface{}{&models.Post{}, &models.Like{}, &models.Comment{}, &models.Community{}} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}
}
