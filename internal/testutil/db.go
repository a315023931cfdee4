package testutil

import (
	"testing"
	"time"

	"acervo/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with the post schema migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	// Every connection to :memory: is its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Community{}, &models.Post{}, &models.Like{}, &models.Comment{}))
	return db
}

// CreateCommunity inserts a community named name.
func CreateCommunity(t *testing.T, db *gorm.DB, name string) *models.Community {
	t.Helper()
	c := &models.Community{Name: name, Description: name + " community"}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreatePost inserts a post owned by ownerKey, created at createdAt.
func CreatePost(t *testing.T, db *gorm.DB, title, content, ownerKey string, communityID *uint, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:       title,
		Content:     content,
		Author:      "Author " + ownerKey,
		OwnerKey:    ownerKey,
		CommunityID: communityID,
		ProjectURL:  "https://assets.test/documents/" + title + ".pdf",
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// AddLikes adds one like per owner key to postID.
func AddLikes(t *testing.T, db *gorm.DB, postID uint, ownerKeys ...string) {
	t.Helper()
	for _, k := range ownerKeys {
		require.NoError(t, db.Create(&models.Like{PostID: postID, OwnerKey: k}).Error)
	}
}

// AddComments adds n comments to postID.
func AddComments(t *testing.T, db *gorm.DB, postID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&models.Comment{PostID: postID, OwnerKey: "commenter", Content: "nice work"}).Error)
	}
}
