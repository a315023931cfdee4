package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"acervo/internal/models"
	"acervo/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var base = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func titles(posts []*models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{Title: "Soil", Content: "Abstract", Author: "Ana", OwnerKey: "u-1", ProjectURL: "https://x/doc.pdf"}

	// created_at is left to the column default and read back
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts" ("title","content","author","advisor","owner_key","avatar_url","community_id","project_url","image_url","asset_urls") VALUES`) +
		`.*` + regexp.QuoteMeta(`RETURNING "id","created_at"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, base))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), post))
	assert.Equal(t, uint(7), post.ID)
	assert.True(t, base.Equal(post.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CreateKeepsExplicitCreatedAt(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	stored := &models.Post{Title: "Imported", Content: "c", Author: "Ana", OwnerKey: "u-1", ProjectURL: "https://x/a.pdf", CreatedAt: base}
	require.NoError(t, repo.Create(ctx, stored))

	fresh := &models.Post{Title: "Fresh", Content: "c", Author: "Ana", OwnerKey: "u-1", ProjectURL: "https://x/b.pdf"}
	require.NoError(t, repo.Create(ctx, fresh))
	assert.False(t, fresh.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, base.Equal(got.CreatedAt), got.CreatedAt)

	list, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fresh", "Imported"}, titles(list))
}

func TestPostRepository_ListIsOneStatement(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "like_count", "comment_count", "community_name"}).
		AddRow(2, "Soil_ sensors", 3, 1, "Engenharia").
		AddRow(1, "Soil_ moisture", 0, 0, nil)

	mock.ExpectQuery(`SELECT posts\.\*, COALESCE\(lc\.cnt, 0\) AS like_count, COALESCE\(cc\.cnt, 0\) AS comment_count, communities\.name AS community_name ` +
		`FROM "posts" LEFT JOIN \(SELECT post_id, COUNT\(\*\) AS cnt FROM "likes" GROUP BY "post_id"\) AS lc ON lc\.post_id = posts\.id ` +
		`LEFT JOIN \(SELECT post_id, COUNT\(\*\) AS cnt FROM "comments" GROUP BY "post_id"\) AS cc ON cc\.post_id = posts\.id ` +
		`LEFT JOIN communities ON communities\.id = posts\.community_id ` +
		`WHERE \(LOWER\(posts\.title\) LIKE \$1 ESCAPE '\\' OR LOWER\(posts\.content\) LIKE \$2 ESCAPE '\\'\) ` +
		`ORDER BY posts\.created_at DESC,\s*posts\.id DESC`).
		WithArgs(`%soil\_%`, `%soil\_%`).
		WillReturnRows(rows)

	posts, err := repo.List(context.Background(), "SOIL_")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, 3, posts[0].LikeCount)
	assert.Equal(t, 1, posts[0].CommentCount)
	assert.Equal(t, "Engenharia", posts[0].CommunityName)
	assert.Equal(t, 0, posts[1].LikeCount)

	// sqlmock fails on any statement beyond the expected one
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListWithCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := testutil.CreatePost(t, db, "A", "first", "u-1", nil, base)
	b := testutil.CreatePost(t, db, "B", "second", "u-2", nil, base.Add(time.Minute))
	testutil.AddLikes(t, db, a.ID, "u-2", "u-3")
	testutil.AddComments(t, db, a.ID, 1)
	testutil.AddComments(t, db, b.ID, 4)

	posts, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"B", "A"}, titles(posts))

	assert.Equal(t, 0, posts[0].LikeCount)
	assert.Equal(t, 4, posts[0].CommentCount)
	assert.Equal(t, 2, posts[1].LikeCount)
	assert.Equal(t, 1, posts[1].CommentCount)
}

func TestPostRepository_ListTieBreaksOnID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)

	testutil.CreatePost(t, db, "first", "x", "u-1", nil, base)
	testutil.CreatePost(t, db, "second", "x", "u-1", nil, base)
	testutil.CreatePost(t, db, "third", "x", "u-1", nil, base)

	posts, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, titles(posts))
}

func TestPostRepository_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	testutil.CreatePost(t, db, "Soil moisture sensors", "Arduino based", "u-1", nil, base)
	testutil.CreatePost(t, db, "Robotics", "Uses SOIL probes", "u-1", nil, base.Add(time.Minute))
	testutil.CreatePost(t, db, "Literature review", "100% coverage of the_topic", "u-2", nil, base.Add(2*time.Minute))

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"title or content ignoring case", "soil", []string{"Robotics", "Soil moisture sensors"}},
		{"percent is literal", "100%", []string{"Literature review"}},
		{"underscore is literal", "the_", []string{"Literature review"}},
		{"lone percent matches only literal percent", "%", []string{"Literature review"}},
		{"no match", "quantum", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.List(ctx, tt.search)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(posts))
		})
	}
}

func TestPostRepository_ListByCommunity(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)

	eng := testutil.CreateCommunity(t, db, "Engenharia")
	bio := testutil.CreateCommunity(t, db, "Biologia")
	p1 := testutil.CreatePost(t, db, "E1", "x", "u-1", &eng.ID, base)
	testutil.CreatePost(t, db, "B1", "x", "u-1", &bio.ID, base.Add(time.Minute))
	testutil.CreatePost(t, db, "E2", "x", "u-2", &eng.ID, base.Add(2*time.Minute))
	testutil.CreatePost(t, db, "none", "x", "u-2", nil, base.Add(3*time.Minute))
	testutil.AddLikes(t, db, p1.ID, "u-9")

	posts, err := repo.ListByCommunity(context.Background(), eng.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"E2", "E1"}, titles(posts))
	for _, p := range posts {
		assert.Equal(t, "Engenharia", p.CommunityName)
	}
	assert.Equal(t, 1, posts[1].LikeCount)

	empty, err := repo.ListByCommunity(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostRepository_ListByOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)

	testutil.CreatePost(t, db, "mine-1", "x", "u-1", nil, base)
	testutil.CreatePost(t, db, "theirs", "x", "u-10", nil, base.Add(time.Minute))
	testutil.CreatePost(t, db, "mine-2", "x", "u-1", nil, base.Add(2*time.Minute))

	posts, err := repo.ListByOwner(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"mine-2", "mine-1"}, titles(posts))
}

func TestPostRepository_GetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	eng := testutil.CreateCommunity(t, db, "Engenharia")
	p := testutil.CreatePost(t, db, "A", "x", "u-1", &eng.ID, base)
	testutil.AddComments(t, db, p.ID, 2)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, 2, got.CommentCount)
	assert.Equal(t, "Engenharia", got.CommunityName)

	_, err = repo.GetByID(ctx, p.ID+100)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}
