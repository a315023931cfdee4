package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"acervo/internal/models"
	"acervo/internal/storage"
	"acervo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity() *models.Identity {
	return &models.Identity{
		OwnerKey:    "u-ana",
		DisplayName: "Ana Lima",
		AvatarURL:   "https://avatars.test/ana.png",
		Email:       "ana@acad.ifma.edu.br",
	}
}

func manifest() []AssetSlot {
	return DefaultManifest("documents", "cover-images", true)
}

func withFiles(doc, img *AssetFile) []Asset {
	m := manifest()
	return []Asset{{Slot: m[0], File: doc}, {Slot: m[1], File: img}}
}

func docFile() *AssetFile {
	return &AssetFile{Name: "thesis (final).pdf", ContentType: "application/pdf", Data: testutil.PDFBytes()}
}

func imgFile() *AssetFile {
	return &AssetFile{Name: "Capa Final.png", Data: testutil.PNGBytes()}
}

// tickingClock returns start, start+1ms, start+2ms, ...
func tickingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * time.Millisecond)
		n++
		return t
	}
}

func draft() Draft {
	return Draft{Title: "Soil Moisture Sensors", Content: "A survey of low-cost sensors"}
}

func TestDefaultManifest(t *testing.T) {
	m := DefaultManifest("docs", "imgs", true)
	require.Len(t, m, 2)
	assert.Equal(t, AssetSlot{Name: SlotDocument, Bucket: "docs", Required: true}, m[0])
	assert.Equal(t, AssetSlot{Name: SlotImage, Bucket: "imgs", Image: true}, m[1])

	assert.Len(t, DefaultManifest("docs", "imgs", false), 1)
}

func TestPublish_Validation(t *testing.T) {
	long := strings.Repeat("á", 301)

	tests := []struct {
		name     string
		draft    Draft
		assets   []Asset
		identity *models.Identity
	}{
		{"blank title", Draft{Title: "", Content: "c"}, withFiles(docFile(), nil), identity()},
		{"whitespace title", Draft{Title: "   ", Content: "c"}, withFiles(docFile(), nil), identity()},
		{"blank content", Draft{Title: "t", Content: "\n\t"}, withFiles(docFile(), nil), identity()},
		{"title too long", Draft{Title: long, Content: "c"}, withFiles(docFile(), nil), identity()},
		{"missing document", draft(), withFiles(nil, imgFile()), identity()},
		{"empty document", draft(), withFiles(&AssetFile{Name: "a.pdf"}, nil), identity()},
		{"empty image", draft(), withFiles(docFile(), &AssetFile{Name: "c.png"}), identity()},
		{"image not decodable", draft(), withFiles(docFile(), &AssetFile{Name: "c.png", Data: []byte("not an image")}), identity()},
		{"no identity", draft(), withFiles(docFile(), nil), nil},
		{"identity without owner key", draft(), withFiles(docFile(), nil), &models.Identity{DisplayName: "x"}},
		{"manifest without required slot", draft(), []Asset{{Slot: manifest()[1], File: imgFile()}}, identity()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopPostRepo()
			store := testutil.NewMemoryAssetStore()
			p := NewPublisher(repo, store, true)

			post, err := p.Publish(context.Background(), tt.draft, tt.assets, tt.identity)
			assertValidationError(t, err)
			assert.Nil(t, post)
			assert.Empty(t, store.Calls(), "no upload may start before validation passes")
			assert.Empty(t, repo.created)
		})
	}
}

func TestPublish_TitleAtLimitIsAccepted(t *testing.T) {
	p := NewPublisher(noopPostRepo(), testutil.NewMemoryAssetStore(), true)
	d := Draft{Title: strings.Repeat("á", 300), Content: "c"}

	_, err := p.Publish(context.Background(), d, withFiles(docFile(), nil), identity())
	assert.NoError(t, err)
}

func TestPublish_LongTitleOnLocalStore(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewLocalStore(dir, "")
	p := NewPublisher(noopPostRepo(), store, true).WithClock(tickingClock(time.UnixMilli(1792075376047)))
	d := Draft{Title: strings.Repeat("Sensores de Umidade ", 15), Content: "c"}
	require.Len(t, d.Title, 300)

	post, err := p.Publish(context.Background(), d, withFiles(docFile(), imgFile()), identity())
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(post.ProjectURL, "/media/documents/"))
	key := strings.TrimPrefix(post.ProjectURL, "/media/documents/")
	data, err := os.ReadFile(filepath.Join(dir, "documents", key))
	require.NoError(t, err)
	assert.Equal(t, testutil.PDFBytes(), data)
	require.NotNil(t, post.ImageURL)
	assert.True(t, strings.HasPrefix(*post.ImageURL, "/media/cover-images/"))
}

func TestPublish_Success(t *testing.T) {
	repo := noopPostRepo()
	store := testutil.NewMemoryAssetStore()
	start := time.UnixMilli(1718000000000)
	p := NewPublisher(repo, store, true).WithClock(tickingClock(start))

	community := uint(3)
	d := draft()
	d.CommunityID = &community
	d.Advisor = "  Prof. Carlos  "

	post, err := p.Publish(context.Background(), d, withFiles(docFile(), imgFile()), identity())
	require.NoError(t, err)

	calls := store.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "documents", calls[0].Bucket)
	assert.Equal(t, "Soil_Moisture_Sensors-1718000000000-thesis_final.pdf", calls[0].Key)
	assert.Equal(t, "application/pdf", calls[0].ContentType)
	assert.Equal(t, "cover-images", calls[1].Bucket)
	assert.Equal(t, "Soil_Moisture_Sensors-1718000000001-Capa_Final.png", calls[1].Key)
	assert.Equal(t, "image/png", calls[1].ContentType)

	assert.Equal(t, uint(1), post.ID)
	assert.Equal(t, "Soil Moisture Sensors", post.Title)
	assert.Equal(t, "A survey of low-cost sensors", post.Content)
	assert.Equal(t, "Ana Lima", post.Author)
	assert.Equal(t, "Prof. Carlos", post.Advisor)
	assert.Equal(t, "u-ana", post.OwnerKey)
	require.NotNil(t, post.AvatarURL)
	assert.Equal(t, "https://avatars.test/ana.png", *post.AvatarURL)
	assert.Equal(t, &community, post.CommunityID)
	assert.Equal(t, "https://assets.test/documents/"+calls[0].Key, post.ProjectURL)
	require.NotNil(t, post.ImageURL)
	assert.Equal(t, "https://assets.test/cover-images/"+calls[1].Key, *post.ImageURL)
	assert.Equal(t, post.ProjectURL, post.AssetURLs[SlotDocument])
	assert.Equal(t, *post.ImageURL, post.AssetURLs[SlotImage])
	assert.Zero(t, post.LikeCount)
	assert.Zero(t, post.CommentCount)
}

func TestPublish_OptionalImageOmitted(t *testing.T) {
	store := testutil.NewMemoryAssetStore()
	p := NewPublisher(noopPostRepo(), store, true)

	post, err := p.Publish(context.Background(), draft(), withFiles(docFile(), nil), identity())
	require.NoError(t, err)
	assert.Len(t, store.Calls(), 1)
	assert.Nil(t, post.ImageURL)
	assert.NotEmpty(t, post.ProjectURL)
	assert.NotContains(t, post.AssetURLs, SlotImage)
}

func TestPublish_AnonymousWhenIdentityOptional(t *testing.T) {
	p := NewPublisher(noopPostRepo(), testutil.NewMemoryAssetStore(), false)

	post, err := p.Publish(context.Background(), draft(), withFiles(docFile(), nil), nil)
	require.NoError(t, err)
	assert.Empty(t, post.OwnerKey)
	assert.Nil(t, post.AvatarURL)
}

func TestPublish_DocumentUploadFailureStopsEverything(t *testing.T) {
	repo := noopPostRepo()
	store := testutil.NewMemoryAssetStore()
	store.FailBucket("documents", errors.New("bucket unavailable"))
	p := NewPublisher(repo, store, true)

	post, err := p.Publish(context.Background(), draft(), withFiles(docFile(), imgFile()), identity())
	appErr := assertAppError(t, err, models.CodeUpload)
	assert.Contains(t, appErr.Message, SlotDocument)
	assert.ErrorContains(t, err, "bucket unavailable")
	assert.Nil(t, post)

	calls := store.Calls()
	require.Len(t, calls, 1, "image upload must not be attempted")
	assert.Equal(t, "documents", calls[0].Bucket)
	assert.Empty(t, repo.created)
}

func TestPublish_ImageUploadFailureLeavesDocument(t *testing.T) {
	repo := noopPostRepo()
	store := testutil.NewMemoryAssetStore()
	store.FailBucket("cover-images", errors.New("quota exceeded"))
	p := NewPublisher(repo, store, true)

	_, err := p.Publish(context.Background(), draft(), withFiles(docFile(), imgFile()), identity())
	appErr := assertAppError(t, err, models.CodeUpload)
	assert.Contains(t, appErr.Message, SlotImage)

	// The document stays in the store; nothing is rolled back
	assert.Equal(t, 1, store.Len())
	assert.Empty(t, repo.created)
}

func TestPublish_InsertFailureKeepsAssets(t *testing.T) {
	repo := noopPostRepo()
	repo.createFn = func(context.Context, *models.Post) error { return errors.New("connection reset") }
	store := testutil.NewMemoryAssetStore()
	p := NewPublisher(repo, store, true)

	post, err := p.Publish(context.Background(), draft(), withFiles(docFile(), imgFile()), identity())
	assertAppError(t, err, models.CodeInsert)
	assert.False(t, models.IsCode(err, models.CodeUpload))
	assert.Nil(t, post)
	assert.Equal(t, 2, store.Len())
}

func TestPublish_IgnoresCallerCancellationOnceStarted(t *testing.T) {
	repo := noopPostRepo()
	var insertCtxErr error
	repo.createFn = func(ctx context.Context, p *models.Post) error {
		insertCtxErr = ctx.Err()
		p.ID = 9
		return nil
	}
	p := NewPublisher(repo, testutil.NewMemoryAssetStore(), true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	post, err := p.Publish(ctx, draft(), withFiles(docFile(), nil), identity())
	require.NoError(t, err)
	assert.NoError(t, insertCtxErr)
	assert.Equal(t, uint(9), post.ID)
}

func TestPublish_ConcurrentCallsKeepTheirOwnKeys(t *testing.T) {
	repo := &postRepoStub{createFn: func(context.Context, *models.Post) error { return nil }}
	store := testutil.NewMemoryAssetStore()
	p := NewPublisher(repo, store, true)

	titles := []string{"Alpha Study", "Beta Study"}
	results := make(chan *models.Post, len(titles))
	errs := make(chan error, len(titles))
	for _, title := range titles {
		go func(title string) {
			d := Draft{Title: title, Content: "c"}
			post, err := p.Publish(context.Background(), d, withFiles(docFile(), imgFile()), identity())
			errs <- err
			results <- post
		}(title)
	}

	for range titles {
		require.NoError(t, <-errs)
		post := <-results
		prefix := strings.ReplaceAll(post.Title, " ", "_") + "-"
		assert.Contains(t, post.ProjectURL, "/documents/"+prefix)
		assert.Contains(t, *post.ImageURL, "/cover-images/"+prefix)
	}
	assert.Len(t, store.Calls(), 4)
}
