// Package seed provides helpers to create demo data for development databases.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"acervo/internal/models"
	"acervo/internal/naming"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// SeedOptions tunes generated data.
type SeedOptions struct {
	// MaxDays bounds how far back created_at is spread.
	MaxDays int
	// AssetBaseURL prefixes generated document and cover URLs.
	AssetBaseURL string
	// Seed makes generation reproducible when non-zero.
	Seed int64
}

// Factory builds posts and engagement rows and persists them.
type Factory struct {
	db    *gorm.DB
	opts  SeedOptions
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	if opts.AssetBaseURL == "" {
		opts.AssetBaseURL = "/media"
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Publisher is a fake signed-in author.
type Publisher struct {
	OwnerKey string
	Name     string
	Avatar   string
}

// Publishers generates n distinct fake authors.
func (f *Factory) Publishers(n int) []Publisher {
	out := make([]Publisher, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Publisher{
			OwnerKey: f.faker.UUID(),
			Name:     f.faker.Name(),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%d", f.faker.Number(1, 1_000_000)),
		})
	}
	return out
}

// BuildPost returns an unsaved post by author, optionally tagged with community.
func (f *Factory) BuildPost(author Publisher, community *models.Community) *models.Post {
	title := f.faker.Sentence(6)
	createdAt := time.Now().UTC().Add(-time.Duration(f.rng.Intn(f.opts.MaxDays*24*60)) * time.Minute)

	docKey := naming.AssetKey(f.faker.Word()+".pdf", title, createdAt)
	projectURL := f.opts.AssetBaseURL + "/documents/" + docKey
	avatar := author.Avatar

	post := &models.Post{
		Title:      title,
		Content:    f.faker.Paragraph(2, 4, 12, "\n\n"),
		Author:     author.Name,
		Advisor:    "Prof. " + f.faker.Name(),
		OwnerKey:   author.OwnerKey,
		AvatarURL:  &avatar,
		ProjectURL: projectURL,
		AssetURLs:  map[string]interface{}{"document": projectURL},
		CreatedAt:  createdAt,
	}
	if community != nil {
		id := community.ID
		post.CommunityID = &id
	}
	if f.rng.Intn(2) == 0 {
		coverURL := fmt.Sprintf("https://picsum.photos/seed/%s/800/450", f.faker.UUID())
		post.ImageURL = &coverURL
		post.AssetURLs["image"] = coverURL
	}
	return post
}

// CreatePosts persists posts in one batch.
func (f *Factory) CreatePosts(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Omit("Community").Create(&posts).Error
}

// Engage adds likes from a random subset of publishers and up to maxComments comments.
func (f *Factory) Engage(post *models.Post, publishers []Publisher, maxComments int) error {
	var likes []models.Like
	for _, p := range publishers {
		if p.OwnerKey != post.OwnerKey && f.rng.Intn(3) == 0 {
			likes = append(likes, models.Like{PostID: post.ID, OwnerKey: p.OwnerKey})
		}
	}
	if len(likes) > 0 {
		if err := f.db.Create(&likes).Error; err != nil {
			return err
		}
	}

	if maxComments <= 0 || len(publishers) == 0 {
		return nil
	}
	n := f.rng.Intn(maxComments + 1)
	comments := make([]models.Comment, 0, n)
	for i := 0; i < n; i++ {
		commenter := publishers[f.rng.Intn(len(publishers))]
		comments = append(comments, models.Comment{
			PostID:   post.ID,
			OwnerKey: commenter.OwnerKey,
			Content:  f.faker.Sentence(10),
		})
	}
	if len(comments) > 0 {
		return f.db.Create(&comments).Error
	}
	return nil
}
