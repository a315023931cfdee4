package seed

import (
	"log"

	"acervo/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumPublishers int
	NumPosts      int
	MaxComments   int
	ShouldClean   bool
	Factory       SeedOptions
}

// Seeder fills a database with demo communities, posts and engagement.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a seeder over db.
func NewSeeder(db *gorm.DB, opts SeedOptions) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll deletes engagement, posts and communities, children first.
func (s *Seeder) ClearAll() error {
	for _, m := range []interface{}{&models.Comment{}, &models.Like{}, &models.Post{}, &models.Community{}} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return err
		}
	}
	log.Println("Cleared posts, engagement and communities")
	return nil
}

// Run seeds built-in communities and then the demo feed described by opts.
func (s *Seeder) Run(opts Options) ([]*models.Post, error) {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}
	if err := Communities(s.db); err != nil {
		return nil, err
	}

	var communities []models.Community
	if err := s.db.Order("id").Find(&communities).Error; err != nil {
		return nil, err
	}

	publishers := s.factory.Publishers(max(opts.NumPublishers, 1))
	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := publishers[s.factory.rng.Intn(len(publishers))]
		var community *models.Community
		// Roughly one post in four stays untagged
		if len(communities) > 0 && s.factory.rng.Intn(4) != 0 {
			community = &communities[s.factory.rng.Intn(len(communities))]
		}
		posts = append(posts, s.factory.BuildPost(author, community))
	}
	if err := s.factory.CreatePosts(posts); err != nil {
		return nil, err
	}

	for _, p := range posts {
		if err := s.factory.Engage(p, publishers, opts.MaxComments); err != nil {
			return nil, err
		}
	}

	log.Printf("Seeded %d posts from %d publishers across %d communities", len(posts), len(publishers), len(communities))
	return posts, nil
}
