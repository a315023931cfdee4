// Command seed fills a development database with demo communities and posts.
package main

import (
	"context"
	"flag"
	"log"

	"acervo/internal/bootstrap"
	"acervo/internal/config"
	"acervo/internal/seed"
)

func main() {
	numPublishers := flag.Int("publishers", 15, "Number of fake publishers")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	maxComments := flag.Int("comments", 6, "Maximum comments per post")
	shouldClean := flag.Bool("clean", false, "Delete posts, engagement and communities first")
	randSeed := flag.Int64("seed", 0, "Deterministic seed (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, _, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{SeedBuiltIns: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	s := seed.NewSeeder(db, seed.SeedOptions{
		AssetBaseURL: cfg.AssetPublicBaseURL,
		Seed:         *randSeed,
	})
	if _, err := s.Run(seed.Options{
		NumPublishers: *numPublishers,
		NumPosts:      *numPosts,
		MaxComments:   *maxComments,
		ShouldClean:   *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done.")
}
