package service

import (
	"context"
	"errors"
	"strings"

	"acervo/internal/models"
	"acervo/internal/observability"
	"acervo/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// FeedResult is a feed page together with the search that produced it, so callers can
// tell "no match for this search" apart from "nothing published yet".
type FeedResult struct {
	SearchTerm string         `json:"search_term"`
	Searched   bool           `json:"searched"`
	Posts      []*models.Post `json:"posts"`
}

// FeedService lists posts with their engagement counts.
type FeedService struct {
	posts repository.PostRepository
}

// NewFeedService creates a feed service over posts.
func NewFeedService(posts repository.PostRepository) *FeedService {
	return &FeedService{posts: posts}
}

// List returns every post newest first, or only those matching searchTerm in title or
// content when it is non-blank. A non-blank term is matched as given, surrounding
// whitespace included.
func (s *FeedService) List(ctx context.Context, searchTerm *string) (*FeedResult, error) {
	result := &FeedResult{Posts: []*models.Post{}}
	if searchTerm != nil && strings.TrimSpace(*searchTerm) != "" {
		result.SearchTerm = *searchTerm
		result.Searched = true
	}

	span, ctx := observability.NewSpan(ctx, "feed.List", attribute.Bool("feed.searched", result.Searched))
	defer span.End()

	posts, err := s.posts.List(ctx, result.SearchTerm)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	if posts != nil {
		result.Posts = posts
	}
	span.AddAttributes(attribute.Int("feed.size", len(result.Posts)))
	return result, nil
}

// Get returns one post with its counts.
func (s *FeedService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}
