package service

import (
	"context"
	"errors"

	"acervo/internal/models"
	"acervo/internal/repository"

	"gorm.io/gorm"
)

// CommunityService serves the community catalog and per-community feeds.
type CommunityService struct {
	communities repository.CommunityRepository
	posts       repository.PostRepository
}

// NewCommunityService creates a community service.
func NewCommunityService(communities repository.CommunityRepository, posts repository.PostRepository) *CommunityService {
	return &CommunityService{communities: communities, posts: posts}
}

// ListAll returns every community, newest first.
func (s *CommunityService) ListAll(ctx context.Context) ([]models.Community, error) {
	communities, err := s.communities.List(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if communities == nil {
		communities = []models.Community{}
	}
	return communities, nil
}

// Get returns one community or a NOT_FOUND error.
func (s *CommunityService) Get(ctx context.Context, id uint) (*models.Community, error) {
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", id)
		}
		return nil, models.NewInternalError(err)
	}
	return community, nil
}

// ListByCommunity returns the posts tagged with communityID, newest first, each carrying
// the community name. An unknown or empty community yields an empty list.
func (s *CommunityService) ListByCommunity(ctx context.Context, communityID uint) ([]*models.Post, error) {
	posts, err := s.posts.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}
