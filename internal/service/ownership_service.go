package service

import (
	"context"

	"acervo/internal/models"
	"acervo/internal/repository"
)

// OwnershipService lists the posts a publisher owns.
type OwnershipService struct {
	posts repository.PostRepository
}

// NewOwnershipService creates an ownership service.
func NewOwnershipService(posts repository.PostRepository) *OwnershipService {
	return &OwnershipService{posts: posts}
}

// ListOwnedBy returns the identity's posts, newest first. Without a resolved identity
// the result is empty rather than an error.
func (s *OwnershipService) ListOwnedBy(ctx context.Context, identity *models.Identity) ([]*models.Post, error) {
	if !identity.Resolved() {
		return []*models.Post{}, nil
	}
	posts, err := s.posts.ListByOwner(ctx, identity.OwnerKey)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}
