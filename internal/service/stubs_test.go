package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"acervo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn          func(context.Context, *models.Post) error
	getByIDFn         func(context.Context, uint) (*models.Post, error)
	listFn            func(context.Context, string) ([]*models.Post, error)
	listByCommunityFn func(context.Context, uint) ([]*models.Post, error)
	listByOwnerFn     func(context.Context, string) ([]*models.Post, error)

	mu      sync.Mutex
	created []*models.Post
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	if err := s.createFn(ctx, post); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, post)
	return nil
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, search string) ([]*models.Post, error) {
	return s.listFn(ctx, search)
}
func (s *postRepoStub) ListByCommunity(ctx context.Context, communityID uint) ([]*models.Post, error) {
	return s.listByCommunityFn(ctx, communityID)
}
func (s *postRepoStub) ListByOwner(ctx context.Context, ownerKey string) ([]*models.Post, error) {
	return s.listByOwnerFn(ctx, ownerKey)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn:         func(_ context.Context, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		listFn:            func(_ context.Context, _ string) ([]*models.Post, error) { return nil, nil },
		listByCommunityFn: func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		listByOwnerFn:     func(_ context.Context, _ string) ([]*models.Post, error) { return nil, nil },
	}
}

func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}
