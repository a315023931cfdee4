package repository

import (
	"context"

	"acervo/internal/models"
	"acervo/internal/observability"

	"gorm.io/gorm"
)

// CommunityRepository reads the community catalog.
type CommunityRepository interface {
	List(ctx context.Context) ([]models.Community, error)
	GetByID(ctx context.Context, id uint) (*models.Community, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) List(ctx context.Context) ([]models.Community, error) {
	defer observability.TrackQuery("list", "communities")()

	var communities []models.Community
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&communities).Error
	return communities, err
}

func (r *communityRepository) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	defer observability.TrackQuery("get", "communities")()

	var community models.Community
	if err := r.db.WithContext(ctx).First(&community, id).Error; err != nil {
		return nil, err
	}
	return &community, nil
}
