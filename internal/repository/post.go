// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"acervo/internal/models"
	"acervo/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, search string) ([]*models.Post, error)
	ListByCommunity(ctx context.Context, communityID uint) ([]*models.Post, error)
	ListByOwner(ctx context.Context, ownerKey string) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", "posts")
	defer span.End()
	defer observability.TrackQuery("create", "posts")()

	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "GetByID", "posts")
	defer span.End()
	defer observability.TrackQuery("get", "posts")()

	var posts []*models.Post
	err := r.withCounts(ctx).
		Where("posts.id = ?", id).
		Limit(1).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return posts[0], nil
}

// List returns every post newest first. A non-empty search keeps posts whose title or
// content contains it, ignoring case.
func (r *postRepository) List(ctx context.Context, search string) ([]*models.Post, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", "posts")
	defer span.End()
	defer observability.TrackQuery("list", "posts")()

	q := r.withCounts(ctx)
	if search != "" {
		span.SetAttributes(attribute.Bool("feed.searched", true))
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		q = q.Where(`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var posts []*models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByCommunity(ctx context.Context, communityID uint) ([]*models.Post, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "ListByCommunity", "posts")
	defer span.End()
	defer observability.TrackQuery("list_by_community", "posts")()

	var posts []*models.Post
	if err := r.withCounts(ctx).Where("posts.community_id = ?", communityID).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerKey string) ([]*models.Post, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "ListByOwner", "posts")
	defer span.End()
	defer observability.TrackQuery("list_by_owner", "posts")()

	var posts []*models.Post
	if err := r.withCounts(ctx).Where("posts.owner_key = ?", ownerKey).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// withCounts is the single read path for posts: one statement joining grouped like and
// comment counts plus the community name, newest first with id breaking ties.
func (r *postRepository) withCounts(ctx context.Context) *gorm.DB {
	likes := r.db.Model(&models.Like{}).Select("post_id, COUNT(*) AS cnt").Group("post_id")
	comments := r.db.Model(&models.Comment{}).Select("post_id, COUNT(*) AS cnt").Group("post_id")

	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, COALESCE(lc.cnt, 0) AS like_count, COALESCE(cc.cnt, 0) AS comment_count, communities.name AS community_name").
		Joins("LEFT JOIN (?) AS lc ON lc.post_id = posts.id", likes).
		Joins("LEFT JOIN (?) AS cc ON cc.post_id = posts.id", comments).
		Joins("LEFT JOIN communities ON communities.id = posts.community_id").
		Order("posts.created_at DESC").
		Order("posts.id DESC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
