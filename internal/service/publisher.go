// Package service holds the publishing pipeline and the feed queries built on the repositories.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF cover images
	_ "image/jpeg" // register JPEG cover images
	_ "image/png"  // register PNG cover images
	"log/slog"
	"net/http"
	"strings"
	"time"

	"acervo/internal/middleware"
	"acervo/internal/models"
	"acervo/internal/naming"
	"acervo/internal/observability"
	"acervo/internal/repository"
	"acervo/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	_ "golang.org/x/image/webp" // register WebP cover images
)

// Manifest slot names.
const (
	SlotDocument = "document"
	SlotImage    = "image"
)

// AssetSlot is one named upload position in a publish manifest.
type AssetSlot struct {
	Name     string
	Bucket   string
	Required bool
	// Image slots only accept decodable PNG, JPEG, GIF or WebP data.
	Image bool
}

// AssetFile is an uploaded file as received from the client.
type AssetFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Asset pairs a manifest slot with the file supplied for it. File is nil when the
// client left the slot empty.
type Asset struct {
	Slot AssetSlot
	File *AssetFile
}

// Draft is the caller-supplied text of a post.
type Draft struct {
	Title       string `validate:"notblank,max=300"`
	Content     string `validate:"notblank,max=50000"`
	Advisor     string `validate:"max=200"`
	CommunityID *uint
}

// DefaultManifest returns the document slot followed, when coverImages is set, by the
// optional cover image slot.
func DefaultManifest(documentBucket, imageBucket string, coverImages bool) []AssetSlot {
	slots := []AssetSlot{{Name: SlotDocument, Bucket: documentBucket, Required: true}}
	if coverImages {
		slots = append(slots, AssetSlot{Name: SlotImage, Bucket: imageBucket, Image: true})
	}
	return slots
}

// Publisher turns a draft and its files into a stored post.
type Publisher struct {
	posts           repository.PostRepository
	assets          storage.AssetStore
	requireIdentity bool
	validate        *validator.Validate
	now             func() time.Time
}

// NewPublisher creates a publisher writing files to assets and rows to posts.
// When requireIdentity is set, publishing without a resolved identity is rejected.
func NewPublisher(posts repository.PostRepository, assets storage.AssetStore, requireIdentity bool) *Publisher {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Publisher{
		posts:           posts,
		assets:          assets,
		requireIdentity: requireIdentity,
		validate:        v,
		now:             time.Now,
	}
}

// WithClock replaces the clock used to derive asset keys.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	p.now = now
	return p
}

type uploaded struct {
	slot string
	key  string
	url  string
}

// Publish validates the draft, uploads each supplied asset in manifest order and inserts
// the post. The first failed upload stops the sequence; assets already written stay in
// the store, as they do when the insert fails.
func (p *Publisher) Publish(ctx context.Context, draft Draft, assets []Asset, identity *models.Identity) (*models.Post, error) {
	ctx = middleware.WithCorrelationID(ctx, uuid.NewString())
	span, ctx := observability.NewSpan(ctx, "publisher.Publish",
		attribute.Int("publish.slots", len(assets)),
	)
	defer span.End()

	if err := p.check(draft, assets, identity); err != nil {
		observability.PublishOutcomes.WithLabelValues("validation").Inc()
		span.SetError(err)
		return nil, err
	}

	// Uploads and insert run to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	var done []uploaded
	for _, a := range assets {
		if a.File == nil {
			continue
		}
		key := naming.AssetKey(a.File.Name, draft.Title, p.now())
		if err := p.assets.Upload(ctx, a.Slot.Bucket, key, a.File.Data, contentType(a.File)); err != nil {
			observability.AssetUploads.WithLabelValues(a.Slot.Name, "error").Inc()
			observability.PublishOutcomes.WithLabelValues("upload").Inc()
			p.logOrphans(ctx, "upload failed", done)
			middleware.Logger.ErrorContext(ctx, "asset upload failed",
				slog.String("slot", a.Slot.Name),
				slog.String("bucket", a.Slot.Bucket),
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			appErr := models.NewUploadError(a.Slot.Name, err)
			span.SetError(appErr)
			return nil, appErr
		}
		observability.AssetUploads.WithLabelValues(a.Slot.Name, "ok").Inc()
		observability.AssetUploadBytes.WithLabelValues(a.Slot.Name).Observe(float64(len(a.File.Data)))
		done = append(done, uploaded{
			slot: a.Slot.Name,
			key:  a.Slot.Bucket + "/" + key,
			url:  p.assets.PublicURL(a.Slot.Bucket, key),
		})
	}

	post := newPost(draft, identity, done)
	if err := p.posts.Create(ctx, post); err != nil {
		observability.PublishOutcomes.WithLabelValues("insert").Inc()
		p.logOrphans(ctx, "insert failed", done)
		appErr := models.NewInsertError(err)
		span.SetError(appErr)
		return nil, appErr
	}

	observability.PublishOutcomes.WithLabelValues("created").Inc()
	span.AddAttributes(attribute.Int64("post.id", int64(post.ID)))
	middleware.Logger.InfoContext(ctx, "post published",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Int("assets", len(done)),
	)
	return post, nil
}

func (p *Publisher) check(draft Draft, assets []Asset, identity *models.Identity) error {
	if p.requireIdentity && !identity.Resolved() {
		return models.NewValidationError("Sign in with an institutional account to publish")
	}

	if err := p.validate.Struct(draft); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return models.NewValidationError(fieldMessage(verrs[0]))
		}
		return models.NewValidationError(err.Error())
	}

	hasRequired := false
	for _, a := range assets {
		if a.Slot.Required {
			hasRequired = true
		}
		if a.File == nil {
			if a.Slot.Required {
				return models.NewValidationError(fmt.Sprintf("%s file is required", a.Slot.Name))
			}
			continue
		}
		if len(a.File.Data) == 0 {
			return models.NewValidationError(fmt.Sprintf("%s file is empty", a.Slot.Name))
		}
		if a.Slot.Image {
			if _, _, err := image.DecodeConfig(bytes.NewReader(a.File.Data)); err != nil {
				return models.NewValidationError(fmt.Sprintf("%s must be a PNG, JPEG, GIF or WebP image", a.Slot.Name))
			}
		}
	}
	if !hasRequired {
		return models.NewValidationError("publish manifest has no required slot")
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "notblank":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s too long (max %s characters)", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func (p *Publisher) logOrphans(ctx context.Context, reason string, done []uploaded) {
	if len(done) == 0 {
		return
	}
	keys := make([]string, 0, len(done))
	for _, u := range done {
		keys = append(keys, u.key)
	}
	observability.OrphanedAssets.Add(float64(len(done)))
	middleware.Logger.WarnContext(ctx, "publish left orphaned assets",
		slog.String("reason", reason),
		slog.Any("keys", keys),
	)
}

func newPost(draft Draft, identity *models.Identity, done []uploaded) *models.Post {
	post := &models.Post{
		Title:       draft.Title,
		Content:     draft.Content,
		Advisor:     strings.TrimSpace(draft.Advisor),
		CommunityID: draft.CommunityID,
	}
	if identity != nil {
		post.Author = identity.DisplayName
		post.OwnerKey = identity.OwnerKey
		if identity.AvatarURL != "" {
			avatar := identity.AvatarURL
			post.AvatarURL = &avatar
		}
	}

	if len(done) > 0 {
		post.AssetURLs = make(map[string]interface{}, len(done))
	}
	for _, u := range done {
		post.AssetURLs[u.slot] = u.url
		switch u.slot {
		case SlotDocument:
			post.ProjectURL = u.url
		case SlotImage:
			imageURL := u.url
			post.ImageURL = &imageURL
		}
	}
	return post
}

func contentType(f *AssetFile) string {
	if ct := strings.TrimSpace(f.ContentType); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(f.Data)
}
