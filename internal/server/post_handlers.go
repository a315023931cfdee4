package server

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"acervo/internal/featureflags"
	"acervo/internal/middleware"
	"acervo/internal/models"
	"acervo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts
// @Summary List the feed
// @Description Every post newest first with like and comment counts. A non-blank q filters by title or content, case-insensitively.
// @Tags posts
// @Produce json
// @Param q query string false "Search term"
// @Success 200 {object} service.FeedResult
// @Failure 500 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	var term *string
	if c.Context().QueryArgs().Has("q") {
		q := c.Query("q")
		term = &q
	}

	result, err := s.feedService.List(c.UserContext(), term)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.feedService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Publish a post
// @Description Uploads the document (and the cover image when enabled) and stores the post.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param content formData string true "Abstract"
// @Param advisor formData string false "Advisor"
// @Param community_id formData int false "Community ID"
// @Param document formData file true "Document"
// @Param image formData file false "Cover image"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 429 {object} object{error=string}
// @Failure 502 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Expected a multipart/form-data body"))
	}

	draft := service.Draft{
		Title:   formValue(form, "title"),
		Content: formValue(form, "content"),
		Advisor: formValue(form, "advisor"),
	}
	if raw := strings.TrimSpace(formValue(form, "community_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid community ID"))
		}
		communityID := uint(id)
		draft.CommunityID = &communityID
	}

	identity := middleware.IdentityFrom(c)
	var ownerKey string
	if identity.Resolved() {
		ownerKey = identity.OwnerKey
	}
	manifest := service.DefaultManifest(
		s.config.DocumentBucket,
		s.config.ImageBucket,
		s.featureFlags.Enabled(featureflags.CoverImages, ownerKey),
	)

	assets := make([]service.Asset, 0, len(manifest))
	for _, slot := range manifest {
		file, err := readFormFile(form, slot.Name)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to read uploaded "+slot.Name))
		}
		assets = append(assets, service.Asset{Slot: slot, File: file})
	}

	post, err := s.publisher.Publish(c.UserContext(), draft, assets, identity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ListMyPosts handles GET /api/me/posts
// @Summary List the caller's posts
// @Description Posts published by the signed-in identity. Anonymous callers get an empty list.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Failure 500 {object} models.ErrorResponse
// @Router /me/posts [get]
func (s *Server) ListMyPosts(c *fiber.Ctx) error {
	posts, err := s.ownership.ListOwnedBy(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// readFormFile returns the first file sent under key, or nil when none was sent.
func readFormFile(form *multipart.Form, key string) (*service.AssetFile, error) {
	headers := form.File[key]
	if len(headers) == 0 {
		return nil, nil
	}
	fh := headers[0]

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return &service.AssetFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
