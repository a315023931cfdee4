package server

import "github.com/gofiber/fiber/v2"

// ListCommunities handles GET /api/communities
// @Summary List communities
// @Tags communities
// @Produce json
// @Success 200 {array} models.Community
// @Failure 500 {object} models.ErrorResponse
// @Router /communities [get]
func (s *Server) ListCommunities(c *fiber.Ctx) error {
	communities, err := s.communities.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(communities)
}

// GetCommunity handles GET /api/communities/:id
// @Summary Get a community
// @Tags communities
// @Produce json
// @Param id path int true "Community ID"
// @Success 200 {object} models.Community
// @Failure 404 {object} models.ErrorResponse
// @Router /communities/{id} [get]
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	community, err := s.communities.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(community)
}

// ListCommunityPosts handles GET /api/communities/:id/posts
// @Summary List a community's posts
// @Description Posts tagged with the community, newest first. Unknown communities yield an empty list.
// @Tags communities
// @Produce json
// @Param id path int true "Community ID"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /communities/{id}/posts [get]
func (s *Server) ListCommunityPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	posts, err := s.communities.ListByCommunity(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}
