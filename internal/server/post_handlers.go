package server

import (
	"io"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// Returns one page of the feed, newest first, with pagination metadata.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c)
	currentUserID, _ := s.optionalUserID(c)

	page, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Page:          p.Page,
		Limit:         p.Limit,
		CurrentUserID: currentUserID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts": page.Posts,
		"pagination": fiber.Map{
			"currentPage": p.Page,
			"totalPages":  p.TotalPages(page.Total),
			"totalPosts":  page.Total,
		},
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)
	post, err := s.postService.GetPost(c.Context(), id, currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts (multipart form: text and/or image)
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	text := c.FormValue("text")

	imageURL := ""
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unreadable image upload"))
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unreadable image upload"))
		}

		imageURL, err = s.uploadService.Save(service.UploadInput{Content: content})
		if err != nil {
			return respondServiceError(c, err)
		}
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:   userID,
		Text:     text,
		ImageURL: imageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// LikePost handles POST /api/posts/:id/like
// The endpoint is a toggle: liking an already-liked post removes the like.
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, liked, err := s.postService.ToggleLike(c.Context(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"liked": liked,
		"post":  post,
	})
}
