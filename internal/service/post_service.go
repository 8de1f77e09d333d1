// Package service contains the application's business logic, sitting between
// HTTP handlers and repositories.
package service

import (
	"context"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	UserID   uint
	Text     string
	ImageURL string
}

type ListPostsInput struct {
	Page          int
	Limit         int
	CurrentUserID uint
}

// FeedPage is one page of the reverse-chronological feed plus the total
// post count used for pagination.
type FeedPage struct {
	Posts []*models.Post `json:"posts"`
	Total int64          `json:"total"`
}

const maxPostTextLen = 500

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && in.ImageURL == "" {
		return nil, models.NewValidationError("Post must have text or an image")
	}
	if len(text) > maxPostTextLen {
		return nil, models.NewValidationError("Text too long (max 500 characters)")
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:   author.ID,
		Username: author.Username,
		Text:     text,
		ImageURL: in.ImageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*FeedPage, error) {
	offset := (in.Page - 1) * in.Limit

	// The cached page is user-neutral (liked always false); the current
	// user's liked flags are layered on after the cache read.
	var page FeedPage
	key := cache.FeedPageKey(in.Page, in.Limit)
	err := cache.Aside(ctx, key, &page, cache.FeedTTL, func() error {
		posts, fetchErr := s.postRepo.List(ctx, in.Limit, offset, 0)
		if fetchErr != nil {
			return fetchErr
		}
		total, fetchErr := s.postRepo.Count(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		page = FeedPage{Posts: posts, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if page.Posts == nil {
		page.Posts = []*models.Post{}
	}

	if in.CurrentUserID != 0 && len(page.Posts) > 0 {
		postIDs := make([]uint, len(page.Posts))
		for i, p := range page.Posts {
			postIDs[i] = p.ID
		}

		likedIDs, err := s.postRepo.GetLikedPostIDs(ctx, in.CurrentUserID, postIDs)
		if err == nil {
			likedMap := make(map[uint]bool, len(likedIDs))
			for _, id := range likedIDs {
				likedMap[id] = true
			}
			for _, p := range page.Posts {
				p.Liked = likedMap[p.ID]
			}
		}
	}

	return &page, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

// ToggleLike flips the user's like on a post and returns the refreshed post
// together with the resulting liked state. The insert-or-nothing semantics of
// the repository make concurrent toggles converge instead of erroring.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, false, err
	}

	liked, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, false, err
	}
	if !liked {
		// Row already existed, so this toggle removes the like.
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, false, err
		}
	}

	if liked {
		middleware.LikeToggles.WithLabelValues("liked").Inc()
	} else {
		middleware.LikeToggles.WithLabelValues("unliked").Inc()
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, false, err
	}
	return post, liked, nil
}
