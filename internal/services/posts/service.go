package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("post not found")
	ErrForbidden  = errors.New("not the author")
)

const (
	maxContentLen   = 5000
	defaultFeedSize = 20
	maxFeedSize     = 50
)

type Store interface {
	Create(ctx context.Context, post model.Post) (model.Post, error)
	FindByID(ctx context.Context, postID int64) (model.Post, error)
	ListPublic(ctx context.Context, limit, offset int) ([]model.Post, error)
	ToggleLike(ctx context.Context, postID, userID int64) (bool, error)
	IsLikedBy(ctx context.Context, postID, userID int64) (bool, error)
	SoftDelete(ctx context.Context, postID, authorID int64) (bool, error)
}

type CreateInput struct {
	Content    string
	Images     []string
	Visibility enums.PostVisibility
}

type LikeResult struct {
	Liked      bool
	LikesCount int
}

// View is a post as seen by a particular viewer.
type View struct {
	Post  model.Post
	Liked bool
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) Create(ctx context.Context, authorID int64, in CreateInput) (model.Post, error) {
	if authorID <= 0 {
		return model.Post{}, ErrValidation
	}
	if s.store == nil {
		return model.Post{}, fmt.Errorf("post store is not configured")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" || len([]rune(content)) > maxContentLen {
		return model.Post{}, ErrValidation
	}

	visibility := in.Visibility
	if visibility == "" {
		visibility = enums.PostVisibilityPublic
	}
	if !visibility.Valid() {
		return model.Post{}, ErrValidation
	}

	images := in.Images
	if images == nil {
		images = []string{}
	}

	now := s.now().UTC()
	created, err := s.store.Create(ctx, model.Post{
		AuthorID:   authorID,
		Content:    content,
		Images:     images,
		Visibility: visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}

	return created, nil
}

func (s *Service) Get(ctx context.Context, viewerID, postID int64) (View, error) {
	if viewerID <= 0 || postID <= 0 {
		return View{}, ErrValidation
	}
	if s.store == nil {
		return View{}, fmt.Errorf("post store is not configured")
	}

	post, err := s.store.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPostNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, err
	}

	liked, err := s.store.IsLikedBy(ctx, postID, viewerID)
	if err != nil {
		return View{}, fmt.Errorf("check post like: %w", err)
	}

	return View{Post: post, Liked: liked}, nil
}

// Feed returns one page of public posts, newest first.
func (s *Service) Feed(ctx context.Context, limit, offset int) ([]model.Post, error) {
	if s.store == nil {
		return nil, fmt.Errorf("post store is not configured")
	}

	if limit <= 0 {
		limit = defaultFeedSize
	}
	if limit > maxFeedSize {
		limit = maxFeedSize
	}
	if offset < 0 {
		offset = 0
	}

	page, err := s.store.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public posts: %w", err)
	}

	return page, nil
}

// ToggleLike flips the caller's like on the post and returns the new
// state with the updated count.
func (s *Service) ToggleLike(ctx context.Context, userID, postID int64) (LikeResult, error) {
	if userID <= 0 || postID <= 0 {
		return LikeResult{}, ErrValidation
	}
	if s.store == nil {
		return LikeResult{}, fmt.Errorf("post store is not configured")
	}

	if _, err := s.store.FindByID(ctx, postID); err != nil {
		if errors.Is(err, pgrepo.ErrPostNotFound) {
			return LikeResult{}, ErrNotFound
		}
		return LikeResult{}, err
	}

	liked, err := s.store.ToggleLike(ctx, postID, userID)
	if err != nil {
		return LikeResult{}, fmt.Errorf("toggle post like: %w", err)
	}

	post, err := s.store.FindByID(ctx, postID)
	if err != nil {
		return LikeResult{}, err
	}

	return LikeResult{Liked: liked, LikesCount: post.LikesCount}, nil
}

// Delete soft-deletes the caller's own post.
func (s *Service) Delete(ctx context.Context, userID, postID int64) error {
	if userID <= 0 || postID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("post store is not configured")
	}

	deleted, err := s.store.SoftDelete(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if deleted {
		return nil
	}

	if _, err := s.store.FindByID(ctx, postID); err != nil {
		if errors.Is(err, pgrepo.ErrPostNotFound) {
			return ErrNotFound
		}
		return err
	}

	return ErrForbidden
}
