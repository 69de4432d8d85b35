package dto

import "time"

type CreatePostRequest struct {
	Content    string   `json:"content"`
	Images     []string `json:"images"`
	Visibility string   `json:"visibility"`
}

type PostResponse struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"author_id"`
	Content    string    `json:"content"`
	Images     []string  `json:"images"`
	LikesCount int       `json:"likes_count"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
}

type PostDetailResponse struct {
	PostResponse
	LikedByMe bool `json:"liked_by_me"`
}

type PostFeedResponse struct {
	Posts []PostResponse `json:"posts"`
}

type PostLikeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}
