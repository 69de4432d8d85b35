package model

import (
	"time"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
)

type Post struct {
	ID         int64                `json:"id"`
	AuthorID   int64                `json:"author_id"`
	Content    string               `json:"content"`
	Images     []string             `json:"images"`
	LikesCount int                  `json:"likes_count"`
	Visibility enums.PostVisibility `json:"visibility"`
	IsDeleted  bool                 `json:"is_deleted"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}
