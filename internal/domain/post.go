package domain

import (
	"time"
)

// Post represents a feed post.
type Post struct {
	ID            string    `json:"id"`
	User          *User     `json:"user,omitempty"`
	UserID        string    `json:"user_id"`
	Content       string    `json:"content"`
	ImageURLs     []string  `json:"image_urls"`
	PostType      string    `json:"post_type"`
	Likes         []string  `json:"likes"`
	LikesCount    int       `json:"likes_count"`
	SharesCount   int       `json:"shares_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToDomain converts PostModel to domain Post. Likes are loaded separately.
func (m *PostModel) ToDomain() *Post {
	return &Post{
		ID:            m.ID,
		UserID:        m.UserID,
		Content:       m.Content,
		ImageURLs:     []string(m.ImageURLs),
		PostType:      m.PostType,
		SharesCount:   m.SharesCount,
		CommentsCount: m.CommentsCount,
		CreatedAt:     m.CreatedAt,
	}
}

// CreatePostRequest carries the multipart form fields of a new post.
// Up to four image files arrive alongside under the "images" field.
type CreatePostRequest struct {
	Content  string `form:"content"`
	PostType string `form:"post_type"`
}

// LikePostRequest toggles the requester's like on a post.
type LikePostRequest struct {
	PostID string `json:"post_id" binding:"required"`
}

// DerivePostType returns the post type tag for the given content and
// image count.
func DerivePostType(content string, imageCount int) string {
	switch {
	case content != "" && imageCount > 0:
		return PostTypeTextWithImage
	case imageCount > 0:
		return PostTypeImage
	default:
		return PostTypeText
	}
}
