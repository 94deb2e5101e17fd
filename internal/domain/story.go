package domain

import (
	"time"
)

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

// MaxStoryMediaSize caps uploaded story media (images and videos).
const MaxStoryMediaSize = 50 << 20 // 50MB

// Story represents an ephemeral 24-hour content post.
type Story struct {
	ID              string    `json:"id"`
	User            *User     `json:"user,omitempty"`
	UserID          string    `json:"user_id"`
	Content         string    `json:"content"`
	MediaURL        string    `json:"media_url"`
	MediaType       string    `json:"media_type"`
	BackgroundColor string    `json:"background_color"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToDomain converts StoryModel to domain Story.
func (m *StoryModel) ToDomain() *Story {
	return &Story{
		ID:              m.ID,
		UserID:          m.UserID,
		Content:         m.Content,
		MediaURL:        m.MediaURL,
		MediaType:       m.MediaType,
		BackgroundColor: m.BackgroundColor,
		CreatedAt:       m.CreatedAt,
	}
}

// ExpiresAt returns the instant the story stops being listed.
func (s *Story) ExpiresAt() time.Time {
	return s.CreatedAt.Add(StoryTTL)
}

// CreateStoryRequest carries the multipart form fields of a new story.
// Image/video stories carry a single file under the "media" field.
type CreateStoryRequest struct {
	Content         string `form:"content"`
	MediaType       string `form:"media_type" binding:"required,oneof=text image video"`
	BackgroundColor string `form:"background_color"`
}
