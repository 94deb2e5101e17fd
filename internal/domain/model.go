package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/sushilghimire07/Social-Media-App/pkg/database"
)

// Connection statuses. The only observed transition is pending → accepted.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
)

// Post types, derived from content/media presence.
const (
	PostTypeText          = "text"
	PostTypeImage         = "image"
	PostTypeTextWithImage = "text_with_image"
)

// Story and message media types.
const (
	MediaTypeText  = "text"
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// UserModel is the GORM model for the users table. The primary key is the
// identifier issued by the external identity provider, not generated here.
type UserModel struct {
	ID             string         `gorm:"type:varchar(64);primaryKey"`
	Email          string         `gorm:"type:varchar(255);index;not null"`
	FullName       string         `gorm:"column:full_name;type:varchar(100)"`
	Username       string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	Bio            string         `gorm:"type:text"`
	Location       string         `gorm:"type:varchar(100)"`
	ProfilePicture string         `gorm:"column:profile_picture;type:text"`
	CoverPhoto     string         `gorm:"column:cover_photo;type:text"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (UserModel) TableName() string { return "users" }

// FollowModel is the GORM model for the follows table. The unique pair index
// makes a duplicate follow a constraint violation instead of a lost update.
type FollowModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	FollowerID  string    `gorm:"column:follower_id;type:varchar(64);not null;uniqueIndex:idx_follower_following"`
	FollowingID string    `gorm:"column:following_id;type:varchar(64);not null;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (FollowModel) TableName() string { return "follows" }

// ConnectionModel is the GORM model for the connections table.
type ConnectionModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	FromUserID string    `gorm:"column:from_user_id;type:varchar(64);not null;index"`
	ToUserID   string    `gorm:"column:to_user_id;type:varchar(64);not null;index"`
	Status     string    `gorm:"type:varchar(16);not null;default:pending"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (ConnectionModel) TableName() string { return "connections" }

// PostModel is the GORM model for the posts table.
type PostModel struct {
	ID            string               `gorm:"type:varchar(36);primaryKey"`
	UserID        string               `gorm:"column:user_id;type:varchar(64);not null;index"`
	Content       string               `gorm:"type:text"`
	ImageURLs     database.StringArray `gorm:"column:image_urls;type:text"`
	PostType      string               `gorm:"column:post_type;type:varchar(24);not null"`
	SharesCount   int                  `gorm:"column:shares_count;not null;default:0"`
	CommentsCount int                  `gorm:"column:comments_count;not null;default:0"`
	CreatedAt     time.Time            `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime"`
}

func (PostModel) TableName() string { return "posts" }

// PostLikeModel is the GORM model for the post_likes table. Like/unlike is a
// conditional insert/delete against the unique pair, so the toggle stays
// idempotent under concurrent requests.
type PostLikeModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	PostID    string    `gorm:"column:post_id;type:varchar(36);not null;uniqueIndex:idx_post_user"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:idx_post_user"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PostLikeModel) TableName() string { return "post_likes" }

// StoryModel is the GORM model for the stories table. Stories expire 24 hours
// after creation; the worker hard-deletes them and the listing query filters
// on created_at as a backstop.
type StoryModel struct {
	ID              string    `gorm:"type:varchar(36);primaryKey"`
	UserID          string    `gorm:"column:user_id;type:varchar(64);not null;index"`
	Content         string    `gorm:"type:text"`
	MediaURL        string    `gorm:"column:media_url;type:text"`
	MediaType       string    `gorm:"column:media_type;type:varchar(8);not null"`
	BackgroundColor string    `gorm:"column:background_color;type:varchar(16)"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
}

func (StoryModel) TableName() string { return "stories" }

// MessageModel is the GORM model for the messages table.
type MessageModel struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	FromUserID  string    `gorm:"column:from_user_id;type:varchar(64);not null;index:idx_msg_from"`
	ToUserID    string    `gorm:"column:to_user_id;type:varchar(64);not null;index:idx_msg_to"`
	Text        string    `gorm:"type:text"`
	MediaURL    string    `gorm:"column:media_url;type:text"`
	MessageType string    `gorm:"column:message_type;type:varchar(8);not null"`
	Seen        bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (MessageModel) TableName() string { return "messages" }
