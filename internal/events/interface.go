package events

import "context"

// Event types carried on the events topic.
const (
	TypeUserCreated         = "user.created"
	TypeUserUpdated         = "user.updated"
	TypeUserDeleted         = "user.deleted"
	TypeConnectionRequested = "connection.requested"
	TypeStoryCreated        = "story.created"
)

// Envelope is the wire format for every produced event. Payload holds the
// event-specific document.
type Envelope struct {
	Type      string      `json:"type"`
	Key       string      `json:"key"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ConnectionRequestedPayload is emitted when a user sends a connection
// request. The worker turns it into an email plus a delayed reminder.
type ConnectionRequestedPayload struct {
	ConnectionID uint   `json:"connection_id"`
	FromUserID   string `json:"from_user_id"`
	ToUserID     string `json:"to_user_id"`
}

// StoryCreatedPayload is emitted on story creation. The worker deletes the
// story 24 hours later.
type StoryCreatedPayload struct {
	StoryID   string `json:"story_id"`
	UserID    string `json:"user_id"`
	CreatedAt int64  `json:"created_at"`
}

// IdentityPayload carries identity-provider user lifecycle data for
// user.created / user.updated / user.deleted events.
type IdentityPayload struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture"`
}

// Producer publishes events. Key selects the partition so events for one
// entity stay ordered.
type Producer interface {
	Produce(ctx context.Context, eventType, key string, payload interface{}) error
	Close() error
}
