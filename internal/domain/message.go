package domain

import (
	"time"
)

// Message represents a direct message between two users.
type Message struct {
	ID          string    `json:"id"`
	FromUser    *User     `json:"from_user,omitempty"`
	ToUser      *User     `json:"to_user,omitempty"`
	FromUserID  string    `json:"from_user_id"`
	ToUserID    string    `json:"to_user_id"`
	Text        string    `json:"text"`
	MediaURL    string    `json:"media_url"`
	MessageType string    `json:"message_type"`
	Seen        bool      `json:"seen"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:          m.ID,
		FromUserID:  m.FromUserID,
		ToUserID:    m.ToUserID,
		Text:        m.Text,
		MediaURL:    m.MediaURL,
		MessageType: m.MessageType,
		Seen:        m.Seen,
		CreatedAt:   m.CreatedAt,
	}
}

// SendMessageRequest carries the multipart form fields of an outgoing
// message. An optional image arrives under the "image" field.
type SendMessageRequest struct {
	ToUserID string `form:"to_user_id" binding:"required"`
	Text     string `form:"text"`
}

// ChatRequest asks for the full conversation with one partner.
type ChatRequest struct {
	ToUserID string `json:"to_user_id" binding:"required"`
}

// RecentChat is the most recent message exchanged with one distinct partner,
// plus how many of their messages the requester has not seen yet.
type RecentChat struct {
	Partner     *User    `json:"partner"`
	LastMessage *Message `json:"last_message"`
	UnseenCount int      `json:"unseen_count"`
}
