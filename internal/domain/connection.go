package domain

import (
	"time"
)

// ConnectionRequestLimit caps connection requests per sender in a rolling
// 24-hour window.
const (
	ConnectionRequestLimit  = 20
	ConnectionRequestWindow = 24 * time.Hour
)

// Connection represents a directed connection request between two users.
type Connection struct {
	ID         uint      `json:"id"`
	FromUser   *User     `json:"from_user,omitempty"`
	ToUser     *User     `json:"to_user,omitempty"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToDomain converts ConnectionModel to domain Connection.
func (m *ConnectionModel) ToDomain() *Connection {
	return &Connection{
		ID:         m.ID,
		FromUserID: m.FromUserID,
		ToUserID:   m.ToUserID,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
	}
}

// Accepted reports whether the edge has been confirmed by the recipient.
func (c *Connection) Accepted() bool {
	return c.Status == ConnectionAccepted
}
