package domain

import (
	"time"
)

// DefaultBio is assigned to users synced from the identity provider until
// they edit their profile.
const DefaultBio = "Hey there! I am using this app."

// User represents a user entity.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Username       string    `json:"username"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	ProfilePicture string    `json:"profile_picture"`
	CoverPhoto     string    `json:"cover_photo"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:             m.ID,
		Email:          m.Email,
		FullName:       m.FullName,
		Username:       m.Username,
		Bio:            m.Bio,
		Location:       m.Location,
		ProfilePicture: m.ProfilePicture,
		CoverPhoto:     m.CoverPhoto,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Username:       u.Username,
		Bio:            u.Bio,
		Location:       u.Location,
		ProfilePicture: u.ProfilePicture,
		CoverPhoto:     u.CoverPhoto,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// UpdateProfileRequest carries the multipart form fields of a profile edit.
// Profile and cover images arrive as files alongside these fields.
type UpdateProfileRequest struct {
	Username string `form:"username"`
	Bio      string `form:"bio"`
	Location string `form:"location"`
	FullName string `form:"full_name"`
}

// DiscoverRequest is a free-text people search.
type DiscoverRequest struct {
	Input string `json:"input" binding:"required"`
}

// TargetUserRequest identifies the other user of a relationship operation.
type TargetUserRequest struct {
	ID string `json:"id" binding:"required"`
}

// ProfileRequest asks for another user's public profile.
type ProfileRequest struct {
	ProfileID string `json:"profile_id" binding:"required"`
}

// ProfileResponse is a public profile together with the user's posts.
type ProfileResponse struct {
	Profile *User   `json:"profile"`
	Posts   []*Post `json:"posts"`
}

// ConnectionsResponse aggregates every relationship set of the requester.
type ConnectionsResponse struct {
	Connections []*User `json:"connections"`
	Followers   []*User `json:"followers"`
	Following   []*User `json:"following"`
	Pending     []*User `json:"pending_connections"`
}

// IdentityEvent is the payload of identity-provider lifecycle events
// (user.created, user.updated, user.deleted) consumed by the worker.
type IdentityEvent struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture"`
}
