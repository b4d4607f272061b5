package users

import "time"

// UserID identifier type
type UserID string

// User is a profile record; authentication itself lives outside this service.
type User struct {
	ID           UserID    `json:"userId"`
	Email        string    `json:"email,omitempty"`
	DisplayName  string    `json:"displayName,omitempty"`
	Role         string    `json:"role,omitempty"`
	Organization string    `json:"organization,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
