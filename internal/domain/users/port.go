package users

import "context"

// Repository port for user profiles
type Repository interface {
	Get(ctx context.Context, id UserID) (*User, error)
	Upsert(ctx context.Context, u *User) error
}
