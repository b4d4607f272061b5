package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/clinicase/clinicase/internal/application"
	domain "github.com/clinicase/clinicase/internal/domain/users"
)

// Service reads and updates profile records.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

// Get returns one profile.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: userId is required", application.ErrInvalidInput)
	}
	u, err := s.Repo.Get(ctx, domain.UserID(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", application.ErrNotFound, id)
	}
	return u, err
}

// Update writes the profile, creating it on first save.
func (s *Service) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u == nil || strings.TrimSpace(string(u.ID)) == "" {
		return nil, fmt.Errorf("%w: userId is required", application.ErrInvalidInput)
	}
	u.UpdatedAt = s.Clock.Now()
	if err := s.Repo.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("persisting user: %w", err)
	}
	return u, nil
}
