package postgres

import (
	"context"
	"database/sql"

	domain "github.com/clinicase/clinicase/internal/domain/users"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Get by ID
func (r *UserRepository) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	const q = `
SELECT id, email, display_name, role, organization, updated_at
FROM users WHERE id=$1 LIMIT 1;
`
	var u domain.User
	var email, name, role, org sql.NullString
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &email, &name, &role, &org, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Email = email.String
	u.DisplayName = name.String
	u.Role = role.String
	u.Organization = org.String
	return &u, nil
}

// Upsert insert/update User profile
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (id, email, display_name, role, organization, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
 email=EXCLUDED.email, display_name=EXCLUDED.display_name, role=EXCLUDED.role,
 organization=EXCLUDED.organization, updated_at=EXCLUDED.updated_at;
`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Email, u.DisplayName, u.Role, u.Organization, u.UpdatedAt,
	)
	return err
}
