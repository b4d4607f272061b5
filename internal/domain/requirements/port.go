package requirements

import "context"

// Repository port for persisting requirements
type Repository interface {
	Save(ctx context.Context, r *Requirement) error
	ListByProject(ctx context.Context, projectID string) ([]*Requirement, error)
}
