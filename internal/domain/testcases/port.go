package testcases

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	// SaveBatch persists all records in one transaction; on failure
	// nothing becomes visible.
	SaveBatch(ctx context.Context, tcs []*TestCase) error
	Get(ctx context.Context, id TestCaseID) (*TestCase, error)
	// GetMany returns the found records in the order the ids were given;
	// missing ids are skipped.
	GetMany(ctx context.Context, ids []TestCaseID) ([]*TestCase, error)
	ListByProject(ctx context.Context, projectID string) ([]*TestCase, error)
}
