package mysql

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/clinicase/clinicase/internal/domain/testcases"
)

type TestCaseRepository struct {
	db *sql.DB
}

func NewTestCaseRepository(db *sql.DB) *TestCaseRepository {
	return &TestCaseRepository{db: db}
}

const testCaseColumns = `id, project_id, title, description, preconditions, steps,
       expected_results, priority, type, status, compliance, traceability,
       created_at, updated_at, created_by, executed_at, executed_by`

// SaveBatch inserts all records inside one transaction; any failure
// rolls the whole batch back so no partial generation result ever
// becomes visible.
func (r *TestCaseRepository) SaveBatch(ctx context.Context, tcs []*domain.TestCase) error {
	if len(tcs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning batch: %w", err)
	}
	defer tx.Rollback()

	const q = `
INSERT INTO test_cases
(id, project_id, title, description, preconditions, steps,
 expected_results, priority, type, status, compliance, traceability,
 created_at, updated_at, created_by)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);
`
	for _, tc := range tcs {
		steps, err := jsonList(tc.Steps)
		if err != nil {
			return err
		}
		comp, err := jsonList(tc.Compliance)
		if err != nil {
			return err
		}
		var trace any
		if tc.Traceability != nil {
			trace, err = jsonOrNull(tc.Traceability)
			if err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, q,
			tc.ID, tc.ProjectID, tc.Title, tc.Description, tc.Preconditions, steps,
			tc.ExpectedResults, tc.Priority, tc.Type, tc.Status, comp, trace,
			tc.CreatedAt, tc.UpdatedAt, tc.CreatedBy,
		); err != nil {
			return fmt.Errorf("inserting test case %s: %w", tc.ID, err)
		}
	}

	return tx.Commit()
}

// Get by ID
func (r *TestCaseRepository) Get(ctx context.Context, id domain.TestCaseID) (*domain.TestCase, error) {
	q := `SELECT ` + testCaseColumns + ` FROM test_cases WHERE id=? LIMIT 1;`
	return scanTestCase(r.db.QueryRowContext(ctx, q, id))
}

// GetMany returns found records in the given id order; missing ids are skipped.
func (r *TestCaseRepository) GetMany(ctx context.Context, ids []domain.TestCaseID) ([]*domain.TestCase, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := `SELECT ` + testCaseColumns + ` FROM test_cases WHERE id IN (` + placeholders(len(ids)) + `);`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[domain.TestCaseID]*domain.TestCase, len(ids))
	for rows.Next() {
		tc, err := scanTestCase(rows)
		if err != nil {
			return nil, err
		}
		byID[tc.ID] = tc
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.TestCase, 0, len(byID))
	for _, id := range ids {
		if tc, ok := byID[id]; ok {
			out = append(out, tc)
		}
	}
	return out, nil
}

// ListByProject returns a project's test cases, oldest first.
func (r *TestCaseRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.TestCase, error) {
	q := `SELECT ` + testCaseColumns + ` FROM test_cases WHERE project_id=? ORDER BY created_at, id;`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TestCase
	for rows.Next() {
		tc, err := scanTestCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTestCase(row rowScanner) (*domain.TestCase, error) {
	var tc domain.TestCase
	var steps, comp, trace sql.NullString
	var executedAt sql.NullTime
	var executedBy sql.NullString

	if err := row.Scan(
		&tc.ID, &tc.ProjectID, &tc.Title, &tc.Description, &tc.Preconditions, &steps,
		&tc.ExpectedResults, &tc.Priority, &tc.Type, &tc.Status, &comp, &trace,
		&tc.CreatedAt, &tc.UpdatedAt, &tc.CreatedBy, &executedAt, &executedBy,
	); err != nil {
		return nil, err
	}

	if err := decodeJSON(steps, &tc.Steps); err != nil {
		return nil, err
	}
	if err := decodeJSON(comp, &tc.Compliance); err != nil {
		return nil, err
	}
	if trace.Valid {
		var t domain.Traceability
		if err := decodeJSON(trace, &t); err != nil {
			return nil, err
		}
		tc.Traceability = &t
	}
	if executedAt.Valid {
		t := executedAt.Time
		tc.ExecutedAt = &t
	}
	tc.ExecutedBy = executedBy.String
	tc.Normalize()
	return &tc, nil
}
