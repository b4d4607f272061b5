package postgres

import (
	"context"
	"database/sql"

	domain "github.com/clinicase/clinicase/internal/domain/requirements"
)

type RequirementRepository struct {
	db *sql.DB
}

func NewRequirementRepository(db *sql.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// Save insert/update Requirement record
func (r *RequirementRepository) Save(ctx context.Context, req *domain.Requirement) error {
	const q = `
INSERT INTO requirements
(id, project_id, title, description, type, priority, status,
 compliance_standards, created_at, updated_at, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
 title=EXCLUDED.title, description=EXCLUDED.description, type=EXCLUDED.type,
 priority=EXCLUDED.priority, status=EXCLUDED.status,
 compliance_standards=EXCLUDED.compliance_standards, updated_at=EXCLUDED.updated_at;
`
	stds, err := jsonList(req.ComplianceStandards)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		req.ID, req.ProjectID, req.Title, req.Description, req.Type, req.Priority, req.Status,
		stds, req.CreatedAt, req.UpdatedAt, req.CreatedBy,
	)
	return err
}

// ListByProject returns a project's requirements, oldest first.
func (r *RequirementRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Requirement, error) {
	const q = `
SELECT id, project_id, title, description, type, priority, status,
       compliance_standards, created_at, updated_at, created_by
FROM requirements
WHERE project_id=$1 ORDER BY created_at, id;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Requirement
	for rows.Next() {
		var req domain.Requirement
		var stds sql.NullString
		if err := rows.Scan(
			&req.ID, &req.ProjectID, &req.Title, &req.Description, &req.Type, &req.Priority, &req.Status,
			&stds, &req.CreatedAt, &req.UpdatedAt, &req.CreatedBy,
		); err != nil {
			return nil, err
		}
		if err := decodeJSON(stds, &req.ComplianceStandards); err != nil {
			return nil, err
		}
		out = append(out, &req)
	}
	return out, rows.Err()
}
