package mysql

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
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 title=VALUES(title), description=VALUES(description), type=VALUES(type),
 priority=VALUES(priority), status=VALUES(status),
 compliance_standards=VALUES(compliance_standards), updated_at=VALUES(updated_at);
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
WHERE project_id=? ORDER BY created_at, id;
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
