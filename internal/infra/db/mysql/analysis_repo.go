package mysql

import (
	"context"
	"database/sql"

	domain "github.com/clinicase/clinicase/internal/domain/compliance"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts an analysis record. Analyses are immutable, so there is
// no upsert path: a duplicate id is an error.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO compliance_analyses
(id, test_case_ids, standards, overall_score, standards_breakdown,
 recommendations, analyzed_at)
VALUES (?,?,?,?,?,?,?);
`
	ids, err := jsonList(a.TestCaseIDs)
	if err != nil {
		return err
	}
	stds, err := jsonList(a.Standards)
	if err != nil {
		return err
	}
	breakdown, err := jsonOrNull(a.StandardsBreakdown)
	if err != nil {
		return err
	}
	recs, err := jsonList(a.Recommendations)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		a.ID, ids, stds, a.OverallScore, breakdown, recs, a.AnalyzedAt,
	)
	return err
}

// Get by ID
func (r *AnalysisRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	const q = `
SELECT id, test_case_ids, standards, overall_score, standards_breakdown,
       recommendations, analyzed_at
FROM compliance_analyses
WHERE id=? LIMIT 1;
`
	var a domain.Analysis
	var ids, stds, breakdown, recs sql.NullString
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &ids, &stds, &a.OverallScore, &breakdown, &recs, &a.AnalyzedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeJSON(ids, &a.TestCaseIDs); err != nil {
		return nil, err
	}
	if err := decodeJSON(stds, &a.Standards); err != nil {
		return nil, err
	}
	if err := decodeJSON(breakdown, &a.StandardsBreakdown); err != nil {
		return nil, err
	}
	if err := decodeJSON(recs, &a.Recommendations); err != nil {
		return nil, err
	}
	return &a, nil
}
