package postgres

import (
	"context"
	"database/sql"

	domain "github.com/clinicase/clinicase/internal/domain/documents"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, file_name, storage_key, uploaded_by, uploaded_at, processed_at,
       extracted_text, entities, tables, status, mime_type, confidence`

// Save insert/update Document record
func (r *DocumentRepository) Save(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO documents
(id, file_name, storage_key, uploaded_by, uploaded_at, processed_at,
 extracted_text, entities, tables, status, mime_type, confidence)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
 processed_at=EXCLUDED.processed_at, extracted_text=EXCLUDED.extracted_text,
 entities=EXCLUDED.entities, tables=EXCLUDED.tables, status=EXCLUDED.status,
 confidence=EXCLUDED.confidence;
`
	entities, err := jsonOrNull(d.Entities)
	if err != nil {
		return err
	}
	tables, err := jsonOrNull(d.Tables)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		d.ID, d.FileName, d.StorageKey, d.UploadedBy, d.UploadedAt, d.ProcessedAt,
		d.ExtractedText, entities, tables, d.Status, d.MimeType, d.Confidence,
	)
	return err
}

// Get by ID
func (r *DocumentRepository) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id=$1 LIMIT 1;`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// GetMany returns found documents in the given id order; missing ids are skipped.
func (r *DocumentRepository) GetMany(ctx context.Context, ids []domain.DocumentID) ([]*domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id IN (` + placeholders(1, len(ids)) + `);`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[domain.DocumentID]*domain.Document, len(ids))
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		byID[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.Document, 0, len(byID))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	var processedAt sql.NullTime
	var extracted, entities, tables, mimeType sql.NullString
	var confidence sql.NullFloat64

	if err := row.Scan(
		&d.ID, &d.FileName, &d.StorageKey, &d.UploadedBy, &d.UploadedAt, &processedAt,
		&extracted, &entities, &tables, &d.Status, &mimeType, &confidence,
	); err != nil {
		return nil, err
	}

	if processedAt.Valid {
		t := processedAt.Time
		d.ProcessedAt = &t
	}
	d.ExtractedText = extracted.String
	d.MimeType = mimeType.String
	d.Confidence = confidence.Float64
	if err := decodeJSON(entities, &d.Entities); err != nil {
		return nil, err
	}
	if err := decodeJSON(tables, &d.Tables); err != nil {
		return nil, err
	}
	return &d, nil
}
