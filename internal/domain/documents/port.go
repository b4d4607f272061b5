package documents

import "context"

// Repository port for persisting documents
type Repository interface {
	Save(ctx context.Context, d *Document) error
	Get(ctx context.Context, id DocumentID) (*Document, error)
	GetMany(ctx context.Context, ids []DocumentID) ([]*Document, error)
}

// Extractor port (external document text/entity extraction service)
type Extractor interface {
	Extract(ctx context.Context, content []byte, mimeType string) (*Extraction, error)
}
