package compliance

import "context"

// Repository port for persisting analyses
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, id AnalysisID) (*Analysis, error)
}

// Retriever port (external vector-similarity search service)
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]Snippet, error)
}
