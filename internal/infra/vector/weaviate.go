package vector

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"go.uber.org/zap"

	"github.com/clinicase/clinicase/internal/domain/compliance"
)

const defaultClass = "ComplianceKnowledge"

// Store implements the Retriever port against a Weaviate instance
// holding chunked compliance-standard text.
type Store struct {
	client *weaviate.Client
	class  string
	logger *zap.Logger
}

func New(host, scheme, apiKey, class string, logger *zap.Logger) (*Store, error) {
	cfg := weaviate.Config{Host: host, Scheme: scheme}
	if apiKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}
	cli, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}
	if class == "" {
		class = defaultClass
	}
	return &Store{client: cli, class: class, logger: logger}, nil
}

// Search runs a nearText query and maps the hits to snippets. Result
// order follows Weaviate's distance ranking.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]compliance.Snippet, error) {
	if topK <= 0 {
		topK = 5
	}

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "standard"},
		{Name: "source"},
		{Name: "chapter"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithNearText(
			s.client.GraphQL().NearTextArgBuilder().WithConcepts([]string{query}),
		).
		WithFields(fields...).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search: %w", err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search: %s", res.Errors[0].Message)
	}

	var snippets []compliance.Snippet
	data, ok := res.Data["Get"].(map[string]any)
	if !ok {
		return snippets, nil
	}
	hits, ok := data[s.class].([]any)
	if !ok {
		return snippets, nil
	}

	for _, hit := range hits {
		m, ok := hit.(map[string]any)
		if !ok {
			continue
		}
		sn := compliance.Snippet{
			Content:  str(m["content"]),
			Standard: str(m["standard"]),
			Source:   str(m["source"]),
			Chapter:  str(m["chapter"]),
		}
		if add, ok := m["_additional"].(map[string]any); ok {
			if d, ok := add["distance"].(float64); ok {
				sn.Distance = d
			}
		}
		snippets = append(snippets, sn)
	}

	s.logger.Debug("vector search",
		zap.String("query", query), zap.Int("topK", topK), zap.Int("hits", len(snippets)))
	return snippets, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
