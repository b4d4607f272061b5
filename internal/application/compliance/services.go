package compliance

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clinicase/clinicase/internal/application"
	domai "github.com/clinicase/clinicase/internal/domain/ai"
	domain "github.com/clinicase/clinicase/internal/domain/compliance"
	"github.com/clinicase/clinicase/internal/domain/testcases"
	"github.com/clinicase/clinicase/internal/infra/ai/prompt"
)

const (
	analysisTopK       = 5
	defaultContextTopK = 5
	fetchConcurrency   = 4
)

// Service implements compliance analysis and retrieval-context queries.
type Service struct {
	TestCases testcases.Repository
	Analyses  domain.Repository
	Retriever domain.Retriever
	Generator domai.Generator
	Clock     application.Clock
	Logger    *zap.Logger
}

// Analyze assesses the given test cases against the named standards and
// persists the result as a new immutable analysis record.
func (s *Service) Analyze(ctx context.Context, testCaseIDs, standards []string) (*domain.Analysis, error) {
	if len(testCaseIDs) == 0 || len(standards) == 0 {
		return nil, fmt.Errorf("%w: testCaseIds and standards are required", application.ErrInvalidInput)
	}

	ids := make([]testcases.TestCaseID, len(testCaseIDs))
	for i, id := range testCaseIDs {
		ids[i] = testcases.TestCaseID(id)
	}
	tcs, err := s.TestCases.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching test cases: %w", err)
	}
	if len(tcs) == 0 {
		return nil, fmt.Errorf("%w: no test cases for given ids", application.ErrNotFound)
	}

	requirements := s.complianceRequirements(ctx, standards)

	p := prompt.BuildCompliancePrompt(tcs, standards, requirements)
	raw, err := s.Generator.Generate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("generation service: %w", err)
	}

	assessment, err := prompt.ParseAssessment(raw)
	if err != nil {
		// Keep the record; an empty assessment documents the failed run.
		s.Logger.Warn("discarding unparseable assessment", zap.Error(err))
		assessment = &domain.Assessment{}
	}
	if assessment.StandardsBreakdown == nil {
		assessment.StandardsBreakdown = []domain.StandardResult{}
	}
	if assessment.Recommendations == nil {
		assessment.Recommendations = []string{}
	}

	a := &domain.Analysis{
		ID:          domain.AnalysisID("analysis_" + uuid.New().String()),
		TestCaseIDs: testCaseIDs,
		Standards:   standards,
		Assessment:  *assessment,
		AnalyzedAt:  s.Clock.Now(),
	}
	if err := s.Analyses.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("persisting analysis: %w", err)
	}
	return a, nil
}

func (s *Service) complianceRequirements(ctx context.Context, standards []string) []string {
	results := make([][]domain.Snippet, len(standards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, std := range standards {
		g.Go(func() error {
			snippets, err := s.Retriever.Search(gctx, fmt.Sprintf("Compliance requirements for %s", std), analysisTopK)
			if err != nil {
				s.Logger.Warn("skipping retrieval context", zap.String("standard", std), zap.Error(err))
				return nil
			}
			results[i] = snippets
			return nil
		})
	}
	_ = g.Wait()

	var out []string
	for _, snippets := range results {
		for _, sn := range snippets {
			out = append(out, sn.Content)
		}
	}
	return out
}

// ContextItem is one hit of a retrieval-context query.
type ContextItem struct {
	Content   string  `json:"content"`
	Standard  string  `json:"standard"`
	Relevance float64 `json:"relevance"`
	Source    string  `json:"source"`
}

type ContextResult struct {
	Results []ContextItem `json:"results"`
	Summary string        `json:"summary"`
}

// Context runs a direct retrieval query, optionally filtered to the
// given standards.
func (s *Service) Context(ctx context.Context, query string, standards []string, maxResults int) (*ContextResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", application.ErrInvalidInput)
	}
	if maxResults <= 0 {
		maxResults = defaultContextTopK
	}

	snippets, err := s.Retriever.Search(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("retrieval service: %w", err)
	}

	items := make([]ContextItem, 0, len(snippets))
	var matched []string
	for _, sn := range snippets {
		if len(standards) > 0 && !matchesAny(sn.Standard, standards) {
			continue
		}
		items = append(items, ContextItem{
			Content:   sn.Content,
			Standard:  sn.Standard,
			Relevance: 1 - sn.Distance,
			Source:    sn.Source,
		})
		if !containsString(matched, sn.Standard) {
			matched = append(matched, sn.Standard)
		}
	}

	summary := "No relevant compliance requirements found."
	if len(items) > 0 {
		summary = fmt.Sprintf("Found %d relevant compliance requirements from %s.",
			len(items), strings.Join(matched, ", "))
	}
	return &ContextResult{Results: items, Summary: summary}, nil
}

func matchesAny(standard string, filters []string) bool {
	for _, f := range filters {
		if strings.Contains(standard, f) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
