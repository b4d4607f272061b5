package testcases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clinicase/clinicase/internal/application"
	domai "github.com/clinicase/clinicase/internal/domain/ai"
	"github.com/clinicase/clinicase/internal/domain/compliance"
	"github.com/clinicase/clinicase/internal/domain/documents"
	"github.com/clinicase/clinicase/internal/domain/events"
	domain "github.com/clinicase/clinicase/internal/domain/testcases"
	"github.com/clinicase/clinicase/internal/infra/ai/prompt"
)

// retrievalTopK bounds the number of context snippets fetched per standard.
const retrievalTopK = 3

// fetchConcurrency bounds the fan-out for document and retrieval fetches.
const fetchConcurrency = 4

// Service implements use-cases untuk TestCase generation and queries.
// Service is designed to be used concurrently and is thread-safe.
type Service struct {
	Repo      domain.Repository
	Documents documents.Repository
	Retriever compliance.Retriever
	Generator domai.Generator
	Publisher events.Publisher
	Clock     application.Clock
	Logger    *zap.Logger
}

//
// ==== USE CASES ====
//

// Command untuk generate test cases
type GenerateCommand struct {
	Requirements        string
	ComplianceStandards []string
	DocumentIDs         []string
	ProjectID           string
	UserID              string
}

type GenerateResult struct {
	TestCases       []*domain.TestCase `json:"testCases"`
	Count           int                `json:"count"`
	ComplianceScore int                `json:"complianceScore"`
}

// Generate gathers context, calls the generation service, and persists
// the finalized records as one batch. Unparseable model output yields an
// empty result, not an error; a failed batch write fails the request
// with nothing persisted.
func (s *Service) Generate(ctx context.Context, cmd GenerateCommand) (*GenerateResult, error) {
	if strings.TrimSpace(cmd.Requirements) == "" || len(cmd.ComplianceStandards) == 0 {
		return nil, fmt.Errorf("%w: requirements and complianceStandards are required", application.ErrInvalidInput)
	}

	docContext := s.documentContext(ctx, cmd.DocumentIDs)
	compContext := s.complianceContext(ctx, cmd.ComplianceStandards)

	p := prompt.BuildTestCasePrompt(docContext, cmd.Requirements, cmd.ComplianceStandards, compContext)
	raw, err := s.Generator.Generate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("generation service: %w", err)
	}

	drafts, err := prompt.ParseTestCases(raw)
	if err != nil {
		// Zero generated cases is a valid outcome; the caller sees count=0.
		s.Logger.Warn("discarding unparseable model output", zap.Error(err))
		drafts = nil
	}

	now := s.Clock.Now()
	tcs := make([]*domain.TestCase, 0, len(drafts))
	for _, d := range drafts {
		tc := &domain.TestCase{
			ID:              domain.TestCaseID("tc_" + uuid.New().String()),
			ProjectID:       cmd.ProjectID,
			Title:           d.Title,
			Description:     d.Description,
			Preconditions:   d.Preconditions,
			Steps:           d.Steps,
			ExpectedResults: d.ExpectedResults,
			Priority:        domain.Priority(strings.ToLower(d.Priority)),
			Type:            domain.Type(strings.ToLower(d.Type)),
			Status:          domain.StatusDraft,
			Compliance:      d.Compliance,
			Traceability:    d.Traceability,
			CreatedAt:       now,
			UpdatedAt:       now,
			CreatedBy:       cmd.UserID,
		}
		tc.Normalize()
		tcs = append(tcs, tc)
	}

	if len(tcs) > 0 {
		if err := s.Repo.SaveBatch(ctx, tcs); err != nil {
			return nil, fmt.Errorf("persisting test cases: %w", err)
		}

		ids := make([]string, len(tcs))
		for i, tc := range tcs {
			ids[i] = string(tc.ID)
		}
		// Records are already committed; a lost notification is logged,
		// not surfaced to the caller.
		if err := s.Publisher.Publish(ctx, events.TopicTestCasesGenerated, map[string]any{
			"projectId":   cmd.ProjectID,
			"testCaseIds": ids,
			"userId":      cmd.UserID,
			"timestamp":   now.Format(time.RFC3339),
		}); err != nil {
			s.Logger.Warn("publishing generation event", zap.Error(err))
		}
	}

	return &GenerateResult{
		TestCases:       tcs,
		Count:           len(tcs),
		ComplianceScore: domain.Score(tcs, cmd.ComplianceStandards),
	}, nil
}

// documentContext fetches extracted text for each document id and joins
// it in input order. A missing or failed document is skipped; partial
// context is still usable.
func (s *Service) documentContext(ctx context.Context, ids []string) string {
	if len(ids) == 0 {
		return ""
	}

	texts := make([]string, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			doc, err := s.Documents.Get(gctx, documents.DocumentID(id))
			if err != nil {
				s.Logger.Warn("skipping document", zap.String("documentId", id), zap.Error(err))
				return nil
			}
			texts[i] = doc.ExtractedText
			return nil
		})
	}
	_ = g.Wait()

	var parts []string
	for _, t := range texts {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// complianceContext retrieves context snippets per standard and joins
// them in input order. A failed retrieval for one standard is tolerated.
func (s *Service) complianceContext(ctx context.Context, standards []string) string {
	results := make([][]compliance.Snippet, len(standards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, std := range standards {
		g.Go(func() error {
			query := fmt.Sprintf("Compliance requirements and test guidelines for %s", std)
			snippets, err := s.Retriever.Search(gctx, query, retrievalTopK)
			if err != nil {
				s.Logger.Warn("skipping retrieval context", zap.String("standard", std), zap.Error(err))
				return nil
			}
			results[i] = snippets
			return nil
		})
	}
	_ = g.Wait()

	var parts []string
	for _, snippets := range results {
		for _, sn := range snippets {
			parts = append(parts, fmt.Sprintf("%s: %s", sn.Standard, sn.Content))
		}
	}
	if len(parts) == 0 {
		return "No specific compliance context available."
	}
	return strings.Join(parts, "\n\n")
}

// TraceabilityMatrix recomputes the coverage matrix from the project's
// current test cases.
func (s *Service) TraceabilityMatrix(ctx context.Context, projectID string) (*domain.TraceabilityMatrix, error) {
	tcs, err := s.Repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return domain.BuildTraceabilityMatrix(tcs), nil
}
