package testcases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicase/clinicase/internal/application"
	"github.com/clinicase/clinicase/internal/domain/compliance"
	"github.com/clinicase/clinicase/internal/domain/documents"
	domain "github.com/clinicase/clinicase/internal/domain/testcases"
)

type fakeRepo struct {
	saved     []*domain.TestCase
	saveErr   error
	byProject map[string][]*domain.TestCase
}

func (f *fakeRepo) SaveBatch(ctx context.Context, tcs []*domain.TestCase) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, tcs...)
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id domain.TestCaseID) (*domain.TestCase, error) {
	for _, tc := range f.saved {
		if tc.ID == id {
			return tc, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRepo) GetMany(ctx context.Context, ids []domain.TestCaseID) ([]*domain.TestCase, error) {
	var out []*domain.TestCase
	for _, id := range ids {
		if tc, err := f.Get(ctx, id); err == nil {
			out = append(out, tc)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.TestCase, error) {
	return f.byProject[projectID], nil
}

type fakeDocs struct {
	docs map[documents.DocumentID]*documents.Document
}

func (f *fakeDocs) Save(ctx context.Context, d *documents.Document) error { return nil }

func (f *fakeDocs) Get(ctx context.Context, id documents.DocumentID) (*documents.Document, error) {
	if d, ok := f.docs[id]; ok {
		return d, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeDocs) GetMany(ctx context.Context, ids []documents.DocumentID) ([]*documents.Document, error) {
	var out []*documents.Document
	for _, id := range ids {
		if d, ok := f.docs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeRetriever struct {
	snippets []compliance.Snippet
	err      error
	calls    int
}

func (f *fakeRetriever) Search(ctx context.Context, query string, topK int) ([]compliance.Snippet, error) {
	f.calls++
	return f.snippets, f.err
}

type fakeGenerator struct {
	output string
	err    error
	prompt string
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.output, f.err
}

type fakePublisher struct {
	topics   []string
	payloads []any
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newService(repo *fakeRepo, gen *fakeGenerator, pub *fakePublisher) *Service {
	return &Service{
		Repo:      repo,
		Documents: &fakeDocs{},
		Retriever: &fakeRetriever{},
		Generator: gen,
		Publisher: pub,
		Clock:     fixedClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		Logger:    zap.NewNop(),
	}
}

const generatedTwo = `[
  {"title":"Verify dosage alert","priority":"Critical","type":"Functional","compliance":["ISO 13485"],
   "traceability":{"requirementId":"REQ-001"}},
  {"title":"Verify audit log","steps":["change record"]}
]`

func TestGenerateRejectsMissingInput(t *testing.T) {
	repo := &fakeRepo{}
	gen := &fakeGenerator{}
	svc := newService(repo, gen, &fakePublisher{})

	_, err := svc.Generate(context.Background(), GenerateCommand{Requirements: "  ", ComplianceStandards: []string{"ISO 13485"}})
	assert.ErrorIs(t, err, application.ErrInvalidInput)

	_, err = svc.Generate(context.Background(), GenerateCommand{Requirements: "login works"})
	assert.ErrorIs(t, err, application.ErrInvalidInput)

	// Rejected before any external call
	assert.Equal(t, 0, gen.calls)
	assert.Empty(t, repo.saved)
}

func TestGeneratePersistsAndPublishes(t *testing.T) {
	repo := &fakeRepo{}
	gen := &fakeGenerator{output: generatedTwo}
	pub := &fakePublisher{}
	svc := newService(repo, gen, pub)

	res, err := svc.Generate(context.Background(), GenerateCommand{
		Requirements:        "The system shall alert on overdose",
		ComplianceStandards: []string{"ISO 13485"},
		ProjectID:           "proj-1",
		UserID:              "user-9",
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	require.Len(t, repo.saved, 2)

	first := res.TestCases[0]
	assert.True(t, len(first.ID) > 3 && first.ID[:3] == "tc_")
	assert.NotEqual(t, res.TestCases[0].ID, res.TestCases[1].ID)
	assert.Equal(t, "proj-1", first.ProjectID)
	assert.Equal(t, "user-9", first.CreatedBy)
	assert.Equal(t, domain.StatusDraft, first.Status)
	assert.Equal(t, domain.PriorityCritical, first.Priority)

	// Defaults applied to sparse drafts
	second := res.TestCases[1]
	assert.Equal(t, domain.PriorityMedium, second.Priority)
	assert.Equal(t, domain.TypeFunctional, second.Type)
	assert.NotNil(t, second.Compliance)

	// 1 of 2 cases covers the single standard
	assert.Equal(t, 50, res.ComplianceScore)

	require.Equal(t, []string{"test-case-generated"}, pub.topics)
	payload := pub.payloads[0].(map[string]any)
	assert.Equal(t, "proj-1", payload["projectId"])
	assert.Len(t, payload["testCaseIds"], 2)
}

func TestGenerateUnparseableOutputYieldsEmptyResult(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	svc := newService(repo, &fakeGenerator{output: "sorry, I can't"}, pub)

	res, err := svc.Generate(context.Background(), GenerateCommand{
		Requirements:        "reqs",
		ComplianceStandards: []string{"HIPAA"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.Empty(t, repo.saved)
	assert.Empty(t, pub.topics)
}

func TestGenerateGeneratorFailureSurfaces(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeGenerator{err: errors.New("upstream 500")}, &fakePublisher{})

	_, err := svc.Generate(context.Background(), GenerateCommand{
		Requirements:        "reqs",
		ComplianceStandards: []string{"HIPAA"},
	})
	require.Error(t, err)
	assert.Empty(t, repo.saved)
}

func TestGenerateSaveFailureMeansNothingPublished(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("deadlock")}
	pub := &fakePublisher{}
	svc := newService(repo, &fakeGenerator{output: generatedTwo}, pub)

	_, err := svc.Generate(context.Background(), GenerateCommand{
		Requirements:        "reqs",
		ComplianceStandards: []string{"ISO 13485"},
	})
	require.Error(t, err)
	assert.Empty(t, pub.topics)
}

func TestGeneratePublishFailureTolerated(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeGenerator{output: generatedTwo}, &fakePublisher{err: errors.New("redis down")})

	res, err := svc.Generate(context.Background(), GenerateCommand{
		Requirements:        "reqs",
		ComplianceStandards: []string{"ISO 13485"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Len(t, repo.saved, 2)
}

func TestGenerateJoinsDocumentContextInOrder(t *testing.T) {
	repo := &fakeRepo{}
	gen := &fakeGenerator{output: "[]"}
	svc := newService(repo, gen, &fakePublisher{})
	svc.Documents = &fakeDocs{docs: map[documents.DocumentID]*documents.Document{
		"doc_a": {ID: "doc_a", ExtractedText: "first part"},
		"doc_c": {ID: "doc_c", ExtractedText: "third part"},
	}}

	_, err := svc.Generate(context.Background(), GenerateCommand{
		Requirements:        "reqs",
		ComplianceStandards: []string{"ISO 13485"},
		DocumentIDs:         []string{"doc_a", "doc_b", "doc_c"},
	})
	require.NoError(t, err)

	// doc_b is missing and skipped; order of the rest is preserved
	assert.Contains(t, gen.prompt, "first part\n\nthird part")
}

func TestGenerateComplianceContextFallback(t *testing.T) {
	repo := &fakeRepo{}
	gen := &fakeGenerator{output: "[]"}
	svc := newService(repo, gen, &fakePublisher{})
	svc.Retriever = &fakeRetriever{err: errors.New("vector store down")}

	_, err := svc.Generate(context.Background(), GenerateCommand{
		Requirements:        "reqs",
		ComplianceStandards: []string{"ISO 13485"},
	})
	require.NoError(t, err)
	assert.Contains(t, gen.prompt, "No specific compliance context available.")
}

func TestTraceabilityMatrixFromProject(t *testing.T) {
	repo := &fakeRepo{byProject: map[string][]*domain.TestCase{
		"proj-1": {
			{ID: "tc_1", Traceability: &domain.Traceability{RequirementID: "REQ-001"}},
			{ID: "tc_2", Traceability: &domain.Traceability{RequirementID: "REQ-001"}},
			{ID: "tc_3"},
		},
	}}
	svc := newService(repo, &fakeGenerator{}, &fakePublisher{})

	m, err := svc.TraceabilityMatrix(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, m.Matrix, 1)
	assert.Equal(t, 40, m.Matrix[0].Coverage)
	assert.Equal(t, 40, m.OverallCoverage)
}
