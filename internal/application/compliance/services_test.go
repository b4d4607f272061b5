package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicase/clinicase/internal/application"
	domain "github.com/clinicase/clinicase/internal/domain/compliance"
	"github.com/clinicase/clinicase/internal/domain/testcases"
)

type fakeTestCases struct {
	byID map[testcases.TestCaseID]*testcases.TestCase
}

func (f *fakeTestCases) SaveBatch(ctx context.Context, tcs []*testcases.TestCase) error { return nil }

func (f *fakeTestCases) Get(ctx context.Context, id testcases.TestCaseID) (*testcases.TestCase, error) {
	if tc, ok := f.byID[id]; ok {
		return tc, nil
	}
	return nil, errors.New("no rows")
}

func (f *fakeTestCases) GetMany(ctx context.Context, ids []testcases.TestCaseID) ([]*testcases.TestCase, error) {
	var out []*testcases.TestCase
	for _, id := range ids {
		if tc, ok := f.byID[id]; ok {
			out = append(out, tc)
		}
	}
	return out, nil
}

func (f *fakeTestCases) ListByProject(ctx context.Context, projectID string) ([]*testcases.TestCase, error) {
	return nil, nil
}

type fakeAnalyses struct {
	saved []*domain.Analysis
}

func (f *fakeAnalyses) Save(ctx context.Context, a *domain.Analysis) error {
	f.saved = append(f.saved, a)
	return nil
}

func (f *fakeAnalyses) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	return nil, errors.New("no rows")
}

type fakeRetriever struct {
	snippets []domain.Snippet
	err      error
}

func (f *fakeRetriever) Search(ctx context.Context, query string, topK int) ([]domain.Snippet, error) {
	return f.snippets, f.err
}

type fakeGenerator struct {
	output string
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.output, f.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newService(tcs *fakeTestCases, gen *fakeGenerator, ret *fakeRetriever) (*Service, *fakeAnalyses) {
	analyses := &fakeAnalyses{}
	return &Service{
		TestCases: tcs,
		Analyses:  analyses,
		Retriever: ret,
		Generator: gen,
		Clock:     fixedClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		Logger:    zap.NewNop(),
	}, analyses
}

const assessmentJSON = `{"overallScore":74,"standardsBreakdown":[{"name":"HIPAA","score":74,"status":"warning","findings":["no encryption test"]}],"recommendations":["add encryption tests"]}`

func TestAnalyzeRejectsMissingInput(t *testing.T) {
	svc, _ := newService(&fakeTestCases{}, &fakeGenerator{}, &fakeRetriever{})
	_, err := svc.Analyze(context.Background(), nil, []string{"HIPAA"})
	assert.ErrorIs(t, err, application.ErrInvalidInput)
	_, err = svc.Analyze(context.Background(), []string{"tc_1"}, nil)
	assert.ErrorIs(t, err, application.ErrInvalidInput)
}

func TestAnalyzeUnknownIDsNotFound(t *testing.T) {
	svc, _ := newService(&fakeTestCases{}, &fakeGenerator{}, &fakeRetriever{})
	_, err := svc.Analyze(context.Background(), []string{"tc_missing"}, []string{"HIPAA"})
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestAnalyzePersistsAssessment(t *testing.T) {
	tcs := &fakeTestCases{byID: map[testcases.TestCaseID]*testcases.TestCase{
		"tc_1": {ID: "tc_1", Title: "Verify PHI access"},
	}}
	svc, analyses := newService(tcs, &fakeGenerator{output: assessmentJSON}, &fakeRetriever{})

	a, err := svc.Analyze(context.Background(), []string{"tc_1"}, []string{"HIPAA"})
	require.NoError(t, err)

	assert.True(t, len(a.ID) > 9 && string(a.ID)[:9] == "analysis_")
	assert.Equal(t, 74, a.OverallScore)
	require.Len(t, a.StandardsBreakdown, 1)
	assert.Equal(t, "HIPAA", a.StandardsBreakdown[0].Name)
	assert.Equal(t, []string{"tc_1"}, a.TestCaseIDs)

	require.Len(t, analyses.saved, 1)
	assert.Equal(t, a, analyses.saved[0])
}

func TestAnalyzeUnparseableOutputKeptAsEmptyAssessment(t *testing.T) {
	tcs := &fakeTestCases{byID: map[testcases.TestCaseID]*testcases.TestCase{
		"tc_1": {ID: "tc_1"},
	}}
	svc, analyses := newService(tcs, &fakeGenerator{output: "not parseable"}, &fakeRetriever{})

	a, err := svc.Analyze(context.Background(), []string{"tc_1"}, []string{"HIPAA"})
	require.NoError(t, err)
	assert.Equal(t, 0, a.OverallScore)
	assert.Empty(t, a.StandardsBreakdown)
	assert.NotNil(t, a.StandardsBreakdown)
	assert.NotNil(t, a.Recommendations)
	assert.Len(t, analyses.saved, 1)
}

func TestAnalyzeRetrievalFailureTolerated(t *testing.T) {
	tcs := &fakeTestCases{byID: map[testcases.TestCaseID]*testcases.TestCase{
		"tc_1": {ID: "tc_1"},
	}}
	svc, _ := newService(tcs, &fakeGenerator{output: assessmentJSON}, &fakeRetriever{err: errors.New("down")})

	_, err := svc.Analyze(context.Background(), []string{"tc_1"}, []string{"HIPAA"})
	assert.NoError(t, err)
}

func TestContextRequiresQuery(t *testing.T) {
	svc, _ := newService(&fakeTestCases{}, &fakeGenerator{}, &fakeRetriever{})
	_, err := svc.Context(context.Background(), "  ", nil, 0)
	assert.ErrorIs(t, err, application.ErrInvalidInput)
}

func TestContextFiltersAndScores(t *testing.T) {
	ret := &fakeRetriever{snippets: []domain.Snippet{
		{Content: "Access controls required", Standard: "HIPAA Security Rule", Source: "hipaa.pdf", Distance: 0.2},
		{Content: "Risk management file", Standard: "ISO 14971", Source: "iso.pdf", Distance: 0.4},
	}}
	svc, _ := newService(&fakeTestCases{}, &fakeGenerator{}, ret)

	res, err := svc.Context(context.Background(), "access control", []string{"HIPAA"}, 5)
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "HIPAA Security Rule", res.Results[0].Standard)
	assert.InDelta(t, 0.8, res.Results[0].Relevance, 1e-9)
	assert.Contains(t, res.Summary, "Found 1 relevant compliance requirements")
}

func TestContextNoHitsSummary(t *testing.T) {
	svc, _ := newService(&fakeTestCases{}, &fakeGenerator{}, &fakeRetriever{})
	res, err := svc.Context(context.Background(), "anything", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, "No relevant compliance requirements found.", res.Summary)
}
