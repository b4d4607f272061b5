package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appexports "github.com/clinicase/clinicase/internal/application/exports"
	apptestcases "github.com/clinicase/clinicase/internal/application/testcases"
	"github.com/clinicase/clinicase/internal/domain/compliance"
	domain "github.com/clinicase/clinicase/internal/domain/testcases"
	"github.com/clinicase/clinicase/internal/middleware"
)

const knownTestCaseID = "tc_1b4e28ba-2fa1-11d2-883f-0016d3cca427"

type stubRepo struct {
	byProject map[string][]*domain.TestCase
}

func (s *stubRepo) SaveBatch(ctx context.Context, tcs []*domain.TestCase) error { return nil }

func (s *stubRepo) Get(ctx context.Context, id domain.TestCaseID) (*domain.TestCase, error) {
	return nil, errors.New("no rows")
}

func (s *stubRepo) GetMany(ctx context.Context, ids []domain.TestCaseID) ([]*domain.TestCase, error) {
	var out []*domain.TestCase
	for _, id := range ids {
		out = append(out, &domain.TestCase{ID: id})
	}
	return out, nil
}

func (s *stubRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.TestCase, error) {
	return s.byProject[projectID], nil
}

type stubStore struct{}

func (stubStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func (stubStore) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://storage.local/" + key, nil
}

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

type stubGenerator struct{ out string }

func (s stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.out, nil
}

type stubRetriever struct{}

func (stubRetriever) Search(ctx context.Context, query string, topK int) ([]compliance.Snippet, error) {
	return nil, nil
}

type stubPublisher struct{}

func (stubPublisher) Publish(ctx context.Context, topic string, payload any) error { return nil }

func testRouter(repo *stubRepo) http.Handler {
	logger := zap.NewNop()
	return NewRouter(Deps{
		TestCases:      &apptestcases.Service{Repo: repo, Logger: logger},
		Exports:        &appexports.Service{Repo: repo, Store: stubStore{}, Clock: stubClock{}, Logger: logger},
		HealthCheckers: map[string]middleware.HealthChecker{},
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         logger,
	})
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(&stubRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestTraceabilityRequiresProjectID(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(&stubRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/traceability", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var env struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestTraceabilityEnvelope(t *testing.T) {
	repo := &stubRepo{byProject: map[string][]*domain.TestCase{
		"proj-1": {
			{ID: "tc_1", Traceability: &domain.Traceability{RequirementID: "REQ-001"}},
		},
	}}
	rec := httptest.NewRecorder()
	testRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/traceability?project_id=proj-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Matrix          []map[string]any `json:"matrix"`
			OverallCoverage int              `json:"overallCoverage"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.Len(t, env.Data.Matrix, 1)
	assert.Equal(t, 20, env.Data.OverallCoverage)
}

func TestExportUnsupportedFormatIsBadRequest(t *testing.T) {
	body := strings.NewReader(`{"testCaseIds":["` + knownTestCaseID + `"],"format":"docx"}`)
	rec := httptest.NewRecorder()
	testRouter(&stubRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/test-cases/export", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported export format")
}

func TestExportRejectsMalformedTestCaseID(t *testing.T) {
	body := strings.NewReader(`{"testCaseIds":["tc_1"],"format":"json"}`)
	rec := httptest.NewRecorder()
	testRouter(&stubRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/test-cases/export", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid test case ID format")
}

func TestExportHappyPath(t *testing.T) {
	body := strings.NewReader(`{"testCaseIds":["` + knownTestCaseID + `"],"format":"json"}`)
	rec := httptest.NewRecorder()
	testRouter(&stubRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/test-cases/export", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			DownloadURL string `json:"downloadUrl"`
			Count       int    `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Data.Count)
	assert.True(t, strings.HasPrefix(env.Data.DownloadURL, "https://storage.local/exports/"))
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	body := strings.NewReader(`{not json`)
	rec := httptest.NewRecorder()
	testRouter(&stubRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/test-cases/export", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/traceability", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")

	rec := httptest.NewRecorder()
	testRouter(&stubRepo{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGenerateTakesUserIDFromBody(t *testing.T) {
	logger := zap.NewNop()
	svc := &apptestcases.Service{
		Repo:      &stubRepo{},
		Retriever: stubRetriever{},
		Generator: stubGenerator{out: `[{"title":"Verify dosage alert","priority":"high","type":"functional"}]`},
		Publisher: stubPublisher{},
		Clock:     stubClock{},
		Logger:    logger,
	}
	router := NewRouter(Deps{
		TestCases:      svc,
		HealthCheckers: map[string]middleware.HealthChecker{},
		Logger:         logger,
	})

	body := strings.NewReader(`{"requirements":"Alert on overdose","complianceStandards":["ISO 13485"],"projectId":"proj-1","userId":"u1"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/test-cases/generate", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			TestCases []struct {
				CreatedBy string `json:"createdBy"`
			} `json:"testCases"`
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.Equal(t, 1, env.Data.Count)
	assert.Equal(t, "u1", env.Data.TestCases[0].CreatedBy)
}
