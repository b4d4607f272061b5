package exports

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clinicase/clinicase/internal/application"
	"github.com/clinicase/clinicase/internal/domain/testcases"
	"github.com/clinicase/clinicase/internal/infra/export"
)

const signedURLTTL = time.Hour

// ObjectStore is the slice of blob storage the export flow needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Service renders test cases into a download file and stages it in
// object storage behind a short-lived signed URL.
type Service struct {
	Repo   testcases.Repository
	Store  ObjectStore
	Clock  application.Clock
	Logger *zap.Logger
}

type Result struct {
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
	Format      string `json:"format"`
	Count       int    `json:"count"`
	ExpiresAt   string `json:"expiresAt"`
}

// Export fetches the requested test cases, renders them in the given
// format and returns a signed download link.
func (s *Service) Export(ctx context.Context, testCaseIDs []string, format string) (*Result, error) {
	if len(testCaseIDs) == 0 {
		return nil, fmt.Errorf("%w: testCaseIds are required", application.ErrInvalidInput)
	}

	ids := make([]testcases.TestCaseID, len(testCaseIDs))
	for i, id := range testCaseIDs {
		ids[i] = testcases.TestCaseID(id)
	}
	tcs, err := s.Repo.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching test cases: %w", err)
	}
	if len(tcs) == 0 {
		return nil, fmt.Errorf("%w: no test cases for given ids", application.ErrNotFound)
	}

	file, err := export.Render(tcs, format)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	filename := fmt.Sprintf("test-cases-export-%d.%s", now.UnixMilli(), file.Extension)
	key := "exports/" + filename

	if err := s.Store.Put(ctx, key, file.Content, file.ContentType); err != nil {
		return nil, fmt.Errorf("staging export: %w", err)
	}
	url, err := s.Store.SignedURL(ctx, key, signedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("signing export url: %w", err)
	}

	s.Logger.Info("export staged",
		zap.String("key", key),
		zap.String("format", format),
		zap.Int("count", len(tcs)))

	return &Result{
		DownloadURL: url,
		Filename:    filename,
		Format:      format,
		Count:       len(tcs),
		ExpiresAt:   now.Add(signedURLTTL).UTC().Format(time.RFC3339),
	}, nil
}
