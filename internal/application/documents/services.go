package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicase/clinicase/internal/application"
	domain "github.com/clinicase/clinicase/internal/domain/documents"
	"github.com/clinicase/clinicase/internal/domain/events"
)

// ObjectSource is the read slice of blob storage the processing flow
// needs.
type ObjectSource interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Service runs uploaded requirement documents through text extraction
// and persists the result for later generation runs.
type Service struct {
	Repo      domain.Repository
	Source    ObjectSource
	Extractor domain.Extractor
	Publisher events.Publisher
	Clock     application.Clock
	Logger    *zap.Logger
}

type ProcessCommand struct {
	StorageKey string
	FileName   string
	UploadedBy string
}

// Process fetches the uploaded file, extracts its text and entities and
// stores the processed document. A failed extraction still leaves a
// failed record behind so the upload is not silently lost.
func (s *Service) Process(ctx context.Context, cmd ProcessCommand) (*domain.Document, error) {
	if strings.TrimSpace(cmd.StorageKey) == "" || strings.TrimSpace(cmd.FileName) == "" {
		return nil, fmt.Errorf("%w: storageKey and fileName are required", application.ErrInvalidInput)
	}

	now := s.Clock.Now()
	doc := &domain.Document{
		ID:         domain.DocumentID("doc_" + uuid.New().String()),
		FileName:   cmd.FileName,
		StorageKey: cmd.StorageKey,
		UploadedBy: cmd.UploadedBy,
		UploadedAt: now,
		MimeType:   mimeTypeFor(cmd.FileName),
		Status:     "processing",
	}

	content, err := s.Source.Get(ctx, cmd.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("fetching upload: %w", err)
	}

	extraction, err := s.Extractor.Extract(ctx, content, doc.MimeType)
	if err != nil {
		doc.Status = "failed"
		if saveErr := s.Repo.Save(ctx, doc); saveErr != nil {
			s.Logger.Error("persisting failed document", zap.Error(saveErr))
		}
		return nil, fmt.Errorf("extraction service: %w", err)
	}

	processed := s.Clock.Now()
	doc.Status = "completed"
	doc.ProcessedAt = &processed
	doc.ExtractedText = extraction.Text
	doc.Entities = extraction.Entities
	doc.Tables = extraction.Tables
	doc.Confidence = extraction.Confidence

	if err := s.Repo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("persisting document: %w", err)
	}

	// Downstream listeners are best-effort; the document is already stored.
	if err := s.Publisher.Publish(ctx, events.TopicDocumentProcessed, map[string]any{
		"documentId": doc.ID,
		"fileName":   doc.FileName,
		"uploadedBy": doc.UploadedBy,
		"timestamp":  processed.UTC().Format(time.RFC3339),
	}); err != nil {
		s.Logger.Warn("event publish failed",
			zap.String("topic", events.TopicDocumentProcessed),
			zap.Error(err))
	}
	return doc, nil
}

func mimeTypeFor(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "application/pdf"
	}
	switch strings.ToLower(filename[i+1:]) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tiff", "tif":
		return "image/tiff"
	case "gif":
		return "image/gif"
	default:
		return "application/pdf"
	}
}
