package requirements

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicase/clinicase/internal/application"
	domain "github.com/clinicase/clinicase/internal/domain/requirements"
)

// Service manages the requirement catalog test cases trace back to.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

type CreateCommand struct {
	ProjectID           string
	Title               string
	Description         string
	Type                string
	Priority            string
	ComplianceStandards []string
	CreatedBy           string
}

// Create stores a new requirement in draft status.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*domain.Requirement, error) {
	if strings.TrimSpace(cmd.ProjectID) == "" || strings.TrimSpace(cmd.Title) == "" {
		return nil, fmt.Errorf("%w: projectId and title are required", application.ErrInvalidInput)
	}
	if cmd.Type == "" {
		cmd.Type = "functional"
	}
	if cmd.Priority == "" {
		cmd.Priority = "medium"
	}

	now := s.Clock.Now()
	req := &domain.Requirement{
		ID:                  domain.RequirementID("req_" + uuid.New().String()),
		ProjectID:           cmd.ProjectID,
		Title:               cmd.Title,
		Description:         cmd.Description,
		Type:                cmd.Type,
		Priority:            cmd.Priority,
		Status:              "draft",
		ComplianceStandards: cmd.ComplianceStandards,
		CreatedAt:           now,
		UpdatedAt:           now,
		CreatedBy:           cmd.CreatedBy,
	}
	if err := s.Repo.Save(ctx, req); err != nil {
		return nil, fmt.Errorf("persisting requirement: %w", err)
	}
	return req, nil
}

// List returns all requirements belonging to a project.
func (s *Service) List(ctx context.Context, projectID string) ([]*domain.Requirement, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: projectId is required", application.ErrInvalidInput)
	}
	return s.Repo.ListByProject(ctx, projectID)
}
