// Package project provides the business logic for project boards: creation
// with default columns, ownership checks, partial updates, and the cascading
// delete that takes a project's tasks down with it.
package project

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/volchd/projects-api/internal/domain"
	"github.com/volchd/projects-api/internal/repository"
	"github.com/volchd/projects-api/pkg/api"
	appErrors "github.com/volchd/projects-api/pkg/errors"
)

// Not-found wording is part of the API contract: a project that does not
// exist and a project owned by someone else read the same.
const msgNotFound = "Not found"

// Service defines the project-related business operations.
type Service interface {
	// CreateProject stores a new project for userID, applying the default
	// status columns when the request carries none.
	CreateProject(ctx context.Context, userID string, req api.CreateProjectRequest) (*domain.Project, error)

	// GetProject fetches one project, hiding other users' projects behind
	// not-found.
	GetProject(ctx context.Context, userID, projectID string) (*domain.Project, error)

	// ListProjects returns every project owned by userID.
	ListProjects(ctx context.Context, userID string) ([]domain.Project, error)

	// UpdateProject applies a partial update and returns the merged project.
	UpdateProject(ctx context.Context, userID, projectID string, patch api.UpdateProjectPatch) (*domain.Project, error)

	// DeleteProject removes a project and every task it owns, tasks first.
	DeleteProject(ctx context.Context, userID, projectID string) error
}

// service implements the Service interface with concrete business logic.
type service struct {
	repo repository.Repository
}

// NewService creates a new project service with the provided repository.
func NewService(repo repository.Repository) Service {
	return &service{repo: repo}
}

// CreateProject builds the project record and writes it under an
// absence condition. Statuses and labels are deduplicated; a request without
// usable statuses falls back to the standard three columns.
func (s *service) CreateProject(ctx context.Context, userID string, req api.CreateProjectRequest) (*domain.Project, error) {
	if req.Name == "" {
		return nil, appErrors.NewValidation("name is required")
	}

	statuses := domain.NormalizeList(req.Statuses)
	if len(statuses) == 0 {
		statuses = domain.DefaultStatuses()
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Statuses:    statuses,
		Labels:      domain.NormalizeList(req.Labels),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		if repository.IsConflict(err) {
			// Two projects rolled the same UUID. Not worth a retry loop.
			return nil, appErrors.NewInternal("project id collision", err)
		}
		return nil, appErrors.Wrap(err, "failed to create project")
	}
	return &project, nil
}

// GetProject fetches the project and verifies ownership.
func (s *service) GetProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	return s.ownedProject(ctx, userID, projectID, msgNotFound)
}

// ListProjects queries the per-user index. A user with no projects gets an
// empty slice, never an error.
func (s *service) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	projects, err := s.repo.ListProjectsByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list projects")
	}
	return projects, nil
}

// UpdateProject turns the patch into a single conditional update. The write
// itself enforces existence and ownership, so no read happens first.
func (s *service) UpdateProject(ctx context.Context, userID, projectID string, patch api.UpdateProjectPatch) (*domain.Project, error) {
	if patch.Empty() {
		return nil, appErrors.NewValidation("nothing to update")
	}

	update := repository.ProjectUpdate{
		Name:      patch.Name,
		UpdatedAt: time.Now().UTC(),
	}
	if patch.Description.Set {
		if patch.Description.Valid {
			update.Description = patch.Description.Ptr()
		} else {
			update.ClearDescription = true
		}
	}
	if patch.Statuses != nil {
		statuses := domain.NormalizeList(*patch.Statuses)
		if len(statuses) == 0 {
			return nil, appErrors.NewValidation("statuses must not be empty")
		}
		update.Statuses = statuses
	}
	if patch.Labels != nil {
		update.Labels = domain.NormalizeList(*patch.Labels)
	}

	project, err := s.repo.UpdateProject(ctx, projectID, userID, update)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound(msgNotFound)
		}
		return nil, appErrors.Wrap(err, "failed to update project")
	}
	return project, nil
}

// DeleteProject removes the project's tasks and then the project item. The
// ordering bounds how long a task can outlive its project: a crash between
// the two phases leaves orphaned tasks, and a retry of this call finishes
// the job as long as the project item still exists.
func (s *service) DeleteProject(ctx context.Context, userID, projectID string) error {
	if _, err := s.ownedProject(ctx, userID, projectID, msgNotFound); err != nil {
		return err
	}

	if _, err := s.repo.DeleteTasksByProject(ctx, projectID); err != nil {
		return appErrors.Wrap(err, "failed to delete project tasks")
	}

	if err := s.repo.DeleteProject(ctx, projectID, userID); err != nil {
		if repository.IsNotFound(err) {
			// A concurrent delete won the race for the project item.
			return appErrors.NewNotFound(msgNotFound)
		}
		return appErrors.Wrap(err, "failed to delete project")
	}
	return nil
}

// ownedProject loads a project and hides both absence and foreign ownership
// behind the same not-found message.
func (s *service) ownedProject(ctx context.Context, userID, projectID, message string) (*domain.Project, error) {
	project, err := s.repo.FindProjectByID(ctx, projectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound(message)
		}
		return nil, appErrors.Wrap(err, "failed to load project")
	}
	if project.UserID != userID {
		return nil, appErrors.NewNotFound(message)
	}
	return project, nil
}
