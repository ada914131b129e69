// Package task provides the business logic for tasks: parent project
// checks, the status-column rules, label feedback into the project, and
// date-order validation against the merged record.
package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/volchd/projects-api/internal/domain"
	"github.com/volchd/projects-api/internal/repository"
	"github.com/volchd/projects-api/pkg/api"
	appErrors "github.com/volchd/projects-api/pkg/errors"
)

const (
	msgNotFound        = "Not found"
	msgProjectNotFound = "Project not found"
)

// Service defines the task-related business operations.
type Service interface {
	// CreateTask stores a new task under projectID. The status falls back
	// to the project's first column when absent or unknown, and labels the
	// project has not seen yet are added to it first.
	CreateTask(ctx context.Context, userID, projectID string, req api.CreateTaskRequest) (*domain.Task, error)

	// GetTask fetches one task by its exact key.
	GetTask(ctx context.Context, userID, projectID, taskID string) (*domain.Task, error)

	// ListTasks returns every task of a project the caller owns.
	ListTasks(ctx context.Context, userID, projectID string) ([]domain.Task, error)

	// UpdateTask applies a partial update. Unlike create, a status outside
	// the project's columns is rejected.
	UpdateTask(ctx context.Context, userID, projectID, taskID string, patch api.UpdateTaskPatch) (*domain.Task, error)

	// DeleteTask removes one task.
	DeleteTask(ctx context.Context, userID, projectID, taskID string) error
}

// service implements the Service interface with concrete business logic.
type service struct {
	repo repository.Repository
}

// NewService creates a new task service with the provided repository.
func NewService(repo repository.Repository) Service {
	return &service{repo: repo}
}

// CreateTask validates the request against the parent project and writes the
// task under an absence condition.
func (s *service) CreateTask(ctx context.Context, userID, projectID string, req api.CreateTaskRequest) (*domain.Task, error) {
	if req.Name == "" {
		return nil, appErrors.NewValidation("name is required")
	}
	priority, err := resolvePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	if !domain.DatesOrdered(req.StartDate, req.DueDate) {
		return nil, appErrors.NewValidation(api.MsgDueBeforeStart)
	}

	project, err := s.ownedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	// An unknown status is coerced, not rejected: clients routinely create
	// cards with a status from another board's vocabulary.
	status := req.Status
	if status == "" || !project.HasStatus(status) {
		status = project.FirstStatus()
	}

	now := time.Now().UTC()
	labels := domain.NormalizeList(req.Labels)
	if err := s.feedBackLabels(ctx, project, userID, labels, now); err != nil {
		return nil, err
	}

	task := domain.Task{
		ID:          uuid.New().String(),
		ProjectID:   project.ID,
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		Labels:      labels,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		if repository.IsConflict(err) {
			return nil, appErrors.NewInternal("task id collision", err)
		}
		return nil, appErrors.Wrap(err, "failed to create task")
	}
	return &task, nil
}

// GetTask reads the exact task key. No parent round trip: the key pair is
// already fully qualified, and ownership is on the task itself.
func (s *service) GetTask(ctx context.Context, userID, projectID, taskID string) (*domain.Task, error) {
	task, err := s.repo.FindTask(ctx, projectID, taskID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound(msgNotFound)
		}
		return nil, appErrors.Wrap(err, "failed to load task")
	}
	if task.UserID != userID {
		return nil, appErrors.NewNotFound(msgNotFound)
	}
	return task, nil
}

// ListTasks verifies the parent and then range-queries its partition.
func (s *service) ListTasks(ctx context.Context, userID, projectID string) ([]domain.Task, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasksByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list tasks")
	}
	return tasks, nil
}

// UpdateTask merges the patch over the stored task. The stored record is
// read first so dates can be validated as they will end up, then a single
// conditional write applies the change.
func (s *service) UpdateTask(ctx context.Context, userID, projectID, taskID string, patch api.UpdateTaskPatch) (*domain.Task, error) {
	if patch.Empty() {
		return nil, appErrors.NewValidation("nothing to update")
	}

	task, err := s.GetTask(ctx, userID, projectID, taskID)
	if err != nil {
		return nil, err
	}

	update := repository.TaskUpdate{
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
	if patch.Priority != nil {
		priority, err := resolvePriority(*patch.Priority)
		if err != nil {
			return nil, err
		}
		update.Priority = &priority
	}

	// Date rules apply to the record as it will be stored, not to the patch
	// in isolation: setting one end must respect the other end's stored
	// value, and clearing an end lifts the constraint.
	start, due := task.StartDate, task.DueDate
	if patch.StartDate.Set {
		start = patch.StartDate.Ptr()
		update.StartDate = start
		update.ClearStartDate = start == nil
	}
	if patch.DueDate.Set {
		due = patch.DueDate.Ptr()
		update.DueDate = due
		update.ClearDueDate = due == nil
	}
	if !domain.DatesOrdered(start, due) {
		return nil, appErrors.NewValidation(api.MsgDueBeforeStart)
	}

	if patch.Status != nil || patch.Labels != nil {
		// The parent read is only paid when the patch touches something the
		// project governs. An orphaned task (parent deleted mid-cascade)
		// therefore rejects status and label changes but still accepts the
		// rest.
		project, err := s.ownedProject(ctx, userID, projectID)
		if err != nil {
			return nil, err
		}
		if patch.Status != nil {
			if !project.HasStatus(*patch.Status) {
				return nil, appErrors.NewValidation("status must be one of: " + strings.Join(project.Statuses, ", "))
			}
			update.Status = patch.Status
		}
		if patch.Labels != nil {
			labels := domain.NormalizeList(*patch.Labels)
			if err := s.feedBackLabels(ctx, project, userID, labels, update.UpdatedAt); err != nil {
				return nil, err
			}
			update.Labels = labels
		}
	}

	updated, err := s.repo.UpdateTask(ctx, projectID, taskID, userID, update)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound(msgNotFound)
		}
		return nil, appErrors.Wrap(err, "failed to update task")
	}
	return updated, nil
}

// DeleteTask issues one conditional delete; the condition carries both the
// existence and the ownership check, so no read happens first.
func (s *service) DeleteTask(ctx context.Context, userID, projectID, taskID string) error {
	if err := s.repo.DeleteTask(ctx, projectID, taskID, userID); err != nil {
		if repository.IsNotFound(err) {
			return appErrors.NewNotFound(msgNotFound)
		}
		return appErrors.Wrap(err, "failed to delete task")
	}
	return nil
}

// ownedProject loads the parent project, hiding absence and foreign
// ownership behind the same message.
func (s *service) ownedProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	project, err := s.repo.FindProjectByID(ctx, projectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound(msgProjectNotFound)
		}
		return nil, appErrors.Wrap(err, "failed to load project")
	}
	if project.UserID != userID {
		return nil, appErrors.NewNotFound(msgProjectNotFound)
	}
	return project, nil
}

// feedBackLabels adds to the project any of labels it has not seen, before
// the task carrying them is written. A failure here fails the whole request;
// the task write never runs ahead of the project's label list.
func (s *service) feedBackLabels(ctx context.Context, project *domain.Project, userID string, labels []string, now time.Time) error {
	merged, added := domain.MergeLabels(project.Labels, labels)
	if !added {
		return nil
	}
	_, err := s.repo.UpdateProject(ctx, project.ID, userID, repository.ProjectUpdate{
		Labels:    merged,
		UpdatedAt: now,
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return appErrors.NewNotFound(msgProjectNotFound)
		}
		return appErrors.Wrap(err, "failed to update project labels")
	}
	project.Labels = merged
	return nil
}

func resolvePriority(value string) (domain.Priority, error) {
	if value == "" {
		return domain.PriorityNone, nil
	}
	priority, ok := domain.ParsePriority(value)
	if !ok {
		return "", appErrors.NewValidation("priority must be one of: " + strings.Join(domain.PriorityValues(), ", "))
	}
	return priority, nil
}
