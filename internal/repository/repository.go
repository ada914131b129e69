// Package repository defines the persistence contracts for projects and
// tasks, the single-table key scheme, and the typed errors implementations
// report. The DynamoDB implementation lives in the dynamo subpackage; an
// in-memory one for tests lives in mocks.
package repository

import (
	"context"
	"time"

	"github.com/volchd/projects-api/internal/domain"
)

// ProjectUpdate is a partial project update. Nil pointer/slice fields are
// left untouched; ClearDescription removes the description outright.
// UpdatedAt is always written.
type ProjectUpdate struct {
	Name             *string
	Description      *string
	ClearDescription bool
	Statuses         []string
	Labels           []string
	UpdatedAt        time.Time
}

// TaskUpdate is a partial task update with the same nil-means-untouched
// convention. Clear* fields remove the corresponding optional attribute.
type TaskUpdate struct {
	Name             *string
	Description      *string
	ClearDescription bool
	Status           *string
	Priority         *domain.Priority
	StartDate        *time.Time
	ClearStartDate   bool
	DueDate          *time.Time
	ClearDueDate     bool
	Labels           []string
	UpdatedAt        time.Time
}

// ProjectRepository persists project items.
//
// Update and Delete condition the write on the item existing AND belonging
// to userID, so a vanished or foreign project surfaces as ErrNotFound and a
// caller can never tell the two apart. Create conditions on the partition
// key not existing and reports ErrConflict otherwise.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project domain.Project) error
	FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error)
	ListProjectsByUser(ctx context.Context, userID string) ([]domain.Project, error)
	UpdateProject(ctx context.Context, projectID, userID string, update ProjectUpdate) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectID, userID string) error
}

// TaskRepository persists task items within their project's partition.
//
// DeleteTasksByProject is the cascade used by project deletion: it removes
// every task item in the partition, running deletes concurrently, and
// returns how many it removed. It is not conditioned on ownership; callers
// verify the parent project first.
type TaskRepository interface {
	CreateTask(ctx context.Context, task domain.Task) error
	FindTask(ctx context.Context, projectID, taskID string) (*domain.Task, error)
	ListTasksByProject(ctx context.Context, projectID string) ([]domain.Task, error)
	UpdateTask(ctx context.Context, projectID, taskID, userID string, update TaskUpdate) (*domain.Task, error)
	DeleteTask(ctx context.Context, projectID, taskID, userID string) error
	DeleteTasksByProject(ctx context.Context, projectID string) (int, error)
}

// Repository is the full persistence surface, implemented by the DynamoDB
// store and the in-memory mock.
type Repository interface {
	ProjectRepository
	TaskRepository
}
