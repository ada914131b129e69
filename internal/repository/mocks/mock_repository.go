// Package mocks provides an in-memory implementation of the repository
// interfaces for testing services and handlers without DynamoDB. It mirrors
// the store's conditional-write semantics: creates conflict on existing ids,
// updates and deletes require existence plus ownership.
package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/volchd/projects-api/internal/domain"
	"github.com/volchd/projects-api/internal/repository"
)

// MockRepository is an in-memory repository.Repository.
type MockRepository struct {
	mu sync.RWMutex

	projects map[string]*domain.Project          // projectID -> project
	tasks    map[string]map[string]*domain.Task  // projectID -> taskID -> task

	// For testing error scenarios
	shouldFailOn map[string]error
}

// NewMockRepository creates an empty mock repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		projects:     make(map[string]*domain.Project),
		tasks:        make(map[string]map[string]*domain.Task),
		shouldFailOn: make(map[string]error),
	}
}

var _ repository.Repository = (*MockRepository)(nil)

// SetError configures the mock to return an error for a specific method.
func (m *MockRepository) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockRepository) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

func (m *MockRepository) checkError(method string) error {
	if err, exists := m.shouldFailOn[method]; exists {
		return err
	}
	return nil
}

// Project operations

func (m *MockRepository) CreateProject(ctx context.Context, project domain.Project) error {
	if err := m.checkError("CreateProject"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.projects[project.ID]; exists {
		return repository.NewConflict("project", project.ID, "id already exists")
	}
	m.projects[project.ID] = copyProject(project)
	return nil
}

func (m *MockRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	if err := m.checkError("FindProjectByID"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	project, exists := m.projects[projectID]
	if !exists {
		return nil, repository.NewNotFound("project", projectID)
	}
	return copyProject(*project), nil
}

func (m *MockRepository) ListProjectsByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	if err := m.checkError("ListProjectsByUser"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	projects := []domain.Project{}
	for _, p := range m.projects {
		if p.UserID == userID {
			projects = append(projects, *copyProject(*p))
		}
	}
	// The GSI sorts by project id; keep the mock deterministic the same way.
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (m *MockRepository) UpdateProject(ctx context.Context, projectID, userID string, u repository.ProjectUpdate) (*domain.Project, error) {
	if err := m.checkError("UpdateProject"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	project, exists := m.projects[projectID]
	if !exists || project.UserID != userID {
		return nil, repository.NewNotFoundWithUser("project", projectID, userID)
	}

	if u.Name != nil {
		project.Name = *u.Name
	}
	switch {
	case u.ClearDescription:
		project.Description = nil
	case u.Description != nil:
		project.Description = copyStringPtr(u.Description)
	}
	if u.Statuses != nil {
		project.Statuses = append([]string(nil), u.Statuses...)
	}
	if u.Labels != nil {
		project.Labels = append([]string(nil), u.Labels...)
	}
	project.UpdatedAt = u.UpdatedAt

	return copyProject(*project), nil
}

func (m *MockRepository) DeleteProject(ctx context.Context, projectID, userID string) error {
	if err := m.checkError("DeleteProject"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	project, exists := m.projects[projectID]
	if !exists || project.UserID != userID {
		return repository.NewNotFoundWithUser("project", projectID, userID)
	}
	delete(m.projects, projectID)
	return nil
}

// Task operations

func (m *MockRepository) CreateTask(ctx context.Context, task domain.Task) error {
	if err := m.checkError("CreateTask"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	byID, exists := m.tasks[task.ProjectID]
	if !exists {
		byID = make(map[string]*domain.Task)
		m.tasks[task.ProjectID] = byID
	}
	if _, exists := byID[task.ID]; exists {
		return repository.NewConflict("task", task.ID, "id already exists")
	}
	byID[task.ID] = copyTask(task)
	return nil
}

func (m *MockRepository) FindTask(ctx context.Context, projectID, taskID string) (*domain.Task, error) {
	if err := m.checkError("FindTask"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	task, exists := m.tasks[projectID][taskID]
	if !exists {
		return nil, repository.NewNotFound("task", taskID)
	}
	return copyTask(*task), nil
}

func (m *MockRepository) ListTasksByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	if err := m.checkError("ListTasksByProject"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	tasks := []domain.Task{}
	for _, t := range m.tasks[projectID] {
		tasks = append(tasks, *copyTask(*t))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (m *MockRepository) UpdateTask(ctx context.Context, projectID, taskID, userID string, u repository.TaskUpdate) (*domain.Task, error) {
	if err := m.checkError("UpdateTask"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, exists := m.tasks[projectID][taskID]
	if !exists || task.UserID != userID {
		return nil, repository.NewNotFoundWithUser("task", taskID, userID)
	}

	if u.Name != nil {
		task.Name = *u.Name
	}
	switch {
	case u.ClearDescription:
		task.Description = nil
	case u.Description != nil:
		task.Description = copyStringPtr(u.Description)
	}
	if u.Status != nil {
		task.Status = *u.Status
	}
	if u.Priority != nil {
		task.Priority = *u.Priority
	}
	switch {
	case u.ClearStartDate:
		task.StartDate = nil
	case u.StartDate != nil:
		task.StartDate = copyTimePtr(u.StartDate)
	}
	switch {
	case u.ClearDueDate:
		task.DueDate = nil
	case u.DueDate != nil:
		task.DueDate = copyTimePtr(u.DueDate)
	}
	if u.Labels != nil {
		task.Labels = append([]string(nil), u.Labels...)
	}
	task.UpdatedAt = u.UpdatedAt

	return copyTask(*task), nil
}

func (m *MockRepository) DeleteTask(ctx context.Context, projectID, taskID, userID string) error {
	if err := m.checkError("DeleteTask"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, exists := m.tasks[projectID][taskID]
	if !exists || task.UserID != userID {
		return repository.NewNotFoundWithUser("task", taskID, userID)
	}
	delete(m.tasks[projectID], taskID)
	return nil
}

func (m *MockRepository) DeleteTasksByProject(ctx context.Context, projectID string) (int, error) {
	if err := m.checkError("DeleteTasksByProject"); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	count := len(m.tasks[projectID])
	delete(m.tasks, projectID)
	return count, nil
}

// TaskCount reports how many tasks a project currently holds, for test
// assertions about the cascade.
func (m *MockRepository) TaskCount(projectID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks[projectID])
}

func copyProject(p domain.Project) *domain.Project {
	c := p
	c.Description = copyStringPtr(p.Description)
	c.Statuses = append([]string(nil), p.Statuses...)
	c.Labels = append([]string(nil), p.Labels...)
	return &c
}

func copyTask(t domain.Task) *domain.Task {
	c := t
	c.Description = copyStringPtr(t.Description)
	c.StartDate = copyTimePtr(t.StartDate)
	c.DueDate = copyTimePtr(t.DueDate)
	c.Labels = append([]string(nil), t.Labels...)
	return &c
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
