// Package api defines the request and response contracts of the HTTP
// surface and the decoding that backs them. It decouples the wire shapes
// from the internal domain models.
package api

import (
	"time"

	"github.com/volchd/projects-api/internal/domain"
)

// CreateProjectRequest is the expected body for POST /projects.
type CreateProjectRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description"`
	Statuses    []string `json:"statuses" validate:"omitempty,dive,min=1,max=40"`
	Labels      []string `json:"labels" validate:"omitempty,dive,min=1,max=40"`
}

// CreateTaskRequest is the expected body for POST /projects/{projectId}/tasks.
// Status carries no tag: membership is checked against the parent project,
// and an absent or unknown status falls back to the project's first column.
// Dates arrive as RFC 3339 strings and are parsed during decoding.
type CreateTaskRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=None Low Normal High Urgent"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     *time.Time `json:"dueDate"`
	Labels      []string   `json:"labels" validate:"omitempty,dive,min=1,max=40"`
}

// UpdateProjectPatch carries the fields present in a PUT /projects body.
// Pointer fields are nil when the key was absent.
type UpdateProjectPatch struct {
	Name        *string
	Description OptionalString
	Statuses    *[]string
	Labels      *[]string
}

// Empty reports whether the patch carries no recognized field at all.
func (p UpdateProjectPatch) Empty() bool {
	return p.Name == nil && !p.Description.Set && p.Statuses == nil && p.Labels == nil
}

// UpdateTaskPatch carries the fields present in a task update body.
type UpdateTaskPatch struct {
	Name        *string
	Description OptionalString
	Status      *string
	Priority    *string
	StartDate   OptionalTime
	DueDate     OptionalTime
	Labels      *[]string
}

// Empty reports whether the patch carries no recognized field at all.
func (p UpdateTaskPatch) Empty() bool {
	return p.Name == nil && !p.Description.Set && p.Status == nil && p.Priority == nil &&
		!p.StartDate.Set && !p.DueDate.Set && p.Labels == nil
}

// ProjectResponse is the API representation of a project.
type ProjectResponse struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Statuses    []string `json:"statuses"`
	Labels      []string `json:"labels"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// NewProjectResponse maps a domain project onto the wire shape.
func NewProjectResponse(p domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Statuses:    p.Statuses,
		Labels:      p.Labels,
		CreatedAt:   FormatTime(p.CreatedAt),
		UpdatedAt:   FormatTime(p.UpdatedAt),
	}
}

// ProjectListResponse wraps the projects of one user.
type ProjectListResponse struct {
	Items []ProjectResponse `json:"items"`
}

// NewProjectListResponse maps a slice of projects; Items is never null.
func NewProjectListResponse(projects []domain.Project) ProjectListResponse {
	items := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, NewProjectResponse(p))
	}
	return ProjectListResponse{Items: items}
}

// TaskResponse is the API representation of a task.
type TaskResponse struct {
	ID          string   `json:"id"`
	ProjectID   string   `json:"projectId"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	StartDate   *string  `json:"startDate"`
	DueDate     *string  `json:"dueDate"`
	Labels      []string `json:"labels"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// NewTaskResponse maps a domain task onto the wire shape.
func NewTaskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		Priority:    string(t.Priority),
		StartDate:   FormatTimePtr(t.StartDate),
		DueDate:     FormatTimePtr(t.DueDate),
		Labels:      t.Labels,
		CreatedAt:   FormatTime(t.CreatedAt),
		UpdatedAt:   FormatTime(t.UpdatedAt),
	}
}

// TaskListResponse wraps the tasks of one project.
type TaskListResponse struct {
	Items []TaskResponse `json:"items"`
}

// NewTaskListResponse maps a slice of tasks; Items is never null.
func NewTaskListResponse(tasks []domain.Task) TaskListResponse {
	items := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, NewTaskResponse(t))
	}
	return TaskListResponse{Items: items}
}

// ValidationErrorResponse is the 400 payload: every violated rule at once.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// MessageResponse is the payload of 404s and 500s. RequestID is only set on
// internal errors so clients can quote it back.
type MessageResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// FormatTime renders a timestamp the way the API speaks dates: RFC 3339 in
// UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatTimePtr is FormatTime for optional timestamps, preserving null.
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}
