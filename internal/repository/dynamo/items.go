package dynamo

import (
	"time"

	"github.com/volchd/projects-api/internal/domain"
	"github.com/volchd/projects-api/internal/repository"
)

// projectItem is the stored shape of a project. GSI1PK/GSI1SK place it in
// the per-user index; task items carry no GSI attributes and so never show
// up there.
type projectItem struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	GSI1PK      string   `dynamodbav:"GSI1PK"`
	GSI1SK      string   `dynamodbav:"GSI1SK"`
	ProjectID   string   `dynamodbav:"ProjectID"`
	UserID      string   `dynamodbav:"UserID"`
	Name        string   `dynamodbav:"Name"`
	Description *string  `dynamodbav:"Description,omitempty"`
	Statuses    []string `dynamodbav:"Statuses"`
	Labels      []string `dynamodbav:"Labels"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	UpdatedAt   string   `dynamodbav:"UpdatedAt"`
}

type taskItem struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	TaskID      string   `dynamodbav:"TaskID"`
	ProjectID   string   `dynamodbav:"ProjectID"`
	UserID      string   `dynamodbav:"UserID"`
	Name        string   `dynamodbav:"Name"`
	Description *string  `dynamodbav:"Description,omitempty"`
	Status      string   `dynamodbav:"Status"`
	Priority    string   `dynamodbav:"Priority"`
	StartDate   *string  `dynamodbav:"StartDate,omitempty"`
	DueDate     *string  `dynamodbav:"DueDate,omitempty"`
	Labels      []string `dynamodbav:"Labels"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	UpdatedAt   string   `dynamodbav:"UpdatedAt"`
}

func newProjectItem(p domain.Project) projectItem {
	return projectItem{
		PK:          repository.ProjectPartitionKey(p.ID),
		SK:          repository.ProjectSortKey(),
		GSI1PK:      repository.UserIndexPartitionKey(p.UserID),
		GSI1SK:      repository.UserIndexSortKey(p.ID),
		ProjectID:   p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Statuses:    p.Statuses,
		Labels:      emptyIfNil(p.Labels),
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func (i projectItem) toDomain() domain.Project {
	return domain.Project{
		ID:          i.ProjectID,
		UserID:      i.UserID,
		Name:        i.Name,
		Description: i.Description,
		Statuses:    emptyIfNil(i.Statuses),
		Labels:      emptyIfNil(i.Labels),
		CreatedAt:   parseTime(i.CreatedAt),
		UpdatedAt:   parseTime(i.UpdatedAt),
	}
}

func newTaskItem(t domain.Task) taskItem {
	return taskItem{
		PK:          repository.ProjectPartitionKey(t.ProjectID),
		SK:          repository.TaskSortKey(t.ID),
		TaskID:      t.ID,
		ProjectID:   t.ProjectID,
		UserID:      t.UserID,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		Priority:    string(t.Priority),
		StartDate:   formatTimePtr(t.StartDate),
		DueDate:     formatTimePtr(t.DueDate),
		Labels:      emptyIfNil(t.Labels),
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
}

func (i taskItem) toDomain() domain.Task {
	priority, ok := domain.ParsePriority(i.Priority)
	if !ok {
		priority = domain.PriorityNone
	}
	return domain.Task{
		ID:          i.TaskID,
		ProjectID:   i.ProjectID,
		UserID:      i.UserID,
		Name:        i.Name,
		Description: i.Description,
		Status:      i.Status,
		Priority:    priority,
		StartDate:   parseTimePtr(i.StartDate),
		DueDate:     parseTimePtr(i.DueDate),
		Labels:      emptyIfNil(i.Labels),
		CreatedAt:   parseTime(i.CreatedAt),
		UpdatedAt:   parseTime(i.UpdatedAt),
	}
}

// Timestamps are stored as RFC 3339 strings so items stay readable in the
// console and sortable lexicographically.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseTimePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t := parseTime(*s)
	return &t
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
