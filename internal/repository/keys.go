package repository

import "strings"

// Single-table addressing. A project and all of its tasks share one
// partition: the project item sits at a fixed sort key, tasks under a
// prefixed one, so a prefix query over the partition finds every task and a
// sort-key glance tells the record kinds apart. The GSI inverts ownership:
// one partition per user, one entry per project.
const (
	projectKeyPrefix = "PROJECT#"
	userKeyPrefix    = "USER#"
	taskKeyPrefix    = "TASK#"

	// projectSortKeyLiteral is the sort key of every project item.
	projectSortKeyLiteral = "PROJECT"
)

// ProjectPartitionKey returns the PK shared by a project and its tasks.
func ProjectPartitionKey(projectID string) string {
	return projectKeyPrefix + projectID
}

// ProjectSortKey returns the fixed SK of a project item.
func ProjectSortKey() string {
	return projectSortKeyLiteral
}

// UserIndexPartitionKey returns the GSI partition key grouping one user's
// projects.
func UserIndexPartitionKey(userID string) string {
	return userKeyPrefix + userID
}

// UserIndexSortKey returns the GSI sort key of a project entry.
func UserIndexSortKey(projectID string) string {
	return projectKeyPrefix + projectID
}

// TaskSortKey returns the SK of a task item within its project's partition.
func TaskSortKey(taskID string) string {
	return taskKeyPrefix + taskID
}

// TaskSortKeyPrefix returns the prefix every task SK begins with, for
// begins_with range queries.
func TaskSortKeyPrefix() string {
	return taskKeyPrefix
}

// IsTaskSortKey reports whether sk addresses a task item.
func IsTaskSortKey(sk string) bool {
	return strings.HasPrefix(sk, taskKeyPrefix)
}

// TaskIDFromSortKey extracts the task id from a task sort key. It returns
// the empty string when sk is not a task key.
func TaskIDFromSortKey(sk string) string {
	if !IsTaskSortKey(sk) {
		return ""
	}
	return strings.TrimPrefix(sk, taskKeyPrefix)
}
