package api

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCreateProject(t *testing.T) {
	t.Run("full body", func(t *testing.T) {
		body := `{"name":"Sprint board","description":"weekly planning","statuses":["Backlog","Doing"],"labels":["team"]}`
		req, violations := DecodeCreateProject(strings.NewReader(body))
		require.Empty(t, violations)
		assert.Equal(t, "Sprint board", req.Name)
		require.NotNil(t, req.Description)
		assert.Equal(t, "weekly planning", *req.Description)
		assert.Equal(t, []string{"Backlog", "Doing"}, req.Statuses)
	})

	t.Run("null description is treated as absent", func(t *testing.T) {
		req, violations := DecodeCreateProject(strings.NewReader(`{"name":"p","description":null}`))
		require.Empty(t, violations)
		assert.Nil(t, req.Description)
	})

	t.Run("reports every violation at once", func(t *testing.T) {
		long := strings.Repeat("x", 41)
		body := `{"name":5,"statuses":"TODO","labels":["ok","","` + long + `"]}`
		_, violations := DecodeCreateProject(strings.NewReader(body))
		assert.Equal(t, []string{
			"name must be a string",
			"statuses must be a list of strings",
			"labels[1] must not be empty",
			"labels[2] must be at most 40 characters",
		}, violations)
	})

	t.Run("missing name", func(t *testing.T) {
		_, violations := DecodeCreateProject(strings.NewReader(`{}`))
		assert.Equal(t, []string{"name is required"}, violations)
	})

	t.Run("malformed body", func(t *testing.T) {
		for _, body := range []string{"", "nope", "[1,2]", "null"} {
			_, violations := DecodeCreateProject(strings.NewReader(body))
			assert.Equal(t, []string{"request body must be a JSON object"}, violations, body)
		}
	})
}

func TestDecodeUpdateProject(t *testing.T) {
	t.Run("empty object is an empty patch", func(t *testing.T) {
		patch, violations := DecodeUpdateProject(strings.NewReader(`{}`))
		require.Empty(t, violations)
		assert.True(t, patch.Empty())
	})

	t.Run("unknown keys do not count as updates", func(t *testing.T) {
		patch, violations := DecodeUpdateProject(strings.NewReader(`{"color":"red"}`))
		require.Empty(t, violations)
		assert.True(t, patch.Empty())
	})

	t.Run("null description means clear", func(t *testing.T) {
		patch, violations := DecodeUpdateProject(strings.NewReader(`{"description":null}`))
		require.Empty(t, violations)
		assert.False(t, patch.Empty())
		assert.True(t, patch.Description.Set)
		assert.False(t, patch.Description.Valid)
	})

	t.Run("name cannot be null or empty", func(t *testing.T) {
		_, violations := DecodeUpdateProject(strings.NewReader(`{"name":null}`))
		assert.Equal(t, []string{"name must not be null"}, violations)

		_, violations = DecodeUpdateProject(strings.NewReader(`{"name":""}`))
		assert.Equal(t, []string{"name must not be empty"}, violations)
	})

	t.Run("statuses element rules", func(t *testing.T) {
		_, violations := DecodeUpdateProject(strings.NewReader(`{"statuses":["ok",""]}`))
		assert.Equal(t, []string{"statuses[1] must not be empty"}, violations)

		_, violations = DecodeUpdateProject(strings.NewReader(`{"statuses":null}`))
		assert.Equal(t, []string{"statuses must be a list of strings"}, violations)
	})
}

func TestDecodeCreateTask(t *testing.T) {
	t.Run("parses dates", func(t *testing.T) {
		body := `{"name":"Write report","startDate":"2025-06-02T09:00:00Z","dueDate":"2025-06-04T17:00:00Z"}`
		req, violations := DecodeCreateTask(strings.NewReader(body))
		require.Empty(t, violations)
		require.NotNil(t, req.StartDate)
		assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), *req.StartDate)
		require.NotNil(t, req.DueDate)
	})

	t.Run("due date before start date", func(t *testing.T) {
		body := `{"name":"t","startDate":"2025-06-04T09:00:00Z","dueDate":"2025-06-02T09:00:00Z"}`
		_, violations := DecodeCreateTask(strings.NewReader(body))
		assert.Equal(t, []string{MsgDueBeforeStart}, violations)
	})

	t.Run("invalid date string", func(t *testing.T) {
		_, violations := DecodeCreateTask(strings.NewReader(`{"name":"t","dueDate":"tomorrow"}`))
		assert.Equal(t, []string{"dueDate must be a valid ISO-8601 date-time"}, violations)
	})

	t.Run("priority outside the enum", func(t *testing.T) {
		_, violations := DecodeCreateTask(strings.NewReader(`{"name":"t","priority":"Sideways"}`))
		assert.Equal(t, []string{"priority must be one of: None, Low, Normal, High, Urgent"}, violations)
	})

	t.Run("status is passed through untouched", func(t *testing.T) {
		req, violations := DecodeCreateTask(strings.NewReader(`{"name":"t","status":"ANYTHING"}`))
		require.Empty(t, violations)
		assert.Equal(t, "ANYTHING", req.Status)
	})
}

func TestDecodeUpdateTask(t *testing.T) {
	t.Run("null dates mean clear", func(t *testing.T) {
		patch, violations := DecodeUpdateTask(strings.NewReader(`{"startDate":null,"dueDate":null}`))
		require.Empty(t, violations)
		assert.True(t, patch.StartDate.Set)
		assert.False(t, patch.StartDate.Valid)
		assert.True(t, patch.DueDate.Set)
		assert.False(t, patch.DueDate.Valid)
		assert.False(t, patch.Empty())
	})

	t.Run("status cannot be null", func(t *testing.T) {
		_, violations := DecodeUpdateTask(strings.NewReader(`{"status":null}`))
		assert.Equal(t, []string{"status must not be null"}, violations)
	})

	t.Run("priority is validated here", func(t *testing.T) {
		_, violations := DecodeUpdateTask(strings.NewReader(`{"priority":"Whenever"}`))
		assert.Equal(t, []string{"priority must be one of: None, Low, Normal, High, Urgent"}, violations)
	})

	t.Run("several violations in one pass", func(t *testing.T) {
		body := `{"name":"","priority":7,"labels":["ok",""]}`
		_, violations := DecodeUpdateTask(strings.NewReader(body))
		assert.Equal(t, []string{
			"priority must be a string",
			"name must not be empty",
			"labels[1] must not be empty",
		}, violations)
	})
}
