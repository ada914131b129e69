package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volchd/projects-api/pkg/api"
)

func createTask(t *testing.T, router http.Handler, userID, projectID, body string) api.TaskResponse {
	t.Helper()
	w := doRequest(t, router, "POST", "/projects/"+projectID+"/tasks", userID, body)
	require.Equal(t, http.StatusCreated, w.Code, "body was: %s", w.Body.String())
	var created api.TaskResponse
	decodeJSON(t, w, &created)
	return created
}

func TestCreateTaskEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("CreatedWithDefaults", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board","statuses":["Open","Closed"]}`)

		w := doRequest(t, router, "POST", "/projects/"+board.ID+"/tasks", "test-user", `{"name":"First card"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var created api.TaskResponse
		decodeJSON(t, w, &created)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, board.ID, created.ProjectID)
		assert.Equal(t, "First card", created.Name)
		assert.Equal(t, "Open", created.Status)
		assert.Equal(t, "None", created.Priority)
		assert.Nil(t, created.StartDate)
		assert.Nil(t, created.DueDate)
		assert.Empty(t, created.Labels)
	})

	t.Run("RoundTripsThroughGet", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board"}`)
		created := createTask(t, router, "test-user", board.ID,
			`{"name":"Everything","description":"details","status":"COMPLETE","priority":"High",
			  "startDate":"2026-03-01T09:00:00Z","dueDate":"2026-03-15T17:00:00Z","labels":["release"]}`)

		w := doRequest(t, router, "GET", "/projects/"+board.ID+"/tasks/"+created.ID, "test-user", "")
		require.Equal(t, http.StatusOK, w.Code)

		var fetched api.TaskResponse
		decodeJSON(t, w, &fetched)
		assert.Equal(t, created, fetched)
	})

	t.Run("UnknownStatusCoerced", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board","statuses":["Open","Closed"]}`)

		created := createTask(t, router, "test-user", board.ID, `{"name":"Misfiled","status":"DONE"}`)
		assert.Equal(t, "Open", created.Status)
	})

	t.Run("LabelsAppearOnProject", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board","labels":["web"]}`)

		createTask(t, router, "test-user", board.ID, `{"name":"Tagged","labels":["api","Web"]}`)

		w := doRequest(t, router, "GET", "/projects/"+board.ID, "test-user", "")
		require.Equal(t, http.StatusOK, w.Code)
		var fetched api.ProjectResponse
		decodeJSON(t, w, &fetched)
		assert.Equal(t, []string{"web", "api"}, fetched.Labels)
	})

	t.Run("MissingParentIs404ProjectNotFound", func(t *testing.T) {
		w := doRequest(t, router, "POST", "/projects/no-such-id/tasks", "test-user", `{"name":"Stray"}`)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Project not found"}`, w.Body.String())
	})

	t.Run("ForeignParentIs404ProjectNotFound", func(t *testing.T) {
		board := createProject(t, router, "owner", `{"name":"Private"}`)

		w := doRequest(t, router, "POST", "/projects/"+board.ID+"/tasks", "stranger", `{"name":"Intruder"}`)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Project not found"}`, w.Body.String())
	})

	t.Run("AllViolationsReportedAtOnce", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board"}`)

		w := doRequest(t, router, "POST", "/projects/"+board.ID+"/tasks", "test-user",
			`{"name":"","priority":"Critical","startDate":"2026-03-10T00:00:00Z","dueDate":"2026-03-01T00:00:00Z"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body api.ValidationErrorResponse
		decodeJSON(t, w, &body)
		assert.Equal(t, []string{
			"name is required",
			"priority must be one of: None, Low, Normal, High, Urgent",
			"dueDate must not be before startDate",
		}, body.Errors)
	})

	t.Run("BadDateShapeReported", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board"}`)

		w := doRequest(t, router, "POST", "/projects/"+board.ID+"/tasks", "test-user",
			`{"name":"Dated","dueDate":"next Tuesday"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"errors":["dueDate must be a valid ISO-8601 date-time"]}`, w.Body.String())
	})
}

func TestListTasksEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("EmptyListIsNotNull", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Empty board"}`)

		w := doRequest(t, router, "GET", "/projects/"+board.ID+"/tasks", "test-user", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items":[]}`, w.Body.String())
	})

	t.Run("ReturnsProjectTasksOnly", func(t *testing.T) {
		boardA := createProject(t, router, "test-user", `{"name":"A"}`)
		boardB := createProject(t, router, "test-user", `{"name":"B"}`)
		createTask(t, router, "test-user", boardA.ID, `{"name":"On A"}`)
		createTask(t, router, "test-user", boardB.ID, `{"name":"On B"}`)

		w := doRequest(t, router, "GET", "/projects/"+boardA.ID+"/tasks", "test-user", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body api.TaskListResponse
		decodeJSON(t, w, &body)
		require.Len(t, body.Items, 1)
		assert.Equal(t, "On A", body.Items[0].Name)
	})

	t.Run("MissingParentIs404", func(t *testing.T) {
		w := doRequest(t, router, "GET", "/projects/no-such-id/tasks", "test-user", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Project not found"}`, w.Body.String())
	})
}

func TestUpdateTaskEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("StatusOutsideBoardIs400", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board","statuses":["Open","Closed"]}`)
		card := createTask(t, router, "test-user", board.ID, `{"name":"Card"}`)

		w := doRequest(t, router, "PUT", "/projects/"+board.ID+"/tasks/"+card.ID, "test-user",
			`{"status":"DONE"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"errors":["status must be one of: Open, Closed"]}`, w.Body.String())
	})

	t.Run("NullClearsOptionalFields", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board"}`)
		card := createTask(t, router, "test-user", board.ID,
			`{"name":"Scheduled","description":"details","startDate":"2026-03-01T00:00:00Z","dueDate":"2026-03-10T00:00:00Z"}`)

		w := doRequest(t, router, "PUT", "/projects/"+board.ID+"/tasks/"+card.ID, "test-user",
			`{"description":null,"dueDate":null}`)
		require.Equal(t, http.StatusOK, w.Code)

		var updated api.TaskResponse
		decodeJSON(t, w, &updated)
		assert.Nil(t, updated.Description)
		assert.Nil(t, updated.DueDate)
		require.NotNil(t, updated.StartDate)
		assert.Equal(t, "2026-03-01T00:00:00Z", *updated.StartDate)
	})

	t.Run("EmptyPatchIs400", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board"}`)
		card := createTask(t, router, "test-user", board.ID, `{"name":"Card"}`)

		w := doRequest(t, router, "PUT", "/projects/"+board.ID+"/tasks/"+card.ID, "test-user", `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"errors":["nothing to update"]}`, w.Body.String())
	})

	t.Run("ForeignTaskIs404", func(t *testing.T) {
		board := createProject(t, router, "owner", `{"name":"Private"}`)
		card := createTask(t, router, "owner", board.ID, `{"name":"Card"}`)

		w := doRequest(t, router, "PUT", "/projects/"+board.ID+"/tasks/"+card.ID, "stranger",
			`{"name":"Mine now"}`)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Not found"}`, w.Body.String())
	})
}

func TestDeleteTaskEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("NoBodyNoContentType", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board"}`)
		card := createTask(t, router, "test-user", board.ID, `{"name":"Done with"}`)

		w := doRequest(t, router, "DELETE", "/projects/"+board.ID+"/tasks/"+card.ID, "test-user", "")
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Empty(t, w.Header().Get("Content-Type"))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

		get := doRequest(t, router, "GET", "/projects/"+board.ID+"/tasks/"+card.ID, "test-user", "")
		assert.Equal(t, http.StatusNotFound, get.Code)
	})

	t.Run("UnknownTaskIs404", func(t *testing.T) {
		board := createProject(t, router, "test-user", `{"name":"Board"}`)

		w := doRequest(t, router, "DELETE", "/projects/"+board.ID+"/tasks/no-such-task", "test-user", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Not found"}`, w.Body.String())
	})
}

// TestProjectLifecycleScenario walks one project through its whole life:
// board setup, cards in several states, a board rename, the cascade, and
// the 404s left behind.
func TestProjectLifecycleScenario(t *testing.T) {
	router, _ := newTestRouter(t)

	// Board with custom columns.
	board := createProject(t, router, "scenario-user",
		`{"name":"Release 1.0","statuses":["Design","Build","Ship"],"labels":["launch"]}`)

	// Three cards; one inherits the first column, one carries new labels.
	design := createTask(t, router, "scenario-user", board.ID, `{"name":"Wireframes"}`)
	require.Equal(t, "Design", design.Status)

	build := createTask(t, router, "scenario-user", board.ID,
		`{"name":"API","status":"Build","labels":["backend","launch"]}`)
	require.Equal(t, "Build", build.Status)

	createTask(t, router, "scenario-user", board.ID,
		`{"name":"Deadline","priority":"Urgent","dueDate":"2026-04-01T00:00:00Z"}`)

	// The new label surfaced on the board.
	w := doRequest(t, router, "GET", "/projects/"+board.ID, "scenario-user", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetchedBoard api.ProjectResponse
	decodeJSON(t, w, &fetchedBoard)
	assert.Equal(t, []string{"launch", "backend"}, fetchedBoard.Labels)

	// Move a card forward.
	w = doRequest(t, router, "PUT", "/projects/"+board.ID+"/tasks/"+design.ID, "scenario-user",
		`{"status":"Ship"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// All three cards listed.
	w = doRequest(t, router, "GET", "/projects/"+board.ID+"/tasks", "scenario-user", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cards api.TaskListResponse
	decodeJSON(t, w, &cards)
	assert.Len(t, cards.Items, 3)

	// Another user sees none of it.
	w = doRequest(t, router, "GET", "/projects", "other-user", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())

	// Cascade delete takes the cards down with the board.
	w = doRequest(t, router, "DELETE", "/projects/"+board.ID, "scenario-user", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, router, "GET", "/projects/"+board.ID+"/tasks/"+build.ID, "scenario-user", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, "DELETE", "/projects/"+board.ID, "scenario-user", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
