package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/volchd/projects-api/internal/service/task"
	"github.com/volchd/projects-api/pkg/api"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	service task.Service
	logger  *zap.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(service task.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

// CreateTask handles POST /projects/{projectId}/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	projectID := chi.URLParam(r, "projectId")

	req, violations := api.DecodeCreateTask(r.Body)
	if len(violations) > 0 {
		api.WriteValidationErrors(w, violations)
		return
	}

	created, err := h.service.CreateTask(r.Context(), userID, projectID, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, api.NewTaskResponse(*created))
}

// ListTasks handles GET /projects/{projectId}/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	projectID := chi.URLParam(r, "projectId")

	tasks, err := h.service.ListTasks(r.Context(), userID, projectID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewTaskListResponse(tasks))
}

// GetTask handles GET /projects/{projectId}/tasks/{taskId}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	projectID := chi.URLParam(r, "projectId")
	taskID := chi.URLParam(r, "taskId")

	found, err := h.service.GetTask(r.Context(), userID, projectID, taskID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewTaskResponse(*found))
}

// UpdateTask handles PUT /projects/{projectId}/tasks/{taskId}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	projectID := chi.URLParam(r, "projectId")
	taskID := chi.URLParam(r, "taskId")

	patch, violations := api.DecodeUpdateTask(r.Body)
	if len(violations) > 0 {
		api.WriteValidationErrors(w, violations)
		return
	}

	updated, err := h.service.UpdateTask(r.Context(), userID, projectID, taskID, patch)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewTaskResponse(*updated))
}

// DeleteTask handles DELETE /projects/{projectId}/tasks/{taskId}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	projectID := chi.URLParam(r, "projectId")
	taskID := chi.URLParam(r, "taskId")

	if err := h.service.DeleteTask(r.Context(), userID, projectID, taskID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	api.WriteNoContent(w)
}
