package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/volchd/projects-api/internal/service/project"
	"github.com/volchd/projects-api/pkg/api"
)

// ProjectHandler handles project-related HTTP requests.
type ProjectHandler struct {
	service project.Service
	logger  *zap.Logger
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(service project.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, logger: logger}
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	req, violations := api.DecodeCreateProject(r.Body)
	if len(violations) > 0 {
		api.WriteValidationErrors(w, violations)
		return
	}

	created, err := h.service.CreateProject(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, api.NewProjectResponse(*created))
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	projects, err := h.service.ListProjects(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewProjectListResponse(projects))
}

// GetProject handles GET /projects/{projectId}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	projectID := chi.URLParam(r, "projectId")

	found, err := h.service.GetProject(r.Context(), userID, projectID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewProjectResponse(*found))
}

// UpdateProject handles PUT /projects/{projectId}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	projectID := chi.URLParam(r, "projectId")

	patch, violations := api.DecodeUpdateProject(r.Body)
	if len(violations) > 0 {
		api.WriteValidationErrors(w, violations)
		return
	}

	updated, err := h.service.UpdateProject(r.Context(), userID, projectID, patch)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewProjectResponse(*updated))
}

// DeleteProject handles DELETE /projects/{projectId}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	projectID := chi.URLParam(r, "projectId")

	if err := h.service.DeleteProject(r.Context(), userID, projectID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	api.WriteNoContent(w)
}
