package handlers

import (
	"net/http"
	"strings"

	"circuitweb/internal/common"
	"circuitweb/internal/models"
	"circuitweb/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ProjectHandlers handles project CRUD for the calling user.
type ProjectHandlers struct {
	projectService services.ProjectService
	log            zerolog.Logger
}

func NewProjectHandlers(projectService services.ProjectService, log zerolog.Logger) *ProjectHandlers {
	return &ProjectHandlers{projectService: projectService, log: log.With().Str("handler", "projects").Logger()}
}

// ListProjects handles GET /api/projects
func (h *ProjectHandlers) ListProjects(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	projects, err := h.projectService.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return serviceError(err, "")
	}
	return ok(c, "Projects retrieved successfully", Map{"projects": projects})
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateProject handles POST /api/projects/create
func (h *ProjectHandlers) CreateProject(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	var req CreateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return badRequest("Project name is required")
	}

	project, err := h.projectService.Create(c.Request().Context(), &models.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		OwnerID:     uid,
	})
	if err != nil {
		return serviceError(err, "")
	}
	return ok(c, "Project created successfully", Map{"project": project})
}

// GetProject handles GET /api/projects/get?projectId=
func (h *ProjectHandlers) GetProject(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	projectID := strings.TrimSpace(c.QueryParam("projectId"))
	if projectID == "" {
		return badRequest("Project ID is required")
	}

	project, err := h.projectService.Authorize(c.Request().Context(), projectID, uid)
	if err != nil {
		return serviceError(err, "Project not found")
	}
	return ok(c, "Project retrieved successfully", Map{"project": project})
}

type UpdateProjectRequest struct {
	ProjectID   string `json:"projectId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateProject handles PUT /api/projects/update. The project id may come from the
// body or the query string; empty name or description leave the field unchanged.
func (h *ProjectHandlers) UpdateProject(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	var req UpdateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	projectID := strings.TrimSpace(common.Coalesce(req.ProjectID, c.QueryParam("projectId")))
	if projectID == "" {
		return badRequest("Project ID is required")
	}

	ctx := c.Request().Context()
	project, err := h.projectService.Authorize(ctx, projectID, uid)
	if err != nil {
		return serviceError(err, "Project not found")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		project.Name = name
	}
	if req.Description != "" {
		project.Description = req.Description
	}

	updated, err := h.projectService.Update(ctx, project)
	if err != nil {
		return serviceError(err, "Project not found")
	}
	return ok(c, "Project updated successfully", Map{"project": updated})
}

// DeleteProject handles DELETE /api/projects/delete?projectId=. Circuits of the
// project are left in place.
func (h *ProjectHandlers) DeleteProject(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	projectID := strings.TrimSpace(c.QueryParam("projectId"))
	if projectID == "" {
		return badRequest("Project ID is required")
	}

	ctx := c.Request().Context()
	if _, err := h.projectService.Authorize(ctx, projectID, uid); err != nil {
		return serviceError(err, "Project not found")
	}

	deleted, err := h.projectService.Delete(ctx, projectID)
	if err != nil {
		return serviceError(err, "Project not found")
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}
	return ok(c, "Project deleted successfully", nil)
}

type DuplicateProjectRequest struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}

// DuplicateProject handles POST /api/projects/duplicate
func (h *ProjectHandlers) DuplicateProject(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	var req DuplicateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		return badRequest("Project ID is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest("New project name is required")
	}

	ctx := c.Request().Context()
	if _, err := h.projectService.Authorize(ctx, projectID, uid); err != nil {
		return serviceError(err, "Original project not found")
	}

	project, err := h.projectService.Duplicate(ctx, projectID, name)
	if err != nil {
		return serviceError(err, "Original project not found")
	}
	h.log.Info().Str("source_id", projectID).Str("project_id", project.ID).Msg("project duplicated")

	return ok(c, "Project duplicated successfully", Map{"project": project})
}
