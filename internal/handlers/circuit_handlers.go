package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"circuitweb/internal/common"
	"circuitweb/internal/models"
	"circuitweb/internal/services"

	"github.com/labstack/echo/v4"
)

// CircuitHandlers handles circuits; access is granted through the owning project.
type CircuitHandlers struct {
	circuitService services.CircuitService
	projectService services.ProjectService
}

func NewCircuitHandlers(circuitService services.CircuitService, projectService services.ProjectService) *CircuitHandlers {
	return &CircuitHandlers{circuitService: circuitService, projectService: projectService}
}

type circuitView struct {
	*models.Circuit
	UserID string `json:"user_id"`
}

func viewCircuit(circuit *models.Circuit, uid string) circuitView {
	return circuitView{Circuit: circuit, UserID: uid}
}

// ListCircuits handles GET /api/circuits?projectId=
func (h *CircuitHandlers) ListCircuits(c echo.Context) error {
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

	circuits, err := h.circuitService.ListByProject(ctx, projectID)
	if err != nil {
		return serviceError(err, "")
	}

	views := make([]circuitView, 0, len(circuits))
	for _, circuit := range circuits {
		views = append(views, viewCircuit(circuit, uid))
	}
	return ok(c, "Circuits retrieved successfully", Map{"circuits": views})
}

type CreateCircuitRequest struct {
	ProjectID string          `json:"projectId"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
}

// CreateCircuit handles POST /api/circuits/create. data is stored as given.
func (h *CircuitHandlers) CreateCircuit(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	var req CreateCircuitRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest("Circuit name is required")
	}
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		return badRequest("Project ID is required")
	}

	ctx := c.Request().Context()
	if _, err := h.projectService.Authorize(ctx, projectID, uid); err != nil {
		return serviceError(err, "Project not found")
	}

	circuit, err := h.circuitService.Create(ctx, &models.Circuit{ProjectID: projectID, Name: name, Data: req.Data})
	if err != nil {
		return serviceError(err, "")
	}
	return ok(c, "Circuit created successfully", Map{"circuit": viewCircuit(circuit, uid)})
}

// GetCircuit handles GET /api/circuits/get?circuitId=
func (h *CircuitHandlers) GetCircuit(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	circuitID := strings.TrimSpace(c.QueryParam("circuitId"))
	if circuitID == "" {
		return badRequest("Circuit ID is required")
	}

	circuit, err := h.circuitService.Authorize(c.Request().Context(), circuitID, uid)
	if err != nil {
		return serviceError(err, "Circuit not found")
	}
	return ok(c, "Circuit retrieved successfully", Map{"circuit": viewCircuit(circuit, uid)})
}

type UpdateCircuitRequest struct {
	CircuitID string          `json:"circuitId"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
}

// UpdateCircuit handles PUT /api/circuits/update. The circuit id may come from the
// body or the query string; a missing name or data keeps the stored value.
func (h *CircuitHandlers) UpdateCircuit(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	var req UpdateCircuitRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	circuitID := strings.TrimSpace(common.Coalesce(req.CircuitID, c.QueryParam("circuitId")))
	if circuitID == "" {
		return badRequest("Circuit ID is required")
	}

	ctx := c.Request().Context()
	circuit, err := h.circuitService.Authorize(ctx, circuitID, uid)
	if err != nil {
		return serviceError(err, "Circuit not found")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		circuit.Name = name
	}
	if models.HasCircuitData(req.Data) {
		circuit.Data = req.Data
	}

	updated, err := h.circuitService.Update(ctx, circuit)
	if err != nil {
		return serviceError(err, "Circuit not found")
	}
	return ok(c, "Circuit updated successfully", Map{"circuit": viewCircuit(updated, uid)})
}

// DeleteCircuit handles DELETE /api/circuits/delete?circuitId=
func (h *CircuitHandlers) DeleteCircuit(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	circuitID := strings.TrimSpace(c.QueryParam("circuitId"))
	if circuitID == "" {
		return badRequest("Circuit ID is required")
	}

	ctx := c.Request().Context()
	if _, err := h.circuitService.Authorize(ctx, circuitID, uid); err != nil {
		return serviceError(err, "Circuit not found")
	}

	deleted, err := h.circuitService.Delete(ctx, circuitID)
	if err != nil {
		return serviceError(err, "Circuit not found")
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "Circuit not found")
	}
	return ok(c, "Circuit deleted successfully", nil)
}

// ListTemplates handles GET /api/circuits/templates
func (h *CircuitHandlers) ListTemplates(c echo.Context) error {
	if _, err := callerID(c); err != nil {
		return err
	}
	templates := h.circuitService.Templates(c.Request().Context())
	return ok(c, "Templates feature not yet implemented", Map{"templates": templates})
}

type CreateFromTemplateRequest struct {
	TemplateID string `json:"templateId"`
	ProjectID  string `json:"projectId"`
	Name       string `json:"name"`
}

// CreateFromTemplate handles POST /api/circuits/create-from-template
func (h *CircuitHandlers) CreateFromTemplate(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	var req CreateFromTemplateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	switch {
	case strings.TrimSpace(req.TemplateID) == "":
		return badRequest("Template ID is required")
	case strings.TrimSpace(req.ProjectID) == "":
		return badRequest("Project ID is required")
	case strings.TrimSpace(req.Name) == "":
		return badRequest("Circuit name is required")
	}

	ctx := c.Request().Context()
	projectID := strings.TrimSpace(req.ProjectID)
	if _, err := h.projectService.Authorize(ctx, projectID, uid); err != nil {
		return serviceError(err, "Project not found")
	}

	circuit, err := h.circuitService.CreateFromTemplate(ctx, strings.TrimSpace(req.TemplateID), projectID, strings.TrimSpace(req.Name))
	if err != nil {
		return serviceError(err, "")
	}
	return ok(c, "Circuit created from template successfully", Map{"circuit": viewCircuit(circuit, uid)})
}
