package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sav-suite/reclamation-service/internal/api/dto"
	"github.com/sav-suite/reclamation-service/internal/auth"
	"github.com/sav-suite/reclamation-service/internal/domain"
	"github.com/sav-suite/reclamation-service/internal/repository"
	"github.com/sav-suite/reclamation-service/internal/service"
	apperrors "github.com/sav-suite/reclamation-service/pkg/util"
)

// ReclamationsHandler manages reclamation endpoints.
type ReclamationsHandler struct {
	reclamations *service.ReclamationService
	workflow     *service.WorkflowEngine
}

// NewReclamationsHandler constructs the handler.
func NewReclamationsHandler(reclamations *service.ReclamationService, workflow *service.WorkflowEngine) *ReclamationsHandler {
	return &ReclamationsHandler{reclamations: reclamations, workflow: workflow}
}

// Create POST /reclamations.
func (h *ReclamationsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateReclamationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	rec, err := h.reclamations.CreateTicket(c.UserContext(), principal.User.ID, service.ReclamationCreateInput{
		ClientLabel: req.ClientLabel,
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromReclamation(rec)})
}

// List GET /reclamations.
func (h *ReclamationsHandler) List(c *fiber.Ctx) error {
	filter := parseReclamationQuery(c)
	tickets, err := h.reclamations.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ReclamationResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromReclamation(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /reclamations/:id.
func (h *ReclamationsHandler) Get(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	rec, err := h.reclamations.GetTicket(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReclamation(rec)})
}

// History GET /reclamations/:id/history.
func (h *ReclamationsHandler) History(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	entries, err := h.reclamations.ListHistory(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryResponse{
			ID:          entry.ID,
			ChangeType:  entry.ChangeType,
			ChangedByID: entry.ChangedByID,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Assign POST /reclamations/:id/assign.
func (h *ReclamationsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.AssignTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID <= 0 {
		return apperrors.NewValidationError("technician_id required", nil)
	}

	result, err := h.workflow.AssignTechnician(c.UserContext(), principal.User.ID, ticketID, req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssignmentResponse{
		Reclamation:  dto.FromReclamation(result.Reclamation),
		Intervention: dto.FromInterventionRequest(result.Intervention),
		WorkOrder:    dto.FromWorkOrder(result.WorkOrder),
	}})
}

// Unassign POST /reclamations/:id/unassign.
func (h *ReclamationsHandler) Unassign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	rec, err := h.workflow.UnassignTechnician(c.UserContext(), principal.User.ID, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReclamation(rec)})
}

// SetStatus POST /reclamations/:id/status.
func (h *ReclamationsHandler) SetStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	rec, err := h.workflow.SetTicketStatus(c.UserContext(), principal.User.ID, ticketID, req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReclamation(rec)})
}

func ticketIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func parseReclamationQuery(c *fiber.Ctx) repository.ReclamationFilter {
	filter := repository.ReclamationFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ReclamationStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.ReclamationPriority(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if techStr := c.Query("technician_id"); techStr != "" {
		if techID, err := strconv.ParseInt(techStr, 10, 64); err == nil {
			filter.TechnicianID = &techID
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
