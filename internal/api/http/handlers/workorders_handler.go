package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/sav-suite/reclamation-service/internal/api/dto"
	"github.com/sav-suite/reclamation-service/internal/auth"
	"github.com/sav-suite/reclamation-service/internal/repository"
	"github.com/sav-suite/reclamation-service/internal/service"
	apperrors "github.com/sav-suite/reclamation-service/pkg/util"
)

// WorkOrdersHandler manages DI/BT endpoints.
type WorkOrdersHandler struct {
	workflow      *service.WorkflowEngine
	interventions repository.InterventionRepository
	workOrders    repository.WorkOrderRepository
}

// NewWorkOrdersHandler constructs the handler.
func NewWorkOrdersHandler(workflow *service.WorkflowEngine, interventions repository.InterventionRepository, workOrders repository.WorkOrderRepository) *WorkOrdersHandler {
	return &WorkOrdersHandler{workflow: workflow, interventions: interventions, workOrders: workOrders}
}

// ListInterventions GET /intervention-requests.
func (h *WorkOrdersHandler) ListInterventions(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	items, err := h.interventions.List(c.UserContext(), pageSize, (page-1)*pageSize)
	if err != nil {
		return apperrors.MapError(err)
	}
	resp := make([]dto.InterventionRequestResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.FromInterventionRequest(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// List GET /work-orders.
func (h *WorkOrdersHandler) List(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	items, err := h.workOrders.List(c.UserContext(), pageSize, (page-1)*pageSize)
	if err != nil {
		return apperrors.MapError(err)
	}
	resp := make([]dto.WorkOrderResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.FromWorkOrder(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get GET /work-orders/:id.
func (h *WorkOrdersHandler) Get(c *fiber.Ctx) error {
	workOrderID, err := workOrderIDParam(c)
	if err != nil {
		return err
	}
	bt, err := h.workOrders.GetByID(c.UserContext(), workOrderID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromWorkOrder(bt)})
}

// Close POST /work-orders/:id/close.
func (h *WorkOrdersHandler) Close(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	workOrderID, err := workOrderIDParam(c)
	if err != nil {
		return err
	}
	var req dto.CloseWorkOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	result, err := h.workflow.CloseWorkOrder(c.UserContext(), principal.User.ID, workOrderID, req.Result)
	if err != nil {
		return err
	}
	resp := dto.CloseWorkOrderResponse{WorkOrder: dto.FromWorkOrder(result.WorkOrder)}
	if result.Reclamation != nil {
		rec := dto.FromReclamation(result.Reclamation)
		resp.Reclamation = &rec
	}
	return c.JSON(fiber.Map{"data": resp})
}

func workOrderIDParam(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewValidationError("invalid work order id", nil)
	}
	return id, nil
}
