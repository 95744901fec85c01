package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sav-suite/reclamation-service/internal/cache"
	"github.com/sav-suite/reclamation-service/internal/config"
	"github.com/sav-suite/reclamation-service/internal/domain"
	"github.com/sav-suite/reclamation-service/internal/events"
	"github.com/sav-suite/reclamation-service/internal/persistence"
	"github.com/sav-suite/reclamation-service/internal/repository"
	apperrors "github.com/sav-suite/reclamation-service/pkg/util"
)

// WorkflowEngine drives the reclamation state machine. Each event runs
// inside a single transaction: the ticket row is locked first, so
// concurrent events on the same ticket serialize and the loser observes
// the already-advanced state.
type WorkflowEngine struct {
	reclamations  repository.ReclamationRepository
	interventions repository.InterventionRepository
	workOrders    repository.WorkOrderRepository
	users         repository.UserRepository
	history       repository.ReclamationHistoryRepository
	allocator     repository.SequenceAllocator
	txManager     persistence.TxManager
	dispatcher    events.Dispatcher
	snapshots     *cache.ReclamationCache
	logger        *zap.Logger
	cfg           config.WorkflowConfig
}

// WorkflowDependencies bundles collaborators for the engine.
type WorkflowDependencies struct {
	ReclamationRepo  repository.ReclamationRepository
	InterventionRepo repository.InterventionRepository
	WorkOrderRepo    repository.WorkOrderRepository
	UserRepo         repository.UserRepository
	HistoryRepo      repository.ReclamationHistoryRepository
	Allocator        repository.SequenceAllocator
	TxManager        persistence.TxManager
	Dispatcher       events.Dispatcher
	Snapshots        *cache.ReclamationCache
	Logger           *zap.Logger
	Config           config.WorkflowConfig
}

// AssignmentResult carries the outcome of a technician assignment.
type AssignmentResult struct {
	Reclamation  *domain.Reclamation
	Intervention *domain.InterventionRequest
	WorkOrder    *domain.WorkOrder
}

// CloseResult carries the outcome of a work order closure.
type CloseResult struct {
	WorkOrder   *domain.WorkOrder
	Reclamation *domain.Reclamation
}

// NewWorkflowEngine constructs the engine.
func NewWorkflowEngine(deps WorkflowDependencies) *WorkflowEngine {
	return &WorkflowEngine{
		reclamations:  deps.ReclamationRepo,
		interventions: deps.InterventionRepo,
		workOrders:    deps.WorkOrderRepo,
		users:         deps.UserRepo,
		history:       deps.HistoryRepo,
		allocator:     deps.Allocator,
		txManager:     deps.TxManager,
		dispatcher:    deps.Dispatcher,
		snapshots:     deps.Snapshots,
		logger:        deps.Logger,
		cfg:           deps.Config,
	}
}

// AssignTechnician moves a ticket to IN_PROGRESS and cascades the
// creation of its intervention request and work order. The ticket
// update and both inserts commit or roll back as one unit: the ticket
// never ends up assigned without its DI/BT pair.
func (e *WorkflowEngine) AssignTechnician(ctx context.Context, actorID, ticketID, technicianID int64) (*AssignmentResult, error) {
	result := &AssignmentResult{}

	err := e.txManager.WithinTx(ctx, func(ctx context.Context) error {
		rec, err := e.reclamations.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("reclamation", map[string]any{"ticket_id": ticketID})
			}
			return apperrors.MapError(err)
		}

		technician, err := e.users.GetByID(ctx, technicianID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
			}
			return apperrors.MapError(err)
		}
		if !technician.IsTechnician() {
			return apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}

		if !rec.Status.CanTransitionTo(domain.StatusInProgress) {
			return apperrors.NewInvalidTransition(rec.Status.String(), domain.StatusInProgress.String(),
				map[string]any{"ticket_id": ticketID})
		}

		oldTechnician := rec.TechnicianID
		rec, err = e.reclamations.AssignTechnician(ctx, ticketID, technicianID)
		if err != nil {
			return apperrors.MapError(err)
		}

		numDI, err := e.allocator.NextValue(ctx, repository.SeriesIntervention)
		if err != nil {
			return err
		}
		di := &domain.InterventionRequest{
			NumDI:            numDI,
			FaultDescription: truncate(rec.Subject, e.faultDescriptionMax()),
			RequesterLabel:   rec.ClientLabel,
			ServiceCode:      e.cfg.ServiceCode,
			ReclamationID:    &rec.ID,
		}
		if err := e.interventions.Create(ctx, di); err != nil {
			return apperrors.MapError(err)
		}

		numBT, err := e.allocator.NextValue(ctx, repository.SeriesWorkOrder)
		if err != nil {
			return err
		}
		bt := &domain.WorkOrder{
			NumBT:            numBT,
			InterventionID:   di.ID,
			NumDI:            di.NumDI,
			TechnicianID:     technicianID,
			FaultDescription: di.FaultDescription,
			InProgress:       true,
			Closed:           false,
		}
		if err := e.workOrders.Create(ctx, bt); err != nil {
			return apperrors.MapError(err)
		}

		if err := e.recordAssignmentChange(ctx, actorID, rec.ID, oldTechnician, rec.TechnicianID); err != nil {
			return apperrors.MapError(err)
		}

		result.Reclamation = rec
		result.Intervention = di
		result.WorkOrder = bt
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.snapshots.Invalidate(ctx, ticketID)
	e.publish(ctx, actorID, events.EventTechnicianAssigned, ticketID, events.TechnicianAssignedPayload{
		TechnicianID: technicianID,
		NumDI:        result.Intervention.NumDI,
		NumBT:        result.WorkOrder.NumBT,
	})
	return result, nil
}

// UnassignTechnician reverts an IN_PROGRESS ticket to OPEN. Intervention
// requests and work orders already created by the assignment remain as
// historical records.
func (e *WorkflowEngine) UnassignTechnician(ctx context.Context, actorID, ticketID int64) (*domain.Reclamation, error) {
	var rec *domain.Reclamation
	var previousTechnician int64
	var openWorkOrders int64

	err := e.txManager.WithinTx(ctx, func(ctx context.Context) error {
		current, err := e.reclamations.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("reclamation", map[string]any{"ticket_id": ticketID})
			}
			return apperrors.MapError(err)
		}
		if !current.Status.CanTransitionTo(domain.StatusOpen) {
			return apperrors.NewInvalidTransition(current.Status.String(), domain.StatusOpen.String(),
				map[string]any{"ticket_id": ticketID})
		}
		oldTechnician := current.TechnicianID
		if oldTechnician != nil {
			previousTechnician = *oldTechnician
		}

		rec, err = e.reclamations.UnassignTechnician(ctx, ticketID)
		if err != nil {
			return apperrors.MapError(err)
		}

		openWorkOrders, err = e.workOrders.CountOpenByReclamation(ctx, ticketID)
		if err != nil {
			return apperrors.MapError(err)
		}

		return e.recordAssignmentChange(ctx, actorID, ticketID, oldTechnician, nil)
	})
	if err != nil {
		return nil, err
	}

	if openWorkOrders > 0 {
		// Deliberate carry-over from the source system: unassignment
		// leaves the cascade records in place.
		e.logger.Warn("ticket unassigned with open work orders",
			zap.Int64("ticket_id", ticketID),
			zap.Int64("open_work_orders", openWorkOrders))
	}

	e.snapshots.Invalidate(ctx, ticketID)
	e.publish(ctx, actorID, events.EventTechnicianUnassigned, ticketID, events.TechnicianUnassignedPayload{
		TechnicianID:   previousTechnician,
		OpenWorkOrders: openWorkOrders,
	})
	return rec, nil
}

// SetTicketStatus applies a direct status transition, validated against
// the transition table. Illegal moves fail without touching state.
func (e *WorkflowEngine) SetTicketStatus(ctx context.Context, actorID, ticketID int64, status domain.ReclamationStatus, note *string) (*domain.Reclamation, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}

	var rec *domain.Reclamation
	var oldStatus domain.ReclamationStatus

	err := e.txManager.WithinTx(ctx, func(ctx context.Context) error {
		current, err := e.reclamations.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("reclamation", map[string]any{"ticket_id": ticketID})
			}
			return apperrors.MapError(err)
		}
		oldStatus = current.Status
		if !current.Status.CanTransitionTo(status) {
			return apperrors.NewInvalidTransition(current.Status.String(), status.String(),
				map[string]any{"ticket_id": ticketID})
		}
		// IN_PROGRESS is only reachable through assignment; a ticket in
		// progress always has a technician
		if status == domain.StatusInProgress && current.TechnicianID == nil {
			return apperrors.NewInvalidTransition(current.Status.String(), status.String(),
				map[string]any{"ticket_id": ticketID, "reason": "technician assignment required"})
		}

		rec, err = e.reclamations.SetStatus(ctx, ticketID, status, note)
		if err != nil {
			return apperrors.MapError(err)
		}
		return e.recordStatusChange(ctx, actorID, ticketID, oldStatus, status, note)
	})
	if err != nil {
		return nil, err
	}

	e.snapshots.Invalidate(ctx, ticketID)
	e.publish(ctx, actorID, events.EventStatusChanged, ticketID, events.StatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: status,
		Note:      derefString(note),
	})
	return rec, nil
}

// CloseWorkOrder closes a work order and cascades the resolution back to
// the originating reclamation in the same transaction. A second close of
// the same work order fails with INVALID_STATE and changes nothing.
func (e *WorkflowEngine) CloseWorkOrder(ctx context.Context, actorID int64, workOrderID string, result *string) (*CloseResult, error) {
	out := &CloseResult{}

	err := e.txManager.WithinTx(ctx, func(ctx context.Context) error {
		bt, err := e.workOrders.GetByIDForUpdate(ctx, workOrderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("work order", map[string]any{"work_order_id": workOrderID})
			}
			return apperrors.MapError(err)
		}
		if bt.Closed {
			return apperrors.NewInvalidState("work order already closed", map[string]any{
				"work_order_id": workOrderID,
				"num_bt":        bt.NumBT,
			})
		}

		bt, err = e.workOrders.Close(ctx, workOrderID, result)
		if err != nil {
			return apperrors.MapError(err)
		}
		out.WorkOrder = bt

		di, err := e.interventions.GetByID(ctx, bt.InterventionID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if di.ReclamationID == nil {
			return nil
		}

		rec, err := e.reclamations.GetByIDForUpdate(ctx, *di.ReclamationID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if rec.ResolvedAt != nil {
			out.Reclamation = rec
			return nil
		}
		if !rec.Status.CanTransitionTo(domain.StatusResolved) {
			return apperrors.NewInvalidTransition(rec.Status.String(), domain.StatusResolved.String(),
				map[string]any{"ticket_id": rec.ID, "work_order_id": workOrderID})
		}

		oldStatus := rec.Status
		rec, err = e.reclamations.SetStatus(ctx, rec.ID, domain.StatusResolved, result)
		if err != nil {
			return apperrors.MapError(err)
		}
		out.Reclamation = rec
		return e.recordStatusChange(ctx, actorID, rec.ID, oldStatus, domain.StatusResolved, result)
	})
	if err != nil {
		return nil, err
	}

	var ticketID int64
	if out.Reclamation != nil {
		ticketID = out.Reclamation.ID
		e.snapshots.Invalidate(ctx, ticketID)
	}
	e.publish(ctx, actorID, events.EventWorkOrderClosed, ticketID, events.WorkOrderClosedPayload{
		WorkOrderID: out.WorkOrder.ID,
		NumBT:       out.WorkOrder.NumBT,
		Result:      derefString(result),
	})
	return out, nil
}

func (e *WorkflowEngine) faultDescriptionMax() int {
	if e.cfg.FaultDescriptionMax <= 0 {
		return 255
	}
	return e.cfg.FaultDescriptionMax
}

func (e *WorkflowEngine) recordAssignmentChange(ctx context.Context, actorID int64, ticketID int64, oldTechnician, newTechnician *int64) error {
	if e.history == nil {
		return nil
	}
	return e.history.Create(ctx, &domain.ReclamationHistory{
		ReclamationID: ticketID,
		ChangedByID:   &actorID,
		ChangeType:    domain.ChangeTypeAssignment,
		OldValue: map[string]any{
			"technician_id": oldTechnician,
		},
		NewValue: map[string]any{
			"technician_id": newTechnician,
		},
	})
}

func (e *WorkflowEngine) recordStatusChange(ctx context.Context, actorID int64, ticketID int64, oldStatus, newStatus domain.ReclamationStatus, note *string) error {
	if e.history == nil {
		return nil
	}
	return e.history.Create(ctx, &domain.ReclamationHistory{
		ReclamationID: ticketID,
		ChangedByID:   &actorID,
		ChangeType:    domain.ChangeTypeStatus,
		OldValue: map[string]any{
			"status": oldStatus,
		},
		NewValue: map[string]any{
			"status": newStatus,
			"note":   derefString(note),
		},
	})
}

func (e *WorkflowEngine) publish(ctx context.Context, actorID int64, eventType events.EventType, ticketID int64, payload any) {
	if e.dispatcher == nil {
		return
	}
	_ = e.dispatcher.Publish(ctx, events.Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ReclamationID: ticketID,
		ActorID:       actorID,
		Timestamp:     time.Now(),
		Payload:       payload,
	})
}

// truncate caps s at max bytes without splitting a multi-byte rune;
// the result is always valid UTF-8.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
