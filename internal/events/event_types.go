package events

import (
	"time"

	"github.com/sav-suite/reclamation-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReclamationCreated   EventType = "reclamation_created"
	EventTechnicianAssigned   EventType = "technician_assigned"
	EventTechnicianUnassigned EventType = "technician_unassigned"
	EventStatusChanged        EventType = "reclamation_status_changed"
	EventWorkOrderClosed      EventType = "work_order_closed"
)

// Event represents a domain event emitted by the workflow. Events are
// published after the surrounding transaction commits, never inside it.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	ReclamationID int64       `json:"reclamation_id"`
	ActorID       int64       `json:"actor_id"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// ReclamationCreatedPayload payload.
type ReclamationCreatedPayload struct {
	NumTicket   string                     `json:"num_ticket"`
	ClientLabel string                     `json:"client_label"`
	Priority    domain.ReclamationPriority `json:"priority"`
	Subject     string                     `json:"subject"`
}

// TechnicianAssignedPayload payload.
type TechnicianAssignedPayload struct {
	TechnicianID int64 `json:"technician_id"`
	NumDI        int64 `json:"num_di"`
	NumBT        int64 `json:"num_bt"`
}

// TechnicianUnassignedPayload payload.
type TechnicianUnassignedPayload struct {
	TechnicianID   int64 `json:"technician_id"`
	OpenWorkOrders int64 `json:"open_work_orders"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.ReclamationStatus `json:"old_status"`
	NewStatus domain.ReclamationStatus `json:"new_status"`
	Note      string                   `json:"note,omitempty"`
}

// WorkOrderClosedPayload payload.
type WorkOrderClosedPayload struct {
	WorkOrderID string `json:"work_order_id"`
	NumBT       int64  `json:"num_bt"`
	Result      string `json:"result,omitempty"`
}
