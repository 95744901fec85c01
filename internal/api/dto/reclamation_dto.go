package dto

import (
	"time"

	"github.com/sav-suite/reclamation-service/internal/domain"
)

// CreateReclamationRequest payload.
type CreateReclamationRequest struct {
	ClientLabel string                     `json:"client_label"`
	Subject     string                     `json:"subject"`
	Description string                     `json:"description"`
	Category    string                     `json:"category"`
	Priority    domain.ReclamationPriority `json:"priority"`
}

// AssignTechnicianRequest payload.
type AssignTechnicianRequest struct {
	TechnicianID int64 `json:"technician_id"`
}

// SetStatusRequest payload.
type SetStatusRequest struct {
	Status domain.ReclamationStatus `json:"status"`
	Note   *string                  `json:"note,omitempty"`
}

// ReclamationResponse is the ticket snapshot returned by all endpoints.
type ReclamationResponse struct {
	ID             int64                      `json:"id"`
	NumTicket      string                     `json:"num_ticket"`
	ClientLabel    string                     `json:"client_label"`
	Subject        string                     `json:"subject"`
	Description    string                     `json:"description"`
	Category       string                     `json:"category"`
	Priority       domain.ReclamationPriority `json:"priority"`
	Status         domain.ReclamationStatus   `json:"status"`
	TechnicianID   *int64                     `json:"technician_id"`
	OpenedAt       time.Time                  `json:"opened_at"`
	ResolvedAt     *time.Time                 `json:"resolved_at"`
	ResolutionNote *string                    `json:"resolution_note"`
}

// AssignmentResponse includes the cascade records created on assignment.
type AssignmentResponse struct {
	Reclamation  ReclamationResponse         `json:"reclamation"`
	Intervention InterventionRequestResponse `json:"intervention_request"`
	WorkOrder    WorkOrderResponse           `json:"work_order"`
}

// HistoryResponse is an audit entry.
type HistoryResponse struct {
	ID          string                   `json:"id"`
	ChangeType  domain.HistoryChangeType `json:"change_type"`
	ChangedByID *int64                   `json:"changed_by_id"`
	OldValue    map[string]any           `json:"old_value"`
	NewValue    map[string]any           `json:"new_value"`
	CreatedAt   time.Time                `json:"created_at"`
}

// FromReclamation maps the domain model.
func FromReclamation(rec *domain.Reclamation) ReclamationResponse {
	return ReclamationResponse{
		ID:             rec.ID,
		NumTicket:      rec.NumTicket,
		ClientLabel:    rec.ClientLabel,
		Subject:        rec.Subject,
		Description:    rec.Description,
		Category:       rec.Category,
		Priority:       rec.Priority,
		Status:         rec.Status,
		TechnicianID:   rec.TechnicianID,
		OpenedAt:       rec.OpenedAt,
		ResolvedAt:     rec.ResolvedAt,
		ResolutionNote: rec.ResolutionNote,
	}
}
