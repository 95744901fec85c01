package dto

import (
	"time"

	"github.com/sav-suite/reclamation-service/internal/domain"
)

// CloseWorkOrderRequest payload.
type CloseWorkOrderRequest struct {
	Result *string `json:"result,omitempty"`
}

// InterventionRequestResponse mirrors a DI record.
type InterventionRequestResponse struct {
	ID               string    `json:"id"`
	NumDI            int64     `json:"num_di"`
	FaultDescription string    `json:"fault_description"`
	RequesterLabel   string    `json:"requester_label"`
	ServiceCode      string    `json:"service_code"`
	ReclamationID    *int64    `json:"reclamation_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// WorkOrderResponse mirrors a BT record.
type WorkOrderResponse struct {
	ID               string     `json:"id"`
	NumBT            int64      `json:"num_bt"`
	InterventionID   string     `json:"intervention_id"`
	NumDI            int64      `json:"num_di"`
	TechnicianID     int64      `json:"technician_id"`
	FaultDescription string     `json:"fault_description"`
	InProgress       bool       `json:"in_progress"`
	Closed           bool       `json:"closed"`
	Result           *string    `json:"result"`
	CreatedAt        time.Time  `json:"created_at"`
	ClosedAt         *time.Time `json:"closed_at"`
}

// CloseWorkOrderResponse includes the resolved ticket when the cascade
// reached one.
type CloseWorkOrderResponse struct {
	WorkOrder   WorkOrderResponse    `json:"work_order"`
	Reclamation *ReclamationResponse `json:"reclamation,omitempty"`
}

// FromInterventionRequest maps the domain model.
func FromInterventionRequest(di *domain.InterventionRequest) InterventionRequestResponse {
	return InterventionRequestResponse{
		ID:               di.ID,
		NumDI:            di.NumDI,
		FaultDescription: di.FaultDescription,
		RequesterLabel:   di.RequesterLabel,
		ServiceCode:      di.ServiceCode,
		ReclamationID:    di.ReclamationID,
		CreatedAt:        di.CreatedAt,
	}
}

// FromWorkOrder maps the domain model.
func FromWorkOrder(bt *domain.WorkOrder) WorkOrderResponse {
	return WorkOrderResponse{
		ID:               bt.ID,
		NumBT:            bt.NumBT,
		InterventionID:   bt.InterventionID,
		NumDI:            bt.NumDI,
		TechnicianID:     bt.TechnicianID,
		FaultDescription: bt.FaultDescription,
		InProgress:       bt.InProgress,
		Closed:           bt.Closed,
		Result:           bt.Result,
		CreatedAt:        bt.CreatedAt,
		ClosedAt:         bt.ClosedAt,
	}
}
