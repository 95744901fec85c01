package domain

import "time"

// InterventionRequest (DI) is the planning record created when a
// reclamation is assigned. Its fault description is a snapshot of the
// ticket subject at assignment time, not a live reference.
type InterventionRequest struct {
	ID               string
	NumDI            int64
	FaultDescription string
	RequesterLabel   string
	ServiceCode      string
	ReclamationID    *int64
	CreatedAt        time.Time
}
