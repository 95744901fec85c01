package domain

import "time"

// WorkOrder (BT) is the executable task paired with an intervention
// request. InProgress and Closed are mutually exclusive; closure is
// terminal and is the only event that resolves the parent reclamation.
type WorkOrder struct {
	ID               string
	NumBT            int64
	InterventionID   string
	NumDI            int64
	TechnicianID     int64
	FaultDescription string
	InProgress       bool
	Closed           bool
	Result           *string
	CreatedAt        time.Time
	ClosedAt         *time.Time
}
