package domain

import "time"

// ReclamationStatus enumerates lifecycle states for reclamations.
type ReclamationStatus string

const (
	StatusOpen       ReclamationStatus = "OPEN"
	StatusInProgress ReclamationStatus = "IN_PROGRESS"
	StatusResolved   ReclamationStatus = "RESOLVED"
	StatusClosed     ReclamationStatus = "CLOSED"
)

// ReclamationPriority enumerates urgency levels.
type ReclamationPriority string

const (
	PriorityLow    ReclamationPriority = "LOW"
	PriorityMedium ReclamationPriority = "MEDIUM"
	PriorityHigh   ReclamationPriority = "HIGH"
	PriorityUrgent ReclamationPriority = "URGENT"
)

var validStatuses = map[ReclamationStatus]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusResolved:   true,
	StatusClosed:     true,
}

// statusTransitions is the closed transition table of the workflow.
// OPEN is initial, CLOSED is terminal. IN_PROGRESS -> OPEN covers
// technician unassignment.
var statusTransitions = map[ReclamationStatus][]ReclamationStatus{
	StatusOpen:       {StatusInProgress},
	StatusInProgress: {StatusOpen, StatusResolved},
	StatusResolved:   {StatusClosed},
	StatusClosed:     {},
}

func (s ReclamationStatus) String() string {
	return string(s)
}

func (s ReclamationStatus) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal reports whether no further transition is possible.
func (s ReclamationStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0 && s.IsValid()
}

// CanTransitionTo validates a move against the transition table.
func (s ReclamationStatus) CanTransitionTo(next ReclamationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RequiresResolution reports whether the status carries a resolution timestamp.
func (s ReclamationStatus) RequiresResolution() bool {
	return s == StatusResolved || s == StatusClosed
}

// Reclamation is the aggregate for customer complaints. It owns the
// workflow state; intervention requests and work orders are satellite
// records created by the assignment cascade.
type Reclamation struct {
	ID             int64
	NumTicket      string
	ClientLabel    string
	Subject        string
	Description    string
	Category       string
	Priority       ReclamationPriority
	Status         ReclamationStatus
	TechnicianID   *int64
	OpenedAt       time.Time
	ResolvedAt     *time.Time
	ResolutionNote *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
