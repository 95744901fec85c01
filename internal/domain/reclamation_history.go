package domain

import "time"

// HistoryChangeType enumerates audited change kinds.
type HistoryChangeType string

const (
	ChangeTypeStatus     HistoryChangeType = "STATUS"
	ChangeTypeAssignment HistoryChangeType = "ASSIGNMENT"
)

// ReclamationHistory records an audited change to a reclamation.
type ReclamationHistory struct {
	ID            string
	ReclamationID int64
	ChangedByID   *int64
	ChangeType    HistoryChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
