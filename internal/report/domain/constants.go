package domain

// Status is the lifecycle state of a report request in the status store
type Status string

// Request status constants
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "inprogress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is expected from s
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Sentinel values written into report cells
const (
	// NotAvailable marks an attribute absent from the detail payload
	NotAvailable = "N/A"
	// ErrorValue marks every enrichable attribute of an item whose detail fetch failed
	ErrorValue = "Error"
)

// ReportBlobPrefix is the prefix of every uploaded report artifact
const ReportBlobPrefix = "poke_report_"

// MaxAbilities is the number of ability names kept per item
const MaxAbilities = 3
