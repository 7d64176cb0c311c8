package domain

import "time"

// AlertType enumerates alert categories recorded by the monitors.
type AlertType string

const (
	AlertTypeSurcharge AlertType = "SURCHARGE"
	AlertTypeSLABreach AlertType = "SLA_BREACH"
)

// AlertLevel grades alert severity.
type AlertLevel string

const (
	AlertLevelWarning  AlertLevel = "WARNING"
	AlertLevelCritical AlertLevel = "CRITICAL"
)

// AlertRecord is a persisted alert, deduplicated so that at most one
// unresolved record of a given type exists per subject user.
type AlertRecord struct {
	ID            string
	AlertType     AlertType
	AlertLevel    AlertLevel
	SubjectUserID string
	BordereauID   *string
	Message       string
	Resolved      bool
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}
