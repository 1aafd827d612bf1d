package models

import "time"

// BreachType classifies a personal data breach.
type BreachType string

const (
	BreachTypeUnauthorizedAccess BreachType = "unauthorized_access"
	BreachTypeDataLoss           BreachType = "data_loss"
	BreachTypeRansomware         BreachType = "ransomware"
	BreachTypeMisdirected        BreachType = "misdirected_disclosure"
	BreachTypeOther              BreachType = "other"
)

// Valid reports whether the breach type is supported.
func (t BreachType) Valid() bool {
	switch t {
	case BreachTypeUnauthorizedAccess, BreachTypeDataLoss, BreachTypeRansomware, BreachTypeMisdirected, BreachTypeOther:
		return true
	}
	return false
}

// BreachSeverity grades the risk to data subjects.
type BreachSeverity string

const (
	SeverityLow      BreachSeverity = "low"
	SeverityMedium   BreachSeverity = "medium"
	SeverityHigh     BreachSeverity = "high"
	SeverityCritical BreachSeverity = "critical"
)

var severityBadges = map[BreachSeverity]Badge{
	SeverityLow:      BadgeInfo,
	SeverityMedium:   BadgeWarning,
	SeverityHigh:     BadgeDanger,
	SeverityCritical: BadgeDark,
}

// Valid reports whether the severity is supported.
func (s BreachSeverity) Valid() bool {
	_, ok := severityBadges[s]
	return ok
}

// Badge returns the display class for the severity.
func (s BreachSeverity) Badge() Badge { return badgeFor(severityBadges, s) }

// BreachStatus captures the lifecycle of a breach investigation.
type BreachStatus string

const (
	BreachStatusDetected      BreachStatus = "detected"
	BreachStatusInvestigating BreachStatus = "investigating"
	BreachStatusContained     BreachStatus = "contained"
	BreachStatusResolved      BreachStatus = "resolved"
	BreachStatusClosed        BreachStatus = "closed"
)

var breachBadges = map[BreachStatus]Badge{
	BreachStatusDetected:      BadgeDanger,
	BreachStatusInvestigating: BadgeWarning,
	BreachStatusContained:     BadgeInfo,
	BreachStatusResolved:      BadgeSuccess,
	BreachStatusClosed:        BadgeSecondary,
}

// Badge returns the display class for the status.
func (s BreachStatus) Badge() Badge { return badgeFor(breachBadges, s) }

// Display returns the label and badge for the status.
func (s BreachStatus) Display() StatusDisplay { return display(breachBadges, s) }

// Breach is a personal data breach and its regulator notification state.
type Breach struct {
	ID                    string         `db:"id" json:"id"`
	ReferenceNumber       string         `db:"reference_number" json:"reference_number"`
	Title                 string         `db:"title" json:"title"`
	BreachType            BreachType     `db:"breach_type" json:"breach_type"`
	Severity              BreachSeverity `db:"severity" json:"severity"`
	JurisdictionCode      string         `db:"jurisdiction_code" json:"jurisdiction_code"`
	DetectedDate          time.Time      `db:"detected_date" json:"detected_date"`
	NotificationDeadline  *time.Time     `db:"notification_deadline" json:"notification_deadline,omitempty"`
	AffectedSubjects      int            `db:"affected_subjects" json:"affected_subjects"`
	Description           string         `db:"description" json:"description"`
	Status                BreachStatus   `db:"status" json:"status"`
	RegulatorNotified     bool           `db:"regulator_notified" json:"regulator_notified"`
	RegulatorNotifiedDate *time.Time     `db:"regulator_notified_date" json:"regulator_notified_date,omitempty"`
	ResolvedDate          *time.Time     `db:"resolved_date" json:"resolved_date,omitempty"`
	DeadlineAlertedAt     *time.Time     `db:"deadline_alerted_at" json:"-"`
	Version               int            `db:"version" json:"version"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`

	NotificationOverdue bool          `db:"-" json:"notification_overdue"`
	SeverityBadge       Badge         `db:"-" json:"severity_badge"`
	StatusDisplay       StatusDisplay `db:"-" json:"status_display"`
}

// BreachFilter constrains breach listings.
type BreachFilter struct {
	Status            []BreachStatus
	Severity          BreachSeverity
	JurisdictionCode  string
	RegulatorNotified *bool
	Search            string
	PageRequest
}
