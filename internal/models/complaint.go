package models

import "time"

// ComplaintStatus captures the handling of a privacy complaint.
type ComplaintStatus string

const (
	ComplaintStatusReceived      ComplaintStatus = "received"
	ComplaintStatusInvestigating ComplaintStatus = "investigating"
	ComplaintStatusResolved      ComplaintStatus = "resolved"
	ComplaintStatusEscalated     ComplaintStatus = "escalated"
	ComplaintStatusClosed        ComplaintStatus = "closed"
)

var complaintBadges = map[ComplaintStatus]Badge{
	ComplaintStatusReceived:      BadgeInfo,
	ComplaintStatusInvestigating: BadgeWarning,
	ComplaintStatusResolved:      BadgeSuccess,
	ComplaintStatusEscalated:     BadgeDanger,
	ComplaintStatusClosed:        BadgeSecondary,
}

// Badge returns the display class for the status.
func (s ComplaintStatus) Badge() Badge { return badgeFor(complaintBadges, s) }

// Display returns the label and badge for the status.
func (s ComplaintStatus) Display() StatusDisplay { return display(complaintBadges, s) }

// Complaint is a privacy complaint lodged by an individual.
type Complaint struct {
	ID               string          `db:"id" json:"id"`
	ReferenceNumber  string          `db:"reference_number" json:"reference_number"`
	ComplaintType    string          `db:"complaint_type" json:"complaint_type"`
	ComplainantName  string          `db:"complainant_name" json:"complainant_name"`
	ComplainantEmail string          `db:"complainant_email" json:"complainant_email"`
	JurisdictionCode *string         `db:"jurisdiction_code" json:"jurisdiction_code,omitempty"`
	Description      string          `db:"description" json:"description"`
	Status           ComplaintStatus `db:"status" json:"status"`
	Resolution       *string         `db:"resolution" json:"resolution,omitempty"`
	ResolvedDate     *time.Time      `db:"resolved_date" json:"resolved_date,omitempty"`
	Version          int             `db:"version" json:"version"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`

	StatusDisplay StatusDisplay `db:"-" json:"status_display"`
}

// ComplaintFilter constrains complaint listings.
type ComplaintFilter struct {
	Status        []ComplaintStatus
	ComplaintType string
	Search        string
	PageRequest
}
