package models

import "time"

// DSARRequestType enumerates data subject rights that can be exercised.
type DSARRequestType string

const (
	DSARTypeAccess        DSARRequestType = "access"
	DSARTypeRectification DSARRequestType = "rectification"
	DSARTypeErasure       DSARRequestType = "erasure"
	DSARTypePortability   DSARRequestType = "portability"
	DSARTypeRestriction   DSARRequestType = "restriction"
	DSARTypeObjection     DSARRequestType = "objection"
)

// Valid reports whether the request type is supported.
func (t DSARRequestType) Valid() bool {
	switch t {
	case DSARTypeAccess, DSARTypeRectification, DSARTypeErasure, DSARTypePortability, DSARTypeRestriction, DSARTypeObjection:
		return true
	}
	return false
}

// DSARStatus captures the lifecycle of a data subject access request.
type DSARStatus string

const (
	DSARStatusReceived    DSARStatus = "received"
	DSARStatusVerified    DSARStatus = "verified"
	DSARStatusInProgress  DSARStatus = "in_progress"
	DSARStatusPendingInfo DSARStatus = "pending_info"
	DSARStatusCompleted   DSARStatus = "completed"
	DSARStatusRejected    DSARStatus = "rejected"
	DSARStatusWithdrawn   DSARStatus = "withdrawn"
)

var dsarBadges = map[DSARStatus]Badge{
	DSARStatusReceived:    BadgeInfo,
	DSARStatusVerified:    BadgePrimary,
	DSARStatusInProgress:  BadgeWarning,
	DSARStatusPendingInfo: BadgeSecondary,
	DSARStatusCompleted:   BadgeSuccess,
	DSARStatusRejected:    BadgeDanger,
	DSARStatusWithdrawn:   BadgeDark,
}

// Badge returns the display class for the status.
func (s DSARStatus) Badge() Badge { return badgeFor(dsarBadges, s) }

// Display returns the label and badge for the status.
func (s DSARStatus) Display() StatusDisplay { return display(dsarBadges, s) }

// DSAR is a data subject access request tracked against its statutory deadline.
type DSAR struct {
	ID                string          `db:"id" json:"id"`
	ReferenceNumber   string          `db:"reference_number" json:"reference_number"`
	RequestType       DSARRequestType `db:"request_type" json:"request_type"`
	RequestorName     string          `db:"requestor_name" json:"requestor_name"`
	RequestorEmail    string          `db:"requestor_email" json:"requestor_email"`
	JurisdictionCode  string          `db:"jurisdiction_code" json:"jurisdiction_code"`
	ReceivedDate      time.Time       `db:"received_date" json:"received_date"`
	DueDate           *time.Time      `db:"due_date" json:"due_date,omitempty"`
	Status            DSARStatus      `db:"status" json:"status"`
	AssignedOfficerID *string         `db:"assigned_officer_id" json:"assigned_officer_id,omitempty"`
	Description       string          `db:"description" json:"description"`
	ResponseNote      *string         `db:"response_note" json:"response_note,omitempty"`
	CompletedDate     *time.Time      `db:"completed_date" json:"completed_date,omitempty"`
	OverdueAlertedAt  *time.Time      `db:"overdue_alerted_at" json:"-"`
	Version           int             `db:"version" json:"version"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`

	IsOverdue     bool          `db:"-" json:"is_overdue"`
	DaysRemaining *int          `db:"-" json:"days_remaining,omitempty"`
	StatusDisplay StatusDisplay `db:"-" json:"status_display"`
}

// DSARFilter constrains DSAR listings.
type DSARFilter struct {
	Status            []DSARStatus
	RequestType       DSARRequestType
	JurisdictionCode  string
	AssignedOfficerID string
	Search            string
	OverdueAt         *time.Time
	PageRequest
}
