package models

import "time"

// ConsentMethod records how consent was captured.
type ConsentMethod string

const (
	ConsentMethodWebForm ConsentMethod = "web_form"
	ConsentMethodEmail   ConsentMethod = "email"
	ConsentMethodPaper   ConsentMethod = "paper"
	ConsentMethodVerbal  ConsentMethod = "verbal"
	ConsentMethodAPI     ConsentMethod = "api"
)

// Valid reports whether the method is supported.
func (m ConsentMethod) Valid() bool {
	switch m {
	case ConsentMethodWebForm, ConsentMethodEmail, ConsentMethodPaper, ConsentMethodVerbal, ConsentMethodAPI:
		return true
	}
	return false
}

// ConsentStatus captures the state of a consent record.
type ConsentStatus string

const (
	ConsentStatusActive    ConsentStatus = "active"
	ConsentStatusWithdrawn ConsentStatus = "withdrawn"
	ConsentStatusExpired   ConsentStatus = "expired"
)

var consentBadges = map[ConsentStatus]Badge{
	ConsentStatusActive:    BadgeSuccess,
	ConsentStatusWithdrawn: BadgeDanger,
	ConsentStatusExpired:   BadgeSecondary,
}

// Badge returns the display class for the status.
func (s ConsentStatus) Badge() Badge { return badgeFor(consentBadges, s) }

// Display returns the label and badge for the status.
func (s ConsentStatus) Display() StatusDisplay { return display(consentBadges, s) }

// ConsentRecord is a data subject's consent for a processing purpose.
type ConsentRecord struct {
	ID               string        `db:"id" json:"id"`
	DataSubjectID    string        `db:"data_subject_id" json:"data_subject_id"`
	Purpose          string        `db:"purpose" json:"purpose"`
	JurisdictionCode string        `db:"jurisdiction_code" json:"jurisdiction_code"`
	ConsentGiven     bool          `db:"consent_given" json:"consent_given"`
	ConsentMethod    ConsentMethod `db:"consent_method" json:"consent_method"`
	ConsentDate      time.Time     `db:"consent_date" json:"consent_date"`
	ExpiresAt        *time.Time    `db:"expires_at" json:"expires_at,omitempty"`
	Status           ConsentStatus `db:"status" json:"status"`
	WithdrawalDate   *time.Time    `db:"withdrawal_date" json:"withdrawal_date,omitempty"`
	WithdrawalReason *string       `db:"withdrawal_reason" json:"withdrawal_reason,omitempty"`
	Version          int           `db:"version" json:"version"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`

	StatusDisplay StatusDisplay `db:"-" json:"status_display"`
}

// ConsentFilter constrains consent listings.
type ConsentFilter struct {
	Status           []ConsentStatus
	DataSubjectID    string
	Purpose          string
	JurisdictionCode string
	PageRequest
}
