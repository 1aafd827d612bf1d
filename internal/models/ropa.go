package models

import "time"

// LawfulBasis is the legal justification for a processing activity.
type LawfulBasis string

const (
	LawfulBasisConsent             LawfulBasis = "consent"
	LawfulBasisContract            LawfulBasis = "contract"
	LawfulBasisLegalObligation     LawfulBasis = "legal_obligation"
	LawfulBasisVitalInterests      LawfulBasis = "vital_interests"
	LawfulBasisPublicTask          LawfulBasis = "public_task"
	LawfulBasisLegitimateInterests LawfulBasis = "legitimate_interests"
)

// Valid reports whether the lawful basis is supported.
func (b LawfulBasis) Valid() bool {
	switch b {
	case LawfulBasisConsent, LawfulBasisContract, LawfulBasisLegalObligation,
		LawfulBasisVitalInterests, LawfulBasisPublicTask, LawfulBasisLegitimateInterests:
		return true
	}
	return false
}

// Label returns the display label for the lawful basis.
func (b LawfulBasis) Label() string { return humanize(string(b)) }

// ROPAStatus captures the review state of a processing activity.
type ROPAStatus string

const (
	ROPAStatusDraft         ROPAStatus = "draft"
	ROPAStatusPendingReview ROPAStatus = "pending_review"
	ROPAStatusApproved      ROPAStatus = "approved"
	ROPAStatusArchived      ROPAStatus = "archived"
)

var ropaBadges = map[ROPAStatus]Badge{
	ROPAStatusDraft:         BadgeSecondary,
	ROPAStatusPendingReview: BadgeWarning,
	ROPAStatusApproved:      BadgeSuccess,
	ROPAStatusArchived:      BadgeDark,
}

// Badge returns the display class for the status.
func (s ROPAStatus) Badge() Badge { return badgeFor(ropaBadges, s) }

// Display returns the label and badge for the status.
func (s ROPAStatus) Display() StatusDisplay { return display(ropaBadges, s) }

// ROPAActivity is an entry in the record of processing activities.
type ROPAActivity struct {
	ID             string      `db:"id" json:"id"`
	Name           string      `db:"name" json:"name"`
	Purpose        string      `db:"purpose" json:"purpose"`
	LawfulBasis    LawfulBasis `db:"lawful_basis" json:"lawful_basis"`
	DataCategories string      `db:"data_categories" json:"data_categories"`
	DPIARequired   bool        `db:"dpia_required" json:"dpia_required"`
	DPIACompleted  bool        `db:"dpia_completed" json:"dpia_completed"`
	Status         ROPAStatus  `db:"status" json:"status"`
	LastReviewedAt *time.Time  `db:"last_reviewed_at" json:"last_reviewed_at,omitempty"`
	NextReviewDate *time.Time  `db:"next_review_date" json:"next_review_date,omitempty"`
	Version        int         `db:"version" json:"version"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`

	ReviewDue     bool          `db:"-" json:"review_due"`
	StatusDisplay StatusDisplay `db:"-" json:"status_display"`
}

// ROPAFilter constrains processing activity listings.
type ROPAFilter struct {
	Status      []ROPAStatus
	LawfulBasis LawfulBasis
	Search      string
	PageRequest
}
