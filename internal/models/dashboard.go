package models

import "time"

// DashboardSummary aggregates register counts for the compliance overview.
type DashboardSummary struct {
	OpenDSARs             int       `db:"open_dsars" json:"open_dsars"`
	OverdueDSARs          int       `db:"overdue_dsars" json:"overdue_dsars"`
	OpenBreaches          int       `db:"open_breaches" json:"open_breaches"`
	BreachesPastDeadline  int       `db:"breaches_past_deadline" json:"breaches_past_deadline"`
	ActiveConsents        int       `db:"active_consents" json:"active_consents"`
	WithdrawnConsents     int       `db:"withdrawn_consents" json:"withdrawn_consents"`
	OpenComplaints        int       `db:"open_complaints" json:"open_complaints"`
	ROPAReviewsDue        int       `db:"ropa_reviews_due" json:"ropa_reviews_due"`
	ActiveJurisdictions   int       `db:"active_jurisdictions" json:"active_jurisdictions"`
	ActivePrivacyOfficers int       `db:"active_privacy_officers" json:"active_privacy_officers"`
	GeneratedAt           time.Time `db:"-" json:"generated_at"`
}
