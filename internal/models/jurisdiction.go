package models

import "time"

// Jurisdiction holds the compliance parameters of a data protection regime.
type Jurisdiction struct {
	Code          string    `db:"code" json:"code"`
	Name          string    `db:"name" json:"name"`
	Country       string    `db:"country" json:"country"`
	Region        string    `db:"region" json:"region"`
	RegulatorName *string   `db:"regulator_name" json:"regulator_name,omitempty"`
	DSARDays      int       `db:"dsar_days" json:"dsar_days"`
	BreachHours   *int      `db:"breach_hours" json:"breach_hours,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	SortOrder     int       `db:"sort_order" json:"sort_order"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// JurisdictionFilter constrains jurisdiction listings.
type JurisdictionFilter struct {
	IsActive *bool
	Country  string
	Search   string
}

// JurisdictionReferences counts records that still point at a jurisdiction.
type JurisdictionReferences struct {
	DSARs    int `db:"dsars" json:"dsars"`
	Breaches int `db:"breaches" json:"breaches"`
	Consents   int `db:"consents" json:"consents"`
	Complaints int `db:"complaints" json:"complaints"`
	Officers   int `db:"officers" json:"officers"`
}

// Total sums every reference kind.
func (r JurisdictionReferences) Total() int {
	return r.DSARs + r.Breaches + r.Consents + r.Complaints + r.Officers
}
