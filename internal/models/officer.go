package models

import "time"

// PrivacyOfficer is a registered data protection or information officer.
type PrivacyOfficer struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Email              string    `db:"email" json:"email"`
	Phone              *string   `db:"phone" json:"phone,omitempty"`
	JurisdictionCode   string    `db:"jurisdiction_code" json:"jurisdiction_code"`
	RegistrationNumber *string   `db:"registration_number" json:"registration_number,omitempty"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	Version            int       `db:"version" json:"version"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// OfficerFilter constrains officer listings.
type OfficerFilter struct {
	JurisdictionCode string
	IsActive         *bool
	Search           string
	PageRequest
}
