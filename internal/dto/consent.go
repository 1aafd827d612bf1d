package dto

import "time"

// CreateConsentRequest captures a consent grant.
type CreateConsentRequest struct {
	DataSubjectID    string     `json:"data_subject_id" validate:"required,max=255"`
	Purpose          string     `json:"purpose" validate:"required,max=255"`
	JurisdictionCode string     `json:"jurisdiction_code" validate:"required"`
	ConsentMethod    string     `json:"consent_method" validate:"required"`
	ConsentDate      *time.Time `json:"consent_date,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

// UpdateConsentRequest edits a consent record.
type UpdateConsentRequest struct {
	Purpose          string     `json:"purpose" validate:"required,max=255"`
	JurisdictionCode string     `json:"jurisdiction_code" validate:"required"`
	ConsentMethod    string     `json:"consent_method" validate:"required"`
	ConsentDate      *time.Time `json:"consent_date,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	Version          *int       `json:"version,omitempty" validate:"omitempty,min=1"`
}
