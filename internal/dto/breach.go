package dto

import "time"

// CreateBreachRequest records a personal data breach.
type CreateBreachRequest struct {
	Title            string     `json:"title" validate:"required,max=255"`
	BreachType       string     `json:"breach_type" validate:"required"`
	Severity         string     `json:"severity" validate:"required"`
	JurisdictionCode string     `json:"jurisdiction_code" validate:"required"`
	DetectedDate     *time.Time `json:"detected_date,omitempty"`
	AffectedSubjects int        `json:"affected_subjects" validate:"min=0"`
	Description      string     `json:"description"`
}

// UpdateBreachRequest edits a breach.
type UpdateBreachRequest struct {
	CreateBreachRequest
	Version *int `json:"version,omitempty" validate:"omitempty,min=1"`
}

// NotifyRegulatorRequest marks the regulator as notified.
type NotifyRegulatorRequest struct {
	ExpectedVersion *int       `json:"expected_version,omitempty" validate:"omitempty,min=1"`
	NotifiedAt      *time.Time `json:"notified_at,omitempty"`
}
