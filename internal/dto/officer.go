package dto

// UpsertOfficerRequest creates or edits a privacy officer.
type UpsertOfficerRequest struct {
	Name               string  `json:"name" validate:"required,max=255"`
	Email              string  `json:"email" validate:"required,email"`
	Phone              *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	JurisdictionCode   string  `json:"jurisdiction_code" validate:"required"`
	RegistrationNumber *string `json:"registration_number,omitempty" validate:"omitempty,max=100"`
	IsActive           *bool   `json:"is_active,omitempty"`
	Version            *int    `json:"version,omitempty" validate:"omitempty,min=1"`
}
