package dto

// CreateComplaintRequest lodges a privacy complaint.
type CreateComplaintRequest struct {
	ComplaintType    string  `json:"complaint_type" validate:"required,max=50"`
	ComplainantName  string  `json:"complainant_name" validate:"required,max=255"`
	ComplainantEmail string  `json:"complainant_email" validate:"required,email"`
	JurisdictionCode *string `json:"jurisdiction_code,omitempty"`
	Description      string  `json:"description"`
}

// UpdateComplaintRequest edits a complaint.
type UpdateComplaintRequest struct {
	CreateComplaintRequest
	Version *int `json:"version,omitempty" validate:"omitempty,min=1"`
}
