package dto

import "time"

// CreateDSARRequest registers a data subject access request.
type CreateDSARRequest struct {
	RequestType       string     `json:"request_type" validate:"required"`
	RequestorName     string     `json:"requestor_name" validate:"required,max=255"`
	RequestorEmail    string     `json:"requestor_email" validate:"required,email"`
	JurisdictionCode  string     `json:"jurisdiction_code" validate:"required"`
	ReceivedDate      *time.Time `json:"received_date,omitempty"`
	AssignedOfficerID *string    `json:"assigned_officer_id,omitempty" validate:"omitempty,uuid"`
	Description       string     `json:"description"`
}

// UpdateDSARRequest edits a DSAR. Version, when provided, must match the stored row.
type UpdateDSARRequest struct {
	CreateDSARRequest
	Version *int `json:"version,omitempty" validate:"omitempty,min=1"`
}
