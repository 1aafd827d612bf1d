package dto

// CreateROPARequest adds a processing activity.
type CreateROPARequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	Purpose        string `json:"purpose" validate:"required"`
	LawfulBasis    string `json:"lawful_basis" validate:"required"`
	DataCategories string `json:"data_categories"`
	DPIARequired   bool   `json:"dpia_required"`
	DPIACompleted  bool   `json:"dpia_completed"`
}

// UpdateROPARequest edits a processing activity.
type UpdateROPARequest struct {
	CreateROPARequest
	Version *int `json:"version,omitempty" validate:"omitempty,min=1"`
}
