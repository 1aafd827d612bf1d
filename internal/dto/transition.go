package dto

// TransitionRequest moves a record to a new status. ExpectedStatus guards
// against concurrent changes; ExpectedVersion tightens the guard further.
type TransitionRequest struct {
	TargetStatus    string `json:"target_status" validate:"required"`
	ExpectedStatus  string `json:"expected_status" validate:"required"`
	ExpectedVersion *int   `json:"expected_version,omitempty" validate:"omitempty,min=1"`
	Note            string `json:"note,omitempty" validate:"max=4000"`
}
