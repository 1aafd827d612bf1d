package dto

import "time"

// UpsertJurisdictionRequest creates or rewrites a jurisdiction.
type UpsertJurisdictionRequest struct {
	Code          string  `json:"code" validate:"required"`
	Name          string  `json:"name" validate:"required,max=255"`
	Country       string  `json:"country" validate:"required,max=100"`
	Region        string  `json:"region" validate:"max=100"`
	RegulatorName *string `json:"regulator_name,omitempty" validate:"omitempty,max=255"`
	DSARDays      int     `json:"dsar_days"`
	BreachHours   *int    `json:"breach_hours,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
	SortOrder     int     `json:"sort_order"`
}

// DSARDeadlineResponse previews a DSAR due date.
type DSARDeadlineResponse struct {
	JurisdictionCode string    `json:"jurisdiction_code"`
	ReceivedDate     time.Time `json:"received_date"`
	DSARDays         int       `json:"dsar_days"`
	DueDate          time.Time `json:"due_date"`
	DaysRemaining    *int      `json:"days_remaining,omitempty"`
}

// BreachDeadlineResponse previews a regulator notification deadline. A nil
// deadline means the jurisdiction sets no notification window.
type BreachDeadlineResponse struct {
	JurisdictionCode     string     `json:"jurisdiction_code"`
	DetectedDate         time.Time  `json:"detected_date"`
	BreachHours          *int       `json:"breach_hours"`
	NotificationDeadline *time.Time `json:"notification_deadline"`
	RegulatorName        *string    `json:"regulator_name,omitempty"`
}
