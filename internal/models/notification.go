package models

import "time"

// NotificationType identifies the event that produced a notification.
type NotificationType string

const (
	NotificationStatusChanged     NotificationType = "STATUS_CHANGED"
	NotificationRegulatorNotified NotificationType = "REGULATOR_NOTIFIED"
	NotificationDSAROverdue       NotificationType = "DSAR_OVERDUE"
	NotificationBreachDeadline    NotificationType = "BREACH_DEADLINE_PASSED"
)

// Entity types referenced by notifications and audit logs.
const (
	EntityDSAR      = "dsar"
	EntityBreach    = "breach"
	EntityComplaint = "complaint"
	EntityConsent   = "consent"
	EntityROPA      = "ropa"
	EntityOfficer   = "officer"
	EntityJuris     = "jurisdiction"
)

// Notification is a message emitted by a compliance workflow event.
type Notification struct {
	ID           string           `db:"id" json:"id"`
	Type         NotificationType `db:"type" json:"type"`
	Recipient    string           `db:"recipient" json:"recipient"`
	TargetUserID *string          `db:"target_user_id" json:"target_user_id,omitempty"`
	Subject      string           `db:"subject" json:"subject"`
	Message      string           `db:"message" json:"message"`
	EntityType   string           `db:"entity_type" json:"entity_type"`
	EntityID     string           `db:"entity_id" json:"entity_id"`
	IsRead       bool             `db:"is_read" json:"is_read"`
	ReadAt       *time.Time       `db:"read_at" json:"read_at,omitempty"`
	DeliveredAt  *time.Time       `db:"delivered_at" json:"delivered_at,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter constrains notification listings.
type NotificationFilter struct {
	TargetUserID string
	UnreadOnly   bool
	PageRequest
}
