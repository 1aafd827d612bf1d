package lifecycle

import "github.com/noah-isme/privacy-admin-api/internal/models"

// DSAR governs data subject access requests. Every open status may be withdrawn.
var DSAR = New("dsar", models.DSARStatusReceived, map[models.DSARStatus][]models.DSARStatus{
	models.DSARStatusReceived:    {models.DSARStatusVerified, models.DSARStatusWithdrawn},
	models.DSARStatusVerified:    {models.DSARStatusInProgress, models.DSARStatusWithdrawn},
	models.DSARStatusInProgress:  {models.DSARStatusCompleted, models.DSARStatusRejected, models.DSARStatusPendingInfo, models.DSARStatusWithdrawn},
	models.DSARStatusPendingInfo: {models.DSARStatusInProgress, models.DSARStatusWithdrawn},
}, models.DSARStatusCompleted, models.DSARStatusRejected, models.DSARStatusWithdrawn)

// Complaint governs privacy complaints.
var Complaint = New("complaint", models.ComplaintStatusReceived, map[models.ComplaintStatus][]models.ComplaintStatus{
	models.ComplaintStatusReceived:      {models.ComplaintStatusInvestigating, models.ComplaintStatusClosed},
	models.ComplaintStatusInvestigating: {models.ComplaintStatusResolved, models.ComplaintStatusEscalated},
	models.ComplaintStatusEscalated:     {models.ComplaintStatusInvestigating, models.ComplaintStatusResolved},
	models.ComplaintStatusResolved:      {models.ComplaintStatusClosed, models.ComplaintStatusInvestigating},
}, models.ComplaintStatusClosed)

// Consent governs consent records.
var Consent = New("consent", models.ConsentStatusActive, map[models.ConsentStatus][]models.ConsentStatus{
	models.ConsentStatusActive: {models.ConsentStatusWithdrawn, models.ConsentStatusExpired},
}, models.ConsentStatusWithdrawn, models.ConsentStatusExpired)

// Breach governs personal data breach investigations.
var Breach = New("breach", models.BreachStatusDetected, map[models.BreachStatus][]models.BreachStatus{
	models.BreachStatusDetected:      {models.BreachStatusInvestigating, models.BreachStatusContained},
	models.BreachStatusInvestigating: {models.BreachStatusContained, models.BreachStatusResolved},
	models.BreachStatusContained:     {models.BreachStatusResolved},
	models.BreachStatusResolved:      {models.BreachStatusClosed},
}, models.BreachStatusClosed)

// ROPA governs processing activity reviews.
var ROPA = New("ropa", models.ROPAStatusDraft, map[models.ROPAStatus][]models.ROPAStatus{
	models.ROPAStatusDraft:         {models.ROPAStatusPendingReview},
	models.ROPAStatusPendingReview: {models.ROPAStatusApproved, models.ROPAStatusDraft},
	models.ROPAStatusApproved:      {models.ROPAStatusPendingReview, models.ROPAStatusArchived},
}, models.ROPAStatusArchived)
