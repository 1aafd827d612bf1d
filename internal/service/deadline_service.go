package service

import (
	"context"
	"time"

	"github.com/noah-isme/privacy-admin-api/internal/deadline"
	"github.com/noah-isme/privacy-admin-api/internal/dto"
)

// DeadlineService previews statutory deadlines without storing anything.
type DeadlineService struct {
	registry   jurisdictionRegistry
	calculator *deadline.Calculator
	now        func() time.Time
}

// NewDeadlineService constructs the service.
func NewDeadlineService(registry jurisdictionRegistry) *DeadlineService {
	return &DeadlineService{
		registry:   registry,
		calculator: deadline.NewCalculator(registry),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// DSAR computes the due date of a request received at received, or now when nil.
func (s *DeadlineService) DSAR(ctx context.Context, code string, received *time.Time) (*dto.DSARDeadlineResponse, error) {
	j, err := s.registry.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	at := s.now()
	if received != nil {
		at = received.UTC()
	}
	due, err := s.calculator.DSARDueDate(ctx, at, j.Code)
	if err != nil {
		return nil, err
	}
	return &dto.DSARDeadlineResponse{
		JurisdictionCode: j.Code,
		ReceivedDate:     at,
		DSARDays:         j.DSARDays,
		DueDate:          due,
		DaysRemaining:    deadline.DaysRemaining(&due, s.now()),
	}, nil
}

// Breach computes the regulator deadline for a breach detected at detected.
func (s *DeadlineService) Breach(ctx context.Context, code string, detected *time.Time) (*dto.BreachDeadlineResponse, error) {
	j, err := s.registry.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	at := s.now()
	if detected != nil {
		at = detected.UTC()
	}
	deadlineAt, err := s.calculator.BreachNotificationDeadline(ctx, at, j.Code)
	if err != nil {
		return nil, err
	}
	return &dto.BreachDeadlineResponse{
		JurisdictionCode:     j.Code,
		DetectedDate:         at,
		BreachHours:          j.BreachHours,
		NotificationDeadline: deadlineAt,
		RegulatorName:        j.RegulatorName,
	}, nil
}
