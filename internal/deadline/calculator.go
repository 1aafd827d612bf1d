// Package deadline derives statutory response and notification deadlines.
package deadline

import (
	"context"
	"math"
	"time"

	"github.com/noah-isme/privacy-admin-api/internal/lifecycle"
	"github.com/noah-isme/privacy-admin-api/internal/models"
)

// JurisdictionSource resolves jurisdiction parameters by code.
type JurisdictionSource interface {
	Get(ctx context.Context, code string) (*models.Jurisdiction, error)
}

// Calculator computes deadlines from jurisdiction windows.
type Calculator struct {
	jurisdictions JurisdictionSource
}

// NewCalculator constructs a Calculator.
func NewCalculator(source JurisdictionSource) *Calculator {
	return &Calculator{jurisdictions: source}
}

// DSARDueDate returns received plus the jurisdiction's response window in calendar days.
func (c *Calculator) DSARDueDate(ctx context.Context, received time.Time, code string) (time.Time, error) {
	j, err := c.jurisdictions.Get(ctx, code)
	if err != nil {
		return time.Time{}, err
	}
	return received.AddDate(0, 0, j.DSARDays), nil
}

// BreachNotificationDeadline returns detected plus the regulator window, or nil
// when the jurisdiction sets no window.
func (c *Calculator) BreachNotificationDeadline(ctx context.Context, detected time.Time, code string) (*time.Time, error) {
	j, err := c.jurisdictions.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if j.BreachHours == nil {
		return nil, nil
	}
	deadline := detected.Add(time.Duration(*j.BreachHours) * time.Hour)
	return &deadline, nil
}

// IsOverdue reports whether an open DSAR has passed its due date.
func IsOverdue(due *time.Time, status models.DSARStatus, now time.Time) bool {
	if due == nil || lifecycle.DSAR.IsTerminal(status) {
		return false
	}
	return due.Before(now)
}

// IsBreachNotificationOverdue reports whether the regulator deadline passed
// without notification. Closed breaches are never flagged.
func IsBreachNotificationOverdue(b *models.Breach, now time.Time) bool {
	if b == nil || b.NotificationDeadline == nil || b.RegulatorNotified {
		return false
	}
	if lifecycle.Breach.IsTerminal(b.Status) {
		return false
	}
	return b.NotificationDeadline.Before(now)
}

// DaysRemaining returns whole days until due, negative once overdue, rounding toward the deadline.
func DaysRemaining(due *time.Time, now time.Time) *int {
	if due == nil {
		return nil
	}
	days := int(math.Ceil(due.Sub(now).Hours() / 24))
	return &days
}

// DecorateDSAR fills the computed fields of a DSAR.
func DecorateDSAR(d *models.DSAR, now time.Time) {
	if d == nil {
		return
	}
	d.IsOverdue = IsOverdue(d.DueDate, d.Status, now)
	if !lifecycle.DSAR.IsTerminal(d.Status) {
		d.DaysRemaining = DaysRemaining(d.DueDate, now)
	} else {
		d.DaysRemaining = nil
	}
	d.StatusDisplay = d.Status.Display()
}

// DecorateBreach fills the computed fields of a breach.
func DecorateBreach(b *models.Breach, now time.Time) {
	if b == nil {
		return
	}
	b.NotificationOverdue = IsBreachNotificationOverdue(b, now)
	b.SeverityBadge = b.Severity.Badge()
	b.StatusDisplay = b.Status.Display()
}
