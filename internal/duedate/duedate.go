// Package duedate holds the calendar arithmetic behind delivery and payment
// tracking. All functions are pure; "today" is always passed in.
package duedate

import (
	"errors"
	"fmt"
	"time"
)

// ErrNegativeDays is returned when a day count that must be non-negative
// (days to manufacture, payment terms) is not.
var ErrNegativeDays = errors.New("day count must not be negative")

// DefaultDueSoonDays is the window in which an open item counts as due soon.
const DefaultDueSoonDays = 7

// Day truncates t to its calendar date in t's own location and returns it as
// UTC midnight, so that differences between days are exact multiples of 24h.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar date of now as observed in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc))
}

// AddDays adds n calendar days to the date of d.
func AddDays(d time.Time, n int) time.Time {
	return Day(d).AddDate(0, 0, n)
}

// DeliveryDate is order date + days to manufacture.
func DeliveryDate(orderDate time.Time, daysToMfg int) (time.Time, error) {
	if daysToMfg < 0 {
		return time.Time{}, fmt.Errorf("days_to_mfg %d: %w", daysToMfg, ErrNegativeDays)
	}
	return AddDays(orderDate, daysToMfg), nil
}

// PaymentDueDate is GRN date + payment terms.
func PaymentDueDate(grnDate time.Time, paymentTerms int) (time.Time, error) {
	if paymentTerms < 0 {
		return time.Time{}, fmt.Errorf("payment_terms %d: %w", paymentTerms, ErrNegativeDays)
	}
	return AddDays(grnDate, paymentTerms), nil
}

// DueDays is target − today in whole days: positive means days remaining,
// zero means due today, negative means overdue.
func DueDays(target, today time.Time) int {
	return int(Day(target).Sub(Day(today)) / (24 * time.Hour))
}

// Status is the due classification of an open item.
type Status int

const (
	OnTrack Status = iota
	DueSoon
	DueToday
	Overdue
)

// Classify buckets a due-days value. Items more than dueSoonDays away are on track.
func Classify(dueDays, dueSoonDays int) Status {
	switch {
	case dueDays < 0:
		return Overdue
	case dueDays == 0:
		return DueToday
	case dueDays <= dueSoonDays:
		return DueSoon
	default:
		return OnTrack
	}
}

func (s Status) String() string {
	switch s {
	case OnTrack:
		return "On Track"
	case DueSoon:
		return "Due Soon"
	case DueToday:
		return "Due Today"
	case Overdue:
		return "Overdue"
	default:
		return "Unknown"
	}
}

// PaymentLabel is the wording used for invoices.
func (s Status) PaymentLabel() string {
	if s == OnTrack {
		return "Not Due"
	}
	return s.String()
}

// DisplayText renders a due-days value for people.
func DisplayText(dueDays int) string {
	switch {
	case dueDays > 0:
		return fmt.Sprintf("%d days left", dueDays)
	case dueDays == 0:
		return "Due today"
	default:
		return fmt.Sprintf("%d days overdue", -dueDays)
	}
}
