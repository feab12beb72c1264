package duedate_test

import (
	"errors"
	"testing"
	"time"

	"kecdesk/internal/duedate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeliveryDate_IsPureAddition(t *testing.T) {
	starts := []time.Time{
		date(2026, time.January, 2),
		date(2024, time.February, 28),
		date(2025, time.December, 31),
		date(2026, time.March, 29),
	}
	for _, d := range starts {
		for _, k := range []int{0, 1, 2, 29, 30, 31, 365, 366, 1000} {
			got, err := duedate.DeliveryDate(d, k)
			require.NoError(t, err)
			assert.Equal(t, k, duedate.DueDays(got, d), "%s + %d", d.Format("2006-01-02"), k)
		}
	}
}

func TestDeliveryDate_ZeroDaysIsOrderDate(t *testing.T) {
	got, err := duedate.DeliveryDate(date(2026, time.January, 2), 0)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.January, 2), got)
}

func TestDeliveryDate_LeapYear(t *testing.T) {
	got, err := duedate.DeliveryDate(date(2024, time.February, 28), 1)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 29), got)
}

func TestPaymentDueDate(t *testing.T) {
	got, err := duedate.PaymentDueDate(date(2025, time.December, 20), 15)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.January, 4), got)
}

func TestNegativeDaysRejected(t *testing.T) {
	_, err := duedate.DeliveryDate(date(2026, time.January, 2), -1)
	assert.True(t, errors.Is(err, duedate.ErrNegativeDays))

	_, err = duedate.PaymentDueDate(date(2026, time.January, 2), -15)
	assert.True(t, errors.Is(err, duedate.ErrNegativeDays))
}

func TestDueDays_Sign(t *testing.T) {
	today := date(2026, time.January, 2)

	assert.Equal(t, 0, duedate.DueDays(today, today))
	assert.Equal(t, 3, duedate.DueDays(date(2026, time.January, 5), today))
	assert.Equal(t, -5, duedate.DueDays(date(2025, time.December, 28), today))
}

func TestDueDays_IgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2026, time.January, 2, 23, 59, 0, 0, time.UTC)
	target := time.Date(2026, time.January, 3, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, duedate.DueDays(target, today))
}

func TestToday_UsesLocation(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 20:00 UTC on Jan 1 is already Jan 2 in India.
	now := time.Date(2026, time.January, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, date(2026, time.January, 2), duedate.Today(now, ist))
	assert.Equal(t, date(2026, time.January, 1), duedate.Today(now, nil))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, duedate.Overdue, duedate.Classify(-1, 7))
	assert.Equal(t, duedate.DueToday, duedate.Classify(0, 7))
	assert.Equal(t, duedate.DueSoon, duedate.Classify(1, 7))
	assert.Equal(t, duedate.DueSoon, duedate.Classify(7, 7))
	assert.Equal(t, duedate.OnTrack, duedate.Classify(8, 7))

	assert.Equal(t, "Not Due", duedate.OnTrack.PaymentLabel())
	assert.Equal(t, "Overdue", duedate.Overdue.PaymentLabel())
}

func TestDisplayText(t *testing.T) {
	assert.Equal(t, "4 days left", duedate.DisplayText(4))
	assert.Equal(t, "Due today", duedate.DisplayText(0))
	assert.Equal(t, "5 days overdue", duedate.DisplayText(-5))
}
