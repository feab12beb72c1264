package service

import (
	"time"

	"kecdesk/internal/duedate"
	"kecdesk/internal/dto"
)

// Calendar supplies "today" in the business time zone.
type Calendar struct {
	Loc *time.Location
	Now func() time.Time
}

func NewCalendar(loc *time.Location) Calendar {
	return Calendar{Loc: loc, Now: time.Now}
}

func (c Calendar) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return duedate.Today(now(), c.Loc)
}

// parseDate reads a wire date as a calendar day.
func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, invalidf("%s: expected YYYY-MM-DD, got %q", field, s)
	}
	return duedate.Day(t), nil
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t time.Time) string { return t.Format(dto.DateLayout) }

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}
