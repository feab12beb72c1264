package numbering

import (
	"fmt"
	"strconv"
	"time"
)

// FiscalYear is the April 1 – March 31 business year that scopes invoice
// numbering. StartYear is the calendar year in which it begins.
type FiscalYear struct {
	StartYear int
}

// FiscalYearOf returns the fiscal year containing t. January–March belong to
// the year that started the previous April.
func FiscalYearOf(t time.Time) FiscalYear {
	if t.Month() >= time.April {
		return FiscalYear{StartYear: t.Year()}
	}
	return FiscalYear{StartYear: t.Year() - 1}
}

// Tag renders the 4-digit fiscal tag, e.g. 2526 for Apr-2025..Mar-2026.
func (f FiscalYear) Tag() string {
	return fmt.Sprintf("%02d%02d", f.StartYear%100, (f.StartYear+1)%100)
}

func (f FiscalYear) String() string { return f.Tag() }

// Tags carry no century, so only years that ParseFiscalYearTag maps back
// are renderable.
const (
	minFiscalStartYear = 2000
	maxFiscalStartYear = 2099
)

func (f FiscalYear) validate() error {
	if f.StartYear < minFiscalStartYear || f.StartYear > maxFiscalStartYear {
		return invalid("fiscal year", strconv.Itoa(f.StartYear), "must start between 2000 and 2099")
	}
	return nil
}

// ParseFiscalYearTag is the inverse of Tag. Tags are read as 21st century years.
func ParseFiscalYearTag(tag string) (FiscalYear, error) {
	if len(tag) != 4 || !allDigits(tag) {
		return FiscalYear{}, invalid("fiscal year tag", tag, "must be 4 digits")
	}
	start, _ := strconv.Atoi(tag[:2])
	end, _ := strconv.Atoi(tag[2:])
	if (start+1)%100 != end {
		return FiscalYear{}, invalid("fiscal year tag", tag, "end year must follow start year")
	}
	return FiscalYear{StartYear: 2000 + start}, nil
}

var monthCodes = [12]string{"JA", "FE", "MR", "AP", "MY", "JN", "JY", "AU", "SE", "OC", "NO", "DE"}

// MonthEpoch scopes inquiry numbering to one calendar month.
type MonthEpoch struct {
	Year  int
	Month time.Month
}

func MonthEpochOf(t time.Time) MonthEpoch {
	return MonthEpoch{Year: t.Year(), Month: t.Month()}
}

// Code is the 2-letter month code (JA, FE, MR, ...).
func (m MonthEpoch) Code() string {
	if m.Month < time.January || m.Month > time.December {
		return ""
	}
	return monthCodes[m.Month-1]
}

// Tag is the code plus 4-digit year, e.g. JY2025. It is also the suffix of
// every create-id in the epoch.
func (m MonthEpoch) Tag() string {
	return fmt.Sprintf("%s%04d", m.Code(), m.Year)
}

func (m MonthEpoch) String() string { return m.Tag() }

func (m MonthEpoch) validate() error {
	if m.Month < time.January || m.Month > time.December {
		return invalid("month", strconv.Itoa(int(m.Month)), "out of range")
	}
	if m.Year < 1000 || m.Year > 9999 {
		return invalid("year", strconv.Itoa(m.Year), "must have 4 digits")
	}
	return nil
}

// ParseMonthEpochTag reads a tag such as JY2025.
func ParseMonthEpochTag(tag string) (MonthEpoch, error) {
	if len(tag) != 6 || !allDigits(tag[2:]) {
		return MonthEpoch{}, invalid("month epoch", tag, "expected 2-letter month code and 4-digit year")
	}
	month, ok := monthFromCode(tag[:2])
	if !ok {
		return MonthEpoch{}, invalid("month epoch", tag, "unknown month code")
	}
	year, _ := strconv.Atoi(tag[2:])
	return MonthEpoch{Year: year, Month: month}, nil
}

func monthFromCode(code string) (time.Month, bool) {
	for i, c := range monthCodes {
		if c == code {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
