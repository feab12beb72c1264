// Package numbering renders and parses the document identifiers issued by the
// back office: invoice numbers (KEC/051/2526), inquiry create-ids
// (KEC020JY2025) and opportunity ids (oKEC020JY2025, LOST, ...).
//
// Everything here is pure. Allocation of the sequence numbers lives in the
// service layer.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPrefix is the company prefix carried by every identifier.
const DefaultPrefix = "KEC"

// SequenceWidth is the zero-padded width of the sequence field. Larger
// sequences widen the field instead of wrapping.
const SequenceWidth = 3

// Widened reports whether seq no longer fits the fixed 3-digit field.
// Callers log a warning when it does; the id itself stays well formed.
func Widened(seq int) bool {
	return seq > 999
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return invalid("prefix", prefix, "must not be empty")
	}
	for i := 0; i < len(prefix); i++ {
		if prefix[i] < 'A' || prefix[i] > 'Z' {
			return invalid("prefix", prefix, "only upper-case letters allowed")
		}
	}
	return nil
}

func validateSequence(seq int) error {
	if seq < 0 {
		return invalid("sequence", strconv.Itoa(seq), "must not be negative")
	}
	return nil
}

// FormatInvoiceNumber renders PREFIX/###/YYZZ.
func FormatInvoiceNumber(prefix string, seq int, fy FiscalYear) (string, error) {
	if err := validatePrefix(prefix); err != nil {
		return "", err
	}
	if err := validateSequence(seq); err != nil {
		return "", err
	}
	if err := fy.validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%0*d/%s", prefix, SequenceWidth, seq, fy.Tag()), nil
}

// ParseInvoiceNumber extracts the sequence and fiscal year from an invoice
// number carrying the given prefix.
func ParseInvoiceNumber(prefix, s string) (int, FiscalYear, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || parts[0] != prefix {
		return 0, FiscalYear{}, invalid("invoice number", s, "expected "+prefix+"/###/YYZZ")
	}
	seq, err := parseSequence(parts[1])
	if err != nil {
		return 0, FiscalYear{}, invalid("invoice number", s, err.Error())
	}
	fy, err := ParseFiscalYearTag(parts[2])
	if err != nil {
		return 0, FiscalYear{}, invalid("invoice number", s, "bad fiscal year tag")
	}
	return seq, fy, nil
}

// FormatInquiryID renders PREFIX###MMYYYY, 12 characters for sequences up
// to 999 with the default prefix.
func FormatInquiryID(prefix string, seq int, m MonthEpoch) (string, error) {
	if err := validatePrefix(prefix); err != nil {
		return "", err
	}
	if err := validateSequence(seq); err != nil {
		return "", err
	}
	if err := m.validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d%s", prefix, SequenceWidth, seq, m.Tag()), nil
}

// ParseInquiryID extracts the sequence and month epoch from a create-id.
func ParseInquiryID(prefix, s string) (int, MonthEpoch, error) {
	if !strings.HasPrefix(s, prefix) {
		return 0, MonthEpoch{}, invalid("create id", s, "missing prefix "+prefix)
	}
	rest := s[len(prefix):]
	if len(rest) < SequenceWidth+6 {
		return 0, MonthEpoch{}, invalid("create id", s, "too short")
	}
	digits, tag := rest[:len(rest)-6], rest[len(rest)-6:]
	seq, err := parseSequence(digits)
	if err != nil {
		return 0, MonthEpoch{}, invalid("create id", s, err.Error())
	}
	m, err := ParseMonthEpochTag(tag)
	if err != nil {
		return 0, MonthEpoch{}, invalid("create id", s, "bad month epoch")
	}
	return seq, m, nil
}

func parseSequence(digits string) (int, error) {
	if len(digits) < SequenceWidth || !allDigits(digits) {
		return 0, fmt.Errorf("sequence must be at least %d digits", SequenceWidth)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("sequence out of range")
	}
	return n, nil
}
