// Package normalize converts raw request fields into canonical typed values.
package normalize

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	PhoneDigits   = 10
	MaxAmount     = 1_000_000
	MaxPoints     = 1_000_000
	maxNumericLen = 32

	CanonicalDateLayout = "2006-01-02"
)

var (
	ErrRequired      = errors.New("is required")
	ErrPhoneTooShort = errors.New("must contain at least 10 digits")
	ErrDateFormat    = errors.New("must be a date in YYYY-MM-DD, DD.MM.YYYY, DD-MM-YYYY or YYYY.MM.DD format")
	ErrDateInvalid   = errors.New("is not a valid calendar date")
	ErrNotNumber     = errors.New("must be a number")
	ErrNotFinite     = errors.New("must be a finite number")
	ErrNotInteger    = errors.New("must be a whole number")
	ErrNotPositive   = errors.New("must be greater than 0")
	ErrNegative      = errors.New("must not be negative")
	ErrAmountTooBig  = errors.New("must not exceed 1000000")
	ErrPointsTooBig  = errors.New("must not exceed 1000000")
)

type dateShape struct {
	re               *regexp.Regexp
	year, month, day int // submatch indexes
}

var dateShapes = []dateShape{
	{regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`), 1, 2, 3},
	{regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`), 3, 2, 1},
	{regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`), 3, 2, 1},
	{regexp.MustCompile(`^(\d{4})\.(\d{2})\.(\d{2})$`), 1, 2, 3},
}

var (
	maxAmount = decimal.NewFromInt(MaxAmount)
	maxPoints = decimal.NewFromInt(MaxPoints)
)

// Phone keeps the last ten digits of s, dropping any formatting and country prefix.
func Phone(s string) (string, error) {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) < PhoneDigits {
		if len(strings.TrimSpace(s)) == 0 {
			return "", ErrRequired
		}
		return "", ErrPhoneTooShort
	}
	return string(digits[len(digits)-PhoneDigits:]), nil
}

// Date rewrites one of the four accepted shapes to YYYY-MM-DD and checks that the
// result is a real calendar date. No timezone is involved.
func Date(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrRequired
	}
	for _, shape := range dateShapes {
		m := shape.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		canonical := m[shape.year] + "-" + m[shape.month] + "-" + m[shape.day]
		if _, err := time.Parse(CanonicalDateLayout, canonical); err != nil {
			return "", ErrDateInvalid
		}
		return canonical, nil
	}
	return "", ErrDateFormat
}

// Amount parses a monetary value with 0 < amount <= MaxAmount.
func Amount(v Value) (decimal.Decimal, error) {
	d, err := parseDecimal(v)
	if err != nil {
		return decimal.Zero, err
	}
	if d.Sign() <= 0 {
		return decimal.Zero, ErrNotPositive
	}
	if d.GreaterThan(maxAmount) {
		return decimal.Zero, ErrAmountTooBig
	}
	return d, nil
}

// Points parses a bonus point count with 0 <= points <= MaxPoints. Absent or blank is 0.
func Points(v Value) (int, error) {
	if v.IsAbsent() || strings.TrimSpace(v.String()) == "" {
		return 0, nil
	}
	d, err := parseDecimal(v)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, ErrNotInteger
	}
	if d.Sign() < 0 {
		return 0, ErrNegative
	}
	if d.GreaterThan(maxPoints) {
		return 0, ErrPointsTooBig
	}
	return int(d.IntPart()), nil
}

func parseDecimal(v Value) (decimal.Decimal, error) {
	if !v.Finite() {
		return decimal.Zero, ErrNotFinite
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return decimal.Zero, ErrRequired
	}
	if len(s) > maxNumericLen {
		return decimal.Zero, ErrNotNumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNotNumber
	}
	return d, nil
}

// Text trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(s)
}

// Key folds a label for comparison: trimmed, lower-cased, inner whitespace runs
// collapsed to one space.
func Key(s string) string {
	lower := cases.Lower(language.Russian).String(s)
	return strings.Join(strings.FieldsFunc(lower, unicode.IsSpace), " ")
}
