package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/normalize"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldIssue is one rejected field.
type FieldIssue struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field of a payload in wire order.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid input"
	}
	return e.Issues[0].Message
}

// Message is the user-facing summary: the first issue.
func (e *ValidationError) Message() string { return e.Error() }

// AsValidationError unwraps err to a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// NewFieldError builds a single-issue ValidationError.
func NewFieldError(field string, err error) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Message: field + " " + err.Error()}}}
}

// ParseCheckout normalizes and checks every checkout field, collecting all issues
// before rejecting.
func ParseCheckout(p normalize.Payload) (*GuestCheckout, error) {
	issues := make(map[string]string)
	fail := func(field string, err error) {
		if _, seen := issues[field]; !seen {
			issues[field] = field + " " + err.Error()
		}
	}

	c := &GuestCheckout{
		LastName:     normalize.Text(p.Get(FieldLastName).String()),
		FirstName:    normalize.Text(p.Get(FieldFirstName).String()),
		LoyaltyLevel: normalize.Text(p.Get(FieldLoyaltyLevel).String()),
		BookingID:    normalize.Text(p.Get(FieldBookingID).String()),
	}

	var err error
	if c.Phone, err = normalize.Phone(p.Get(FieldPhone).String()); err != nil {
		fail(FieldPhone, err)
	}
	if c.CheckinDate, err = normalize.Date(p.Get(FieldCheckinDate).String()); err != nil {
		fail(FieldCheckinDate, err)
	}
	if c.TotalAmount, err = normalize.Amount(p.Get(FieldTotalAmount)); err != nil {
		fail(FieldTotalAmount, err)
	}
	if c.BonusSpent, err = normalize.Points(p.Get(FieldBonusSpent)); err != nil {
		fail(FieldBonusSpent, err)
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate checkout: %w", err)
		}
		for _, fe := range verrs {
			fail(fe.Field(), tagError(fe))
		}
	}

	if len(issues) == 0 {
		return c, nil
	}
	ve := &ValidationError{Issues: make([]FieldIssue, 0, len(issues))}
	for _, field := range checkoutFields {
		if msg, ok := issues[field]; ok {
			ve.Issues = append(ve.Issues, FieldIssue{Field: field, Message: msg})
		}
	}
	return nil, ve
}

func tagError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return normalize.ErrRequired
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Errorf("must be at most %s characters", fe.Param())
		}
		return fmt.Errorf("must not exceed %s", fe.Param())
	case "min":
		return fmt.Errorf("must be at least %s", fe.Param())
	case "len", "numeric":
		return normalize.ErrPhoneTooShort
	case "datetime":
		return normalize.ErrDateInvalid
	default:
		return fmt.Errorf("failed %s check", fe.Tag())
	}
}
