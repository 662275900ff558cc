package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wire field names of the checkout form.
const (
	FieldPhone        = "guest_phone"
	FieldLastName     = "last_name"
	FieldFirstName    = "first_name"
	FieldCheckinDate  = "checkin_date"
	FieldLoyaltyLevel = "loyalty_level"
	FieldBookingID    = "shelter_booking_id"
	FieldTotalAmount  = "total_amount"
	FieldBonusSpent   = "bonus_spent"
)

// checkoutFields is the order issues are reported in.
var checkoutFields = []string{
	FieldPhone,
	FieldLastName,
	FieldFirstName,
	FieldCheckinDate,
	FieldLoyaltyLevel,
	FieldBookingID,
	FieldTotalAmount,
	FieldBonusSpent,
}

type GuestCheckout struct {
	Phone        string          `json:"guest_phone" validate:"required,len=10,numeric"`
	LastName     string          `json:"last_name" validate:"required,max=120"`
	FirstName    string          `json:"first_name" validate:"required,max=120"`
	CheckinDate  string          `json:"checkin_date" validate:"required,datetime=2006-01-02"`
	LoyaltyLevel string          `json:"loyalty_level" validate:"max=120"`
	BookingID    string          `json:"shelter_booking_id" validate:"required,max=80"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	BonusSpent   int             `json:"bonus_spent" validate:"min=0,max=1000000"`
}

// GuestCheckoutRow is a checkout as stored in the guests table.
type GuestCheckoutRow struct {
	ID int64 `json:"id"`
	GuestCheckout
	CreatedAt time.Time `json:"created_at"`
}

// BonusBalanceRecord is one row of the externally maintained bonus_balance table.
type BonusBalanceRecord struct {
	Phone          string
	LastName       string
	FirstName      string
	LoyaltyLevel   string
	CurrentBalance decimal.Decimal
	VisitsCount    int
	LastVisitDate  *time.Time
}

// BonusLookup is the bonus-lookup response body. LoyaltyLevel holds the tier the guest
// is progressing toward, not the stored one.
type BonusLookup struct {
	Phone          string          `json:"phone"`
	LastName       string          `json:"last_name"`
	FirstName      string          `json:"first_name"`
	LoyaltyLevel   string          `json:"loyalty_level"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	VisitsCount    int             `json:"visits_count"`
	LastVisitDate  *string         `json:"last_visit_date"`
}

func NewBonusLookup(rec *BonusBalanceRecord) *BonusLookup {
	out := &BonusLookup{
		Phone:          rec.Phone,
		LastName:       rec.LastName,
		FirstName:      rec.FirstName,
		LoyaltyLevel:   NextTier(rec.LoyaltyLevel),
		CurrentBalance: rec.CurrentBalance,
		VisitsCount:    rec.VisitsCount,
	}
	if rec.LastVisitDate != nil {
		d := rec.LastVisitDate.Format("2006-01-02")
		out.LastVisitDate = &d
	}
	return out
}
