package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/diagnosis/shelter-loyalty/pkg/events"
	"github.com/diagnosis/shelter-loyalty/pkg/logger"
	"github.com/diagnosis/shelter-loyalty/pkg/metrics"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/domain"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/normalize"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/repository"
	"github.com/google/uuid"
)

type LoyaltyService interface {
	Checkout(ctx context.Context, payload normalize.Payload) (*domain.GuestCheckoutRow, error)
	// LookupBonus returns nil, nil when no record exists for the phone.
	LookupBonus(ctx context.Context, rawPhone string) (*domain.BonusLookup, error)
}

type loyaltyService struct {
	guestRepo repository.GuestRepository
	publisher events.Publisher
}

func NewLoyaltyService(guestRepo repository.GuestRepository, publisher events.Publisher) LoyaltyService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &loyaltyService{
		guestRepo: guestRepo,
		publisher: publisher,
	}
}

func (s *loyaltyService) Checkout(ctx context.Context, payload normalize.Payload) (*domain.GuestCheckoutRow, error) {
	checkout, err := domain.ParseCheckout(payload)
	if err != nil {
		metrics.Checkouts.WithLabelValues("invalid").Inc()
		return nil, err
	}

	row, err := s.guestRepo.InsertGuestCheckout(ctx, checkout)
	if err != nil {
		metrics.Checkouts.WithLabelValues(failureLabel(err)).Inc()
		return nil, fmt.Errorf("failed to store guest checkout: %w", err)
	}
	metrics.Checkouts.WithLabelValues("created").Inc()
	logger.InfoContext(ctx, "Guest checkout stored", "checkout_id", row.ID, "checkin_date", row.CheckinDate)

	evt := events.GuestCheckoutCreatedEvent{
		EventID:      uuid.NewString(),
		CheckoutID:   row.ID,
		Phone:        row.Phone,
		BookingID:    row.BookingID,
		CheckinDate:  row.CheckinDate,
		TotalAmount:  row.TotalAmount.String(),
		BonusSpent:   row.BonusSpent,
		LoyaltyLevel: row.LoyaltyLevel,
		CreatedAt:    row.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.GuestCheckoutCreated, evt); err != nil {
		logger.ErrorContext(ctx, "Failed to publish checkout event", "error", err, "checkout_id", row.ID)
	}

	return row, nil
}

func (s *loyaltyService) LookupBonus(ctx context.Context, rawPhone string) (*domain.BonusLookup, error) {
	phone, err := normalize.Phone(rawPhone)
	if err != nil {
		metrics.BonusLookups.WithLabelValues("invalid").Inc()
		return nil, domain.NewFieldError("phone", err)
	}

	rec, err := s.guestRepo.FindLatestBonusRecord(ctx, phone)
	if err != nil {
		metrics.BonusLookups.WithLabelValues(failureLabel(err)).Inc()
		return nil, fmt.Errorf("failed to look up bonus balance: %w", err)
	}
	if rec == nil {
		metrics.BonusLookups.WithLabelValues("not_found").Inc()
		return nil, nil
	}

	metrics.BonusLookups.WithLabelValues("found").Inc()
	return domain.NewBonusLookup(rec), nil
}

func failureLabel(err error) string {
	switch {
	case errors.Is(err, repository.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, repository.ErrConstraintViolation):
		return "rejected"
	default:
		return "error"
	}
}
