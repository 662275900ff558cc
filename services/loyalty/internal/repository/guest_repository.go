package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrConstraintViolation is a rejected write; retrying the same row will not help.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrUnavailable covers timeouts and lost connections; the caller may retry.
	ErrUnavailable = errors.New("database unavailable")
)

const queryTimeout = 3 * time.Second

type GuestRepository interface {
	InsertGuestCheckout(ctx context.Context, c *domain.GuestCheckout) (*domain.GuestCheckoutRow, error)
	// FindLatestBonusRecord returns nil, nil when the phone has no record.
	FindLatestBonusRecord(ctx context.Context, phone string) (*domain.BonusBalanceRecord, error)
}

type guestRepository struct {
	pool *pgxpool.Pool
}

func NewGuestRepository(pool *pgxpool.Pool) GuestRepository {
	return &guestRepository{pool: pool}
}

func (r *guestRepository) InsertGuestCheckout(ctx context.Context, c *domain.GuestCheckout) (*domain.GuestCheckoutRow, error) {
	const q = `INSERT INTO guests (
		guest_phone, last_name, first_name, checkin_date,
		loyalty_level, shelter_booking_id, total_amount, bonus_spent
	) VALUES ($1,$2,$3,$4::date,$5,$6,$7::numeric,$8)
	RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := domain.GuestCheckoutRow{GuestCheckout: *c}
	err := r.pool.QueryRow(ctx, q,
		c.Phone, c.LastName, c.FirstName, c.CheckinDate,
		c.LoyaltyLevel, c.BookingID, c.TotalAmount.String(), c.BonusSpent,
	).Scan(&row.ID, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert guest checkout: %w", classify(err))
	}
	return &row, nil
}

func (r *guestRepository) FindLatestBonusRecord(ctx context.Context, phone string) (*domain.BonusBalanceRecord, error) {
	const q = `SELECT phone, COALESCE(last_name, ''), COALESCE(first_name, ''),
		COALESCE(loyalty_level, ''), COALESCE(current_balance, 0)::text,
		COALESCE(visits_count, 0)::int, last_visit_date
	FROM bonus_balance
	WHERE phone=$1
	ORDER BY last_visit_date DESC NULLS LAST
	LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		rec     domain.BonusBalanceRecord
		balance string
	)
	err := r.pool.QueryRow(ctx, q, phone).Scan(
		&rec.Phone, &rec.LastName, &rec.FirstName,
		&rec.LoyaltyLevel, &balance,
		&rec.VisitsCount, &rec.LastVisitDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bonus record: %w", classify(err))
	}

	rec.CurrentBalance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse current_balance %q: %w", balance, err)
	}
	return &rec, nil
}

// classify tags driver errors with ErrConstraintViolation or ErrUnavailable while
// keeping the original error in the chain.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
		return errors.Join(ErrConstraintViolation, err)
	}

	var (
		connErr *pgconn.ConnectError
		netErr  net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		pgconn.Timeout(err),
		errors.As(err, &connErr),
		errors.As(err, &netErr):
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
