package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/shelter-loyalty/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url, name string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "bytes", len(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// NopPublisher drops events. It is used when NATS_URL is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, subject string, _ interface{}) error {
	logger.DebugContext(ctx, "Event bus disabled, dropping event", "subject", subject)
	return nil
}

func (NopPublisher) Close() error { return nil }

const (
	GuestCheckoutCreated = "guest.checkout.created"
)

type GuestCheckoutCreatedEvent struct {
	EventID      string    `json:"event_id"`
	CheckoutID   int64     `json:"checkout_id"`
	Phone        string    `json:"phone"`
	BookingID    string    `json:"booking_id"`
	CheckinDate  string    `json:"checkin_date"`
	TotalAmount  string    `json:"total_amount"`
	BonusSpent   int       `json:"bonus_spent"`
	LoyaltyLevel string    `json:"loyalty_level,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
