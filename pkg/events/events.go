package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/solarvest/auth-service/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
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

	logger.DebugContext(ctx, "publishing event", "subject", subject)

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	UserRegistered    = "user.registered"
	UserEmailVerified = "user.email_verified"
	UserPhoneVerified = "user.phone_verified"
	UserPasswordReset = "user.password_reset"
)

type UserRegisteredEvent struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UserVerifiedEvent struct {
	UserID     int64     `json:"user_id"`
	Channel    string    `json:"channel"` // "email" or "phone"
	VerifiedAt time.Time `json:"verified_at"`
}

type PasswordResetEvent struct {
	UserID  int64     `json:"user_id"`
	ResetAt time.Time `json:"reset_at"`
}
