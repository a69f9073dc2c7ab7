// internal/pkg/notification/service.go
package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/your-org/distribution-backend/internal/pkg/clock"
)

// Type identifies the event a notification describes.
type Type string

const (
	TypeOrderPlaced         Type = "order_placed"
	TypeOrderFailed         Type = "order_failed"
	TypeDistributorOnboard  Type = "distributor_onboarded"
	TypeSchemeReactivated   Type = "scheme_reactivated"
	TypeWalletReplenished   Type = "wallet_replenished"
)

// Notification is the payload published to the sink.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Service publishes notifications to a Redis channel. Delivery is
// fire-and-forget: failures are logged and swallowed, and a nil client turns
// every publish into a no-op. Engine operations must never fail because the
// sink is unavailable.
type Service struct {
	client  *redis.Client
	channel string
	logger  *logrus.Logger
	clock   clock.Clock
}

// NewService creates a notification service. client may be nil.
func NewService(client *redis.Client, channel string, logger *logrus.Logger, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		client:  client,
		channel: channel,
		logger:  logger,
		clock:   clk,
	}
}

// Notify publishes a single notification. It never returns an error.
func (s *Service) Notify(notifType Type, message string) {
	if s.client == nil {
		return
	}

	payload, err := json.Marshal(Notification{
		ID:        uuid.New().String(),
		Type:      notifType,
		Message:   message,
		Timestamp: s.clock.Now(),
	})
	if err != nil {
		s.logger.WithError(err).Warn("Failed to encode notification")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"type":    notifType,
			"channel": s.channel,
		}).WithError(err).Warn("Failed to publish notification")
	}
}
